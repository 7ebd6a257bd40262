// Package consultation records the outcome of a doctor's visit: diagnosis,
// symptoms, and an optional prescription. Records are immutable once
// written.
package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation maps to the consultation table.
type Consultation struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patientId"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctorId"`
	Diagnosis    string    `db:"diagnosis" json:"diagnosis"`
	Symptoms     string    `db:"symptoms" json:"symptoms"`
	Prescription *string   `db:"prescription" json:"prescription,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Joined from the patient table on reads.
	PatientFirstName string `db:"-" json:"patientFirstName,omitempty"`
	PatientLastName  string `db:"-" json:"patientLastName,omitempty"`
}

// CreateRequest is the wire shape for recording a consultation.
type CreateRequest struct {
	PatientID    string  `json:"patientId"`
	Diagnosis    string  `json:"diagnosis"`
	Symptoms     string  `json:"symptoms"`
	Prescription *string `json:"prescription,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Prescription is the printable view of a consultation's prescription.
type Prescription struct {
	ID           uuid.UUID `json:"id"`
	Diagnosis    string    `json:"diagnosis"`
	Symptoms     string    `json:"symptoms"`
	Prescription *string   `json:"prescription,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Patient      struct {
		FirstName   string    `json:"firstName"`
		LastName    string    `json:"lastName"`
		DateOfBirth time.Time `json:"dateOfBirth"`
	} `json:"patient"`
	CreatedAt time.Time `json:"createdAt"`
}
