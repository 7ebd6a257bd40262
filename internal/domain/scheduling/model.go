// Package scheduling implements the appointment lifecycle. An appointment is
// created SCHEDULED and moves to exactly one of COMPLETED, CANCELLED or
// NO_SHOW; terminal states never transition again.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Part of the wire contract with the UI.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

// DefaultType applies when the request names no appointment type.
const DefaultType = "CHECKUP"

var terminalStatuses = map[string]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patientId"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctorId"`
	Date      time.Time `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	Type      string    `db:"type" json:"type"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Joined from the patient table on reads.
	PatientFirstName string `db:"-" json:"patientFirstName,omitempty"`
	PatientLastName  string `db:"-" json:"patientLastName,omitempty"`
}

// CreateRequest is the wire shape for booking an appointment.
type CreateRequest struct {
	PatientID string  `json:"patientId"`
	DoctorID  string  `json:"doctorId,omitempty"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Type      string  `json:"type,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

// StatusUpdateRequest changes an appointment's status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
