// Package patient manages the clinic's patient records. Every row lives in
// the tenant's schema, so reads and writes are clinic-scoped by construction.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID               uuid.UUID `db:"id" json:"id"`
	FirstName        string    `db:"first_name" json:"firstName"`
	LastName         string    `db:"last_name" json:"lastName"`
	Email            *string   `db:"email" json:"email,omitempty"`
	Phone            string    `db:"phone" json:"phone"`
	DateOfBirth      time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Gender           string    `db:"gender" json:"gender"`
	Address          *string   `db:"address" json:"address,omitempty"`
	City             *string   `db:"city" json:"city,omitempty"`
	PostalCode       *string   `db:"postal_code" json:"postalCode,omitempty"`
	EmergencyContact *string   `db:"emergency_contact" json:"emergencyContact,omitempty"`
	EmergencyPhone   *string   `db:"emergency_phone" json:"emergencyPhone,omitempty"`
	BloodType        *string   `db:"blood_type" json:"bloodType,omitempty"`
	Allergies        *string   `db:"allergies" json:"allergies,omitempty"`
	MedicalHistory   *string   `db:"medical_history" json:"medicalHistory,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// CreateRequest is the wire shape for creating or updating a patient. The
// date of birth travels as "YYYY-MM-DD".
type CreateRequest struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            *string `json:"email,omitempty"`
	Phone            string  `json:"phone"`
	DateOfBirth      string  `json:"dateOfBirth"`
	Gender           string  `json:"gender"`
	Address          *string `json:"address,omitempty"`
	City             *string `json:"city,omitempty"`
	PostalCode       *string `json:"postalCode,omitempty"`
	EmergencyContact *string `json:"emergencyContact,omitempty"`
	EmergencyPhone   *string `json:"emergencyPhone,omitempty"`
	BloodType        *string `json:"bloodType,omitempty"`
	Allergies        *string `json:"allergies,omitempty"`
	MedicalHistory   *string `json:"medicalHistory,omitempty"`
}
