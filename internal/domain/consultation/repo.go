package consultation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PatientRef is the slice of patient data a prescription needs.
type PatientRef struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

type Repository interface {
	Create(ctx context.Context, cons *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	// GetPatientRef loads the patient fields embedded in a prescription.
	GetPatientRef(ctx context.Context, patientID uuid.UUID) (*PatientRef, error)
	List(ctx context.Context, limit, offset int) ([]*Consultation, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
}
