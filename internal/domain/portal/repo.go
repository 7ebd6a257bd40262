package portal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// UserEmail looks up the login email of a user account.
	UserEmail(ctx context.Context, userID uuid.UUID) (string, error)
	// PatientIDByEmail resolves the tenant patient record matching an email.
	// Returns ErrNoPatientRecord when none matches.
	PatientIDByEmail(ctx context.Context, email string) (uuid.UUID, error)

	ListAppointments(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListInvoices(ctx context.Context, patientID uuid.UUID) ([]*Invoice, error)

	CountUpcomingAppointments(ctx context.Context, patientID uuid.UUID, from time.Time) (int, error)
	CountConsultations(ctx context.Context, patientID uuid.UUID) (int, error)
	CountPendingInvoices(ctx context.Context, patientID uuid.UUID) (int, error)
}
