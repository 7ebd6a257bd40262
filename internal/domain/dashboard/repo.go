package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CountPatients(ctx context.Context) (int, error)
	CountAppointmentsOn(ctx context.Context, day time.Time) (int, error)
	CountPendingInvoices(ctx context.Context) (int, error)
	// SumPaidInvoicesSince totals the amounts of PAID invoices settled at or
	// after the given instant.
	SumPaidInvoicesSince(ctx context.Context, since time.Time) (float64, error)

	CountDoctorAppointmentsOn(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error)
	CountDoctorPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountDoctorByStatus(ctx context.Context, doctorID uuid.UUID, status string) (int, error)
	CountDoctorCompletedOn(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error)
}
