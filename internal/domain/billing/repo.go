package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// UpdateInvoiceStatus applies a staff transition; it refuses rows that
	// are already PAID.
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error
	ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error)
	ListInvoicesByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)

	// GetPatientRef loads the patient fields a checkout session needs.
	GetPatientRef(ctx context.Context, patientID uuid.UUID) (*PatientRef, error)

	// ApplyCheckoutCompleted atomically marks the invoice paid and records
	// the payment. Replaying the same checkout session is a no-op; the
	// invoice must exist.
	ApplyCheckoutCompleted(ctx context.Context, invoiceID uuid.UUID, p *Payment) error

	ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}
