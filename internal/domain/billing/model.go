// Package billing owns invoices and payments. Invoices are raised by staff;
// the PAID transition happens exclusively through gateway reconciliation,
// never by direct user action.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses. Part of the wire contract with the UI.
const (
	InvoiceDraft     = "DRAFT"
	InvoicePending   = "PENDING"
	InvoicePaid      = "PAID"
	InvoiceCancelled = "CANCELLED"
	InvoiceOverdue   = "OVERDUE"
)

var validInvoiceStatuses = map[string]bool{
	InvoiceDraft:     true,
	InvoicePending:   true,
	InvoicePaid:      true,
	InvoiceCancelled: true,
	InvoiceOverdue:   true,
}

// Statuses move forward only; CANCELLED is reachable from any rank below
// PAID and, like PAID, never changes again.
var invoiceStatusRank = map[string]int{
	InvoiceDraft:   1,
	InvoicePending: 2,
	InvoiceOverdue: 3,
	InvoicePaid:    4,
}

// PaymentCompleted is the only payment status this system writes.
const PaymentCompleted = "COMPLETED"

// Invoice maps to the invoice table.
type Invoice struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	InvoiceNumber string     `db:"invoice_number" json:"invoiceNumber"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patientId"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	DueDate       time.Time  `db:"due_date" json:"dueDate"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Discount      *float64   `db:"discount" json:"discount,omitempty"`
	Tax           *float64   `db:"tax" json:"tax,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	PaidAt        *time.Time `db:"paid_at" json:"paidAt,omitempty"`
	// ExternalID is the gateway checkout session that settled the invoice.
	ExternalID *string   `db:"external_id" json:"externalId,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`

	// Joined from the patient table on reads.
	PatientFirstName string `db:"-" json:"patientFirstName,omitempty"`
	PatientLastName  string `db:"-" json:"patientLastName,omitempty"`
}

// Payment maps to the payment table. The checkout session ID carries a
// unique index; it is the idempotency key for webhook replays.
type Payment struct {
	ID                uuid.UUID `db:"id" json:"id"`
	InvoiceID         uuid.UUID `db:"invoice_id" json:"invoiceId"`
	Amount            float64   `db:"amount" json:"amount"`
	Status            string    `db:"status" json:"status"`
	Method            string    `db:"method" json:"method"`
	ExternalID        string    `db:"external_id" json:"externalId"`
	CheckoutSessionID string    `db:"checkout_session_id" json:"checkoutSessionId"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// CreateInvoiceRequest is the wire shape for raising an invoice.
type CreateInvoiceRequest struct {
	PatientID     string   `json:"patientId"`
	InvoiceNumber string   `json:"invoiceNumber,omitempty"`
	Amount        *float64 `json:"amount"`
	Status        string   `json:"status,omitempty"`
	DueDate       string   `json:"dueDate"`
	Description   *string  `json:"description,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
	Tax           *float64 `json:"tax,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// StatusUpdateRequest changes an invoice's status by staff action.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// CheckoutRequest asks for a hosted payment page for one invoice.
type CheckoutRequest struct {
	InvoiceID string `json:"invoiceId"`
}

// CheckoutResponse carries the gateway redirect.
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// PatientRef is the slice of patient data checkout needs.
type PatientRef struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
}
