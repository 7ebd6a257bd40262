package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/db"
	"github.com/clinova/clinova/internal/platform/payments"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrPatientNotFound   = errors.New("patient not found for this invoice")
	ErrAlreadyPaid       = errors.New("invoice is already paid")
	ErrCancelled         = errors.New("invoice is cancelled")
	ErrUnrecognizedEvent = errors.New("unrecognized gateway event")
)

// Metadata keys attached to each checkout session. invoiceId correlates the
// completion event back to the invoice; tenantId pins the webhook to the
// right clinic.
const (
	metaInvoiceID = "invoiceId"
	metaPatientID = "patientId"
	metaTenantID  = "tenantId"
)

type Service struct {
	repo    Repository
	gateway payments.Gateway
	baseURL string
	logger  zerolog.Logger
}

func NewService(repo Repository, gateway payments.Gateway, baseURL string, logger zerolog.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, baseURL: baseURL, logger: logger}
}

const dateLayout = "2006-01-02"

// CreateInvoice raises an invoice for a patient. The invoice number is
// generated when the request leaves it blank.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient is required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id")
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("amount is required")
	}
	if *req.Amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	if req.DueDate == "" {
		return nil, fmt.Errorf("due date is required")
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %s", req.DueDate)
	}

	status := req.Status
	if status == "" {
		status = InvoicePending
	}
	if !validInvoiceStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if status == InvoicePaid {
		return nil, fmt.Errorf("invoices are marked paid through payment reconciliation")
	}

	number := req.InvoiceNumber
	if number == "" {
		number = fmt.Sprintf("INV-%d", time.Now().UnixMilli())
	}

	inv := &Invoice{
		InvoiceNumber: number,
		PatientID:     patientID,
		Amount:        *req.Amount,
		Status:        status,
		DueDate:       dueDate,
		Description:   req.Description,
		Discount:      req.Discount,
		Tax:           req.Tax,
		Notes:         req.Notes,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoiceByID(ctx, id)
}

// UpdateInvoiceStatus applies a staff transition. PAID is reserved for the
// reconciliation path; paid and cancelled invoices never change again, and
// the remaining statuses only move forward (DRAFT → PENDING → OVERDUE).
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validInvoiceStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	if status == InvoicePaid {
		return fmt.Errorf("invoices are marked paid through payment reconciliation")
	}
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return err
	}
	switch inv.Status {
	case InvoicePaid:
		return ErrAlreadyPaid
	case InvoiceCancelled:
		return ErrCancelled
	}
	if status != InvoiceCancelled && invoiceStatusRank[status] <= invoiceStatusRank[inv.Status] {
		return fmt.Errorf("invoice status cannot move from %s to %s", inv.Status, status)
	}
	return s.repo.UpdateInvoiceStatus(ctx, id, status)
}

func (s *Service) ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.ListInvoices(ctx, limit, offset)
}

func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPaymentsByInvoice(ctx, invoiceID)
}

// InitiateCheckout requests a hosted payment page for the invoice. The
// amount is converted to millimes by the gateway client; the metadata
// carries the correlation keys the completion webhook needs.
func (s *Service) InitiateCheckout(ctx context.Context, invoiceID uuid.UUID) (*CheckoutResponse, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	ref, err := s.repo.GetPatientRef(ctx, inv.PatientID)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoicePaid {
		return nil, ErrAlreadyPaid
	}

	req := payments.CheckoutRequest{
		Amount:      inv.Amount,
		Currency:    "tnd",
		ProductName: fmt.Sprintf("Invoice #%s", inv.InvoiceNumber),
		Description: fmt.Sprintf("Patient: %s %s", ref.FirstName, ref.LastName),
		SuccessURL:  fmt.Sprintf("%s/patient/invoices?success=true&invoice=%s", s.baseURL, inv.ID),
		CancelURL:   fmt.Sprintf("%s/patient/invoices?canceled=true", s.baseURL),
		Metadata: map[string]string{
			metaInvoiceID: inv.ID.String(),
			metaPatientID: inv.PatientID.String(),
		},
	}
	if tenantID := db.TenantFromContext(ctx); tenantID != "" {
		req.Metadata[metaTenantID] = tenantID
	}
	if ref.Email != nil {
		req.CustomerEmail = *ref.Email
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutResponse{URL: session.URL, SessionID: session.ID}, nil
}

// ApplyEvent is phase two of reconciliation: it applies an asynchronous
// gateway event to invoice and payment state. Delivery is at-least-once, so
// the whole path is idempotent. An event without an invoiceId is accepted
// and dropped; the gateway will not resend a corrected one.
func (s *Service) ApplyEvent(ctx context.Context, ev *payments.Event) error {
	if ev.Type != payments.EventCheckoutCompleted {
		return ErrUnrecognizedEvent
	}

	session := ev.Data.Object
	rawInvoiceID := session.Metadata[metaInvoiceID]
	if rawInvoiceID == "" {
		s.logger.Warn().Str("event_id", ev.ID).Str("session_id", session.ID).
			Msg("checkout completed without invoiceId metadata, dropping")
		return nil
	}
	invoiceID, err := uuid.Parse(rawInvoiceID)
	if err != nil {
		s.logger.Warn().Str("event_id", ev.ID).Str("invoice_id", rawInvoiceID).
			Msg("checkout completed with malformed invoiceId, dropping")
		return nil
	}

	p := &Payment{
		InvoiceID:         invoiceID,
		Amount:            payments.MajorUnits(session.AmountTotal),
		Status:            PaymentCompleted,
		Method:            "card",
		ExternalID:        session.PaymentIntent,
		CheckoutSessionID: session.ID,
	}

	if err := s.repo.ApplyCheckoutCompleted(ctx, invoiceID, p); err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			s.logger.Warn().Str("event_id", ev.ID).Str("invoice_id", rawInvoiceID).
				Msg("checkout completed for unknown invoice, dropping")
			return nil
		}
		return err
	}

	s.logger.Info().Str("invoice_id", invoiceID.String()).
		Str("session_id", session.ID).Float64("amount", p.Amount).
		Msg("invoice settled by gateway event")
	return nil
}

// EventTenant extracts the clinic identifier a webhook event belongs to.
func EventTenant(ev *payments.Event) string {
	return ev.Data.Object.Metadata[metaTenantID]
}
