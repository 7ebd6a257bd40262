package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/payments"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo, _ := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func TestHandler_CreateInvoice(t *testing.T) {
	h, repo, e := newTestHandler()

	patientID := uuid.New()
	repo.patients[patientID] = &PatientRef{ID: patientID, FirstName: "Jean", LastName: "Dupont"}

	body := `{"patientId":"` + patientID.String() + `","amount":150.5,"dueDate":"2025-04-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateInvoice(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var inv Invoice
	json.Unmarshal(rec.Body.Bytes(), &inv)
	if inv.Status != InvoicePending {
		t.Errorf("status = %q, want PENDING", inv.Status)
	}
}

func TestHandler_CreateInvoice_MissingAmount(t *testing.T) {
	h, repo, e := newTestHandler()

	patientID := uuid.New()
	repo.patients[patientID] = &PatientRef{ID: patientID}

	body := `{"patientId":"` + patientID.String() + `","dueDate":"2025-04-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.CreateInvoice(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_InitiateCheckout(t *testing.T) {
	svc, repo, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	inv := seedInvoice(t, svc, repo, 150.5)

	body := `{"invoiceId":"` + inv.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.InitiateCheckout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp CheckoutResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.URL == "" {
		t.Error("expected checkout url")
	}
}

func TestHandler_InitiateCheckout_UnknownInvoice(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"invoiceId":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.InitiateCheckout(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func newTestWebhookHandler(svc *Service) *WebhookHandler {
	h := NewWebhookHandler(svc, nil, "whsec_test", "default", zerolog.Nop())
	h.apply = func(ctx context.Context, tenantID string, ev *payments.Event) error {
		return svc.ApplyEvent(ctx, ev)
	}
	return h
}

func signedWebhookRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Gateway-Signature", payments.SignPayload([]byte(payload), "whsec_test", time.Now()))
	return req
}

func TestWebhookHandler_SettlesInvoice(t *testing.T) {
	svc, repo, _ := newTestService()
	wh := newTestWebhookHandler(svc)
	e := echo.New()

	inv := seedInvoice(t, svc, repo, 150.5)

	payload := `{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"amount_total": 150500,
			"payment_intent": "pi_1",
			"metadata": {"invoiceId": "` + inv.ID.String() + `", "tenantId": "clinic_1"}
		}}
	}`
	rec := httptest.NewRecorder()
	if err := wh.HandleEvent(e.NewContext(signedWebhookRequest(t, payload), rec)); err != nil {
		t.Fatalf("HandleEvent error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if inv.Status != InvoicePaid {
		t.Errorf("invoice status = %q, want PAID", inv.Status)
	}
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	svc, _, _ := newTestService()
	wh := newTestWebhookHandler(svc)
	e := echo.New()

	payload := `{"type":"checkout.session.completed"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(payload))
	req.Header.Set("Gateway-Signature", "t=1,v1=forged")

	err := wh.HandleEvent(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestWebhookHandler_UnrecognizedEvent(t *testing.T) {
	svc, _, _ := newTestService()
	wh := newTestWebhookHandler(svc)
	e := echo.New()

	payload := `{"id":"evt_9","type":"charge.refunded","data":{"object":{}}}`
	err := wh.HandleEvent(e.NewContext(signedWebhookRequest(t, payload), httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestWebhookHandler_MissingInvoiceMetadataIsAccepted(t *testing.T) {
	svc, repo, _ := newTestService()
	wh := newTestWebhookHandler(svc)
	e := echo.New()

	payload := `{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_2", "amount_total": 1000, "metadata": {}}}
	}`
	rec := httptest.NewRecorder()
	if err := wh.HandleEvent(e.NewContext(signedWebhookRequest(t, payload), rec)); err != nil {
		t.Fatalf("HandleEvent error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(repo.payments) != 0 {
		t.Errorf("payments = %d, want 0", len(repo.payments))
	}
}
