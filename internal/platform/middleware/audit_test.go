package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/auth"
)

func TestAudit_RecordsAPIAccess(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString(), nil)
	sess := &auth.Session{UserID: uuid.New(), Role: auth.RoleDoctor, TenantID: "clinic_1"}
	req = req.WithContext(auth.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-abc")

	var entry AuditEntry
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		entry = e
		return nil
	})

	handler := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.UserID != sess.UserID.String() {
		t.Errorf("expected user id %s, got %s", sess.UserID, entry.UserID)
	}
	if entry.Role != "DOCTOR" {
		t.Errorf("expected role DOCTOR, got %s", entry.Role)
	}
	if entry.TenantID != "clinic_1" {
		t.Errorf("expected tenant clinic_1, got %s", entry.TenantID)
	}
	if entry.ResourceType != "patients" {
		t.Errorf("expected resource patients, got %s", entry.ResourceType)
	}
	if entry.Action != "read" {
		t.Errorf("expected action read, got %s", entry.Action)
	}
	if entry.RequestID != "req-abc" {
		t.Errorf("expected request_id 'req-abc', got %q", entry.RequestID)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	recorded := false
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		recorded = true
		return nil
	})

	handler := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded {
		t.Error("expected no audit entry for non-API path")
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:    "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodDelete: "delete",
	}
	for method, want := range cases {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("%s: expected %s, got %s", method, want, got)
		}
	}
}

func TestExtractResourceType(t *testing.T) {
	if got := extractResourceType("/api/v1/invoices/abc"); got != "invoices" {
		t.Errorf("expected invoices, got %s", got)
	}
	if got := extractResourceType("/api/v1/"); got != "unknown" {
		t.Errorf("expected unknown, got %s", got)
	}
}
