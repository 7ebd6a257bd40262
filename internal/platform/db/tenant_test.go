package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestTenantMiddleware_InvalidIdentifier(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("jwt_tenant_id", "bad;tenant")

	handler := TenantMiddleware(nil, "default")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid tenant id, got %v", err)
	}
}

func TestWithTenant_InvalidIdentifier(t *testing.T) {
	err := WithTenant(context.Background(), nil, "clinic-1;DROP TABLE", func(ctx context.Context) error {
		t.Error("fn must not run for invalid tenant id")
		return nil
	})
	if err == nil {
		t.Error("expected error for invalid tenant id")
	}
}

func TestCreateTenantSchema_InvalidIdentifier(t *testing.T) {
	err := CreateTenantSchema(context.Background(), nil, "no spaces", "")
	if err == nil {
		t.Error("expected error for invalid tenant id")
	}
}

func TestTenantFromContext_Empty(t *testing.T) {
	if tid := TenantFromContext(context.Background()); tid != "" {
		t.Errorf("expected empty tenant, got %q", tid)
	}
}

func TestConnFromContext_Empty(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil conn on bare context")
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestWithTx_NoConnection(t *testing.T) {
	_, _, err := WithTx(context.Background())
	if err == nil {
		t.Fatal("expected error when no connection in context")
	}
	if err.Error() != "no database connection in context" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}
