package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()

	body := `{
		"role": "ADMIN",
		"email": "admin@clinic.tn",
		"password": "s3cret-pass",
		"firstName": "Amira",
		"lastName": "Ben Salah",
		"clinicName": "Clinique El Manar"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var u User
	json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Email != "admin@clinic.tn" {
		t.Errorf("email = %q", u.Email)
	}
	if strings.Contains(rec.Body.String(), "s3cret-pass") {
		t.Error("response must not leak the password")
	}
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	h, e := newTestHandler()

	body := `{"role":"RECEPTIONIST","email":"r@clinic.tn","password":"pass-word-1","firstName":"A","lastName":"B"}`
	for i, wantErr := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Register(c)
		if (err != nil) != wantErr {
			t.Fatalf("attempt %d: err = %v, wantErr %v", i, err, wantErr)
		}
		if wantErr {
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400 HTTPError, got %v", err)
			}
		}
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()

	reg := `{"role":"RECEPTIONIST","email":"r@clinic.tn","password":"pass-word-1","firstName":"A","lastName":"B"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(reg))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	login := `{"email":"r@clinic.tn","password":"pass-word-1"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(login))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp AuthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Error("expected a token in the response")
	}
}

func TestHandler_Login_BadPassword(t *testing.T) {
	h, e := newTestHandler()

	reg := `{"role":"RECEPTIONIST","email":"r@clinic.tn","password":"pass-word-1","firstName":"A","lastName":"B"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(reg))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.Register(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	login := `{"email":"r@clinic.tn","password":"wrong"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(login))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Login(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
