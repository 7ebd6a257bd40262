package billing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/auth"
	"github.com/clinova/clinova/internal/platform/db"
	"github.com/clinova/clinova/internal/platform/payments"
	"github.com/clinova/clinova/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts invoice management for staff and checkout initiation
// for any authenticated user (patients pay their own invoices from the
// portal). Every route demands a session attached to a clinic.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleReceptionist), auth.RequireTenant())
	staff.GET("/invoices", h.ListInvoices)
	staff.GET("/invoices/:id", h.GetInvoice)
	staff.GET("/invoices/:id/payments", h.ListPayments)
	staff.POST("/invoices", h.CreateInvoice)
	staff.PATCH("/invoices/:id/status", h.UpdateInvoiceStatus)

	api.POST("/payments/checkout", h.InitiateCheckout, auth.RequireTenant())
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.CreateInvoice(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrPatientNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) UpdateInvoiceStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateInvoiceStatus(c.Request().Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		case errors.Is(err, ErrAlreadyPaid):
			return echo.NewHTTPError(http.StatusConflict, ErrAlreadyPaid.Error())
		case errors.Is(err, ErrCancelled):
			return echo.NewHTTPError(http.StatusConflict, ErrCancelled.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	invoices, total, err := h.svc.ListInvoices(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list invoices")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(invoices, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPayments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pays, err := h.svc.ListPayments(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list payments")
	}
	return c.JSON(http.StatusOK, pays)
}

func (h *Handler) InitiateCheckout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.InvoiceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invoice id is required")
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid invoice id")
	}

	resp, err := h.svc.InitiateCheckout(c.Request().Context(), invoiceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrInvoiceNotFound.Error())
		case errors.Is(err, ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrPatientNotFound.Error())
		case errors.Is(err, ErrAlreadyPaid):
			return echo.NewHTTPError(http.StatusBadRequest, ErrAlreadyPaid.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "payment gateway unavailable")
	}
	return c.JSON(http.StatusOK, resp)
}

// WebhookHandler receives gateway events. It is unauthenticated; trust
// comes from the signature header, and the tenant comes from the event
// metadata rather than a session.
type WebhookHandler struct {
	svc           *Service
	pool          *pgxpool.Pool
	secret        string
	defaultTenant string
	logger        zerolog.Logger

	// apply scopes the event to its tenant before handing it to the
	// service; swapped out in tests.
	apply func(ctx context.Context, tenantID string, ev *payments.Event) error
}

func NewWebhookHandler(svc *Service, pool *pgxpool.Pool, secret, defaultTenant string, logger zerolog.Logger) *WebhookHandler {
	h := &WebhookHandler{svc: svc, pool: pool, secret: secret, defaultTenant: defaultTenant, logger: logger}
	h.apply = h.applyWithTenant
	return h
}

func (h *WebhookHandler) applyWithTenant(ctx context.Context, tenantID string, ev *payments.Event) error {
	return db.WithTenant(ctx, h.pool, tenantID, func(ctx context.Context) error {
		return h.svc.ApplyEvent(ctx, ev)
	})
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/payment", h.HandleEvent)
}

func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}

	ev, err := payments.ConstructEvent(body, c.Request().Header.Get("Gateway-Signature"), h.secret)
	if err != nil {
		h.logger.Warn().Err(err).Msg("rejected webhook delivery")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event")
	}

	tenantID := EventTenant(ev)
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	if err := h.apply(c.Request().Context(), tenantID, ev); err != nil {
		if errors.Is(err, ErrUnrecognizedEvent) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrUnrecognizedEvent.Error())
		}
		h.logger.Error().Err(err).Msg("webhook handler failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook handler failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
