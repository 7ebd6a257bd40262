package portal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	portal := api.Group("/portal", auth.RequireRole(auth.RolePatient))
	portal.GET("/appointments", h.MyAppointments)
	portal.GET("/invoices", h.MyInvoices)
	portal.GET("/stats", h.MyStats)
}

func (h *Handler) MyAppointments(c echo.Context) error {
	appts, err := h.svc.MyAppointments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) MyInvoices(c echo.Context) error {
	invoices, err := h.svc.MyInvoices(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list invoices")
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *Handler) MyStats(c echo.Context) error {
	stats, err := h.svc.MyStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}
