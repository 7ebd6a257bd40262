package dashboard

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

// RegisterRoutes mounts the stats endpoints. The clinic dashboard serves
// every staff role; the doctor dashboard serves doctors only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleReceptionist), auth.RequireTenant())
	staff.GET("/dashboard/stats", h.ClinicStats)

	doctors := api.Group("", auth.RequireRole(auth.RoleDoctor), auth.RequireTenant())
	doctors.GET("/doctor/stats", h.DoctorStats)
}

func (h *Handler) ClinicStats(c echo.Context) error {
	stats, err := h.svc.ClinicStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) DoctorStats(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	stats, err := h.svc.DoctorStats(c.Request().Context(), sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}
