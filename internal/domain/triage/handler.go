package triage

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oncopulse/oncopulse/internal/platform/auth"
	"github.com/oncopulse/oncopulse/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	g.GET("/alerts", h.ListOpenAlerts)
	g.GET("/alerts/:id", h.GetAlert)
	g.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
	g.GET("/patients/:patientId/alerts", h.ListPatientAlerts)
	g.POST("/triage/queue", h.BuildQueue)
}

func (h *Handler) GetAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAlert(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "alert not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListOpenAlerts(c echo.Context) error {
	pg := pagination.FromContext(c)
	alerts, total, err := h.svc.ListOpenAlerts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(alerts, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPatientAlerts(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	alerts, total, err := h.svc.ListPatientAlerts(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(alerts, total, pg.Limit, pg.Offset))
}

func (h *Handler) AcknowledgeAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.AcknowledgeAlert(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "alert not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type buildQueueRequest struct {
	Patients []PatientSummary `json:"patients"`
}

type buildQueueResponse struct {
	Queue []QueueEntry `json:"queue"`
	Stats QueueStats   `json:"stats"`
}

// BuildQueue ranks the posted patient summaries into an attention queue.
func (h *Handler) BuildQueue(c echo.Context) error {
	var req buildQueueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entries, stats, err := h.svc.RankPatients(c.Request().Context(), req.Patients, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, buildQueueResponse{Queue: entries, Stats: stats})
}
