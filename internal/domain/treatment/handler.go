package treatment

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
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/treatments", h.ListTreatments)
	readGroup.GET("/treatments/:id", h.GetTreatment)
	readGroup.GET("/patients/:patientId/treatment", h.GetActiveTreatment)
	readGroup.GET("/patients/:patientId/treatment-context", h.GetTreatmentContext)
	readGroup.GET("/patients/:patientId/nadir", h.GetNadirAssessment)
	readGroup.GET("/patients/:patientId/symptom-history", h.GetSymptomHistory)

	writeGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	writeGroup.POST("/treatments", h.CreateTreatment)
	writeGroup.PUT("/treatments/:id", h.UpdateTreatment)
	writeGroup.POST("/treatments/:id/infusions", h.RecordInfusion)
	writeGroup.DELETE("/treatments/:id", h.DeleteTreatment)
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTreatment(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GetActiveTreatment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	t, err := h.svc.GetActiveTreatment(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNoActiveTreatment) {
			return echo.NewHTTPError(http.StatusNotFound, "no active treatment for patient")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

// GetTreatmentContext returns the patient's derived cycle position. An
// optional ?at=RFC3339 query overrides the evaluation instant.
func (h *Handler) GetTreatmentContext(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	at, err := evalTime(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at timestamp")
	}
	tc, err := h.svc.BuildContext(c.Request().Context(), patientID, at)
	if err != nil {
		if errors.Is(err, ErrNoActiveTreatment) {
			return echo.NewHTTPError(http.StatusNotFound, "no active treatment for patient")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tc)
}

func (h *Handler) GetNadirAssessment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	at, err := evalTime(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at timestamp")
	}
	assessment, err := h.svc.AssessPatientNadir(c.Request().Context(), patientID, at)
	if err != nil {
		if errors.Is(err, ErrNoActiveTreatment) {
			return echo.NewHTTPError(http.StatusNotFound, "no active treatment for patient")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, assessment)
}

func (h *Handler) GetSymptomHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	history, err := h.svc.GetSymptomHistory(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) ListTreatments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTreatments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTreatment(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

type recordInfusionRequest struct {
	InfusionDate     time.Time  `json:"infusion_date"`
	NextInfusionDate *time.Time `json:"next_infusion_date,omitempty"`
}

func (h *Handler) RecordInfusion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req recordInfusionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.InfusionDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "infusion_date is required")
	}
	t, err := h.svc.RecordInfusion(c.Request().Context(), id, req.InfusionDate, req.NextInfusionDate)
	if err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTreatment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func evalTime(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("at")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(time.RFC3339, raw)
}
