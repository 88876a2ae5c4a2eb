package questionnaire

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oncopulse/oncopulse/internal/domain/treatment"
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
	// Patients answer their own questionnaires; clinical roles can drive
	// them too during visits.
	g := api.Group("", auth.RequireRole("admin", "physician", "nurse", "patient"))
	g.POST("/patients/:patientId/questionnaires", h.Generate)
	g.GET("/questionnaires/:sessionId", h.GetSession)
	g.GET("/patients/:patientId/questionnaires", h.ListSessions)
	g.POST("/questionnaires/:sessionId/answers", h.SubmitAnswer)
	g.POST("/questionnaires/:sessionId/complete", h.Complete)
}

type generateRequest struct {
	Method SelectionMethod `json:"method"`
	At     *time.Time      `json:"at,omitempty"`
}

type generateResponse struct {
	Session *Session          `json:"session"`
	Result  *GenerationResult `json:"result"`
}

func (h *Handler) Generate(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Method == "" {
		req.Method = MethodDrugModule
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	result, session, err := h.svc.Generate(c.Request().Context(), patientID, req.Method, at)
	if err != nil {
		if errors.Is(err, treatment.ErrNoActiveTreatment) {
			return echo.NewHTTPError(http.StatusNotFound, "no active treatment for patient")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, generateResponse{Session: session, Result: result})
}

func (h *Handler) GetSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	session, err := h.svc.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) ListSessions(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	sessions, total, err := h.svc.ListPatientSessions(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sessions, total, pg.Limit, pg.Offset))
}

type submitAnswerRequest struct {
	ItemID uuid.UUID `json:"item_id"`
	Value  int       `json:"value"`
}

func (h *Handler) SubmitAnswer(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	var req submitAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ItemID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id is required")
	}

	outcome, err := h.svc.SubmitAnswer(c.Request().Context(), sessionID, req.ItemID, req.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, outcome)
}

func (h *Handler) Complete(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	result, err := h.svc.Complete(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
