package catalog

import (
	"errors"
	"net/http"

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
	// Reference data is readable by any clinical role.
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/symptom-items", h.ListSymptomItems)
	readGroup.GET("/symptom-items/:id", h.GetSymptomItem)
	readGroup.GET("/regimens", h.ListRegimens)
	readGroup.GET("/regimens/:id", h.GetRegimen)
	readGroup.GET("/drug-modules", h.ListDrugModules)
	readGroup.GET("/drug-modules/:id", h.GetDrugModule)

	// Catalog curation is an admin task.
	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/symptom-items", h.CreateSymptomItem)
	writeGroup.PUT("/symptom-items/:id", h.UpdateSymptomItem)
	writeGroup.DELETE("/symptom-items/:id", h.DeleteSymptomItem)
	writeGroup.POST("/regimens", h.CreateRegimen)
	writeGroup.PUT("/regimens/:id", h.UpdateRegimen)
	writeGroup.DELETE("/regimens/:id", h.DeleteRegimen)
	writeGroup.POST("/drug-modules", h.CreateDrugModule)
	writeGroup.PUT("/drug-modules/:id", h.UpdateDrugModule)
	writeGroup.DELETE("/drug-modules/:id", h.DeleteDrugModule)
}

// -- Symptom Item Handlers --

func (h *Handler) CreateSymptomItem(c echo.Context) error {
	var item SymptomItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSymptomItem(c.Request().Context(), &item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetSymptomItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	item, err := h.svc.GetSymptomItem(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "symptom item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListSymptomItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSymptomItems(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateSymptomItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item SymptomItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.ID = id
	if err := h.svc.UpdateSymptomItem(c.Request().Context(), &item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteSymptomItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSymptomItem(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Regimen Handlers --

func (h *Handler) CreateRegimen(c echo.Context) error {
	var r Regimen
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRegimen(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRegimen(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Fall back to regimen code lookup so callers can use either key.
		r, cerr := h.svc.GetRegimenByCode(c.Request().Context(), c.Param("id"))
		if cerr != nil {
			return echo.NewHTTPError(http.StatusNotFound, "regimen not found")
		}
		return c.JSON(http.StatusOK, r)
	}
	r, err := h.svc.GetRegimen(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "regimen not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRegimens(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRegimens(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRegimen(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var r Regimen
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateRegimen(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRegimen(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRegimen(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Drug Module Handlers --

func (h *Handler) CreateDrugModule(c echo.Context) error {
	var m DrugModule
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDrugModule(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetDrugModule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetDrugModule(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrDrugModuleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug module not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListDrugModules(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDrugModules(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDrugModule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m DrugModule
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	if err := h.svc.UpdateDrugModule(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteDrugModule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDrugModule(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
