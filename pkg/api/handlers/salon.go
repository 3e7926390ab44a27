package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/salons"
)

// SalonHandler handles salon onboarding endpoints
type SalonHandler struct {
	salons    *salons.Service
	validator *validator.Validate
}

// NewSalonHandler creates a new salon handler
func NewSalonHandler(salonSvc *salons.Service) *SalonHandler {
	return &SalonHandler{
		salons:    salonSvc,
		validator: validator.New(),
	}
}

// Create registers a salon at the start of the onboarding pipeline.
func (h *SalonHandler) Create(c echo.Context) error {
	var req salons.CreateSalonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salon, err := h.salons.Create(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, salon)
}

// Get returns a salon by id.
func (h *SalonHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salon, err := h.salons.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, salons.ErrNotFound) {
			return apierrors.NotFoundError(c, "Salon")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, salon)
}

// List returns salons, optionally filtered by stage and city.
func (h *SalonHandler) List(c echo.Context) error {
	stage := c.QueryParam("stage")
	if stage != "" && !salons.ValidStage(stage) {
		return apierrors.FieldValidationError(c, "stage", "unknown onboarding stage")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.salons.List(ctx, stage, c.QueryParam("city"))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Update edits salon details. Stage changes through this endpoint can
// only close a salon; forward movement goes through AdvanceStage.
func (h *SalonHandler) Update(c echo.Context) error {
	var req salons.UpdateSalonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salon, err := h.salons.Update(ctx, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, salons.ErrNotFound):
			return apierrors.NotFoundError(c, "Salon")
		case errors.Is(err, salons.ErrInvalidStage):
			return apierrors.FieldValidationError(c, "currentStage", err.Error())
		default:
			return apierrors.DatabaseError(c, err)
		}
	}
	return c.JSON(http.StatusOK, salon)
}

// SetChecklist toggles checklist items of the salon's current stage.
func (h *SalonHandler) SetChecklist(c echo.Context) error {
	var items map[string]bool
	if err := c.Bind(&items); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salon, err := h.salons.SetChecklist(ctx, c.Param("id"), items)
	if err != nil {
		switch {
		case errors.Is(err, salons.ErrNotFound):
			return apierrors.NotFoundError(c, "Salon")
		case errors.Is(err, salons.ErrUnknownChecklistItem):
			return apierrors.FieldValidationError(c, "checklist", err.Error())
		default:
			return apierrors.DatabaseError(c, err)
		}
	}
	return c.JSON(http.StatusOK, salon)
}

// AdvanceStage moves a salon to the next onboarding stage once every
// checklist item of the current stage is done.
func (h *SalonHandler) AdvanceStage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salon, err := h.salons.AdvanceStage(ctx, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, salons.ErrNotFound):
			return apierrors.NotFoundError(c, "Salon")
		case errors.Is(err, salons.ErrStageTerminal):
			return apierrors.ConflictError(c, err.Error())
		case errors.Is(err, salons.ErrChecklistIncomplete):
			return apierrors.ConflictError(c, err.Error())
		default:
			return apierrors.DatabaseError(c, err)
		}
	}
	return c.JSON(http.StatusOK, salon)
}

// Delete removes a salon.
func (h *SalonHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.salons.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, salons.ErrNotFound) {
			return apierrors.NotFoundError(c, "Salon")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}
