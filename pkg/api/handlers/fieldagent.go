package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/fieldforce"
	"github.com/salonlink/backend/pkg/models"
)

// FieldAgentHandler handles field agent account endpoints
type FieldAgentHandler struct {
	agents    *fieldforce.Service
	validator *validator.Validate
}

// NewFieldAgentHandler creates a new field agent handler
func NewFieldAgentHandler(agentSvc *fieldforce.Service) *FieldAgentHandler {
	return &FieldAgentHandler{
		agents:    agentSvc,
		validator: validator.New(),
	}
}

type assignSalonRequest struct {
	SalonID string `json:"salonId" validate:"required"`
}

// Create registers a field agent account.
func (h *FieldAgentHandler) Create(c echo.Context) error {
	var req models.CreateUserRequest
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

	created, err := h.agents.Create(ctx, req)
	if err != nil {
		if errors.Is(err, fieldforce.ErrEmailTaken) {
			return apierrors.ConflictError(c, "Email is already registered")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// List returns all field agent accounts.
func (h *FieldAgentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.agents.List(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SetStatus activates or deactivates a field agent account.
func (h *FieldAgentHandler) SetStatus(c echo.Context) error {
	var req models.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.agents.SetStatus(ctx, c.Param("id"), req.IsActive); err != nil {
		if errors.Is(err, fieldforce.ErrNotFound) {
			return apierrors.NotFoundError(c, "Field agent")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Status updated"})
}

// AssignSalon puts a salon on the agent's route.
func (h *FieldAgentHandler) AssignSalon(c echo.Context) error {
	var req assignSalonRequest
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

	if err := h.agents.AssignSalon(ctx, c.Param("id"), req.SalonID); err != nil {
		switch {
		case errors.Is(err, fieldforce.ErrNotFound):
			return apierrors.NotFoundError(c, "Field agent")
		case errors.Is(err, fieldforce.ErrSalonNotFound):
			return apierrors.NotFoundError(c, "Salon")
		default:
			return apierrors.DatabaseError(c, err)
		}
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Salon assigned"})
}

// UnassignSalon removes a salon from the agent's route.
func (h *FieldAgentHandler) UnassignSalon(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.agents.UnassignSalon(ctx, c.Param("id"), c.Param("salonId")); err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Salon unassigned"})
}

// Salons returns the salons on the agent's route.
func (h *FieldAgentHandler) Salons(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.agents.SalonsForAgent(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, fieldforce.ErrNotFound) {
			return apierrors.NotFoundError(c, "Field agent")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
