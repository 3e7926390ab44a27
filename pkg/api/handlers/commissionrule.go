package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/commissionrules"
	"github.com/salonlink/backend/pkg/models"
)

// CommissionRuleHandler handles commission rule endpoints
type CommissionRuleHandler struct {
	rules     *commissionrules.Service
	validator *validator.Validate
}

// NewCommissionRuleHandler creates a new commission rule handler
func NewCommissionRuleHandler(ruleSvc *commissionrules.Service) *CommissionRuleHandler {
	return &CommissionRuleHandler{
		rules:     ruleSvc,
		validator: validator.New(),
	}
}

// Create adds a commission rule.
func (h *CommissionRuleHandler) Create(c echo.Context) error {
	var req commissionrules.CreateRuleRequest
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

	rule, err := h.rules.Create(ctx, req)
	if err != nil {
		if errors.Is(err, commissionrules.ErrInvalidType) {
			return apierrors.FieldValidationError(c, "type", err.Error())
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, rule)
}

// Get returns a rule by id.
func (h *CommissionRuleHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rule, err := h.rules.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, commissionrules.ErrNotFound) {
			return apierrors.NotFoundError(c, "Commission rule")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

// List returns all rules, highest priority first.
func (h *CommissionRuleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.rules.List(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Update edits a rule.
func (h *CommissionRuleHandler) Update(c echo.Context) error {
	var req commissionrules.UpdateRuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rule, err := h.rules.Update(ctx, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, commissionrules.ErrNotFound):
			return apierrors.NotFoundError(c, "Commission rule")
		case errors.Is(err, commissionrules.ErrInvalidType):
			return apierrors.FieldValidationError(c, "type", err.Error())
		default:
			return apierrors.DatabaseError(c, err)
		}
	}
	return c.JSON(http.StatusOK, rule)
}

// Delete removes a rule.
func (h *CommissionRuleHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.rules.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, commissionrules.ErrNotFound) {
			return apierrors.NotFoundError(c, "Commission rule")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}
