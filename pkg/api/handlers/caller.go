package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/callers"
	"github.com/salonlink/backend/pkg/models"
)

// CallerHandler handles lead caller account endpoints
type CallerHandler struct {
	callers   *callers.Service
	validator *validator.Validate
}

// NewCallerHandler creates a new caller handler
func NewCallerHandler(callerSvc *callers.Service) *CallerHandler {
	return &CallerHandler{
		callers:   callerSvc,
		validator: validator.New(),
	}
}

// Create registers a lead caller account. The generated password, if
// any, appears only in this response.
func (h *CallerHandler) Create(c echo.Context) error {
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

	created, err := h.callers.Create(ctx, req)
	if err != nil {
		if errors.Is(err, callers.ErrEmailTaken) {
			return apierrors.ConflictError(c, "Email is already registered")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// List returns all lead caller accounts.
func (h *CallerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.callers.List(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SetStatus activates or deactivates a caller account.
func (h *CallerHandler) SetStatus(c echo.Context) error {
	var req models.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.callers.SetStatus(ctx, c.Param("id"), req.IsActive)
	if err != nil {
		if errors.Is(err, callers.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead caller")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ResetPassword sets a new password on a caller account.
func (h *CallerHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
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

	if err := h.callers.ResetPassword(ctx, c.Param("id"), req.NewPassword); err != nil {
		if errors.Is(err, callers.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead caller")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Password updated"})
}

// Delete removes a caller account.
func (h *CallerHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.callers.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, callers.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead caller")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}
