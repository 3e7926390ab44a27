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
	"github.com/salonlink/backend/pkg/stylists"
)

// StylistHandler handles stylist endpoints
type StylistHandler struct {
	stylists  *stylists.Service
	validator *validator.Validate
}

// NewStylistHandler creates a new stylist handler
func NewStylistHandler(stylistSvc *stylists.Service) *StylistHandler {
	return &StylistHandler{
		stylists:  stylistSvc,
		validator: validator.New(),
	}
}

// Create registers a stylist under a salon.
func (h *StylistHandler) Create(c echo.Context) error {
	var req stylists.CreateStylistRequest
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

	stylist, err := h.stylists.Create(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, stylist)
}

// Get returns a stylist by id.
func (h *StylistHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stylist, err := h.stylists.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, stylists.ErrNotFound) {
			return apierrors.NotFoundError(c, "Stylist")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, stylist)
}

// List returns stylists, optionally scoped to one salon.
func (h *StylistHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.stylists.List(ctx, c.QueryParam("salonId"))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Update edits stylist details.
func (h *StylistHandler) Update(c echo.Context) error {
	var req stylists.UpdateStylistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stylist, err := h.stylists.Update(ctx, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, stylists.ErrNotFound) {
			return apierrors.NotFoundError(c, "Stylist")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, stylist)
}

// Delete removes a stylist.
func (h *StylistHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.stylists.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, stylists.ErrNotFound) {
			return apierrors.NotFoundError(c, "Stylist")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}
