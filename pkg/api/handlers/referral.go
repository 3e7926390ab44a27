package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/metrics"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/referrals"
)

// ReferralHandler handles referral and discount code endpoints
type ReferralHandler struct {
	referrals *referrals.Service
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referralSvc *referrals.Service, m *metrics.Metrics) *ReferralHandler {
	return &ReferralHandler{
		referrals: referralSvc,
		metrics:   m,
		validator: validator.New(),
	}
}

type bulkCreditRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type createDiscountCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// Create records a redeemed referral and computes suggested commissions.
func (h *ReferralHandler) Create(c echo.Context) error {
	var req referrals.CreateReferralRequest
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

	referral, err := h.referrals.Create(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, referral)
}

// Get returns a referral by id.
func (h *ReferralHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	referral, err := h.referrals.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, referrals.ErrNotFound) {
			return apierrors.NotFoundError(c, "Referral")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, referral)
}

// List returns referrals, optionally filtered by status, stylist, salon
// or code.
func (h *ReferralHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.referrals.List(ctx, referrals.ListFilter{
		Status:    c.QueryParam("status"),
		StylistID: c.QueryParam("stylistId"),
		SalonID:   c.QueryParam("salonId"),
		Code:      c.QueryParam("code"),
	})
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Credit marks a referral credited, defaulting amounts to the
// suggestions computed at redemption.
func (h *ReferralHandler) Credit(c echo.Context) error {
	var req referrals.CreditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	referral, err := h.referrals.Credit(ctx, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, referrals.ErrNotFound):
			return apierrors.NotFoundError(c, "Referral")
		case errors.Is(err, referrals.ErrAlreadyCredited):
			return apierrors.ConflictError(c, "Referral is already credited")
		default:
			return apierrors.DatabaseError(c, err)
		}
	}

	h.metrics.RecordReferralCredited()
	return c.JSON(http.StatusOK, referral)
}

// BulkCredit credits a batch of referrals at their suggested amounts,
// skipping any that are missing or already credited.
func (h *ReferralHandler) BulkCredit(c echo.Context) error {
	var req bulkCreditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	count, err := h.referrals.BulkCredit(ctx, req.IDs)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	for i := 0; i < count; i++ {
		h.metrics.RecordReferralCredited()
	}
	return c.JSON(http.StatusOK, map[string]int{"credited": count})
}

// CreateDiscountCode registers a referral discount code.
func (h *ReferralHandler) CreateDiscountCode(c echo.Context) error {
	var req createDiscountCodeRequest
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

	code, err := h.referrals.CreateDiscountCode(ctx, req.Code)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, code)
}

// ListDiscountCodes returns all discount codes.
func (h *ReferralHandler) ListDiscountCodes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.referrals.ListDiscountCodes(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SetDiscountCodeStatus activates or deactivates a discount code.
func (h *ReferralHandler) SetDiscountCodeStatus(c echo.Context) error {
	var req models.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.referrals.SetDiscountCodeStatus(ctx, c.Param("id"), req.IsActive); err != nil {
		if errors.Is(err, referrals.ErrCodeNotFound) {
			return apierrors.NotFoundError(c, "Discount code")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Status updated"})
}
