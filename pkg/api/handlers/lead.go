package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/calltracking"
	"github.com/salonlink/backend/pkg/leadlifecycle"
	"github.com/salonlink/backend/pkg/leads"
	"github.com/salonlink/backend/pkg/metrics"
	"github.com/salonlink/backend/pkg/models"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leads     *leads.Service
	calls     *calltracking.Service
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadSvc *leads.Service, callSvc *calltracking.Service, m *metrics.Metrics) *LeadHandler {
	return &LeadHandler{
		leads:     leadSvc,
		calls:     callSvc,
		metrics:   m,
		validator: validator.New(),
	}
}

// List returns leads for one of the console views, paginated.
func (h *LeadHandler) List(c echo.Context) error {
	var req models.LeadListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.leads.List(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns a single lead by id.
func (h *LeadHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lead, err := h.leads.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Create registers a new inbound lead.
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.CreateLeadRequest
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

	lead, err := h.leads.Create(ctx, req)
	if err != nil {
		var fieldErr *leadlifecycle.FieldError
		if errors.As(err, &fieldErr) {
			return apierrors.FieldValidationError(c, fieldErr.Field, fieldErr.Reason)
		}
		return apierrors.DatabaseError(c, err)
	}

	h.metrics.RecordLeadCreated()
	return c.JSON(http.StatusCreated, lead)
}

// Update applies a partial save to a lead and records the change trail.
func (h *LeadHandler) Update(c echo.Context) error {
	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	actor := actorEmail(c)
	lead, err := h.leads.Update(ctx, c.Param("id"), req, actor)
	if err != nil {
		var fieldErr *leadlifecycle.FieldError
		if errors.As(err, &fieldErr) {
			return apierrors.FieldValidationError(c, fieldErr.Field, fieldErr.Reason)
		}
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		return apierrors.DatabaseError(c, err)
	}

	kind, channel := splitStatus(lead.Status)
	h.metrics.RecordLeadUpdate(kind)
	if kind == "converted" {
		h.metrics.RecordLeadConverted(channel)
	}
	return c.JSON(http.StatusOK, lead)
}

// Assign reassigns a lead to an active lead caller.
func (h *LeadHandler) Assign(c echo.Context) error {
	var req models.AssignLeadRequest
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

	lead, err := h.leads.Assign(ctx, c.Param("id"), req.CallerID, actorEmail(c))
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		if errors.Is(err, leads.ErrInvalidCaller) {
			return apierrors.FieldValidationError(c, "callerId", "must be an active lead caller")
		}
		return apierrors.DatabaseError(c, err)
	}

	h.metrics.RecordLeadAssigned()
	return c.JSON(http.StatusOK, lead)
}

// History returns the change trail of a lead plus the same customer's
// prior episodes.
func (h *LeadHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.leads.History(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete removes a single lead and its change trail.
func (h *LeadHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.leads.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}

// DeleteAll wipes every lead. Requires ?confirm=true.
func (h *LeadHandler) DeleteAll(c echo.Context) error {
	confirm := c.QueryParam("confirm") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	count, err := h.leads.DeleteAll(ctx, confirm)
	if err != nil {
		if errors.Is(err, leads.ErrConfirmRequired) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "confirmation_required",
				Message: "Pass confirm=true to delete all leads",
			})
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: count})
}

// ClickToCall bridges an outbound call from the caller to the lead's
// customer through the telephony provider.
func (h *LeadHandler) ClickToCall(c echo.Context) error {
	var req models.ClickToCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	lead, err := h.leads.Get(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return apierrors.NotFoundError(c, "Lead")
		}
		return apierrors.DatabaseError(c, err)
	}

	userID, _ := c.Get("user_id").(string)
	log, err := h.calls.InitiateCall(ctx, lead.ID, userID, lead.Customer.Phone)
	if err != nil {
		h.metrics.RecordCallInitiated(false)
		if errors.Is(err, calltracking.ErrProviderNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "telephony_unavailable",
				Message: "Click-to-call is not configured",
			})
		}
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "call_failed",
			Message: "Could not initiate the call",
		})
	}

	h.metrics.RecordCallInitiated(true)
	return c.JSON(http.StatusOK, log)
}

// CallLogs returns the outbound call attempts recorded for a lead.
func (h *LeadHandler) CallLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.calls.ListByLead(ctx, c.Param("id"))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func actorEmail(c echo.Context) string {
	if email, ok := c.Get("user_email").(string); ok && email != "" {
		return email
	}
	return "system"
}

func splitStatus(status string) (kind, channel string) {
	if idx := strings.IndexByte(status, ':'); idx >= 0 {
		return status[:idx], status[idx+1:]
	}
	return status, ""
}
