package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/customers"
)

// CustomerHandler handles customer lookup endpoints. Customers are
// created and edited through the lead endpoints; this surface is
// read-only.
type CustomerHandler struct {
	customers *customers.Service
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerSvc *customers.Service) *CustomerHandler {
	return &CustomerHandler{customers: customerSvc}
}

// Get returns a customer by id.
func (h *CustomerHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customer, err := h.customers.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			return apierrors.NotFoundError(c, "Customer")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Search finds customers by name or phone fragment.
func (h *CustomerHandler) Search(c echo.Context) error {
	term := c.QueryParam("search")
	if term == "" {
		return apierrors.FieldValidationError(c, "search", "search term is required")
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			return apierrors.FieldValidationError(c, "limit", "must be between 1 and 200")
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.customers.Search(ctx, term, limit)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
