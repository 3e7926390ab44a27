package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/products"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	products  *products.Service
	validator *validator.Validate
}

// NewProductHandler creates a new product handler
func NewProductHandler(productSvc *products.Service) *ProductHandler {
	return &ProductHandler{
		products:  productSvc,
		validator: validator.New(),
	}
}

type createProductRequest struct {
	Title   string            `json:"title" validate:"required"`
	Options []products.Option `json:"options"`
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
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

	product, err := h.products.Create(ctx, req.Title, req.Options)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// Get returns a product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	product, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return apierrors.NotFoundError(c, "Product")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// List returns the product catalog, optionally filtered by a title
// search term and capped by limit.
func (h *ProductHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apierrors.FieldValidationError(c, "limit", "must be a positive integer")
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.products.List(ctx, c.QueryParam("search"), limit)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return apierrors.NotFoundError(c, "Product")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.DeletedResponse{Deleted: 1})
}
