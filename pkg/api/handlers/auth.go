package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/salonlink/backend/config"
	apierrors "github.com/salonlink/backend/pkg/api/errors"
	"github.com/salonlink/backend/pkg/auth"
	"github.com/salonlink/backend/pkg/metrics"
	"github.com/salonlink/backend/pkg/models"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	db        *sqlx.DB
	config    *config.Config
	blacklist *auth.TokenBlacklist
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *sqlx.DB, cfg *config.Config, blacklist *auth.TokenBlacklist, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		db:        db,
		config:    cfg,
		blacklist: blacklist,
		metrics:   m,
		validator: validator.New(),
	}
}

type loginRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// Login authenticates a staff account and issues a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
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

	var user loginRow
	query := h.db.Rebind(`SELECT id, name, email, phone, password_hash, role, is_active, created_at FROM users WHERE email = ?`)
	err := h.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.metrics.RecordLoginAttempt(false)
			return apierrors.UnauthorizedError(c, "Invalid email or password")
		}
		return apierrors.DatabaseError(c, err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.metrics.RecordLoginAttempt(false)
		return apierrors.UnauthorizedError(c, "Invalid email or password")
	}

	if !user.IsActive {
		h.metrics.RecordLoginAttempt(false)
		return apierrors.UnauthorizedError(c, "This account has been deactivated")
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	h.metrics.RecordLoginAttempt(true)

	return c.JSON(http.StatusOK, models.LoginResponse{
		Token: token,
		User: models.UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Phone:     user.Phone,
			Role:      user.Role,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		},
	})
}

// Logout revokes the current token until its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return apierrors.UnauthorizedError(c, "No active session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	expiration := time.Duration(h.config.JWTExpirationHours) * time.Hour
	if err := h.blacklist.Add(ctx, token, expiration); err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var user loginRow
	query := h.db.Rebind(`SELECT id, name, email, phone, password_hash, role, is_active, created_at FROM users WHERE id = ?`)
	if err := h.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierrors.UnauthorizedError(c, "Account not found")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}
