package models

import "time"

// User roles. SUPER_ADMIN can additionally bulk-clear leads and manage
// other admin accounts.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleLeadCaller = "LEAD_CALLER"
	RoleFieldAgent = "FIELD_AGENT"
)

// LoginRequest is the credentials payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public shape of a user account
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest creates a staff account (lead caller or field agent).
// Password may be blank; the backend generates one and returns it once.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password"`
}

// CreatedUserResponse echoes the account plus the generated password, which
// is only ever returned from this one response.
type CreatedUserResponse struct {
	UserResponse
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}

// SetStatusRequest toggles an account or resource active flag
type SetStatusRequest struct {
	IsActive bool `json:"isActive"`
}

// ResetPasswordRequest sets a new password on a staff account
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
