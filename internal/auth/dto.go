package auth

import (
	"time"

	"github.com/emporium-dev/emporium/internal/users"
)

// LoginRequest captures the credentials posted to /login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Next     string `json:"next,omitempty"`
}

// RegisterRequest carries the storefront sign-up form.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=200"`
	Next     string `json:"next,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is posted to the reset link; email and token come from the path.
type ResetPasswordRequest struct {
	Email              string `json:"-"`
	Token              string `json:"-"`
	NewPassword        string `json:"new_password" validate:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required"`
}

// LoginResponse is returned after register and login. The access token is also
// set as the session cookie by the controller.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	CustomerID  *uint          `json:"customer_id,omitempty"`
	RedirectTo  string         `json:"redirect_to"`
	User        *users.UserDTO `json:"user"`
}
