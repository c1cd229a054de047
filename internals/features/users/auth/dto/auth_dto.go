package dto

import (
	"strings"
	"time"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChangePasswordRequest is the body of PATCH /api/users/:userId/password.
// Presence and equality are checked by the password service so that each
// failure keeps its own error kind.
type ChangePasswordRequest struct {
	OldPassword             string `json:"oldPassword"`
	NewPassword             string `json:"newPassword"`
	NewPasswordConfirmation string `json:"newPasswordConfirmation"`
}
