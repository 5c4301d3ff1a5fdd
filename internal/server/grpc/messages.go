package grpc

import "github.com/dmitrijs2005/energyaudit/internal/server/models"

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	User      models.UserSummary `json:"user"`
	Token     string             `json:"token"`
	SessionID string             `json:"session_id"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type Empty struct{}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type RefreshSessionResponse struct {
	Token string `json:"token"`
}

type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

type SignUpResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type VerifyEmailResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
