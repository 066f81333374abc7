package auth

import "github.com/printcraft/printcraft-backend/pkg/db/models"

// RegisterInput creates a customer account.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     string  `json:"name" validate:"required,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// LoginInput authenticates with email and password.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RequestOTPInput asks for a one-time sign-in code.
type RequestOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPInput exchanges a one-time code for a token.
type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// TokenResult is the authenticated session handed back to clients.
type TokenResult struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}
