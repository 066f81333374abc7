package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/printcraft/printcraft-backend/internal/users"
	"github.com/printcraft/printcraft-backend/pkg/auth"
	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/security"
)

type otpVerifier interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users    users.Repository
	OTP      otpVerifier
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

// Service handles account registration and token issuance.
type Service struct {
	users    users.Repository
	otp      otpVerifier
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:    params.Users,
		otp:      params.OTP,
		jwt:      params.JWT,
		password: params.Password,
		now:      now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) issueToken(user *models.User) (*TokenResult, error) {
	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	sanitized := *user
	sanitized.PasswordHash = ""
	return &TokenResult{AccessToken: token, User: sanitized}, nil
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*TokenResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, password, and name are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	return s.issueToken(user)
}

// Login verifies the password and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.issueToken(user)
}

// RequestOTP sends a one-time sign-in code. Unknown emails return success so
// the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestOTP(ctx context.Context, input RequestOTPInput) error {
	if s.otp == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "otp sign-in is not configured")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user == nil {
		return nil
	}
	return s.otp.Request(ctx, email)
}

// VerifyOTP exchanges a valid code for a bearer token.
func (s *Service) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*TokenResult, error) {
	if s.otp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "otp sign-in is not configured")
	}
	email := normalizeEmail(input.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid code")
	}

	if err := s.otp.Verify(ctx, email, input.Code); err != nil {
		return nil, err
	}
	return s.issueToken(user)
}
