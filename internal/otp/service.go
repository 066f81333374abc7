package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/printcraft/printcraft-backend/internal/mailer"
	"github.com/printcraft/printcraft-backend/pkg/config"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/redis"
	"github.com/printcraft/printcraft-backend/pkg/security"
)

const loginScope = "login"

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPKey(scope, id string) string
}

// ServiceParams groups dependencies for the OTP service.
type ServiceParams struct {
	Store  store
	Mailer mailer.Mailer
	Config config.OTPConfig
}

// Service issues and checks one-time login codes backed by Redis.
type Service struct {
	store  store
	mailer mailer.Mailer
	cfg    config.OTPConfig
}

// NewService builds an OTP service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, errors.New("store is required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer is required")
	}
	cfg := params.Config
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	return &Service{store: params.Store, mailer: params.Mailer, cfg: cfg}, nil
}

func (s *Service) attemptsKey(email string) string {
	return s.store.OTPKey(loginScope, email) + ":attempts"
}

// Request generates a fresh code for the email and delivers it. A new request
// replaces any outstanding code and resets the attempt counter.
func (s *Service) Request(ctx context.Context, email string) error {
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	code, err := security.GenerateOTPCode(s.cfg.Digits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating code")
	}

	key := s.store.OTPKey(loginScope, email)
	if err := s.store.Set(ctx, key, code, s.cfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing code")
	}
	if err := s.store.Del(ctx, s.attemptsKey(email)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resetting attempts")
	}

	subject := "Your one-time sign-in code"
	body := fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes()))
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delivering code")
	}
	return nil
}

// Verify checks the submitted code. The code is single-use and the attempt
// counter caps brute-force guesses for its lifetime.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and code required")
	}

	attempts, err := s.store.IncrWithTTL(ctx, s.attemptsKey(email), s.cfg.TTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting attempts")
	}
	if attempts > int64(s.cfg.MaxAttempts) {
		key := s.store.OTPKey(loginScope, email)
		_ = s.store.Del(ctx, key)
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, request a new code")
	}

	key := s.store.OTPKey(loginScope, email)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "code expired or was never requested")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid code")
	}

	if err := s.store.Del(ctx, key, s.attemptsKey(email)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consuming code")
	}
	return nil
}
