package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/internal/users"
	pkgauth "github.com/printcraft/printcraft-backend/pkg/auth"
	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
)

type stubUsers struct {
	byEmail map[string]*models.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*models.User{}}
}

func (s *stubUsers) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.byEmail[email], nil
}

type stubOTP struct {
	requested []string
	valid     map[string]string
}

func (s *stubOTP) Request(ctx context.Context, email string) error {
	s.requested = append(s.requested, email)
	return nil
}

func (s *stubOTP) Verify(ctx context.Context, email, code string) error {
	if s.valid[email] == code {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid code")
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "printcraft-test", ExpirationMinutes: 30}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func newTestService(t *testing.T, repo users.Repository, otp otpVerifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:    repo,
		OTP:      otp,
		JWT:      testJWTConfig(),
		Password: testPasswordConfig(),
		Now:      func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newStubUsers()
	svc := newTestService(t, repo, nil)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "User@Example.com",
		Password: "correct horse battery",
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", registered.User.Role)
	}
	if registered.User.PasswordHash != "" {
		t.Fatal("password hash must not leak")
	}
	if repo.byEmail["user@example.com"] == nil {
		t.Fatal("email must be normalized to lower case")
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	if claims.UserID != registered.User.ID {
		t.Fatalf("token subject mismatch: %s != %s", claims.UserID, registered.User.ID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("token role mismatch: %s", claims.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUsers()
	svc := newTestService(t, repo, nil)

	input := RegisterInput{Email: "user@example.com", Password: "password123", Name: "Test"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newStubUsers()
	svc := newTestService(t, repo, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", Name: "Test",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "wrong"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUsers(), nil)
	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "password"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRequestOTPHidesUnknownEmails(t *testing.T) {
	repo := newStubUsers()
	otp := &stubOTP{valid: map[string]string{}}
	svc := newTestService(t, repo, otp)

	if err := svc.RequestOTP(context.Background(), RequestOTPInput{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(otp.requested) != 0 {
		t.Fatal("no code must be sent for unknown emails")
	}
}

func TestVerifyOTPIssuesToken(t *testing.T) {
	repo := newStubUsers()
	otp := &stubOTP{valid: map[string]string{"user@example.com": "123456"}}
	svc := newTestService(t, repo, otp)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", Name: "Test",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "user@example.com", Code: "123456"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected a token")
	}

	_, err = svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "user@example.com", Code: "999999"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad code, got %v", err)
	}
}
