package otp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/printcraft/printcraft-backend/internal/mailer"
	"github.com/printcraft/printcraft-backend/pkg/config"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/redis"
)

type fakeStore struct {
	values   map[string]string
	counters map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return value, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.counters, key)
	}
	return nil
}

func (f *fakeStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeStore) OTPKey(scope, id string) string {
	return "pc:otp:" + scope + ":" + id
}

func newTestService(t *testing.T, store *fakeStore, recorder *mailer.Recorder) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:  store,
		Mailer: recorder,
		Config: config.OTPConfig{TTL: 10 * time.Minute, MaxAttempts: 3, Digits: 6},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func storedCode(t *testing.T, store *fakeStore, email string) string {
	t.Helper()
	code, ok := store.values[store.OTPKey(loginScope, email)]
	if !ok {
		t.Fatal("no code stored")
	}
	return code
}

func TestRequestStoresAndMailsCode(t *testing.T) {
	store := newFakeStore()
	recorder := &mailer.Recorder{}
	svc := newTestService(t, store, recorder)

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code := storedCode(t, store, "user@example.com")
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	messages := recorder.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one mail, got %d", len(messages))
	}
	if messages[0].To != "user@example.com" {
		t.Fatalf("wrong recipient: %s", messages[0].To)
	}
	if !strings.Contains(messages[0].Body, code) {
		t.Fatal("mail body must carry the code")
	}
}

func TestVerifyConsumesCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &mailer.Recorder{})

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	code := storedCode(t, store, "user@example.com")

	if err := svc.Verify(context.Background(), "user@example.com", code); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	err := svc.Verify(context.Background(), "user@example.com", code)
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reuse, got %v", err)
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &mailer.Recorder{})

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	err := svc.Verify(context.Background(), "user@example.com", "000000")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyCapsAttempts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &mailer.Recorder{})

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	code := storedCode(t, store, "user@example.com")

	for i := 0; i < 3; i++ {
		_ = svc.Verify(context.Background(), "user@example.com", "999999")
	}

	err := svc.Verify(context.Background(), "user@example.com", code)
	if pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit after max attempts, got %v", err)
	}

	err = svc.Verify(context.Background(), "user@example.com", code)
	if pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("code must stay burned after lockout, got %v", err)
	}
}

func TestRequestResetsAttempts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &mailer.Recorder{})

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		_ = svc.Verify(context.Background(), "user@example.com", "999999")
	}

	if err := svc.Request(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	code := storedCode(t, store, "user@example.com")
	if err := svc.Verify(context.Background(), "user@example.com", code); err != nil {
		t.Fatalf("verify after fresh request failed: %v", err)
	}
}
