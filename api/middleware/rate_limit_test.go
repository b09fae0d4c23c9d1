package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int64)}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	count := f.counts[scope]
	return count <= limit, count, nil
}

func authedRequest(userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", nil)
	return req.WithContext(WithIdentity(req.Context(), Identity{UserID: userID}))
}

func TestUserRateLimitBlocksOverLimit(t *testing.T) {
	limiter := newFakeLimiter()
	handler := UserRateLimit(NewRateLimitPolicy("payment_intent", time.Minute, 2), limiter, nil)(okHandler())
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(userID))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(userID))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, authedRequest(uuid.New()))
	if other.Code != http.StatusOK {
		t.Fatalf("limits are per user, expected 200 got %d", other.Code)
	}
}

func TestUserRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	limiter := newFakeLimiter()
	handler := UserRateLimit(NewRateLimitPolicy("payment_intent", time.Minute, 0), limiter, nil)(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(uuid.New()))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	}
	if len(limiter.counts) != 0 {
		t.Fatalf("disabled policy should not touch the limiter")
	}
}

func TestUserRateLimitSurfacesStoreFailure(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = errors.New("redis down")
	handler := UserRateLimit(NewRateLimitPolicy("payment_intent", time.Minute, 5), limiter, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(uuid.New()))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
