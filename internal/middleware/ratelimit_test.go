package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/metrics"
)

// stubLimiter returns canned results and records the keys it saw.
type stubLimiter struct {
	result *cache.RateLimitResult
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (*cache.RateLimitResult, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func newRateLimitHandler(cfg RateLimitConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return RateLimitIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
}

func TestRateLimitIP_BurstExhausted(t *testing.T) {
	rec := metrics.NewInMemory()
	handler := newRateLimitHandler(RateLimitConfig{
		Limiter:  cache.NewLocalLimiter(1, 2),
		Recorder: rec,
		Enabled:  true,
	})

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/user/register", nil)
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", codes[2])
	}
	if got := last.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(last.Body.String(), `"code":"RATE_LIMIT_EXCEEDED"`) {
		t.Errorf("unexpected body: %s", last.Body.String())
	}
	if got := last.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if rec.Snapshot().RateLimited != 1 {
		t.Errorf("RateLimited = %d, want 1", rec.Snapshot().RateLimited)
	}
}

func TestRateLimitIP_KeysByClientIP(t *testing.T) {
	stub := &stubLimiter{result: &cache.RateLimitResult{Allowed: true, Limit: 5, Remaining: 4}}
	handler := newRateLimitHandler(RateLimitConfig{Limiter: stub, Enabled: true})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "198.51.100.23:51234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(stub.keys) != 1 || stub.keys[0] != "198.51.100.23" {
		t.Errorf("limiter keys = %v, want [198.51.100.23]", stub.keys)
	}
}

func TestRateLimitIP_FailsOpen(t *testing.T) {
	stub := &stubLimiter{
		result: &cache.RateLimitResult{Allowed: true},
		err:    errors.New("redis: connection refused"),
	}
	handler := newRateLimitHandler(RateLimitConfig{Limiter: stub, Enabled: true})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestRateLimitIP_Disabled(t *testing.T) {
	stub := &stubLimiter{result: &cache.RateLimitResult{Allowed: false}}
	handler := newRateLimitHandler(RateLimitConfig{Limiter: stub, Enabled: false})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if len(stub.keys) != 0 {
		t.Error("limiter should not be consulted when disabled")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{10 * time.Second, 10},
	}

	for _, tt := range tests {
		if got := retryAfterSeconds(tt.in); got != tt.want {
			t.Errorf("retryAfterSeconds(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
