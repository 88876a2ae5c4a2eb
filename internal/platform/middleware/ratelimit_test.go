package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestTokenBucket_AllowsWithinBurst(t *testing.T) {
	b := newTokenBucket(10, 5)

	for i := 0; i < 5; i++ {
		if !b.allow() {
			t.Errorf("expected request %d within burst to be allowed", i+1)
		}
	}
}

func TestTokenBucket_RejectsBeyondBurst(t *testing.T) {
	// Near-zero refill so the bucket cannot recover during the test.
	b := newTokenBucket(0.001, 2)

	if !b.allow() || !b.allow() {
		t.Fatal("expected first two requests to be allowed")
	}
	if b.allow() {
		t.Error("expected third request to be rejected")
	}
}

func TestTokenBucket_RetryAfter(t *testing.T) {
	b := newTokenBucket(1, 1)
	b.allow()

	ra := b.retryAfter()
	if ra < 1 {
		t.Errorf("expected retry-after of at least 1 second, got %d", ra)
	}
}

func TestRateLimit_AllowsAndSetsHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	h := mw(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected X-RateLimit-Limit 100, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_RejectsWhenExhausted(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	h := mw(handler)

	// First request consumes the only token.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error on first request: %v", err)
	}

	// Second request from the same IP is rejected.
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req2.RemoteAddr = "10.0.0.1:1234"
	rec2 := httptest.NewRecorder()
	err := h(e.NewContext(req2, rec2))
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on rejection")
	}
}

func TestRateLimit_SeparateKeysPerIP(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	h := mw(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if err := h(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different IP has its own bucket.
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	if err := h(e.NewContext(req2, httptest.NewRecorder())); err != nil {
		t.Fatalf("expected second IP to be allowed, got %v", err)
	}
}
