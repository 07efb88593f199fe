package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRateLimiter_Refill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("5.6.7.8"), "buckets are per client")

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("1.2.3.4"))
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, time.Minute)
	t.Cleanup(limiter.Stop)
	limiter.now = func() time.Time { return now }

	limiter.Allow("1.2.3.4")
	now = now.Add(30 * time.Minute)
	limiter.Allow("5.6.7.8")

	now = now.Add(45 * time.Minute)
	limiter.cleanup()

	assert.NotContains(t, limiter.clients, "1.2.3.4")
	assert.Contains(t, limiter.clients, "5.6.7.8")
}

func TestRateLimiter_MiddlewareKeysOnRemoteIP(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := limiter.Middleware(ok)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000"))
	// Same host, different port
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000"))
}

func TestRateLimiter_StopEndsCleanupGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiter(1, time.Minute)
	limiter.Stop()
	limiter.Stop() // idempotent
}
