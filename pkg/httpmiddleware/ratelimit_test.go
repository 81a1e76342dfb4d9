package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRateLimit_AllowsBurstThenRejects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 3, Window: time.Hour})(okHandler())

	for i := 0; i < 3; i++ {
		w := doRequest(h, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := doRequest(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, RateLimitConfig{Max: 1, Window: time.Hour})(okHandler())

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2").Code)
}

func TestRateLimit_RefillsOverTime(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Second})
	now := time.Now()

	_, allowed := rl.allow("k", now)
	require.True(t, allowed)
	_, allowed = rl.allow("k", now)
	require.True(t, allowed)
	_, allowed = rl.allow("k", now)
	require.False(t, allowed)

	// Half a window restores one token.
	_, allowed = rl.allow("k", now.Add(500*time.Millisecond))
	assert.True(t, allowed)
	_, allowed = rl.allow("k", now.Add(500*time.Millisecond))
	assert.False(t, allowed)
}

func TestRateLimit_EvictStale(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Second})
	now := time.Now()

	rl.allow("k", now)
	rl.evictStale(now.Add(3 * time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.buckets)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:9999"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.4")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
