package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "keys are independent")

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "window slides")
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send(""))
	assert.Equal(t, http.StatusTooManyRequests, send(""))
	assert.Equal(t, http.StatusNoContent, send("203.0.113.9, 10.0.0.1"))
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	l := NewIPRateLimiter(0, time.Minute)
	for range 10 {
		assert.True(t, l.Allow("k"))
	}
}
