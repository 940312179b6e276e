package ratelim

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func hit(h httprouter.Handle, remote, fwd string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-code", nil)
	req.RemoteAddr = remote
	if fwd != "" {
		req.Header.Set("X-Forwarded-For", fwd)
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec.Code
}

func TestLimitPerClient(t *testing.T) {
	h := NewRateLimiter(0.001, 2).Limit(ok)

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1111", ""))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:2222", ""), "port is ignored")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:3333", ""))

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1111", ""))
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	h := NewRateLimiter(0.001, 1).Limit(ok)

	allowed := 0
	for i := 0; i < 50; i++ {
		if hit(h, "198.51.100.4:4000", fmt.Sprintf("203.0.113.%d", i)) == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestForwardedForBehindTrustedProxy(t *testing.T) {
	h := NewRateLimiter(0.001, 1, "10.0.0.0/8", "not-an-ip").Limit(ok)

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1111", "203.0.113.9"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1111", "203.0.113.9"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1111", "203.0.113.10"))
	// spoofed leftmost entries do not change the key
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1111", "1.2.3.4, 203.0.113.9"))
}

func TestClientIP(t *testing.T) {
	rl := NewRateLimiter(1, 1, "10.0.0.1", "10.1.0.0/16")
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.7:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	assert.Equal(t, "192.0.2.7", rl.clientIP(req))

	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.1.2.3")
	assert.Equal(t, "203.0.113.1", rl.clientIP(req))

	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	assert.Equal(t, "10.0.0.1", rl.clientIP(req), "all hops trusted")

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.1", rl.clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", rl.clientIP(req))
}
