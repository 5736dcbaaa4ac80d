package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("a") {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.Allow("b") {
		t.Fatalf("expected other client to have its own bucket")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/abc", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected disabled limiter to pass request %d", i)
		}
	}
}
