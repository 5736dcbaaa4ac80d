package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func serveOperator(t *testing.T, secret, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var subject string
	mw := OperatorJWT(secret)
	req := httptest.NewRequest(http.MethodDelete, "/api/chat/abc", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = OperatorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, subject
}

func TestOperatorJWTRejects(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
	}{
		{"disabled", "", "Bearer " + operatorToken(t, "secret", OperatorAudience, time.Minute)},
		{"missing header", "secret", ""},
		{"not bearer", "secret", "Basic abc"},
		{"wrong secret", "secret", "Bearer " + operatorToken(t, "other", OperatorAudience, time.Minute)},
		{"wrong audience", "secret", "Bearer " + operatorToken(t, "secret", "someone-else", time.Minute)},
		{"expired", "secret", "Bearer " + operatorToken(t, "secret", OperatorAudience, -time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serveOperator(t, tt.secret, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
			}
		})
	}
}

func TestOperatorJWTAccepts(t *testing.T) {
	rec, subject := serveOperator(t, "secret", "Bearer "+operatorToken(t, "secret", OperatorAudience, time.Minute))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if subject != "ops@example.com" {
		t.Fatalf("expected operator subject in context, got %q", subject)
	}
}

func operatorToken(t *testing.T, secret, audience string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "ops@example.com",
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
