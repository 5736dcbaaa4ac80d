package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const operatorClaimsKey contextKey = "operatorClaims"

// OperatorAudience is the audience operator tokens must carry.
const OperatorAudience = "survey-operator"

// OperatorJWT guards operator endpoints (session resets, booking history)
// with an HS256 token whose audience is OperatorAudience. An empty secret
// disables the endpoints entirely.
func OperatorJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "operator endpoints disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
				return []byte(secret), nil
			},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithAudience(OperatorAudience),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), operatorClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromContext returns the verified operator subject, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(operatorClaimsKey).(jwt.RegisteredClaims)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}
