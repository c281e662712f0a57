package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

var errUnauthenticated = apperrors.New(apperrors.CodeUnauthenticated, "missing or invalid credentials")

// requireAuth validates the bearer token and stashes the subject claim as
// the authenticated user id.
func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, errUnauthenticated)
				return
			}

			claims := jwt.RegisteredClaims{}
			parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				writeError(w, errUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userID returns the authenticated user id stored by requireAuth.
func userID(ctx context.Context) string {
	value, _ := ctx.Value(userIDKey).(string)
	return value
}
