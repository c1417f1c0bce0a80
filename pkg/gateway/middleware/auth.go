package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// TokenSource supplies the current access token. Implemented by the
// gateway so config hot reloads take effect without restarting.
type TokenSource interface {
	AccessToken() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

// AccessToken implements TokenSource.
func (f TokenSourceFunc) AccessToken() string { return f() }

// Auth enforces the gateway access token. The token is accepted either
// as "Authorization: Bearer <token>" or as an access_token query
// parameter. An empty configured token disables the check entirely.
func Auth(source TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := source.AccessToken()
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := bearerToken(r)
			if got == "" {
				got = r.URL.Query().Get("access_token")
			}

			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid access token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
