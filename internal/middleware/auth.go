package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenIssuer is the issuer claim on dashboard tokens
const TokenIssuer = "lifeos"

// Auth creates authentication middleware that validates bearer tokens.
// The dashboard is single-user; tokens are HS256-signed with a shared
// secret rather than tied to user records.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse([]byte(parts[1]),
				jwt.WithKey(jwa.HS256, secret),
				jwt.WithValidate(true),
			)
			if err != nil {
				log.Printf("Token verification failed: %v", err)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if token.Issuer() != TokenIssuer {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IssueToken signs a fresh bearer token with the shared secret
func IssueToken(secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(TokenIssuer).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
