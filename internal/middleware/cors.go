package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORSFromEnv creates CORS middleware from the FRONTEND_URL environment
// value (comma-separated origins). localhost:3000 is always allowed for
// development.
func CORSFromEnv(frontendURL string) func(http.Handler) http.Handler {
	origins := []string{"http://localhost:3000"}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		exists := false
		for _, existing := range origins {
			if existing == trimmed {
				exists = true
				break
			}
		}
		if !exists {
			origins = append(origins, trimmed)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}
