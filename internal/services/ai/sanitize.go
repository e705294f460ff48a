package ai

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestIDContextKey returns the context key for request ID
func RequestIDContextKey() contextKey {
	return requestIDContextKey
}

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// MaxDebugContentLength caps full-log previews
	MaxDebugContentLength = 10000
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a safe preview of a prompt for logging.
// Even in fullLog mode the content is sanitized to prevent log injection.
func SanitizePrompt(prompt string, fullLog bool) string {
	if prompt == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugContentLength
	}
	return sanitizeStringForLogging(prompt, maxLen)
}

// SanitizeResponse creates a safe preview of a response for logging
func SanitizeResponse(response string, fullLog bool) string {
	return SanitizePrompt(response, fullLog)
}

// sanitizeStringForLogging removes control characters, validates UTF-8, and truncates
func sanitizeStringForLogging(s string, maxLen int) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// ExtractRequestID extracts a request ID from context if available
func ExtractRequestID(ctx context.Context) string {
	if reqID := ctx.Value(requestIDContextKey); reqID != nil {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}
