package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxFieldLength is the maximum length for general string fields in logs
	MaxFieldLength = 2000
)

// SanitizePath sanitizes a URL path for safe logging: validates UTF-8,
// strips control characters, and truncates to MaxPathLength.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString sanitizes a general string for safe logging
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxFieldLength
	}

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

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}

	return s
}
