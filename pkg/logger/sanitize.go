package logger

import (
	"log/slog"
	"strings"
)

// MaskIdentifier masks a login name for logging (e.g., "c*****1"). Short
// identifiers are masked entirely.
func MaskIdentifier(identifier string) string {
	if identifier == "" {
		return "[empty]"
	}
	if len(identifier) <= 2 {
		return strings.Repeat("*", len(identifier))
	}
	return string(identifier[0]) + strings.Repeat("*", len(identifier)-2) + string(identifier[len(identifier)-1])
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"answer",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
