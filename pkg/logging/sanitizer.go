package logging

import "regexp"

const (
	// MaxQueryLogLength caps logged SPARQL queries; full queries are noisy
	// and repetitive.
	MaxQueryLogLength = 160
	// RedactedText replaces credential material in logged URLs.
	RedactedText = "[REDACTED]"
)

// user:pass@host embedded in a URL.
var credentialPattern = regexp.MustCompile(`://[^/:@\s]+:[^@\s]+@`)

// TruncateQuery shortens a query string for logging.
func TruncateQuery(query string) string {
	if len(query) <= MaxQueryLogLength {
		return query
	}
	return query[:MaxQueryLogLength] + "..."
}

// SanitizeURL removes embedded credentials from a URL before logging.
func SanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	return credentialPattern.ReplaceAllString(raw, "://"+RedactedText+"@")
}
