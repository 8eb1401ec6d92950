// Package redact provides utilities for redacting sensitive information from
// strings before they are persisted or returned in error responses. This
// prevents accidental leakage of credentials, connection strings, and provider
// tokens through task error messages.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
)

// Precompiled regex patterns
var (
	// High-entropy tokens: 20 or more characters drawn from the
	// alphanumeric/underscore/hyphen set. Catches API keys such as
	// sk-... style provider credentials.
	tokenRegex = regexp.MustCompile(`\b[A-Za-z0-9_-]{20,}\b`)

	// Connection strings with inline credentials
	connStringRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|amqp|amqps|sb)://[^@\s]+@`)

	// Key=value credential assignments (e.g. SharedAccessKey=...)
	credentialRegex = regexp.MustCompile(`(?i)(password|passwd|secret|sharedaccesskey|api[_-]?key|token)\s*[=:]\s*[^;,\s'"]{3,}`)

	// Ordering matters: credential assignments and connection strings are
	// replaced first so the generic token pattern does not split them.
	patterns = []*regexp.Regexp{connStringRegex, credentialRegex, tokenRegex}

	patternPlaceholders = map[*regexp.Regexp]string{
		connStringRegex: RedactedCredentialPlaceholder,
		credentialRegex: RedactedCredentialPlaceholder,
		tokenRegex:      RedactionPlaceholder,
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
