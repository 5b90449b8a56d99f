// Package redact scrubs sensitive material from strings before they are
// persisted in error logs or returned in error responses: connection strings,
// API keys, bearer tokens, passwords, and filesystem paths. Upstream provider
// errors and database failures routinely embed these.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// Database connection strings with inline credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`)

	// password=..., pwd: ... and friends.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?|['"]?[=:])[^'"&\s]{3,}`)

	// api_key=..., token: ..., secret=... values.
	apiKeyRegex = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Standard three-part base64url JWT.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Absolute filesystem paths.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	{dbConnRegex, RedactedCredentialPlaceholder},
	{passwordRegex, RedactedCredentialPlaceholder},
	{jwtRegex, RedactedKeyPlaceholder},
	{apiKeyRegex, RedactedKeyPlaceholder},
	{unixPathRegex, RedactedPathPlaceholder},
}

// String replaces every sensitive fragment in input with its placeholder.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's Error() output. Nil yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
