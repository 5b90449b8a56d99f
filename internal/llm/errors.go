package llm

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories the generation pipeline
// distinguishes. Callers match on the kind rather than on error strings or
// concrete upstream types.
type ErrorKind string

const (
	// KindValidation covers bad input: out-of-bounds source text length,
	// malformed requests, or sampling parameters outside their ranges.
	// Never retried.
	KindValidation ErrorKind = "validation"

	// KindAuthentication covers missing or rejected credentials (HTTP 401).
	// Fatal to the call, never retried.
	KindAuthentication ErrorKind = "authentication"

	// KindModelNotFound covers requests for an unknown model (HTTP 404).
	KindModelNotFound ErrorKind = "model_not_found"

	// KindRateLimit covers provider throttling (HTTP 429). Transient.
	KindRateLimit ErrorKind = "rate_limit"

	// KindQuotaExceeded covers exhausted billing quota (HTTP 402). Fatal.
	KindQuotaExceeded ErrorKind = "quota_exceeded"

	// KindContentFiltered covers provider-side policy rejection (HTTP 403).
	// Fatal, never retried.
	KindContentFiltered ErrorKind = "content_filtered"

	// KindUpstreamInternal covers provider 5xx failures. Transient.
	KindUpstreamInternal ErrorKind = "upstream_internal"

	// KindNetwork covers transport-level failures and unclassified statuses.
	// Transient.
	KindNetwork ErrorKind = "network"

	// KindTimeout covers a call exceeding its time budget. Terminal for the
	// attempt that raised it.
	KindTimeout ErrorKind = "timeout"

	// KindSchemaValidation covers a structured response that does not match
	// the requested schema. The orchestrator degrades to unstructured
	// extraction instead of failing the generation.
	KindSchemaValidation ErrorKind = "schema_validation"

	// KindPersistence covers failed record creation or update.
	KindPersistence ErrorKind = "persistence"
)

// Error is the structured error carried through the pipeline: a kind from the
// closed taxonomy, a human-readable message, and optionally the underlying
// cause. For schema-validation failures Raw holds the offending payload so
// the orchestrator can hand it to the extraction fallback without a second
// upstream call.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error

	// Raw is the unvalidated response content, set only for
	// KindSchemaValidation.
	Raw string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a pipeline error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the error kind from err, or KindNetwork if err is not a
// pipeline error (an unclassified failure is treated as transient transport
// trouble, matching the status-code taxonomy's "other" bucket).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether an error kind represents a transient failure the
// gateway may retry with backoff.
func Retryable(kind ErrorKind) bool {
	switch kind {
	case KindRateLimit, KindUpstreamInternal, KindNetwork:
		return true
	default:
		return false
	}
}
