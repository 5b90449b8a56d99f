package api

import (
	"errors"
	"net/http"

	"github.com/flashgen/flashgen-api/internal/llm"
	"github.com/flashgen/flashgen-api/internal/service/auth"
	"github.com/flashgen/flashgen-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error kind. This prevents leaking internal error types or
// messages to clients. The contract is deliberately coarse: bad input is 400,
// bad credentials are 401, everything else is 500.
func MapErrorToStatusCode(err error) int {
	switch {
	// Input errors
	case llm.IsKind(err, llm.KindValidation):
		return http.StatusBadRequest

	// Credential errors, ours or the upstream provider's
	case llm.IsKind(err, llm.KindAuthentication),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrGenerationNotFound):
		return http.StatusNotFound

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error kind. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch llm.KindOf(err) {
	case llm.KindValidation:
		// Length-bound messages are written for users; pass them through.
		var pipelineErr *llm.Error
		if errors.As(err, &pipelineErr) {
			return pipelineErr.Message
		}
		return "Invalid request"

	case llm.KindAuthentication:
		return "Model provider rejected the configured credentials"

	case llm.KindTimeout:
		return "Flashcard generation timed out"

	case llm.KindRateLimit:
		return "Model provider is rate limiting requests"

	case llm.KindQuotaExceeded:
		return "Model provider quota exhausted"

	case llm.KindContentFiltered:
		return "Source text was rejected by the model provider's content filter"

	case llm.KindPersistence:
		return "Failed to record the generation"

	default:
		return "Flashcard generation failed"
	}
}
