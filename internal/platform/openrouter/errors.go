package openrouter

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/flashgen/flashgen-api/internal/llm"
)

// classifyError maps a provider SDK failure onto the pipeline's closed error
// taxonomy. HTTP statuses classify per the gateway contract:
// 401 authentication, 400 validation, 404 model-not-found, 429 rate limit,
// 402 quota, 403 content filter, 5xx upstream internal, anything else
// network. Context expiry is a timeout.
func classifyError(err error) *llm.Error {
	var pipelineErr *llm.Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewError(llm.KindTimeout, "model call exceeded its time budget", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewError(kindForStatus(apiErr.HTTPStatusCode), apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return llm.NewError(kindForStatus(reqErr.HTTPStatusCode), "model request rejected", err)
		}
		return llm.NewError(llm.KindNetwork, "model request failed", err)
	}

	return llm.NewError(llm.KindNetwork, "model call failed", err)
}

func kindForStatus(status int) llm.ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return llm.KindAuthentication
	case status == http.StatusBadRequest:
		return llm.KindValidation
	case status == http.StatusNotFound:
		return llm.KindModelNotFound
	case status == http.StatusTooManyRequests:
		return llm.KindRateLimit
	case status == http.StatusPaymentRequired:
		return llm.KindQuotaExceeded
	case status == http.StatusForbidden:
		return llm.KindContentFiltered
	case status >= http.StatusInternalServerError:
		return llm.KindUpstreamInternal
	default:
		return llm.KindNetwork
	}
}
