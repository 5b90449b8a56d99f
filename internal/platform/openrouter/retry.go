package openrouter

import (
	"context"
	"log/slog"
	"time"

	"github.com/flashgen/flashgen-api/internal/llm"
)

// Retry policy for transient upstream failures: exponential backoff starting
// at one second, doubling per attempt, capped at ten seconds.
const (
	retryInitialDelay = 1000 * time.Millisecond
	retryMultiplier   = 2
	retryMaxDelay     = 10000 * time.Millisecond
)

// backoffDelay returns the sleep before retry number retryNum (1-based).
func backoffDelay(retryNum int) time.Duration {
	delay := retryInitialDelay
	for i := 1; i < retryNum; i++ {
		delay *= retryMultiplier
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}

// retryWithBackoff runs call until it succeeds, fails terminally, or the
// retry budget is spent. Only transient kinds (network, 5xx, rate limit) are
// retried; authentication, validation and content-filter failures surface
// immediately. The backoff sleep aborts as soon as ctx is done so a timed-out
// caller never waits out a delay.
func retryWithBackoff(
	ctx context.Context,
	log *slog.Logger,
	maxRetries int,
	call func(ctx context.Context) (*llm.Response, error),
) (*llm.Response, error) {
	var lastErr *llm.Error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = classifyError(err)
		if !llm.Retryable(lastErr.Kind) {
			return nil, lastErr
		}

		if attempt == maxRetries {
			break
		}

		delay := backoffDelay(attempt + 1)
		log.WarnContext(ctx, "transient model call failure, retrying",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error_kind", string(lastErr.Kind),
			"delay_ms", delay.Milliseconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, llm.NewError(llm.KindTimeout, "model call cancelled during retry delay", ctx.Err())
		}
	}

	log.WarnContext(ctx, "retry budget exhausted",
		"max_retries", maxRetries,
		"error_kind", string(lastErr.Kind))
	return nil, lastErr
}
