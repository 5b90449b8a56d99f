// Package openrouter implements the llm.Client gateway against an
// OpenRouter-compatible chat-completions API. It wraps the provider SDK with
// parameter validation, per-call timeouts, status-code error classification,
// exponential-backoff retries for transient failures, an optional response
// cache, and strict-mode schema enforcement of structured replies.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/flashgen/flashgen-api/internal/config"
	"github.com/flashgen/flashgen-api/internal/llm"
	"github.com/flashgen/flashgen-api/internal/llm/schema"
)

// DefaultSystemMessage is attached when a request carries none.
const DefaultSystemMessage = "You are a helpful assistant that creates educational content."

// Client is the Model Gateway. Construct it once per process with New.
type Client struct {
	logger *slog.Logger
	api    *openai.Client

	model         string
	systemMessage string
	timeout       time.Duration
	maxRetries    int

	// cache is nil when response caching is disabled.
	cache *ResponseCache
}

// Ensure Client implements the gateway contract.
var _ llm.Client = (*Client)(nil)

// New creates a gateway client from configuration. The cache is an explicit
// dependency; pass nil to disable response caching.
func New(cfg config.LLMConfig, cache *ResponseCache, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, llm.NewError(llm.KindValidation, "API key cannot be empty", nil)
	}
	if cfg.BaseURL == "" {
		return nil, llm.NewError(llm.KindValidation, "base URL cannot be empty", nil)
	}
	if cfg.Model == "" {
		return nil, llm.NewError(llm.KindValidation, "default model cannot be empty", nil)
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = cfg.BaseURL

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		logger:        logger.With(slog.String("component", "model_gateway")),
		api:           openai.NewClientWithConfig(apiConfig),
		model:         cfg.Model,
		systemMessage: DefaultSystemMessage,
		timeout:       timeout,
		maxRetries:    cfg.MaxRetries,
		cache:         cache,
	}, nil
}

// Complete performs a chat completion. See llm.Client for the contract.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model, systemMessage := c.resolve(req)

	if err := validateParams(req.Params); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, llm.NewError(llm.KindValidation, "messages cannot be empty", nil)
	}

	var key string
	if c.cache != nil && !req.SkipCache {
		key = cacheKey(model, systemMessage, req.Messages, req.Params, req.ResponseFormat)
		if key != "" {
			if cached := c.cache.Get(key); cached != nil {
				c.logger.DebugContext(ctx, "serving completion from cache", "model", model)
				return cached, nil
			}
		}
	}

	apiReq := c.buildRequest(model, systemMessage, req)

	// The per-call timeout covers the whole interaction, retries included.
	// A caller with a tighter deadline (the orchestrator's generation
	// budget) wins automatically.
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := retryWithBackoff(callCtx, c.logger, c.maxRetries, func(ctx context.Context) (*llm.Response, error) {
		apiResp, err := c.api.CreateChatCompletion(ctx, apiReq)
		if err != nil {
			return nil, err
		}
		if len(apiResp.Choices) == 0 {
			return nil, llm.NewError(llm.KindUpstreamInternal, "response contained no choices", nil)
		}

		choice := apiResp.Choices[0]
		return &llm.Response{
			Model:        apiResp.Model,
			Content:      choice.Message.Content,
			FinishReason: string(choice.FinishReason),
			Usage: llm.Usage{
				PromptTokens:     apiResp.Usage.PromptTokens,
				CompletionTokens: apiResp.Usage.CompletionTokens,
				TotalTokens:      apiResp.Usage.TotalTokens,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if req.ResponseFormat != nil && req.ResponseFormat.Strict {
		if err := validateStructured(resp.Content, req.ResponseFormat); err != nil {
			return nil, err
		}
	}

	if c.cache != nil && !req.SkipCache && key != "" {
		c.cache.Put(key, resp)
	}

	return resp, nil
}

// Stream performs a chat completion with incremental delivery. No schema
// validation is applied mid-stream; structured callers use Complete.
func (c *Client) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamChunk, error) {
	model, systemMessage := c.resolve(req)

	if err := validateParams(req.Params); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, llm.NewError(llm.KindValidation, "messages cannot be empty", nil)
	}

	apiReq := c.buildRequest(model, systemMessage, req)
	apiReq.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		return nil, classifyError(err)
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		defer func() {
			if err := stream.Close(); err != nil {
				c.logger.WarnContext(ctx, "failed to close completion stream", "error", err)
			}
		}()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case out <- llm.StreamChunk{Err: classifyError(err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			select {
			case out <- llm.StreamChunk{Content: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// resolve applies the gateway defaults to a request.
func (c *Client) resolve(req llm.Request) (model, systemMessage string) {
	model = req.Model
	if model == "" {
		model = c.model
	}
	systemMessage = req.SystemMessage
	if systemMessage == "" {
		systemMessage = c.systemMessage
	}
	return model, systemMessage
}

// buildRequest translates a resolved gateway request into the provider's
// wire format, the system message first.
func (c *Client) buildRequest(model, systemMessage string, req llm.Request) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemMessage,
	})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	if req.Params.Temperature != nil {
		apiReq.Temperature = *req.Params.Temperature
	}
	if req.Params.TopP != nil {
		apiReq.TopP = *req.Params.TopP
	}
	if req.Params.MaxTokens > 0 {
		apiReq.MaxTokens = req.Params.MaxTokens
	}
	if req.Params.FrequencyPenalty != nil {
		apiReq.FrequencyPenalty = *req.Params.FrequencyPenalty
	}
	if req.Params.PresencePenalty != nil {
		apiReq.PresencePenalty = *req.Params.PresencePenalty
	}

	if req.ResponseFormat != nil {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.ResponseFormat.Name,
				Schema: req.ResponseFormat.Schema,
				Strict: req.ResponseFormat.Strict,
			},
		}
	}

	return apiReq
}

// validateParams enforces the sampling parameter bounds before any network
// activity: temperature in [0,2], top_p in [0,1], max_tokens >= 1 when set.
func validateParams(p llm.Params) error {
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return llm.NewError(llm.KindValidation,
			fmt.Sprintf("temperature %v outside [0,2]", *p.Temperature), nil)
	}
	if p.TopP != nil && (*p.TopP < 0 || *p.TopP > 1) {
		return llm.NewError(llm.KindValidation,
			fmt.Sprintf("top_p %v outside [0,1]", *p.TopP), nil)
	}
	if p.MaxTokens < 0 {
		return llm.NewError(llm.KindValidation,
			fmt.Sprintf("max_tokens %d must be at least 1", p.MaxTokens), nil)
	}
	return nil
}

// validateStructured checks a strict-mode structured reply against its
// schema. The raw payload rides along on the error so the caller can degrade
// to unstructured extraction without another upstream call.
func validateStructured(content string, format *schema.ResponseFormat) error {
	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return &llm.Error{
			Kind:    llm.KindSchemaValidation,
			Message: fmt.Sprintf("structured response is not valid JSON for schema %q", format.Name),
			Cause:   err,
			Raw:     content,
		}
	}

	if err := schema.Validate(value, format.Schema); err != nil {
		return &llm.Error{
			Kind:    llm.KindSchemaValidation,
			Message: fmt.Sprintf("structured response does not match schema %q", format.Name),
			Cause:   err,
			Raw:     content,
		}
	}

	return nil
}
