// Package llm defines the contract between the generation pipeline and the
// model provider: request/response types, the closed error taxonomy, and the
// Client interface implemented under internal/platform. The interface keeps
// the application core independent of any concrete provider SDK.
package llm

import (
	"context"

	"github.com/flashgen/flashgen-api/internal/llm/schema"
)

// Message roles for the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a chat-completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params holds the sampling parameters attached to a completion call.
// Zero values mean "use the gateway default". Bounds are enforced by the
// gateway before any network activity: temperature in [0,2], top_p in [0,1],
// max_tokens >= 1.
type Params struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	TopP             *float32 `json:"top_p,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32 `json:"presence_penalty,omitempty"`
}

// Request is a single completion call. Model and SystemMessage override the
// gateway defaults when non-empty. ResponseFormat, when set, instructs the
// model to emit JSON conforming to the wrapped schema; with Strict enabled
// the gateway validates the payload and fails with KindSchemaValidation on
// mismatch. SkipCache bypasses the response cache for this call only.
type Request struct {
	Model          string
	SystemMessage  string
	Messages       []Message
	Params         Params
	ResponseFormat *schema.ResponseFormat
	SkipCache      bool
}

// Usage reports upstream token accounting for a completed call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the normalized reply to a completion call.
type Response struct {
	// Model is the identifier the provider actually served the call with.
	Model string

	// Content is the raw text of the first choice.
	Content string

	// FinishReason is the provider's stop reason for the first choice.
	FinishReason string

	// Usage is token accounting, zero-valued when the provider omits it or
	// the response was served from cache.
	Usage Usage

	// FromCache marks responses served from the gateway's response cache.
	FromCache bool
}

// StreamChunk is one incremental fragment of a streamed completion.
type StreamChunk struct {
	// Content is the text delta carried by this fragment, possibly empty.
	Content string

	// Err is set on the final chunk when the stream terminated abnormally.
	Err error
}

// Client is the Model Gateway contract. Implementations normalize provider
// requests and responses, enforce timeouts, classify failures into the
// ErrorKind taxonomy, and retry transient failures with backoff.
type Client interface {
	// Complete performs a single chat completion and returns the normalized
	// response. Transient upstream failures are retried internally; all other
	// failures surface as *Error values.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream performs a chat completion with incremental delivery. No schema
	// validation is applied mid-stream. The returned channel is closed when
	// the stream ends; an abnormal end is reported on the final chunk.
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)
}
