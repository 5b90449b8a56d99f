// Package generation contains the pipeline entry point that turns a user's
// source text into validated flashcard proposals: it gates input, persists
// the generation record, drives the model gateway under a hard time budget,
// extracts proposals from the reply, and logs every failure before
// propagating it.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/extraction"
	"github.com/flashgen/flashgen-api/internal/llm"
	"github.com/flashgen/flashgen-api/internal/llm/schema"
	"github.com/flashgen/flashgen-api/internal/platform/logger"
	"github.com/flashgen/flashgen-api/internal/redact"
	"github.com/flashgen/flashgen-api/internal/store"
)

// DefaultBudget is the orchestrator's hard budget for the whole AI
// interaction, retries included. It is distinct from the gateway's own
// per-call timeout and authoritative over it.
const DefaultBudget = 40 * time.Second

// Result is what a successful generation returns to the caller: the
// persisted record's ID and the transient proposals. Persisting accepted
// proposals is the caller's responsibility.
type Result struct {
	GenerationID int64
	Proposals    []domain.CardProposal
}

// Service orchestrates the generation pipeline.
type Service struct {
	logger      *slog.Logger
	gateway     llm.Client
	generations store.GenerationStore
	errorLogs   store.GenerationErrorLogStore

	model  string
	budget time.Duration
}

// NewService creates a generation Service.
// budget <= 0 falls back to DefaultBudget.
func NewService(
	gateway llm.Client,
	generations store.GenerationStore,
	errorLogs store.GenerationErrorLogStore,
	model string,
	budget time.Duration,
	log *slog.Logger,
) (*Service, error) {
	if gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	if generations == nil {
		return nil, errors.New("generation store cannot be nil")
	}
	if errorLogs == nil {
		return nil, errors.New("error log store cannot be nil")
	}
	if model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	return &Service{
		logger:      log.With(slog.String("component", "generation_service")),
		gateway:     gateway,
		generations: generations,
		errorLogs:   errorLogs,
		model:       model,
		budget:      budget,
	}, nil
}

// Generate runs the pipeline for one source text. On success it returns the
// generation ID and the extracted proposals; zero proposals is a valid,
// degraded outcome. Every failure after input validation writes a
// GenerationErrorLog entry (best effort) before propagating.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, sourceText string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, llm.NewError(llm.KindValidation, "user ID cannot be empty", nil)
	}

	// Length gate: rejected texts cause no persistence or network activity.
	length := domain.SourceTextLengthOf(sourceText)
	if length < domain.MinSourceTextLength || length > domain.MaxSourceTextLength {
		return nil, llm.NewError(llm.KindValidation,
			fmt.Sprintf("source text length %d outside [%d,%d] characters",
				length, domain.MinSourceTextLength, domain.MaxSourceTextLength), nil)
	}

	hash := domain.HashSourceText(sourceText)

	// The record is created before the model call so error logs written
	// during the call can reference it.
	generation, err := domain.NewGeneration(userID, s.model, hash, length)
	if err != nil {
		return nil, llm.NewError(llm.KindValidation, "invalid generation record", err)
	}
	if err := s.generations.Create(ctx, generation); err != nil {
		perr := llm.NewError(llm.KindPersistence, "failed to create generation record", err)
		s.writeErrorLog(ctx, 0, userID, perr, hash, length)
		return nil, perr
	}

	targetCount := domain.TargetCardCount(length)
	log.InfoContext(ctx, "starting flashcard generation",
		"generation_id", generation.ID,
		"user_id", userID.String(),
		"source_text_length", length,
		"target_count", targetCount)

	started := time.Now()
	content, err := s.callModel(ctx, sourceText, targetCount)
	if err != nil {
		s.writeErrorLog(ctx, generation.ID, userID, err, hash, length)
		return nil, err
	}

	proposals := extraction.Extract(content, targetCount)
	durationMs := time.Since(started).Milliseconds()

	// A failed metadata update is logged but does not fail the call: the
	// proposals already exist and belong to the caller.
	if err := s.generations.UpdateGeneratedCount(ctx, generation.ID, len(proposals), durationMs); err != nil {
		log.ErrorContext(ctx, "failed to update generated count",
			"generation_id", generation.ID,
			"error", err)
	}

	log.InfoContext(ctx, "flashcard generation completed",
		"generation_id", generation.ID,
		"generated_count", len(proposals),
		"duration_ms", durationMs)

	return &Result{
		GenerationID: generation.ID,
		Proposals:    proposals,
	}, nil
}

type completeOutcome struct {
	resp *llm.Response
	err  error
}

// callModel races the gateway call against the generation budget and returns
// the raw content to extract from. A budget win is a timeout; a strict
// schema-validation failure degrades to the offending payload so extraction
// can still run.
func (s *Service) callModel(ctx context.Context, sourceText string, targetCount int) (string, error) {
	budgetCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	req := llm.Request{
		SystemMessage: promptSystemMessage,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(sourceText, targetCount)},
		},
		Params:         promptParams(),
		ResponseFormat: schema.NewResponseFormat(schema.NameFlashcardCollection, true, schema.FlashcardCollection(1, targetCount)),
	}

	outcome := make(chan completeOutcome, 1)
	go func() {
		resp, err := s.gateway.Complete(budgetCtx, req)
		outcome <- completeOutcome{resp: resp, err: err}
	}()

	select {
	case o := <-outcome:
		if o.err != nil {
			var gatewayErr *llm.Error
			if errors.As(o.err, &gatewayErr) && gatewayErr.Kind == llm.KindSchemaValidation && gatewayErr.Raw != "" {
				// The model answered, just not in shape; hand the payload to
				// the extraction ladder instead of failing the generation.
				s.logger.WarnContext(ctx, "structured response failed schema validation, falling back to extraction",
					"error", o.err)
				return gatewayErr.Raw, nil
			}
			return "", o.err
		}
		return o.resp.Content, nil

	case <-budgetCtx.Done():
		// Timer won the race; the cancelled context releases the gateway's
		// pending request.
		return "", llm.NewError(llm.KindTimeout,
			fmt.Sprintf("generation exceeded its %s budget", s.budget), budgetCtx.Err())
	}
}

// writeErrorLog appends a GenerationErrorLog for a failed generation.
// Best effort: a logging failure is itself only logged, never allowed to
// mask the original error. Detached from ctx cancellation so a timed-out
// generation still gets its log entry.
func (s *Service) writeErrorLog(
	ctx context.Context,
	generationID int64,
	userID uuid.UUID,
	cause error,
	sourceTextHash string,
	sourceTextLength int,
) {
	// Provider and database failures can embed credentials or connection
	// strings; scrub before the message is persisted.
	entry, err := domain.NewGenerationErrorLog(
		generationID,
		userID,
		s.model,
		string(llm.KindOf(cause)),
		redact.Error(cause),
		sourceTextHash,
		sourceTextLength,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build generation error log",
			"generation_id", generationID,
			"error", err)
		return
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.errorLogs.Create(logCtx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to write generation error log",
			"generation_id", generationID,
			"original_error", cause.Error(),
			"error", err)
	}
}
