package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashgen/flashgen-api/internal/api/shared"
	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/generation"
)

// GenerationService is the slice of the orchestrator the handler needs.
type GenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, sourceText string) (*generation.Result, error)
}

// CreateGenerationRequest represents the request body for generating
// flashcard proposals. The exact length window is enforced by the
// orchestrator; the tag here rejects the obviously empty case early.
type CreateGenerationRequest struct {
	SourceText string `json:"source_text" validate:"required,min=1"`
}

// ProposalResponse represents a single proposed flashcard.
type ProposalResponse struct {
	Front  string `json:"front"`
	Back   string `json:"back"`
	Source string `json:"source"`
}

// CreateGenerationResponse represents the response data for a generation.
type CreateGenerationResponse struct {
	GenerationID       int64              `json:"generation_id"`
	FlashcardsProposal []ProposalResponse `json:"flashcards_proposal"`
}

// GenerationHandler handles generation-related HTTP requests
type GenerationHandler struct {
	generationService GenerationService
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(generationService GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		generationService: generationService,
		logger:            logger.With(slog.String("component", "generation_handler")),
	}
}

// CreateGeneration handles POST /api/generations requests
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	// Extract user ID from context (set by auth middleware)
	userID, ok := shared.GetUserID(r.Context())
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateGenerationRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: source_text is required")
		return
	}

	result, err := h.generationService.Generate(r.Context(), userID, req.SourceText)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, generationToResponse(result))
}

// generationToResponse converts a generation.Result to the wire shape.
func generationToResponse(result *generation.Result) CreateGenerationResponse {
	proposals := make([]ProposalResponse, 0, len(result.Proposals))
	for _, p := range result.Proposals {
		proposals = append(proposals, proposalToResponse(p))
	}
	return CreateGenerationResponse{
		GenerationID:       result.GenerationID,
		FlashcardsProposal: proposals,
	}
}

func proposalToResponse(p domain.CardProposal) ProposalResponse {
	return ProposalResponse{
		Front:  p.Front,
		Back:   p.Back,
		Source: string(p.Source),
	}
}
