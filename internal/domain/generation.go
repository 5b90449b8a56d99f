package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Source text length bounds, in characters. Texts outside this window are
// rejected before any persistence or network activity.
const (
	MinSourceTextLength = 1000
	MaxSourceTextLength = 10000
)

// Target card count bounds for a single generation.
const (
	MinCardCount = 5
	MaxCardCount = 10
)

// Common validation errors for Generation
var (
	ErrEmptyGenerationUserID  = errors.New("generation user ID cannot be empty")
	ErrEmptyGenerationModel   = errors.New("generation model cannot be empty")
	ErrInvalidSourceTextHash  = errors.New("source text hash must be a 64-character hex digest")
	ErrSourceTextLengthBounds = errors.New("source text length must be between 1000 and 10000 characters")
	ErrNegativeGeneratedCount = errors.New("generated count cannot be negative")
	ErrAcceptedExceedsCount   = errors.New("accepted count cannot exceed generated count")
)

// Generation records a single flashcard-generation attempt for a user.
// A row is created with GeneratedCount zero before the model is called so
// that error logs written during the call can reference it; only the
// orchestrator ever updates the row afterwards.
type Generation struct {
	ID               int64     `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Model            string    `json:"model"`
	GeneratedCount   int       `json:"generated_count"`
	AcceptedCount    int       `json:"accepted_count"`
	SourceTextHash   string    `json:"source_text_hash"`
	SourceTextLength int       `json:"source_text_length"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewGeneration creates a new Generation for the given user and source text
// metadata. Counts start at zero; the ID is assigned by the store on insert.
// Returns an error if validation fails.
func NewGeneration(userID uuid.UUID, model, sourceTextHash string, sourceTextLength int) (*Generation, error) {
	now := time.Now().UTC()
	generation := &Generation{
		UserID:           userID,
		Model:            model,
		GeneratedCount:   0,
		AcceptedCount:    0,
		SourceTextHash:   sourceTextHash,
		SourceTextLength: sourceTextLength,
		DurationMs:       0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := generation.Validate(); err != nil {
		return nil, err
	}

	return generation, nil
}

// Validate checks if the Generation has valid data.
// Returns an error if any field fails validation.
func (g *Generation) Validate() error {
	if g.UserID == uuid.Nil {
		return ErrEmptyGenerationUserID
	}

	if g.Model == "" {
		return ErrEmptyGenerationModel
	}

	if len(g.SourceTextHash) != 64 {
		return ErrInvalidSourceTextHash
	}

	if g.SourceTextLength < MinSourceTextLength || g.SourceTextLength > MaxSourceTextLength {
		return ErrSourceTextLengthBounds
	}

	if g.GeneratedCount < 0 {
		return ErrNegativeGeneratedCount
	}

	if g.AcceptedCount > g.GeneratedCount {
		return ErrAcceptedExceedsCount
	}

	return nil
}

// SourceTextLengthOf counts the characters of a source text the same way the
// length bounds are expressed: as Unicode code points, not bytes.
func SourceTextLengthOf(sourceText string) int {
	return utf8.RuneCountInString(sourceText)
}

// ValidSourceTextLength reports whether the text falls inside the accepted
// length window.
func ValidSourceTextLength(sourceText string) bool {
	n := SourceTextLengthOf(sourceText)
	return n >= MinSourceTextLength && n <= MaxSourceTextLength
}

// HashSourceText computes the deterministic content fingerprint of a source
// text: a lowercase 64-character hex SHA-256 digest. Used for dedup and
// auditing, not security.
func HashSourceText(sourceText string) string {
	sum := sha256.Sum256([]byte(sourceText))
	return hex.EncodeToString(sum[:])
}

// TargetCardCount scales the requested number of cards with the source text
// length, one card per thousand characters, clamped to [MinCardCount,
// MaxCardCount] to bound cost and latency.
func TargetCardCount(sourceTextLength int) int {
	count := sourceTextLength / 1000
	if count < MinCardCount {
		return MinCardCount
	}
	if count > MaxCardCount {
		return MaxCardCount
	}
	return count
}
