package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashgen/flashgen-api/internal/domain"
)

// GenerationStore defines the interface for generation record persistence.
type GenerationStore interface {
	// Create saves a new generation to the store and assigns its ID.
	// It handles domain validation internally.
	// Returns validation errors from the domain Generation if data is invalid.
	Create(ctx context.Context, generation *domain.Generation) error

	// GetByID retrieves a generation by its unique ID, scoped to the owning
	// user. Returns ErrGenerationNotFound if the generation does not exist
	// or belongs to a different user.
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Generation, error)

	// UpdateGeneratedCount records the number of proposals produced by a
	// completed model call, together with the call duration.
	// Returns ErrGenerationNotFound if the generation does not exist.
	UpdateGeneratedCount(ctx context.Context, id int64, generatedCount int, durationMs int64) error
}

// GenerationErrorLogStore defines the interface for the append-only error
// log written on every pipeline failure. Entries are never updated or
// deleted.
type GenerationErrorLogStore interface {
	// Create appends a new error log entry.
	Create(ctx context.Context, entry *domain.GenerationErrorLog) error
}
