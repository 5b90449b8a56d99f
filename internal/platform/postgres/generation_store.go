package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/platform/logger"
	"github.com/flashgen/flashgen-api/internal/store"
)

// PostgresGenerationStore implements the store.GenerationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationStore creates a new PostgreSQL implementation of the
// GenerationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGenerationStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

// Ensure PostgresGenerationStore implements store.GenerationStore
var _ store.GenerationStore = (*PostgresGenerationStore)(nil)

// Create implements store.GenerationStore.Create
// It saves a new generation to the database and assigns its identity ID,
// handling domain validation. Returns store.ErrInvalidEntity on schema-level
// constraint violations.
func (s *PostgresGenerationStore) Create(ctx context.Context, generation *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := generation.Validate(); err != nil {
		log.Warn("generation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", generation.UserID.String()))
		return err
	}

	query := `
		INSERT INTO generations
			(user_id, model, generated_count, accepted_count,
			 source_text_hash, source_text_length, duration_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		generation.UserID,
		generation.Model,
		generation.GeneratedCount,
		generation.AcceptedCount,
		generation.SourceTextHash,
		generation.SourceTextLength,
		generation.DurationMs,
		generation.CreatedAt,
		generation.UpdatedAt,
	).Scan(&generation.ID)

	if err != nil {
		if isConstraintViolation(err) {
			log.Warn("constraint violation during generation creation",
				slog.String("error", err.Error()),
				slog.String("user_id", generation.UserID.String()))
		} else {
			log.Error("failed to create generation",
				slog.String("error", err.Error()),
				slog.String("user_id", generation.UserID.String()))
		}
		return mapError(err)
	}

	log.Info("generation created successfully",
		slog.Int64("generation_id", generation.ID),
		slog.String("user_id", generation.UserID.String()),
		slog.String("source_text_hash", generation.SourceTextHash))
	return nil
}

// GetByID implements store.GenerationStore.GetByID
// It retrieves a generation by ID scoped to the owning user.
// Returns store.ErrGenerationNotFound if the generation does not exist or
// belongs to a different user.
func (s *PostgresGenerationStore) GetByID(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
) (*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, model, generated_count, accepted_count,
		       source_text_hash, source_text_length, duration_ms, created_at, updated_at
		FROM generations
		WHERE id = $1 AND user_id = $2
	`

	var generation domain.Generation
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&generation.ID,
		&generation.UserID,
		&generation.Model,
		&generation.GeneratedCount,
		&generation.AcceptedCount,
		&generation.SourceTextHash,
		&generation.SourceTextLength,
		&generation.DurationMs,
		&generation.CreatedAt,
		&generation.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generation not found",
				slog.Int64("generation_id", id),
				slog.String("user_id", userID.String()))
			return nil, store.ErrGenerationNotFound
		}
		log.Error("failed to get generation by ID",
			slog.String("error", err.Error()),
			slog.Int64("generation_id", id))
		return nil, err
	}

	return &generation, nil
}

// UpdateGeneratedCount implements store.GenerationStore.UpdateGeneratedCount
// It records the proposal count and call duration of a completed generation.
// Returns store.ErrGenerationNotFound if the generation does not exist.
func (s *PostgresGenerationStore) UpdateGeneratedCount(
	ctx context.Context,
	id int64,
	generatedCount int,
	durationMs int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if generatedCount < 0 {
		return domain.ErrNegativeGeneratedCount
	}

	query := `
		UPDATE generations
		SET generated_count = $1, duration_ms = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, generatedCount, durationMs, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update generated count",
			slog.String("error", err.Error()),
			slog.Int64("generation_id", id))
		return err
	}

	if err := checkRowsAffected(result, store.ErrGenerationNotFound); err != nil {
		log.Debug("generation not found for count update",
			slog.Int64("generation_id", id))
		return err
	}

	log.Info("generated count updated successfully",
		slog.Int64("generation_id", id),
		slog.Int("generated_count", generatedCount),
		slog.Int64("duration_ms", durationMs))
	return nil
}
