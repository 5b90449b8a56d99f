package postgres

import (
	"context"
	"log/slog"

	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/platform/logger"
	"github.com/flashgen/flashgen-api/internal/store"
)

// PostgresGenerationErrorLogStore implements store.GenerationErrorLogStore
// against the append-only generation_error_logs table.
type PostgresGenerationErrorLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationErrorLogStore creates a new PostgreSQL implementation
// of the GenerationErrorLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresGenerationErrorLogStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationErrorLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationErrorLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_error_log_store")),
	}
}

// Ensure PostgresGenerationErrorLogStore implements the interface
var _ store.GenerationErrorLogStore = (*PostgresGenerationErrorLogStore)(nil)

// Create implements store.GenerationErrorLogStore.Create
// It appends a new error log entry. GenerationID zero is stored as-is: it
// marks failures that happened before a generation row existed.
func (s *PostgresGenerationErrorLogStore) Create(ctx context.Context, entry *domain.GenerationErrorLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("error log validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", entry.UserID.String()))
		return err
	}

	query := `
		INSERT INTO generation_error_logs
			(generation_id, user_id, model, error_code, error_message,
			 source_text_hash, source_text_length, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		entry.GenerationID,
		entry.UserID,
		entry.Model,
		entry.ErrorCode,
		entry.ErrorMessage,
		entry.SourceTextHash,
		entry.SourceTextLength,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		log.Error("failed to create generation error log",
			slog.String("error", err.Error()),
			slog.Int64("generation_id", entry.GenerationID),
			slog.String("user_id", entry.UserID.String()))
		return mapError(err)
	}

	log.Info("generation error log created",
		slog.Int64("error_log_id", entry.ID),
		slog.Int64("generation_id", entry.GenerationID),
		slog.String("error_code", entry.ErrorCode))
	return nil
}
