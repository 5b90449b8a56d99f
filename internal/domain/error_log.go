package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for GenerationErrorLog
var (
	ErrEmptyErrorLogUserID = errors.New("error log user ID cannot be empty")
	ErrEmptyErrorCode      = errors.New("error log code cannot be empty")
)

// GenerationErrorLog is an append-only record of a failed generation attempt.
// GenerationID is zero when the failure happened before a Generation row
// existed. Rows are never updated or deleted by this service.
type GenerationErrorLog struct {
	ID               int64     `json:"id"`
	GenerationID     int64     `json:"generation_id"`
	UserID           uuid.UUID `json:"user_id"`
	Model            string    `json:"model"`
	ErrorCode        string    `json:"error_code"`
	ErrorMessage     string    `json:"error_message"`
	SourceTextHash   string    `json:"source_text_hash"`
	SourceTextLength int       `json:"source_text_length"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGenerationErrorLog creates an error log entry for a failed generation.
// generationID may be zero when the generation row was never created.
func NewGenerationErrorLog(
	generationID int64,
	userID uuid.UUID,
	model, errorCode, errorMessage, sourceTextHash string,
	sourceTextLength int,
) (*GenerationErrorLog, error) {
	entry := &GenerationErrorLog{
		GenerationID:     generationID,
		UserID:           userID,
		Model:            model,
		ErrorCode:        errorCode,
		ErrorMessage:     errorMessage,
		SourceTextHash:   sourceTextHash,
		SourceTextLength: sourceTextLength,
		CreatedAt:        time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the GenerationErrorLog has valid data.
func (e *GenerationErrorLog) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrEmptyErrorLogUserID
	}

	if e.ErrorCode == "" {
		return ErrEmptyErrorCode
	}

	return nil
}
