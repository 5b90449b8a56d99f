package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashgen/flashgen-api/internal/domain"
	"github.com/flashgen/flashgen-api/internal/generation"
	"github.com/flashgen/flashgen-api/internal/llm"
	"github.com/flashgen/flashgen-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// validSourceText is long enough to clear the length gate.
var validSourceText = strings.Repeat("Photosynthesis converts light into chemical energy. ", 40)

// mockGateway is a scripted llm.Client.
type mockGateway struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	calls      int
	lastReq    llm.Request
}

func (m *mockGateway) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.calls++
	m.lastReq = req
	return m.completeFn(ctx, req)
}

func (m *mockGateway) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not scripted")
}

// mockGenerationStore records calls and assigns IDs on Create.
type mockGenerationStore struct {
	createErr error
	updateErr error

	created      []*domain.Generation
	nextID       int64
	updatedID    int64
	updatedCount int
	updatedMs    int64
	updates      int
}

func (m *mockGenerationStore) Create(ctx context.Context, g *domain.Generation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	g.ID = m.nextID
	m.created = append(m.created, g)
	return nil
}

func (m *mockGenerationStore) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Generation, error) {
	return nil, store.ErrGenerationNotFound
}

func (m *mockGenerationStore) UpdateGeneratedCount(ctx context.Context, id int64, generatedCount int, durationMs int64) error {
	m.updates++
	m.updatedID = id
	m.updatedCount = generatedCount
	m.updatedMs = durationMs
	return m.updateErr
}

// mockErrorLogStore records appended entries.
type mockErrorLogStore struct {
	createErr error
	entries   []*domain.GenerationErrorLog
}

func (m *mockErrorLogStore) Create(ctx context.Context, entry *domain.GenerationErrorLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func schemaResponse() *llm.Response {
	return &llm.Response{
		Content: `{"flashcards": [
			{"front": "What does photosynthesis produce?", "back": "Chemical energy."},
			{"front": "What powers photosynthesis?", "back": "Light."}
		]}`,
		FinishReason: "stop",
	}
}

func newTestService(t *testing.T, gateway llm.Client, generations *mockGenerationStore, errorLogs *mockErrorLogStore, budget time.Duration) *generation.Service {
	t.Helper()
	svc, err := generation.NewService(gateway, generations, errorLogs, "test/model", budget, testLogger())
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}

	_, err := generation.NewService(nil, generations, errorLogs, "m", 0, testLogger())
	assert.Error(t, err)

	_, err = generation.NewService(gateway, nil, errorLogs, "m", 0, testLogger())
	assert.Error(t, err)

	_, err = generation.NewService(gateway, generations, nil, "m", 0, testLogger())
	assert.Error(t, err)

	_, err = generation.NewService(gateway, generations, errorLogs, "", 0, testLogger())
	assert.Error(t, err)
}

func TestGenerate_HappyPath(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return schemaResponse(), nil
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	userID := uuid.New()
	result, err := svc.Generate(context.Background(), userID, validSourceText)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.GenerationID)
	require.Len(t, result.Proposals, 2)
	assert.Equal(t, domain.ProposalSourceAIFull, result.Proposals[0].Source)

	// Record created before the call, count updated after.
	require.Len(t, generations.created, 1)
	assert.Equal(t, userID, generations.created[0].UserID)
	assert.Equal(t, 1, generations.updates)
	assert.Equal(t, int64(1), generations.updatedID)
	assert.Equal(t, 2, generations.updatedCount)

	// Structured output is requested in strict mode.
	require.NotNil(t, gateway.lastReq.ResponseFormat)
	assert.True(t, gateway.lastReq.ResponseFormat.Strict)

	assert.Empty(t, errorLogs.entries, "no error log on success")
}

func TestGenerate_LengthGate(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return schemaResponse(), nil
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	tests := []struct {
		name string
		text string
	}{
		{name: "too short", text: "too short"},
		{name: "too long", text: strings.Repeat("x", 10001)},
		{name: "empty", text: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), uuid.New(), tc.text)
			require.Error(t, err)
			assert.True(t, llm.IsKind(err, llm.KindValidation))
		})
	}

	// Rejected input causes no persistence and no network activity.
	assert.Empty(t, generations.created)
	assert.Empty(t, errorLogs.entries)
	assert.Equal(t, 0, gateway.calls)
}

func TestGenerate_RejectsNilUserID(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return schemaResponse(), nil
	}}
	svc := newTestService(t, gateway, &mockGenerationStore{}, &mockErrorLogStore{}, 0)

	_, err := svc.Generate(context.Background(), uuid.Nil, validSourceText)
	assert.True(t, llm.IsKind(err, llm.KindValidation))
	assert.Equal(t, 0, gateway.calls)
}

func TestGenerate_ModelFailureWritesErrorLog(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, llm.NewError(llm.KindRateLimit, "rate limited", nil)
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	userID := uuid.New()
	_, err := svc.Generate(context.Background(), userID, validSourceText)
	require.Error(t, err)
	assert.True(t, llm.IsKind(err, llm.KindRateLimit))

	require.Len(t, errorLogs.entries, 1, "exactly one error log per failed generation")
	entry := errorLogs.entries[0]
	assert.Equal(t, int64(1), entry.GenerationID, "log references the created record")
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, string(llm.KindRateLimit), entry.ErrorCode)
	assert.Equal(t, domain.HashSourceText(validSourceText), entry.SourceTextHash)
}

func TestGenerate_RecordCreateFailure(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return schemaResponse(), nil
	}}
	generations := &mockGenerationStore{createErr: errors.New("connection refused")}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	_, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.Error(t, err)
	assert.True(t, llm.IsKind(err, llm.KindPersistence))
	assert.Equal(t, 0, gateway.calls, "no model call without a record")

	require.Len(t, errorLogs.entries, 1)
	assert.Equal(t, int64(0), errorLogs.entries[0].GenerationID,
		"zero generation ID marks pre-record failures")
}

func TestGenerate_CountUpdateFailureTolerated(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return schemaResponse(), nil
	}}
	generations := &mockGenerationStore{updateErr: store.ErrUpdateFailed}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	result, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.NoError(t, err, "proposals already belong to the caller")
	assert.Len(t, result.Proposals, 2)
}

func TestGenerate_BudgetTimeout(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		select {
		case <-time.After(time.Second):
			return schemaResponse(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 50*time.Millisecond)

	_, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.Error(t, err)
	assert.True(t, llm.IsKind(err, llm.KindTimeout))

	require.Len(t, errorLogs.entries, 1)
	assert.Equal(t, string(llm.KindTimeout), errorLogs.entries[0].ErrorCode)
}

func TestGenerate_SchemaFailureFallsBackToExtraction(t *testing.T) {
	t.Parallel()

	// The model answered with parseable but non-conformant content; the
	// pipeline degrades to the extraction ladder instead of failing.
	raw := "1) What powers photosynthesis?\nLight does.\n\n2) What is produced?\nChemical energy."
	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, &llm.Error{
			Kind:    llm.KindSchemaValidation,
			Message: "structured response does not match schema",
			Raw:     raw,
		}
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	result, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.NoError(t, err)

	require.Len(t, result.Proposals, 2)
	assert.Equal(t, "What powers photosynthesis?", result.Proposals[0].Front)
	assert.Empty(t, errorLogs.entries, "degraded success is not an error")
	assert.Equal(t, 1, generations.updates)
	assert.Equal(t, 2, generations.updatedCount)
}

func TestGenerate_EmptyExtractionIsDegradedSuccess(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: "", FinishReason: "stop"}, nil
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	result, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.NoError(t, err)
	assert.Empty(t, result.Proposals)
	assert.Equal(t, 0, generations.updatedCount)
}

func TestGenerate_ErrorLogWriteFailureDoesNotMaskError(t *testing.T) {
	t.Parallel()

	gateway := &mockGateway{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, llm.NewError(llm.KindUpstreamInternal, "upstream down", nil)
	}}
	generations := &mockGenerationStore{}
	errorLogs := &mockErrorLogStore{createErr: errors.New("log table unavailable")}
	svc := newTestService(t, gateway, generations, errorLogs, 0)

	_, err := svc.Generate(context.Background(), uuid.New(), validSourceText)
	require.Error(t, err)
	assert.True(t, llm.IsKind(err, llm.KindUpstreamInternal),
		"the original failure propagates even when the log write fails")
}
