package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "no trace ID before SetTraceID")

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	require.NotEmpty(t, traceID)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "trace IDs are UUIDs")

	// Original context remains unchanged.
	assert.Empty(t, GetTraceID(ctx))

	// Each call mints a fresh ID.
	other := GetTraceID(SetTraceID(ctx))
	assert.NotEqual(t, traceID, other)
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx), "non-string value yields empty trace ID")
}

func TestGetUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := GetUserID(ctx)
	assert.False(t, ok, "no user ID before authentication")

	userID := uuid.New()
	ctx = context.WithValue(ctx, UserIDContextKey, userID)

	got, ok := GetUserID(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	// Wrong value type is treated as absent.
	ctx = context.WithValue(context.Background(), UserIDContextKey, "not-a-uuid")
	_, ok = GetUserID(ctx)
	assert.False(t, ok)
}
