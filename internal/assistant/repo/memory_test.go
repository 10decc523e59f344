package repo

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-assist/server/internal/assistant/model"
)

func newTestRepo(t *testing.T) *MemoryThreadRepository {
	t.Helper()
	r := NewMemoryThreadRepository(time.Hour)
	t.Cleanup(r.Close)
	return r
}

func TestCreateReturnsDistinctThreads(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	one, err := r.Create(ctx)
	require.NoError(t, err)
	two, err := r.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, one, two)

	for _, id := range []string{one, two} {
		known, err := r.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, known)
	}
}

func TestUnknownThreadOperationsFail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	known, err := r.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, known)

	assert.ErrorIs(t, r.Reset(ctx, "nope"), model.ErrThreadNotFound)
	assert.ErrorIs(t, r.AddMessage(ctx, "nope", schema.UserMessage("hi")), model.ErrThreadNotFound)
	_, err = r.LoadHistory(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrThreadNotFound)
	_, err = r.Context(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrThreadNotFound)
	assert.ErrorIs(t, r.SetContext(ctx, "nope", model.ThreadContext{}), model.ErrThreadNotFound)
}

func TestAddMessageAndLoadHistoryOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("first")))
	require.NoError(t, r.AddMessage(ctx, id, schema.AssistantMessage("second", nil)))

	history, err := r.LoadHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "first", history.Messages[0].Content)
	assert.Equal(t, "second", history.Messages[1].Content)
	assert.Equal(t, id, history.ThreadID)
}

func TestLoadHistoryReturnsCopy(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("original")))

	history, err := r.LoadHistory(ctx, id)
	require.NoError(t, err)
	history.Messages[0] = schema.UserMessage("mutated")

	fresh, err := r.LoadHistory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original", fresh.Messages[0].Content)
}

func TestResetKeepsIdentifierValid(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("hi")))
	require.NoError(t, r.SetContext(ctx, id, model.ThreadContext{Department: "Cardiology"}))

	require.NoError(t, r.Reset(ctx, id))

	history, err := r.LoadHistory(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history.Messages)

	tc, err := r.Context(ctx, id)
	require.NoError(t, err)
	assert.True(t, tc.IsZero())

	// Resetting twice in a row succeeds: the identifier stays valid.
	require.NoError(t, r.Reset(ctx, id))

	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("again")))
	history, err = r.LoadHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 1)
}

func TestEvictExpiredRemovesIdleThreads(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)

	// Fresh threads survive a sweep at the current time.
	r.evictExpired(time.Now())
	known, err := r.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, known)

	// A sweep after the TTL has elapsed evicts them.
	r.evictExpired(time.Now().Add(2 * time.Hour))
	known, err = r.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, known)
}

func TestContextRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)

	want := model.ThreadContext{Department: "Neurology", Doctor: "Dr. Kavitha Rao"}
	require.NoError(t, r.SetContext(ctx, id, want))

	got, err := r.Context(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
