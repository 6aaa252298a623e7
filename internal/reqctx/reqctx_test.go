package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndFrom(t *testing.T) {
	ctx, state := New(context.Background(), 1)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.RequestID)

	fromCtx := From(ctx)
	require.NotNil(t, fromCtx)
	assert.Equal(t, state.RequestID, fromCtx.RequestID)
}

func TestFromWithoutAcquisitionReturnsNil(t *testing.T) {
	assert.Nil(t, From(context.Background()))
}

func TestCanRetryAndRecordRetry(t *testing.T) {
	_, state := New(context.Background(), 1)
	assert.True(t, state.CanRetry())
	state.RecordRetry()
	assert.False(t, state.CanRetry())
}

func TestDistinctRequestsGetDistinctState(t *testing.T) {
	_, s1 := New(context.Background(), 1)
	_, s2 := New(context.Background(), 1)
	assert.NotEqual(t, s1.RequestID, s2.RequestID)
	assert.NotSame(t, s1, s2)
}
