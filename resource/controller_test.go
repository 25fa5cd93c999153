package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Concurrency(t *testing.T) {
	c := NewController(Config{MaxConcurrentEvaluations: 2})

	require.NoError(t, c.AcquireEvaluation(context.Background()))
	require.NoError(t, c.AcquireEvaluation(context.Background()))

	// A third evaluation waits for a free slot.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireEvaluation(ctx), context.DeadlineExceeded)

	c.ReleaseEvaluation()
	require.NoError(t, c.AcquireEvaluation(context.Background()))
	assert.Equal(t, int64(3), c.Evaluations())
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})
	for i := 0; i < 100; i++ {
		require.NoError(t, c.AcquireEvaluation(context.Background()))
	}
	for i := 0; i < 100; i++ {
		c.ReleaseEvaluation()
	}
	assert.Equal(t, int64(100), c.Evaluations())
}

func TestController_RateLimit(t *testing.T) {
	c := NewController(Config{EvaluationsPerSecond: 1, Burst: 1})

	require.NoError(t, c.AcquireEvaluation(context.Background()))
	c.ReleaseEvaluation()

	// Burst is spent; the next token arrives in one second.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireEvaluation(ctx))
	assert.Equal(t, int64(1), c.Evaluations())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireEvaluation(context.Background()))
	c.ReleaseEvaluation()
	assert.Equal(t, int64(0), c.Evaluations())
}
