package resource

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Over the limit: usage unchanged.
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())

	require.NoError(t, c.AcquireMemory(0))
	require.NoError(t, c.AcquireMemory(-5))
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.MaxWorkers())

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireWorker(ctx))

	c.ReleaseWorker()
	assert.NoError(t, c.AcquireWorker(t.Context()))
}

func TestController_DefaultWorkers(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, runtime.GOMAXPROCS(0), c.MaxWorkers())
}

func TestController_Queries(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		c := NewController(Config{})
		for i := 0; i < 100; i++ {
			assert.NoError(t, c.WaitQuery(t.Context()))
		}
	})

	t.Run("burst exhausted", func(t *testing.T) {
		c := NewController(Config{QueriesPerSecond: 0.001, QueryBurst: 2})
		assert.NoError(t, c.WaitQuery(t.Context()))
		assert.NoError(t, c.WaitQuery(t.Context()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.Error(t, c.WaitQuery(ctx))
	})

	t.Run("canceled context", func(t *testing.T) {
		c := NewController(Config{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, c.WaitQuery(ctx), context.Canceled)
	})
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
	assert.NoError(t, c.AcquireWorker(context.Background()))
	c.ReleaseWorker()
	assert.NoError(t, c.WaitQuery(context.Background()))
	assert.Positive(t, c.MaxWorkers())
}
