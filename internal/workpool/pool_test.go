package workpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("explicit limit", func(t *testing.T) {
		assert.Equal(t, 3, New(3).Limit())
	})

	t.Run("zero selects default", func(t *testing.T) {
		p := New(0)
		assert.Equal(t, DefaultLimit(), p.Limit())
		assert.Positive(t, p.Limit())
	})

	t.Run("negative selects default", func(t *testing.T) {
		assert.Equal(t, DefaultLimit(), New(-1).Limit())
	})
}

func TestRunCompletesWholeBatch(t *testing.T) {
	p := New(2)
	var done atomic.Int32

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) {
			done.Add(1)
		}
	}
	p.Run(context.Background(), tasks)
	assert.Equal(t, int32(10), done.Load())
}

func TestRunRespectsLimit(t *testing.T) {
	p := New(2)
	var inFlight, maxSeen atomic.Int32

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) {
			cur := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				max := maxSeen.Load()
				if cur <= max || maxSeen.CompareAndSwap(max, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	p.Run(context.Background(), tasks)

	require.LessOrEqual(t, maxSeen.Load(), int32(2))
	assert.Equal(t, int32(0), inFlight.Load(), "Run must join the whole batch before returning")
}
