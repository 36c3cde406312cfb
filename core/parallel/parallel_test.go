package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeWithThreshold(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		threshold int
	}{
		{name: "below threshold", n: 10, threshold: 100},
		{name: "above threshold", n: 1000, threshold: 10},
		{name: "one element", n: 1, threshold: 0},
		{name: "empty", n: 0, threshold: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			ParallelizeWithThreshold(tt.n, tt.threshold, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				assert.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestParallelizeWithThresholdRepanics(t *testing.T) {
	assert.PanicsWithValue(t, "chunk failed", func() {
		ParallelizeWithThreshold(1000, 1, func(start, end int) {
			if start == 0 {
				panic("chunk failed")
			}
		})
	})
}

func TestForEach(t *testing.T) {
	var sum int64
	err := ForEach(context.Background(), 100, 4, func(_ context.Context, i int) error {
		atomic.AddInt64(&sum, int64(i))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum)
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), 50, 0, func(ctx context.Context, i int) error {
		if i == 7 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachPanicBecomesError(t *testing.T) {
	err := ForEach(context.Background(), 3, 1, func(_ context.Context, i int) error {
		if i == 1 {
			panic("bad index")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 1 panicked: bad index")
}

func TestForEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	err := ForEach(ctx, 10, 2, func(context.Context, int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
