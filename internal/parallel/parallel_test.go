package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_EachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

	n := 97
	hits := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestForChunks_CoverRange(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 5}

	var covered int64
	ForChunks(53, func(start, end int) {
		assert.Less(t, start, end)
		atomic.AddInt64(&covered, int64(end-start))
	}, cfg)

	assert.Equal(t, int64(53), covered)
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_SmallChunk(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Empty(t *testing.T) {
	called := false
	For(0, func(_ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
