package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachRow_VisitsEveryRowOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, DefaultThreshold, 5 * DefaultThreshold} {
		visits := make([]int32, n)
		ForEachRow(n, DefaultThreshold, func(i int) {
			atomic.AddInt32(&visits[i], 1)
		})
		for i, v := range visits {
			if v != 1 {
				t.Fatalf("n=%d: row %d visited %d times", n, i, v)
			}
		}
	}
}

func TestParallelizeWithThreshold_Sequential(t *testing.T) {
	var calls int
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestParallelize_CoversRange(t *testing.T) {
	var total int64
	Parallelize(12345, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	assert.Equal(t, int64(12345), total)
}
