package mcslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchesPartitionLayers(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for size := 1; size <= 12; size++ {
			windows, err := Batches(total, size)
			require.NoError(t, err)

			next := 0
			for i, w := range windows {
				assert.Equal(t, next, w.Offset)
				assert.Positive(t, w.Size)
				if i < len(windows)-1 {
					assert.Equal(t, size, w.Size)
				} else {
					assert.LessOrEqual(t, w.Size, size)
				}
				next += w.Size
			}
			assert.Equal(t, total, next, "total=%d size=%d", total, size)
		}
	}
}

func TestBatchesRejectsZeroSize(t *testing.T) {
	_, err := Batches(8, 0)
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestBatchesLastWindowShort(t *testing.T) {
	windows, err := Batches(8, 3)
	require.NoError(t, err)

	assert.Equal(t, []Window{{0, 3}, {3, 3}, {6, 2}}, windows)
	assert.Equal(t, "[6, 8)", windows[2].String())
}

func TestPlanBatchDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, PlanBatch(32, 16, 8, BatchOpts{}))
}

func TestPlanBatchExplicitCount(t *testing.T) {
	assert.Equal(t, 4, PlanBatch(32, 16, 8, BatchOpts{Count: 4}))
	// never more layers than the world has
	assert.Equal(t, 8, PlanBatch(32, 16, 8, BatchOpts{Count: 100}))
	assert.Equal(t, 1, PlanBatch(32, 16, 8, BatchOpts{Count: -3}))
}

func TestPlanBatchBudgetWinsOverCount(t *testing.T) {
	cal := Calibration{BytesPerPixel: 1, Overhead: 0}
	opts := BatchOpts{BudgetBytes: 3 * 100 * 100, Count: 7, Calibration: cal}

	assert.Equal(t, 3, PlanBatch(100, 100, 50, opts))
}

func TestPlanBatchBudgetBelowOverhead(t *testing.T) {
	opts := BatchOpts{BudgetBytes: 1024, Calibration: DefaultCalibration}
	assert.Equal(t, 1, PlanBatch(512, 512, 256, opts))
}

func TestPlanBatchMonotonicInBudget(t *testing.T) {
	prev := 0
	for mb := 1.0; mb <= 4096; mb *= 2 {
		size := PlanBatch(1024, 1024, 1<<20, BatchOpts{BudgetBytes: mb * 1024 * 1024})
		assert.GreaterOrEqual(t, size, prev, "budget %v MiB", mb)
		assert.GreaterOrEqual(t, size, 1)
		prev = size
	}
}

func TestPlanBatchDefaultCalibration(t *testing.T) {
	// 48 MiB overhead and 4 MiB per 1024x1024 canvas
	opts := BatchOpts{BudgetBytes: 64 * 1024 * 1024}
	assert.Equal(t, 4, PlanBatch(1024, 1024, 256, opts))
}

func TestCalibrationMemoryAndCountAgree(t *testing.T) {
	cal := DefaultCalibration
	for _, count := range []int{1, 2, 7, 64} {
		budget := cal.Memory(300, 200, count)
		assert.Equal(t, count, cal.Count(300, 200, budget))
	}
}
