package mcslices

import (
	"fmt"
	"math"
)

// Calibration is the memory model used to turn a byte budget into a batch
// size: a run costs Overhead bytes plus BytesPerPixel for every pixel of every
// open canvas.
type Calibration struct {
	BytesPerPixel float64
	Overhead      float64
}

// DefaultCalibration matches Canvas, which keeps 4 bytes per pixel, plus a
// fixed allowance for the runtime, the chunk decoder and the PNG encoder.
var DefaultCalibration = Calibration{
	BytesPerPixel: 4,
	Overhead:      48 * 1024 * 1024,
}

// Memory estimates the bytes needed to keep count canvases of w x h open.
func (c Calibration) Memory(w, h, count int) float64 {
	return c.Overhead + c.BytesPerPixel*float64(w)*float64(h)*float64(count)
}

// Count is the number of w x h canvases that fit in budget bytes. It may be
// zero or negative when the budget does not cover the overhead.
func (c Calibration) Count(w, h int, budget float64) int {
	perCanvas := c.BytesPerPixel * float64(w) * float64(h)
	if perCanvas <= 0 {
		return math.MaxInt32
	}
	n := math.Floor((budget - c.Overhead) / perCanvas)
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// BatchOpts selects how many layers are rendered per pass. A positive
// BudgetBytes wins over Count; with neither set one layer is rendered at a time.
type BatchOpts struct {
	BudgetBytes float64
	Count       int
	Calibration Calibration
}

// PlanBatch returns the number of layers rasterized per pass, always at least
// 1 and never more than totalLayers (when there are any layers).
func PlanBatch(width, depth, totalLayers int, opts BatchOpts) int {
	size := 1
	if opts.BudgetBytes > 0 {
		cal := opts.Calibration
		if cal.BytesPerPixel <= 0 {
			cal = DefaultCalibration
		}
		size = cal.Count(width, depth, opts.BudgetBytes)
	} else if opts.Count > 0 {
		size = opts.Count
	}

	if totalLayers > 0 && size > totalLayers {
		size = totalLayers
	}
	if size < 1 {
		size = 1
	}
	return size
}

// Window is a run of consecutive layers rendered in one pass.
type Window struct {
	Offset int
	Size   int
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Offset, w.Offset+w.Size)
}

// Batches splits [0, totalLayers) into windows of batchSize layers. The last
// window holds whatever remains.
func Batches(totalLayers, batchSize int) ([]Window, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatch, batchSize)
	}

	var windows []Window
	for offset := 0; offset < totalLayers; offset += batchSize {
		size := batchSize
		if offset+size > totalLayers {
			size = totalLayers - offset
		}
		windows = append(windows, Window{Offset: offset, Size: size})
	}
	return windows, nil
}
