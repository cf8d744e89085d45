package mcslices

import (
	"context"
	"log"

	"github.com/dustin/go-humanize"
)

// Renderer turns a world into one image per layer.
type Renderer struct {
	palette *Palette
	sink    *Sink
}

func NewRenderer(palette *Palette, sink *Sink) *Renderer {
	return &Renderer{
		palette: palette,
		sink:    sink,
	}
}

// RenderWorld sizes the world, then rasterizes and writes it one batch of
// layers at a time. Cancelling ctx stops the run before the next batch; files
// of finished batches are kept.
func (r *Renderer) RenderWorld(ctx context.Context, src ChunkSource, opts WorldRenderOpts) (*WorldRenderResult, error) {
	if r.palette == nil {
		return nil, ErrNoPalette
	}
	if src == nil {
		return nil, ErrNoWorld
	}

	if opts.CacheChunks {
		list, err := Materialize(ctx, src)
		if err != nil {
			return nil, err
		}
		log.Printf("[renderer] cached %d chunks in memory", len(list))
		src = list
	}

	log.Printf("[renderer] Calculating size...")
	bounds, err := ScanBounds(ctx, src)
	if err != nil {
		return nil, err
	}

	result := &WorldRenderResult{
		Bounds: bounds,
	}

	if bounds.Empty() {
		log.Printf("[renderer] world %s has no layers, nothing to do", opts.BaseName)
		return result, nil
	}

	width, depth := bounds.CanvasSize()
	log.Printf("[renderer] Creating %d %dx%d images", bounds.Layers(), width, depth)

	batchOpts := opts.Batch
	if batchOpts.Calibration.BytesPerPixel <= 0 {
		batchOpts.Calibration = DefaultCalibration
	}
	batchSize := PlanBatch(width, depth, bounds.Layers(), batchOpts)
	result.BatchSize = batchSize
	log.Printf(
		"[renderer] Batching images %d at a time (~%s)",
		batchSize,
		humanize.IBytes(uint64(batchOpts.Calibration.Memory(width, depth, batchSize))),
	)

	windows, err := Batches(bounds.Layers(), batchSize)
	if err != nil {
		return nil, err
	}

	if opts.Metrics != nil {
		opts.Metrics.BatchSize.Set(float64(batchSize))
	}

	rasterizer := NewRasterizer(r.palette, opts.Concurrency, opts.Metrics)
	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		canvases, err := rasterizer.RasterizeBatch(ctx, src, bounds, window)
		if err != nil {
			return result, err
		}

		for _, canvas := range canvases {
			path, err := r.sink.Persist(canvas, opts.BaseName)
			if err != nil {
				return result, err
			}
			result.Files = append(result.Files, path)
			log.Printf("[renderer] Saved %s", path)

			if opts.Metrics != nil {
				opts.Metrics.LayersWritten.Inc()
			}
		}

		if opts.Metrics != nil {
			opts.Metrics.Batches.Inc()
		}
		if opts.Memory != nil {
			if _, err := opts.Memory.Sample(opts.Metrics); err != nil {
				log.Printf("[renderer] failed to sample memory: %v", err)
			}
		}
	}

	if opts.Memory != nil {
		result.PeakResident = opts.Memory.Peak()
		log.Printf("[renderer] Max memory %s", humanize.IBytes(result.PeakResident))
	}

	return result, nil
}
