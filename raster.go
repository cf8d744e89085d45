package mcslices

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Rasterizer paints chunk cells onto layer canvases.
type Rasterizer struct {
	palette     *Palette
	concurrency int
	metrics     *Metrics
}

// NewRasterizer creates a rasterizer that paints up to concurrency chunks at
// once. A concurrency below 2 paints chunks in the order the source yields
// them. Concurrent rasterizers require chunks to stay valid after the source
// callback returns.
func NewRasterizer(palette *Palette, concurrency int, metrics *Metrics) *Rasterizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Rasterizer{
		palette:     palette,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// RasterizeBatch opens one canvas per layer in window, paints every chunk of
// src into them and returns the closed canvases in layer order.
func (r *Rasterizer) RasterizeBatch(ctx context.Context, src ChunkSource, bounds Bounds, window Window) ([]*Canvas, error) {
	if window.Size < 1 {
		return nil, ErrInvalidBatch
	}

	width, depth := bounds.CanvasSize()
	canvases := make([]*Canvas, window.Size)
	for b := range canvases {
		canvases[b] = NewCanvas(window.Offset+b, width, depth)
		canvases[b].Open()
	}

	var painted atomic.Int64
	var chunks int64

	var err error
	if r.concurrency == 1 {
		err = src.Each(ctx, func(chunk Chunk) error {
			chunks++
			painted.Add(r.paint(chunk, bounds.ChunkOrigin(chunk), canvases, window.Offset))
			return nil
		})
	} else {
		locks := newCoordLocks()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		err = src.Each(gctx, func(chunk Chunk) error {
			chunks++
			g.Go(func() error {
				unlock := locks.lock(chunk.X(), chunk.Z())
				defer unlock()
				painted.Add(r.paint(chunk, bounds.ChunkOrigin(chunk), canvases, window.Offset))
				return nil
			})
			return nil
		})
		if werr := g.Wait(); err == nil {
			err = werr
		}
	}
	if err != nil {
		return nil, err
	}

	for _, canvas := range canvases {
		canvas.Close()
	}

	if r.metrics != nil {
		r.metrics.ChunksScanned.Add(float64(chunks))
		r.metrics.PixelsPainted.Add(float64(painted.Load()))
	}

	return canvases, nil
}

// paint copies the layers of chunk covered by canvases and returns the number
// of pixels set.
func (r *Rasterizer) paint(chunk Chunk, origin image.Point, canvases []*Canvas, offset int) int64 {
	height := chunk.Height()
	width, depth := chunk.Width(), chunk.Depth()

	var painted int64
	for b, canvas := range canvases {
		y := offset + b
		if y >= height {
			continue
		}

		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				typ, variant := chunk.Cell(x, y, z)
				canvas.Set(origin.X+x, origin.Y+z, r.palette.Lookup(typ, variant))
			}
		}
		painted += int64(width * depth)
	}
	return painted
}

// coordLocks serializes chunks that share a grid coordinate. Chunks at
// different coordinates cover disjoint pixels and never contend.
type coordLocks struct {
	sync.Mutex
	locks map[[2]int]*sync.Mutex
}

func newCoordLocks() *coordLocks {
	return &coordLocks{
		locks: make(map[[2]int]*sync.Mutex),
	}
}

func (c *coordLocks) lock(x, z int) func() {
	c.Lock()
	l, ok := c.locks[[2]int{x, z}]
	if !ok {
		l = &sync.Mutex{}
		c.locks[[2]int{x, z}] = l
	}
	c.Unlock()

	l.Lock()
	return l.Unlock
}
