package mcslices

import (
	"context"
	"image"
)

// Bounds is the extent of a world measured over all of its chunks.
//
// The grid extrema start at 0 rather than at the first chunk seen, so the
// canvas always includes grid column and row 0.
type Bounds struct {
	MaxChunkWidth  int
	MaxChunkHeight int
	MaxChunkDepth  int

	MinChunkX int
	MaxChunkX int
	MinChunkZ int
	MaxChunkZ int

	Chunks int
}

// ScanBounds walks src once and returns the bounds of everything it yields.
func ScanBounds(ctx context.Context, src ChunkSource) (Bounds, error) {
	var b Bounds
	err := src.Each(ctx, func(chunk Chunk) error {
		b.Add(chunk)
		return nil
	})
	return b, err
}

// Add grows the bounds to include chunk.
func (b *Bounds) Add(chunk Chunk) {
	b.Chunks++

	if w := chunk.Width(); w > b.MaxChunkWidth {
		b.MaxChunkWidth = w
	}
	if h := chunk.Height(); h > b.MaxChunkHeight {
		b.MaxChunkHeight = h
	}
	if d := chunk.Depth(); d > b.MaxChunkDepth {
		b.MaxChunkDepth = d
	}

	x, z := chunk.X(), chunk.Z()
	if x > b.MaxChunkX {
		b.MaxChunkX = x
	}
	if z > b.MaxChunkZ {
		b.MaxChunkZ = z
	}
	if x < b.MinChunkX {
		b.MinChunkX = x
	}
	if z < b.MinChunkZ {
		b.MinChunkZ = z
	}
}

// CanvasSize returns the pixel size of one layer image.
func (b Bounds) CanvasSize() (width, depth int) {
	width = b.MaxChunkWidth * (b.MaxChunkX - b.MinChunkX + 1)
	depth = b.MaxChunkDepth * (b.MaxChunkZ - b.MinChunkZ + 1)
	return width, depth
}

// Layers is the number of layer images the world produces.
func (b Bounds) Layers() int {
	return b.MaxChunkHeight
}

// Empty reports whether there is nothing to render.
func (b Bounds) Empty() bool {
	w, d := b.CanvasSize()
	return b.Layers() == 0 || w == 0 || d == 0
}

// ChunkOrigin returns the pixel position of a chunk's local (0, 0) column.
func (b Bounds) ChunkOrigin(chunk Chunk) image.Point {
	return image.Point{
		X: (chunk.X() - b.MinChunkX) * b.MaxChunkWidth,
		Y: (chunk.Z() - b.MinChunkZ) * b.MaxChunkDepth,
	}
}
