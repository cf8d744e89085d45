package mcslices

import "context"

// Chunk is a rectangular piece of a world positioned on the XZ grid.
type Chunk interface {
	// X and Z are the chunk's grid coordinates.
	X() int
	Z() int

	Width() int
	Height() int
	Depth() int

	// Cell returns the type and variant of the cell at local coordinates.
	Cell(x, y, z int) (typ, variant int)
}

// ChunkSource yields every chunk of a world. Each may be called any number of
// times; every call walks the full world again.
type ChunkSource interface {
	Each(ctx context.Context, fn func(Chunk) error) error
}

// ChunkList is an already materialized ChunkSource.
type ChunkList []Chunk

func (l ChunkList) Each(ctx context.Context, fn func(Chunk) error) error {
	for _, chunk := range l {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// Materialize reads src once and keeps every chunk in memory. Chunks held by
// the list must stay valid after the callback returns.
func Materialize(ctx context.Context, src ChunkSource) (ChunkList, error) {
	if list, ok := src.(ChunkList); ok {
		return list, nil
	}

	var list ChunkList
	err := src.Each(ctx, func(chunk Chunk) error {
		list = append(list, chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
