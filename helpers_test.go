package mcslices

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// layeredChunk returns a chunk whose layer y is filled with type y+1.
func layeredChunk(cx, cz, width, height, depth int) *MemChunk {
	chunk := NewMemChunk(cx, cz, width, height, depth)
	for y := 0; y < height; y++ {
		chunk.Fill(y, y+1, 0)
	}
	return chunk
}

// layerPalette maps type t to a gray of value t*10.
func layerPalette(t *testing.T, types int) *Palette {
	t.Helper()

	var sb strings.Builder
	for typ := 1; typ <= types; typ++ {
		v := typ * 10
		fmt.Fprintf(&sb, ". %d 0 - %d %d %d layer\n", typ, v, v, v)
	}
	p, err := ParsePalette(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return p
}

func gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

// countingSource counts how often the world is walked.
type countingSource struct {
	ChunkList
	walks int
}

func (s *countingSource) Each(ctx context.Context, fn func(Chunk) error) error {
	s.walks++
	return s.ChunkList.Each(ctx, fn)
}
