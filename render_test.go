package mcslices

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLayer(t *testing.T, path string) *image.RGBA {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	rgba, ok := img.(*image.RGBA)
	require.True(t, ok, "%s decoded as %T", path, img)
	return rgba
}

func TestRenderWorldWritesEveryLayer(t *testing.T) {
	dir := t.TempDir()
	src := &countingSource{ChunkList: ChunkList{
		layeredChunk(0, 0, 16, 8, 16),
		layeredChunk(1, 0, 16, 8, 16),
	}}

	renderer := NewRenderer(layerPalette(t, 8), NewSink(dir))
	result, err := renderer.RenderWorld(context.Background(), src, WorldRenderOpts{
		BaseName: "name",
		Batch:    BatchOpts{Count: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.BatchSize)
	require.Len(t, result.Files, 8)
	// one walk for the bounds and one per batch
	assert.Equal(t, 1+3, src.walks)

	for layer := 0; layer < 8; layer++ {
		path := filepath.Join(dir, LayerFileName("name", layer))
		assert.Equal(t, path, result.Files[layer])

		img := decodeLayer(t, path)
		assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
		want := gray(uint8((layer + 1) * 10))
		assert.Equal(t, want, img.RGBAAt(0, 0))
		assert.Equal(t, want, img.RGBAAt(31, 15))
	}
}

func TestRenderWorldBatchSizeDoesNotChangeOutput(t *testing.T) {
	src := ChunkList{
		layeredChunk(0, 0, 4, 5, 4),
		layeredChunk(-1, 1, 4, 3, 4),
	}
	palette := layerPalette(t, 5)

	render := func(count, concurrency int) [][]byte {
		dir := t.TempDir()
		result, err := NewRenderer(palette, NewSink(dir)).RenderWorld(context.Background(), src, WorldRenderOpts{
			BaseName:    "w",
			Batch:       BatchOpts{Count: count},
			Concurrency: concurrency,
		})
		require.NoError(t, err)

		var pix [][]byte
		for _, path := range result.Files {
			pix = append(pix, decodeLayer(t, path).Pix)
		}
		return pix
	}

	want := render(1, 1)
	require.Len(t, want, 5)
	assert.Equal(t, want, render(2, 1))
	assert.Equal(t, want, render(5, 4))
}

func TestRenderWorldCachesChunks(t *testing.T) {
	src := &countingSource{ChunkList: ChunkList{layeredChunk(0, 0, 2, 4, 2)}}

	result, err := NewRenderer(layerPalette(t, 4), NewSink(t.TempDir())).RenderWorld(context.Background(), src, WorldRenderOpts{
		BaseName:    "w",
		CacheChunks: true,
	})
	require.NoError(t, err)

	assert.Len(t, result.Files, 4)
	assert.Equal(t, 1, src.walks)
}

func TestRenderWorldEmpty(t *testing.T) {
	dir := t.TempDir()

	result, err := NewRenderer(NewPalette(), NewSink(dir)).RenderWorld(context.Background(), ChunkList{}, WorldRenderOpts{BaseName: "w"})
	require.NoError(t, err)
	assert.Empty(t, result.Files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderWorldRequiresInputs(t *testing.T) {
	sink := NewSink(t.TempDir())

	_, err := NewRenderer(nil, sink).RenderWorld(context.Background(), ChunkList{}, WorldRenderOpts{})
	assert.ErrorIs(t, err, ErrNoPalette)

	_, err = NewRenderer(NewPalette(), sink).RenderWorld(context.Background(), nil, WorldRenderOpts{})
	assert.ErrorIs(t, err, ErrNoWorld)
}

func TestRenderWorldSinkFailure(t *testing.T) {
	sink := NewSink(filepath.Join(t.TempDir(), "missing"))
	src := ChunkList{layeredChunk(0, 0, 2, 2, 2)}

	result, err := NewRenderer(layerPalette(t, 2), sink).RenderWorld(context.Background(), src, WorldRenderOpts{BaseName: "w"})
	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Files)
}

func TestRenderWorldCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(layerPalette(t, 2), NewSink(t.TempDir())).
		RenderWorld(ctx, ChunkList{layeredChunk(0, 0, 2, 2, 2)}, WorldRenderOpts{BaseName: "w"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderWorldMetrics(t *testing.T) {
	metrics := NewMetrics()
	src := ChunkList{layeredChunk(0, 0, 2, 4, 2)}

	_, err := NewRenderer(layerPalette(t, 4), NewSink(t.TempDir())).RenderWorld(context.Background(), src, WorldRenderOpts{
		BaseName: "w",
		Batch:    BatchOpts{Count: 2},
		Metrics:  metrics,
	})
	require.NoError(t, err)

	assert.Equal(t, 4.0, counterValue(t, metrics.LayersWritten))
	assert.Equal(t, 2.0, counterValue(t, metrics.Batches))
	assert.Equal(t, 2.0, counterValue(t, metrics.BatchSize))
	assert.Equal(t, 2.0, counterValue(t, metrics.ChunksScanned))
}
