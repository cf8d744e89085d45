package mcslices

import (
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteVariantLookup(t *testing.T) {
	p, err := ParsePalette(strings.NewReader(". 140 128 0 100 64 146 x\n"))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 100, G: 64, B: 146, A: 0xff}, p.Lookup(140, 128))
	// no plain entry for 140, so other variants are black
	assert.Equal(t, FallbackColor, p.Lookup(140, 7))
}

func TestPaletteTokenPositions(t *testing.T) {
	// token 3 is unused, so the color starts at token 4
	p, err := ParsePalette(strings.NewReader(". 140 128 0 0 100 64 146\n"))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 0, G: 100, B: 64, A: 0xff}, p.Lookup(140, 128))
}

func TestPaletteFallsBackToPlainType(t *testing.T) {
	src := strings.Join([]string{
		". 140 0 - 1 2 3 flower_pot",
		". 140 128 - 100 64 146 flower_pot_rose",
	}, "\n")
	p, err := ParsePalette(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 100, G: 64, B: 146, A: 0xff}, p.Lookup(140, 128))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, p.Lookup(140, 7))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, p.Lookup(140, 0))
	assert.Equal(t, FallbackColor, p.Lookup(141, 0))
}

func TestPaletteSkipsMalformedLines(t *testing.T) {
	src := strings.Join([]string{
		"# comment",
		"",
		"1 0 - 9 9 9 not_a_directive x",
		" . 1 0 - 9 9 9 leading_space",
		". 2 0 - 9 9 9",
		". x 0 - 9 9 9 bad_type",
		". 3 0 - red 9 9 bad_red",
		". 4 0 - 9 9 blue bad_blue",
		". 5 0 - 10 20 30 ok",
	}, "\n")
	p, err := ParsePalette(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xff}, p.Lookup(5, 0))
	for _, typ := range []int{1, 2, 3, 4} {
		assert.Equal(t, FallbackColor, p.Lookup(typ, 0), "type %d", typ)
	}
}

func TestPaletteVariantDefaultsToZero(t *testing.T) {
	p, err := ParsePalette(strings.NewReader(".\t7\t*\t-\t1\t2\t3\tstone\n"))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, p.Lookup(7, 0))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, p.Lookup(7, 5))
}

func TestPaletteClampsComponents(t *testing.T) {
	p, err := ParsePalette(strings.NewReader(". 1 0 - 300 -4 128 x\n"))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 128, A: 0xff}, p.Lookup(1, 0))
}

func TestKeyDoesNotCollide(t *testing.T) {
	seen := map[int][2]int{}
	for typ := 0; typ < 256; typ++ {
		for variant := 0; variant < 16; variant++ {
			key := Key(typ, variant)
			prev, dup := seen[key]
			require.False(t, dup, "(%d, %d) collides with %v", typ, variant, prev)
			seen[key] = [2]int{typ, variant}
		}
	}
	assert.Equal(t, 5, Key(5, 0))
	assert.Equal(t, -(3 + (5 << 4)), Key(5, 3))
}

func TestLoadPaletteMissingFile(t *testing.T) {
	_, err := LoadPalette("does/not/exist.txt")
	assert.ErrorIs(t, err, ErrNoPalette)
}

func TestPaletteLongLines(t *testing.T) {
	src := "# " + strings.Repeat("x", 70*1024) + "\n" +
		". 6 0 - 1 1 1 " + strings.Repeat("y", 70*1024) + "\n" +
		". 5 0 - 10 20 30 ok\n"
	p, err := ParsePalette(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xff}, p.Lookup(5, 0))
	assert.Equal(t, color.RGBA{R: 1, G: 1, B: 1, A: 0xff}, p.Lookup(6, 0))
}

func TestPaletteLineEndings(t *testing.T) {
	p, err := ParsePalette(strings.NewReader(". 1 0 - 1 2 3 a\r\n. 2 0 - 4 5 6 b"))
	require.NoError(t, err)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, color.RGBA{R: 4, G: 5, B: 6, A: 0xff}, p.Lookup(2, 0))
}

func TestPaletteReadError(t *testing.T) {
	boom := errors.New("disk gone")
	r := io.MultiReader(strings.NewReader(". 1 0 - 1 2 3 a\n"), iotest.ErrReader(boom))

	_, err := ParsePalette(r)
	assert.ErrorIs(t, err, boom)
}
