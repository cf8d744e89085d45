package mcslices

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
)

// FallbackColor is returned for cells whose type has no palette entry.
var FallbackColor = color.RGBA{A: 0xff}

const (
	paletteMarker    = "."
	paletteMinFields = 8
)

// Palette maps (type, variant) pairs to colors. A palette is filled once while
// loading and only read afterwards, so it can be shared between workers.
type Palette struct {
	colors map[int]color.RGBA
}

func NewPalette() *Palette {
	return &Palette{
		colors: make(map[int]color.RGBA),
	}
}

// Key returns the table key for a (type, variant) pair. Entries with a variant
// are stored under negative keys so they never collide with plain types.
func Key(typ, variant int) int {
	if variant != 0 {
		return -(variant + (typ << 4))
	}
	return typ
}

func (p *Palette) Set(typ, variant int, clr color.RGBA) {
	clr.A = 0xff
	p.colors[Key(typ, variant)] = clr
}

// Lookup resolves the exact pair first, then the plain type, then FallbackColor.
func (p *Palette) Lookup(typ, variant int) color.RGBA {
	if clr, ok := p.colors[Key(typ, variant)]; ok {
		return clr
	}
	if clr, ok := p.colors[typ]; ok {
		return clr
	}
	return FallbackColor
}

func (p *Palette) Len() int {
	return len(p.colors)
}

// LoadPalette reads a palette file from disk.
func LoadPalette(path string) (*Palette, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPalette, err)
	}
	defer fd.Close()

	return ParsePalette(fd)
}

// ParsePalette reads palette directives of the form
//
//	. <type> <variant> <unused> <r> <g> <b> <unused>
//
// Lines not starting with "." are ignored, and so are directives that are too
// short or whose type or color components are not integers. A variant that is
// not an integer is treated as 0. Lines may be of any length; only read
// errors fail the parse.
func ParsePalette(r io.Reader) (*Palette, error) {
	p := NewPalette()

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		eof := err != nil

		p.parseLine(strings.TrimRight(line, "\r\n"))
		if eof {
			return p, nil
		}
	}
}

// parseLine applies one palette directive and drops anything malformed.
func (p *Palette) parseLine(line string) {
	if !strings.HasPrefix(line, paletteMarker) {
		return
	}

	fields := strings.Fields(line)
	if len(fields) < paletteMinFields {
		return
	}

	typ, err := strconv.Atoi(fields[1])
	if err != nil {
		return
	}
	r, err := parseComponent(fields[4])
	if err != nil {
		return
	}
	g, err := parseComponent(fields[5])
	if err != nil {
		return
	}
	b, err := parseComponent(fields[6])
	if err != nil {
		return
	}

	variant, err := strconv.Atoi(fields[2])
	if err != nil {
		variant = 0
	}

	p.Set(typ, variant, color.RGBA{R: r, G: g, B: b, A: 0xff})
}

// parseComponent accepts any integer and clamps it into a color channel.
func parseComponent(raw string) (uint8, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, nil
	} else if v > 0xff {
		return 0xff, nil
	}
	return uint8(v), nil
}
