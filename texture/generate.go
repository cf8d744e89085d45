package texture

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"log"
	"sort"

	"github.com/b1naryth1ef/mcslices/anvil"
	"github.com/muesli/gamut"
)

// blocks left out of generated palettes so they render as the background
var airBlocks = map[string]struct{}{
	"minecraft:air":      {},
	"minecraft:cave_air": {},
	"minecraft:void_air": {},
}

func isAirBlock(block string) bool {
	_, ok := airBlocks[block]
	return ok
}

// Entry is one palette directive.
type Entry struct {
	Name    string
	Type    int
	Variant int
	Color   color.RGBA
	// Generated is set when the color did not come from a texture.
	Generated bool
}

// Generate builds palette entries for blocks. With colors set the color of a
// block comes from its texture; blocks without a usable texture, or every
// block when colors is nil, get distinct generated pastel colors.
func Generate(blocks []anvil.BlockEntry, colors *BlockColors) ([]Entry, error) {
	var entries []Entry
	var missing []int

	for _, block := range blocks {
		if isAirBlock(block.Name) {
			continue
		}

		entry := Entry{Name: block.Name, Type: block.Type}
		if colors != nil {
			clr, err := colors.Color(block.Name)
			if err == nil {
				entry.Color = clr
				entries = append(entries, entry)
				continue
			}
			log.Printf("[palette] no texture color for %s: %v", block.Name, err)
		}

		entry.Generated = true
		missing = append(missing, len(entries))
		entries = append(entries, entry)
	}

	if len(missing) > 0 {
		generated, err := gamut.Generate(len(missing), gamut.PastelGenerator{})
		if err != nil {
			return nil, fmt.Errorf("failed to generate colors: %w", err)
		}
		for i, idx := range missing {
			entries[idx].Color = toRGBA(generated[i])
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].Variant < entries[j].Variant
	})
	return entries, nil
}

// WritePalette writes entries in the palette text format read by
// mcslices.ParsePalette.
func WritePalette(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# mcslices palette")
	fmt.Fprintln(bw, "# . <type> <variant> <source> <r> <g> <b> <name>")
	for _, e := range entries {
		source := "texture"
		if e.Generated {
			source = "generated"
		}
		fmt.Fprintf(bw, ". %d %d %s %d %d %d %s\n", e.Type, e.Variant, source, e.Color.R, e.Color.G, e.Color.B, e.Name)
	}

	return bw.Flush()
}
