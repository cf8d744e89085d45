package texture

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

var grassBlocks = map[string]struct{}{
	"minecraft:grass":       {},
	"minecraft:grass_block": {},
	"minecraft:short_grass": {},
	"minecraft:tall_grass":  {},
	"minecraft:vine":        {},
	"minecraft:fern":        {},
	"minecraft:large_fern":  {},
}

var foliageBlocks = map[string]struct{}{
	"minecraft:oak_leaves":      {},
	"minecraft:jungle_leaves":   {},
	"minecraft:acacia_leaves":   {},
	"minecraft:dark_oak_leaves": {},
	"minecraft:mangrove_leaves": {},
}

var fixedColors = map[string]color.RGBA{
	"minecraft:birch_leaves":  {R: 0x80, G: 0xa7, B: 0x55, A: 0xff},
	"minecraft:spruce_leaves": {R: 0x61, G: 0x99, B: 0x61, A: 0xff},
	"minecraft:water":         {R: 0x3f, G: 0x76, B: 0xe4, A: 0xff},
	"minecraft:lava":          {R: 0xcf, G: 0x5b, B: 0x14, A: 0xff},
}

// Biome carries the climate values that pick a colormap pixel.
type Biome struct {
	Temperature float64 `json:"temperature"`
	Downfall    float64 `json:"downfall"`
}

// Plains is used to tint grass and foliage; a palette has no biome data.
var Plains = Biome{Temperature: 0.8, Downfall: 0.4}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	} else if v > max {
		return max
	} else {
		return v
	}
}

func (b *Biome) ColorMapCoords() (int, int) {
	r := clamp(b.Downfall, 0, 1) * clamp(b.Temperature, 0, 1)
	x := int(math.Ceil(255 - (clamp(b.Temperature, 0, 1) * 255)))
	y := int(math.Ceil(255 - (r * 255)))
	return x, y
}

// AverageColor is the alpha weighted mean color of an image. Fully
// transparent images have no color.
func AverageColor(img image.Image) (color.RGBA, bool) {
	bounds := img.Bounds()
	var rr, gg, bb, aa float64
	for i := bounds.Min.X; i < bounds.Max.X; i++ {
		for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
			// RGBA is alpha premultiplied, so the sums are already weighted
			r, g, b, a := img.At(i, j).RGBA()
			rr += float64(r)
			gg += float64(g)
			bb += float64(b)
			aa += float64(a)
		}
	}
	if aa == 0 {
		return color.RGBA{}, false
	}

	return color.RGBA{
		R: uint8(math.Round(rr / aa * 0xff)),
		G: uint8(math.Round(gg / aa * 0xff)),
		B: uint8(math.Round(bb / aa * 0xff)),
		A: 0xff,
	}, true
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// BlockColors computes block colors from client textures.
type BlockColors struct {
	loader *AssetLoader
	biome  Biome

	grassColorMap   image.Image
	foliageColorMap image.Image
}

func NewBlockColors(loader *AssetLoader) (*BlockColors, error) {
	grassColorMap, err := loader.LoadPNG("assets/minecraft/textures/colormap/grass.png")
	if err != nil {
		return nil, fmt.Errorf("failed to load grass colormap: %w", err)
	}
	foliageColorMap, err := loader.LoadPNG("assets/minecraft/textures/colormap/foliage.png")
	if err != nil {
		return nil, fmt.Errorf("failed to load foliage colormap: %w", err)
	}

	return &BlockColors{
		loader:          loader,
		biome:           Plains,
		grassColorMap:   grassColorMap,
		foliageColorMap: foliageColorMap,
	}, nil
}

// Color returns the color of a block seen from above.
func (b *BlockColors) Color(block string) (color.RGBA, error) {
	if clr, ok := fixedColors[block]; ok {
		return clr, nil
	}
	if _, ok := grassBlocks[block]; ok {
		x, y := b.biome.ColorMapCoords()
		return toRGBA(b.grassColorMap.At(x, y)), nil
	}
	if _, ok := foliageBlocks[block]; ok {
		x, y := b.biome.ColorMapCoords()
		return toRGBA(b.foliageColorMap.At(x, y)), nil
	}

	name, err := b.loader.BlockTexture(block)
	if err != nil {
		return color.RGBA{}, err
	}

	texture, err := b.loader.LoadPNG(fmt.Sprintf("assets/minecraft/textures/%s.png", name))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("failed to load texture image %s: %w", name, err)
	}

	clr, ok := AverageColor(texture)
	if !ok {
		return color.RGBA{}, fmt.Errorf("texture %s is fully transparent", name)
	}
	return clr, nil
}
