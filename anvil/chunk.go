package anvil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/Tnze/go-mc/level"
	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	sectionSize   = 16
	sectionVolume = sectionSize * sectionSize * sectionSize

	// chunks written before the flattening store numeric ids and metadata
	flatteningVersion = 1451
	// chunks written since 1.18 use the sections layout read by save.Chunk
	modernVersion = 2860
)

var (
	ErrUnsupportedCompression = errors.New("unsupported chunk compression")
	ErrUnsupportedVersion     = errors.New("unsupported chunk data version")
	errChunkNotGenerated      = errors.New("chunk is not fully generated")
)

// calcBitsPerValue returns the width of a packed palette index. Sections
// never pack with fewer than 4 bits, and a single entry palette has no data.
func calcBitsPerValue(paletteLen int) int {
	if paletteLen <= 1 {
		return 0
	}
	n := bits.Len(uint(paletteLen - 1))
	if n < 4 {
		n = 4
	}
	return n
}

// sectionIndex is the offset of a cell inside a 16x16x16 section, YZX order.
func sectionIndex(x, y, z int) int {
	return (((y * sectionSize) + z) * sectionSize) + x
}

// modernSection holds the resolved palette of a section and its packed
// indices into it. storage is nil when the palette has a single entry.
type modernSection struct {
	keys    []cellKey
	storage *level.BitStorage
}

// Chunk is a decoded chunk of an Anvil region file.
type Chunk struct {
	x, z   int
	height int

	// exactly one of these is set
	sections []*modernSection
	legacy   []*legacySection
}

func (c *Chunk) X() int      { return c.x }
func (c *Chunk) Z() int      { return c.z }
func (c *Chunk) Width() int  { return sectionSize }
func (c *Chunk) Height() int { return c.height }
func (c *Chunk) Depth() int  { return sectionSize }

// Cell returns the (type, variant) of a block. Missing sections read as air.
func (c *Chunk) Cell(x, y, z int) (int, int) {
	s := y / sectionSize
	i := sectionIndex(x, y%sectionSize, z)

	if c.legacy != nil {
		if s >= len(c.legacy) || c.legacy[s] == nil {
			return 0, 0
		}
		return c.legacy[s].get(i)
	}

	if s >= len(c.sections) || c.sections[s] == nil {
		return 0, 0
	}
	sc := c.sections[s]
	if sc.storage == nil {
		return int(sc.keys[0].typ), int(sc.keys[0].variant)
	}
	idx := sc.storage.Get(i)
	if idx >= len(sc.keys) {
		return 0, 0
	}
	key := sc.keys[idx]
	return int(key.typ), int(key.variant)
}

// decompress strips the compression byte that prefixes every sector.
func decompress(sector []byte) ([]byte, error) {
	if len(sector) == 0 {
		return nil, fmt.Errorf("sector is empty")
	}

	var r io.Reader = bytes.NewReader(sector[1:])
	var err error
	switch sector[0] {
	case 1:
		r, err = gzip.NewReader(r)
	case 2:
		r, err = zlib.NewReader(r)
	case 3:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, sector[0])
	}
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

var generatedStatuses = map[string]struct{}{
	"full":                    {},
	"minecraft:full":          {},
	"minecraft:spawn":         {},
	"minecraft:postprocessed": {},
	"minecraft:fullchunk":     {},
}

// decodeChunk parses a region sector into a Chunk.
func decodeChunk(sector []byte, cache *keyCache) (*Chunk, error) {
	raw, err := decompress(sector)
	if err != nil {
		return nil, err
	}

	var chunk save.Chunk
	if err := nbt.Unmarshal(raw, &chunk); err != nil {
		return nil, err
	}

	switch {
	case chunk.DataVersion >= modernVersion:
		if _, ok := generatedStatuses[chunk.Status]; !ok {
			return nil, errChunkNotGenerated
		}
		return newModernChunk(&chunk, cache)
	case chunk.DataVersion < flatteningVersion:
		var legacy legacyChunk
		if err := nbt.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		return newLegacyChunk(&legacy)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, chunk.DataVersion)
	}
}

// newModernChunk resolves every section palette up front so Cell is a plain
// table lookup. Sections below the chunk's yPos only carry light data and are
// ignored; layer 0 is the bottom of the world.
func newModernChunk(chunk *save.Chunk, cache *keyCache) (*Chunk, error) {
	c := &Chunk{
		x: int(chunk.XPos),
		z: int(chunk.ZPos),
	}

	top := -1
	for _, section := range chunk.Sections {
		i := int(section.Y) - int(chunk.YPos)
		if i < 0 || len(section.BlockStates.Palette) == 0 {
			continue
		}
		if i > top {
			top = i
		}
	}
	if top < 0 {
		return c, nil
	}

	c.sections = make([]*modernSection, top+1)
	for _, section := range chunk.Sections {
		i := int(section.Y) - int(chunk.YPos)
		if i < 0 || i > top || len(section.BlockStates.Palette) == 0 {
			continue
		}

		var storage *level.BitStorage
		if n := calcBitsPerValue(len(section.BlockStates.Palette)); n > 0 {
			perLong := 64 / n
			if want := (sectionVolume + perLong - 1) / perLong; len(section.BlockStates.Data) != want {
				return nil, fmt.Errorf("section %d of chunk (%d, %d) has %d longs of block data, want %d", section.Y, c.x, c.z, len(section.BlockStates.Data), want)
			}
			storage = level.NewBitStorage(n, sectionVolume, section.BlockStates.Data)
		}

		keys := make([]cellKey, len(section.BlockStates.Palette))
		for j, state := range section.BlockStates.Palette {
			keys[j] = cache.get(state)
		}

		c.sections[i] = &modernSection{
			keys:    keys,
			storage: storage,
		}
	}
	c.height = len(c.sections) * sectionSize

	return c, nil
}
