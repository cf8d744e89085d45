package anvil

import "fmt"

// legacyChunk is the pre-flattening layout: one byte of block id per cell,
// optionally extended by the Add nibbles, plus a metadata nibble.
type legacyChunk struct {
	Level struct {
		XPos     int32               `nbt:"xPos"`
		ZPos     int32               `nbt:"zPos"`
		Sections []legacySectionData `nbt:"Sections"`
	} `nbt:"Level"`
}

type legacySectionData struct {
	Y      int8   `nbt:"Y"`
	Blocks []byte `nbt:"Blocks"`
	Add    []byte `nbt:"Add"`
	Data   []byte `nbt:"Data"`
}

type legacySection struct {
	blocks []byte
	add    []byte
	data   []byte
}

func nibble(arr []byte, i int) int {
	if len(arr) == 0 {
		return 0
	}
	v := arr[i>>1]
	if i&1 == 0 {
		return int(v & 0x0f)
	}
	return int(v>>4) & 0x0f
}

func (s *legacySection) get(i int) (int, int) {
	id := int(s.blocks[i]) | nibble(s.add, i)<<8
	return id, nibble(s.data, i)
}

func newLegacyChunk(raw *legacyChunk) (*Chunk, error) {
	c := &Chunk{
		x:      int(raw.Level.XPos),
		z:      int(raw.Level.ZPos),
		legacy: []*legacySection{},
	}

	top := -1
	for _, section := range raw.Level.Sections {
		if section.Y >= 0 && int(section.Y) > top && len(section.Blocks) > 0 {
			top = int(section.Y)
		}
	}
	if top < 0 {
		return c, nil
	}

	c.legacy = make([]*legacySection, top+1)
	for _, section := range raw.Level.Sections {
		if section.Y < 0 || len(section.Blocks) == 0 {
			continue
		}
		if len(section.Blocks) != sectionVolume {
			return nil, fmt.Errorf("section %d of chunk (%d, %d) has %d blocks", section.Y, c.x, c.z, len(section.Blocks))
		}
		if n := len(section.Data); n != 0 && n != sectionVolume/2 {
			return nil, fmt.Errorf("section %d of chunk (%d, %d) has %d bytes of block data", section.Y, c.x, c.z, n)
		}
		if n := len(section.Add); n != 0 && n != sectionVolume/2 {
			return nil, fmt.Errorf("section %d of chunk (%d, %d) has %d bytes of add data", section.Y, c.x, c.z, n)
		}

		c.legacy[section.Y] = &legacySection{
			blocks: section.Blocks,
			add:    section.Add,
			data:   section.Data,
		}
	}
	c.height = len(c.legacy) * sectionSize

	return c, nil
}
