package anvil

import (
	"log"
	"sync"

	"github.com/Tnze/go-mc/level/block"
	"github.com/Tnze/go-mc/save"
)

// Modern worlds identify blocks by name and properties. They are mapped onto
// (type, variant) pairs through the global block state registry: the type is
// the first state id of the block and the variant is the offset of the exact
// state from it, so the default variant 0 covers every state of a block.

type stateTable struct {
	base  []int
	first map[string]int
}

var states = sync.OnceValue(func() *stateTable {
	t := &stateTable{
		base:  make([]int, len(block.StateList)),
		first: make(map[string]int),
	}

	base := 0
	for i, b := range block.StateList {
		if i == 0 || b.ID() != block.StateList[i-1].ID() {
			base = i
			t.first[b.ID()] = i
		}
		t.base[i] = base
	}
	return t
})

// StateKey returns the (type, variant) pair of a global block state id.
func StateKey(id int) (typ, variant int) {
	t := states()
	if id < 0 || id >= len(t.base) {
		return 0, 0
	}
	return t.base[id], id - t.base[id]
}

// BlockType returns the type of a block name, the id of its first state.
func BlockType(name string) (int, bool) {
	id, ok := states().first[name]
	return id, ok
}

// BlockNames lists every registered block with its type, in state order.
func BlockNames() []BlockEntry {
	var entries []BlockEntry
	for i, b := range block.StateList {
		if i == 0 || b.ID() != block.StateList[i-1].ID() {
			entries = append(entries, BlockEntry{Name: b.ID(), Type: i})
		}
	}
	return entries
}

type BlockEntry struct {
	Name string
	Type int
}

// cellKey is the resolved (type, variant) pair of one palette entry.
type cellKey struct {
	typ     int32
	variant int32
}

// keyCache resolves chunk palette entries. Resolving a state decodes its
// properties, so results are kept per world.
type keyCache struct {
	sync.RWMutex

	keys    map[string]cellKey
	unknown map[string]struct{}
}

func newKeyCache() *keyCache {
	return &keyCache{
		keys:    make(map[string]cellKey),
		unknown: make(map[string]struct{}),
	}
}

func (c *keyCache) get(state save.BlockState) cellKey {
	stateStr := state.Name + "/" + state.Properties.String()

	c.RLock()
	key, ok := c.keys[stateStr]
	c.RUnlock()
	if ok {
		return key
	}

	key = c.resolve(state)

	c.Lock()
	c.keys[stateStr] = key
	c.Unlock()
	return key
}

func (c *keyCache) resolve(state save.BlockState) cellKey {
	b, ok := block.FromID[state.Name]
	if !ok {
		c.Lock()
		if _, seen := c.unknown[state.Name]; !seen {
			c.unknown[state.Name] = struct{}{}
			log.Printf("[anvil] unknown block %s, rendering it as air", state.Name)
		}
		c.Unlock()
		return cellKey{}
	}

	if state.Properties.Data != nil {
		if err := state.Properties.Unmarshal(&b); err == nil {
			if id, ok := block.ToStateID[b]; ok {
				typ, variant := StateKey(int(id))
				return cellKey{typ: int32(typ), variant: int32(variant)}
			}
		}
	} else if id, ok := block.ToStateID[b]; ok {
		typ, variant := StateKey(int(id))
		return cellKey{typ: int32(typ), variant: int32(variant)}
	}

	typ, _ := BlockType(state.Name)
	return cellKey{typ: int32(typ)}
}
