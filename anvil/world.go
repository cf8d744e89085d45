package anvil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/save/region"
	"github.com/b1naryth1ef/mcslices"
	"github.com/klauspost/compress/gzip"
)

var ErrWorldNotFound = errors.New("world not found")

var dimensionAliases = map[string]string{
	"nether":               "DIM-1",
	"the_nether":           "DIM-1",
	"minecraft:the_nether": "DIM-1",
	"end":                  "DIM1",
	"the_end":              "DIM1",
	"minecraft:the_end":    "DIM1",
}

// World is a Minecraft save directory, or one dimension of it.
type World struct {
	path      string
	dimension string
	regionDir string

	keys   *keyCache
	warned sync.Map
}

// Open locates the region files of a world. An empty dimension selects the
// overworld; "DIM-1", "nether", "minecraft:the_nether" and namespaced custom
// dimensions are accepted too.
func Open(path, dimension string) (*World, error) {
	regionDir := filepath.Join(path, "region")
	if dimension != "" {
		dir := dimension
		if alias, ok := dimensionAliases[dimension]; ok {
			dir = alias
		}

		if ns, name, ok := strings.Cut(dir, ":"); ok {
			regionDir = filepath.Join(path, "dimensions", ns, name, "region")
		} else {
			regionDir = filepath.Join(path, dir, "region")
		}
	}

	info, err := os.Stat(regionDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorldNotFound, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrWorldNotFound, regionDir)
	}

	return &World{
		path:      path,
		dimension: dimension,
		regionDir: regionDir,
		keys:      newKeyCache(),
	}, nil
}

// BaseName names the layer images: the world directory followed by the
// dimension, if one was selected.
func (w *World) BaseName() string {
	name := filepath.Base(filepath.Clean(w.path)) + w.dimension
	return strings.NewReplacer(":", "_", "/", "_", string(filepath.Separator), "_").Replace(name)
}

func (w *World) RegionDir() string {
	return w.regionDir
}

func (w *World) regionFiles() ([]string, error) {
	entries, err := os.ReadDir(w.regionDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mca" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Each decodes every generated chunk of the world and passes it to fn. Chunks
// are independent values and stay valid after fn returns. Region files and
// chunks that cannot be read are logged and skipped.
func (w *World) Each(ctx context.Context, fn func(mcslices.Chunk) error) error {
	names, err := w.regionFiles()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(w.regionDir, name)
		reg, err := region.Open(path)
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			w.warnOnce(path, "[anvil] failed to open region file %s: %v", path, err)
			continue
		}

		err = w.eachInRegion(reg, path, fn)
		reg.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *World) eachInRegion(reg *region.Region, path string, fn func(mcslices.Chunk) error) error {
	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			sector, err := reg.ReadSector(x, z)
			if errors.Is(err, region.ErrNoSector) {
				continue
			}
			if err != nil {
				w.warnOnce(fmt.Sprintf("%s/%d/%d", path, x, z), "[anvil] failed to read chunk (%d, %d) of %s: %v", x, z, path, err)
				continue
			}

			chunk, err := decodeChunk(sector, w.keys)
			if errors.Is(err, errChunkNotGenerated) {
				continue
			}
			if err != nil {
				w.warnOnce(fmt.Sprintf("%s/%d/%d", path, x, z), "[anvil] failed to decode chunk (%d, %d) of %s: %v", x, z, path, err)
				continue
			}

			if err := fn(chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

// warnOnce logs a problem the first time it is seen; worlds are read once per
// batch and would otherwise repeat the same message.
func (w *World) warnOnce(key string, format string, args ...any) {
	if _, seen := w.warned.LoadOrStore(key, struct{}{}); seen {
		return
	}
	log.Printf(format, args...)
}

// Timestamps returns the newest chunk timestamp of every region file, keyed
// by region name. Region files that cannot be opened are left out, the same
// way Each skips them.
func (w *World) Timestamps() (map[string]int32, error) {
	names, err := w.regionFiles()
	if err != nil {
		return nil, err
	}

	result := make(map[string]int32)
	for _, name := range names {
		path := filepath.Join(w.regionDir, name)
		reg, err := region.Open(path)
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			w.warnOnce(path, "[anvil] failed to open region file %s: %v", path, err)
			continue
		}

		var maxTimestamp int32
		for x := 0; x < 32; x++ {
			for z := 0; z < 32; z++ {
				if ts := reg.Timestamps[z][x]; ts > maxTimestamp {
					maxTimestamp = ts
				}
			}
		}
		reg.Close()

		result[strings.TrimSuffix(name, filepath.Ext(name))] = maxTimestamp
	}
	return result, nil
}

// VersionName reads the game version that last saved the world from its
// level.dat.
func (w *World) VersionName() (string, error) {
	fd, err := os.Open(filepath.Join(w.path, "level.dat"))
	if err != nil {
		return "", err
	}
	defer fd.Close()

	r, err := gzip.NewReader(fd)
	if err != nil {
		return "", err
	}
	defer r.Close()

	level, err := save.ReadLevel(r)
	if err != nil {
		return "", err
	}
	return level.Data.Version.Name, nil
}
