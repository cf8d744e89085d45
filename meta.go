package mcslices

import (
	"encoding/json"
	"os"
)

// RenderMeta is stored next to the rendered layers and lets later builds
// skip worlds that have not changed.
type RenderMeta struct {
	RegionTimestamps map[string]int32
	Files            []string
	Bounds           Bounds
}

func LoadRenderMeta(path string) (*RenderMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta RenderMeta
	err = json.Unmarshal(data, &meta)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (m *RenderMeta) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type WorldRenderOpts struct {
	// BaseName prefixes every layer file.
	BaseName    string
	Batch       BatchOpts
	Concurrency int
	// CacheChunks reads the world once and keeps every chunk in memory
	// instead of re-reading it for each batch.
	CacheChunks bool

	Metrics *Metrics
	Memory  *MemorySampler
}

type WorldRenderResult struct {
	Bounds       Bounds
	BatchSize    int
	Files        []string
	PeakResident uint64
}
