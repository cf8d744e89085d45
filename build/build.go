package build

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/b1naryth1ef/mcslices"
	"github.com/b1naryth1ef/mcslices/anvil"
)

type BuildOpts struct {
	ForceClean bool
	// NoManifest leaves only layer images in the output directory. Later
	// builds of the same output can then not skip unchanged worlds.
	NoManifest bool
	Metrics    *mcslices.Metrics
}

func ensureDirectory(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}

func metaPath(output, baseName string) string {
	return filepath.Join(output, baseName+".build.json")
}

// upToDate reports whether a previous build of the same world is still
// complete and no region changed since.
func upToDate(meta *mcslices.RenderMeta, timestamps map[string]int32) bool {
	if meta == nil || !maps.Equal(meta.RegionTimestamps, timestamps) {
		return false
	}
	for _, path := range meta.Files {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

func buildSlice(ctx context.Context, config *mcslices.Config, opts BuildOpts, sliceCfg *mcslices.SliceConfigBlock, memory *mcslices.MemorySampler) error {
	if sliceCfg.Palette == "" {
		return fmt.Errorf("slice %s: %w", sliceCfg.Name, mcslices.ErrNoPalette)
	}
	if sliceCfg.World == "" {
		return fmt.Errorf("slice %s: %w", sliceCfg.Name, mcslices.ErrNoWorld)
	}

	palette, err := mcslices.LoadPalette(sliceCfg.Palette)
	if err != nil {
		return fmt.Errorf("slice %s: %w", sliceCfg.Name, err)
	}

	world, err := anvil.Open(sliceCfg.World, sliceCfg.Dimension)
	if err != nil {
		return fmt.Errorf("slice %s: %w", sliceCfg.Name, err)
	}

	output := sliceCfg.GetOutput()
	err = ensureDirectory(output)
	if err != nil {
		return err
	}

	baseName := world.BaseName()
	buildMetaPath := metaPath(output, baseName)

	timestamps, err := world.Timestamps()
	if err != nil {
		return err
	}

	if !opts.ForceClean {
		meta, err := mcslices.LoadRenderMeta(buildMetaPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if upToDate(meta, timestamps) {
			log.Printf("[build] %s is up to date (%d layers)", sliceCfg.Name, len(meta.Files))
			return nil
		}
	}

	renderOpts := mcslices.WorldRenderOpts{
		BaseName:    baseName,
		Batch:       sliceCfg.BatchOpts(config.GetCalibration()),
		Concurrency: config.Concurrency,
		CacheChunks: sliceCfg.CacheChunks,
		Metrics:     opts.Metrics,
		Memory:      memory,
	}

	log.Printf("[build] rendering %s from %s (%d palette entries)", sliceCfg.Name, world.RegionDir(), palette.Len())

	renderer := mcslices.NewRenderer(palette, mcslices.NewSink(output))

	start := time.Now()
	result, err := renderer.RenderWorld(ctx, world, renderOpts)
	if err != nil {
		return fmt.Errorf("slice %s: %w", sliceCfg.Name, err)
	}

	if !opts.NoManifest {
		buildMeta := mcslices.RenderMeta{
			RegionTimestamps: timestamps,
			Files:            result.Files,
			Bounds:           result.Bounds,
		}
		err = buildMeta.Save(buildMetaPath)
		if err != nil {
			return err
		}
	}

	log.Printf("[build] Finished rendering %s in %dms (%d chunks, %d layers)", sliceCfg.Name, time.Since(start).Milliseconds(), result.Bounds.Chunks, len(result.Files))
	return nil
}

// Build renders every slice of config in order and stops at the first failure.
func Build(ctx context.Context, config *mcslices.Config, opts BuildOpts) error {
	memory, err := mcslices.NewMemorySampler()
	if err != nil {
		log.Printf("[build] memory sampling disabled: %v", err)
		memory = nil
	}

	for _, sliceCfg := range config.Slices {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := buildSlice(ctx, config, opts, sliceCfg, memory)
		if err != nil {
			return err
		}
	}

	return nil
}
