package build

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/b1naryth1ef/mcslices/anvil"
	"github.com/b1naryth1ef/mcslices/dl"
	"github.com/b1naryth1ef/mcslices/texture"
)

type PaletteOpts struct {
	// Jar is a Minecraft client jar to take block textures from.
	Jar string
	// Version downloads the client jar of that release into CacheDir when Jar
	// is not set. World fills it in from level.dat when empty.
	Version  string
	World    string
	CacheDir string
	// NoTextures skips the client jar and generates every color.
	NoTextures bool

	Output string
}

func clientJar(ctx context.Context, opts PaletteOpts) (string, error) {
	if opts.Jar != "" {
		return opts.Jar, nil
	}

	version := opts.Version
	if version == "" && opts.World != "" {
		world, err := anvil.Open(opts.World, "")
		if err != nil {
			return "", err
		}
		version, err = world.VersionName()
		if err != nil {
			return "", fmt.Errorf("failed to read world version: %w", err)
		}
	}
	if version == "" {
		return "", nil
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = "res"
	}
	err := ensureDirectory(cacheDir)
	if err != nil {
		return "", err
	}

	clientJarPath := filepath.Join(cacheDir, fmt.Sprintf("client-%s.jar", version))
	if _, err := os.Stat(clientJarPath); os.IsNotExist(err) {
		log.Printf("[palette] downloading client %s", version)
		err = dl.NewClient().DownloadClientJar(ctx, version, clientJarPath)
		if err != nil {
			return "", err
		}
	}
	return clientJarPath, nil
}

// GeneratePalette writes a palette covering every known block to opts.Output.
func GeneratePalette(ctx context.Context, opts PaletteOpts) error {
	var colors *texture.BlockColors
	if !opts.NoTextures {
		jar, err := clientJar(ctx, opts)
		if err != nil {
			return err
		}

		if jar != "" {
			assetLoader, err := texture.NewAssetLoaderFromClientJAR(jar)
			if err != nil {
				return err
			}
			defer assetLoader.Close()

			colors, err = texture.NewBlockColors(assetLoader)
			if err != nil {
				return err
			}
		} else {
			log.Printf("[palette] no client jar given, generating every color")
		}
	}

	entries, err := texture.Generate(anvil.BlockNames(), colors)
	if err != nil {
		return err
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	err = texture.WritePalette(out, entries)
	if err != nil {
		return err
	}

	log.Printf("[palette] wrote %d entries to %s", len(entries), opts.Output)
	return out.Close()
}
