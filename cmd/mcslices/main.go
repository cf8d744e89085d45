package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"

	"github.com/b1naryth1ef/mcslices"
	"github.com/b1naryth1ef/mcslices/build"
	"github.com/urfave/cli/v2"
)

var renderFlags = []cli.Flag{
	&cli.PathFlag{
		Name:    "palette",
		Aliases: []string{"p"},
		Usage:   "palette file mapping block types to colors",
	},
	&cli.StringFlag{
		Name:    "dimension",
		Aliases: []string{"d"},
		Usage:   "dimension to render, e.g. DIM-1 or nether",
	},
	&cli.Float64Flag{
		Name:    "memory",
		Aliases: []string{"m"},
		Usage:   "memory budget in MiB, decides how many layers are rendered per pass",
	},
	&cli.IntFlag{
		Name:    "count",
		Aliases: []string{"c"},
		Usage:   "layers rendered per pass, ignored when --memory is set",
	},
	&cli.PathFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "directory the layer images are written to",
		Value:   ".",
	},
	&cli.IntFlag{
		Name:  "concurrency",
		Usage: "chunks painted in parallel",
		Value: runtime.GOMAXPROCS(0),
	},
	&cli.BoolFlag{
		Name:  "cache",
		Usage: "keep every chunk in memory instead of re-reading the world for each pass",
	},
	&cli.PathFlag{
		Name:  "config",
		Usage: "optional configuration file providing calibration and metrics settings",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve prometheus metrics on this address while rendering",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "mcslices",
		Usage:       "mcslices <world> -p <palette> [-m MiB] [-d dimension] [-c count]",
		Description: "renders every horizontal layer of a minecraft world to a png image",
		Flags:       renderFlags,
		Action:      commandRender,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "render every slice of a configuration file",
				Action: commandBuild,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "slices.hcl",
					},
					&cli.BoolFlag{
						Name:  "clean",
						Usage: "force a clean build ignoring region modification time data",
						Value: false,
					},
				},
			},
			{
				Name:   "palette",
				Usage:  "generate a palette file for every known block",
				Action: commandPalette,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "palette file to write",
						Value:   "palette.txt",
					},
					&cli.PathFlag{
						Name:  "jar",
						Usage: "minecraft client jar to take block textures from",
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "download the client jar of this minecraft version",
					},
					&cli.PathFlag{
						Name:  "world",
						Usage: "take the minecraft version from this world's level.dat",
					},
					&cli.PathFlag{
						Name:  "cache-dir",
						Usage: "directory downloaded client jars are kept in",
						Value: "res",
					},
					&cli.BoolFlag{
						Name:  "no-textures",
						Usage: "generate every color instead of averaging textures",
					},
				},
			},
		},
	}
}

func main() {
	app := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := app.RunContext(ctx, normalizeArgs(app, os.Args))
	if err != nil {
		log.Fatal(err)
	}
}

func serveMetrics(addr string, metrics *mcslices.Metrics) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		err := http.ListenAndServe(addr, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[metrics] server stopped: %v", err)
		}
	}()
	log.Printf("[metrics] serving on %s/metrics", addr)
}

func commandRender(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		cli.ShowAppHelp(ctx)
		return cli.Exit("no world specified", 1)
	}
	if ctx.Path("palette") == "" {
		return cli.Exit("no palette file specified. use -p (palette file)", 1)
	}

	config := &mcslices.Config{}
	if path := ctx.Path("config"); path != "" {
		loaded, err := mcslices.LoadConfig(path)
		if err != nil {
			return err
		}
		config = loaded
	}
	config.Concurrency = ctx.Int("concurrency")
	if ctx.IsSet("metrics-addr") {
		config.MetricsAddr = ctx.String("metrics-addr")
	}

	memory := ctx.Float64("memory")
	if memory < 0 {
		memory = 0
	}

	config.Slices = []*mcslices.SliceConfigBlock{
		{
			Name:        "render",
			World:       ctx.Args().Get(ctx.NArg() - 1),
			Palette:     ctx.Path("palette"),
			Dimension:   ctx.String("dimension"),
			Output:      ctx.Path("output"),
			MemoryMB:    memory,
			Batch:       ctx.Int("count"),
			CacheChunks: ctx.Bool("cache"),
		},
	}

	metrics := mcslices.NewMetrics()
	serveMetrics(config.MetricsAddr, metrics)

	return build.Build(ctx.Context, config, build.BuildOpts{
		ForceClean: true,
		NoManifest: true,
		Metrics:    metrics,
	})
}

func commandBuild(ctx *cli.Context) error {
	config, err := mcslices.LoadConfig(ctx.Path("config"))
	if err != nil {
		return err
	}

	metrics := mcslices.NewMetrics()
	serveMetrics(config.MetricsAddr, metrics)

	return build.Build(ctx.Context, config, build.BuildOpts{
		ForceClean: ctx.Bool("clean"),
		Metrics:    metrics,
	})
}

func commandPalette(ctx *cli.Context) error {
	return build.GeneratePalette(ctx.Context, build.PaletteOpts{
		Jar:        ctx.Path("jar"),
		Version:    ctx.String("version"),
		World:      ctx.Path("world"),
		CacheDir:   ctx.Path("cache-dir"),
		NoTextures: ctx.Bool("no-textures"),
		Output:     ctx.Path("output"),
	})
}
