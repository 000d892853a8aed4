package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sno-scene-tools/internal/batch"
	"sno-scene-tools/internal/collection"
	"sno-scene-tools/internal/config"
	"sno-scene-tools/internal/raster"
	"sno-scene-tools/internal/texture"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Prepare(cmd.String("config"), config.Flags{
		Root:      cmd.String("root"),
		OutputDir: cmd.String("output"),
		Workers:   int(cmd.Int("workers")),
		LogLevel:  cmd.String("log-level"),
	})
	if err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cache, err := collection.Open(cfg.Scenes.Root,
		collection.WithExtension(cfg.Scenes.Extension),
		collection.WithDecodeOptions(cfg.Scenes.DecodeOptions()...),
		collection.WithLogger(logger))
	if err != nil {
		return err
	}

	texIndex := texture.BuildIndex(cfg.Textures.Dir)
	logger.Info("textures indexed", zap.String("dir", cfg.Textures.Dir), zap.Int("count", texIndex.Len()))

	preview := &batch.Preview{
		Root:      cfg.Scenes.Root,
		OutputDir: cfg.Render.OutputDir,
		Resolver:  texture.NewCache(texIndex, logger),
		Options: raster.Options{
			Size:        cfg.Render.Size,
			Supersample: cfg.Render.Supersample,
			Yaw:         cfg.Render.Yaw,
			Tilt:        cfg.Render.Tilt,
			Margin:      cfg.Render.Margin,
		},
		Fill:   cfg.Render.Fill,
		Logger: logger,
	}
	r := &renderer{
		logger:  logger,
		batch:   batch.Config{Workers: cfg.Workers, Visit: preview.Visit, Logger: logger},
		cache:   cache,
		preview: preview,
		failed:  make(map[string]time.Time),
	}

	if err := r.pass(ctx); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- cache.Watch(ctx, nil) }()

	interval := cmd.Duration("interval")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("watching for changes", zap.String("root", cfg.Scenes.Root), zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		case <-ticker.C:
			if err := r.pass(ctx); err != nil {
				return err
			}
		}
	}
}

// renderer re-renders documents that are not cached. After the first pass
// that is exactly the set the watcher evicted or added. Documents that
// failed are retried only once their modification time changes.
type renderer struct {
	logger  *zap.Logger
	batch   batch.Config
	cache   *collection.Cache
	preview *batch.Preview
	failed  map[string]time.Time
}

func (r *renderer) pass(ctx context.Context) error {
	var pending []string
	for p := range r.cache.Paths() {
		if r.cache.Cached(p) {
			continue
		}
		if at, ok := r.failed[p]; ok && at.Equal(modTime(p)) {
			continue
		}
		pending = append(pending, p)
	}
	if len(pending) == 0 {
		return nil
	}

	start := time.Now()
	results := batch.RunPaths(ctx, r.batch, r.cache, pending)

	failed := 0
	for _, res := range results {
		if res.Success {
			delete(r.failed, res.Path)
			continue
		}
		failed++
		r.failed[res.Path] = modTime(res.Path)
		r.logger.Warn("render failed", zap.String("path", res.Path), zap.String("error", res.Error))
	}

	if err := os.MkdirAll(r.preview.OutputDir, 0755); err != nil {
		return err
	}
	manifest := filepath.Join(r.preview.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifest, results, r.preview.OutputPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	r.logger.Info("rendered",
		zap.Int("documents", len(results)),
		zap.Int("failed", failed),
		zap.String("output", r.preview.OutputDir),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func main() {
	cmd := &cli.Command{
		Name:   "snorender",
		Usage:  "Render top-down WebP previews of every SNO scene node under a directory",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("SNO_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Scene directory (overrides scenes.root)",
				Sources: cli.EnvVars("SNO_ROOT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Preview directory (default: <root>/previews)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of worker goroutines (default: NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-render documents that change",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "How often to re-render changed documents in watch mode",
				Value: 2 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("SNO_LOG_LEVEL"),
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
