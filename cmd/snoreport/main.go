package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sno-scene-tools/internal/batch"
	"sno-scene-tools/internal/collection"
	"sno-scene-tools/internal/config"
	"sno-scene-tools/internal/report"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Prepare(cmd.String("config"), config.Flags{
		Root:     cmd.String("root"),
		Report:   cmd.String("output"),
		Workers:  int(cmd.Int("workers")),
		LogLevel: cmd.String("log-level"),
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
	if cache.Len() == 0 {
		logger.Info("no documents found", zap.String("root", cfg.Scenes.Root))
		return nil
	}

	logger.Info("scanning",
		zap.String("root", cfg.Scenes.Root),
		zap.Int("documents", cache.Len()),
		zap.Int("workers", cfg.Workers))

	start := time.Now()
	results := batch.Run(ctx, batch.Config{Workers: cfg.Workers, Logger: logger}, cache)
	totals := batch.Tally(results)

	if err := report.Write(cfg.Report.Output, totals); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if manifest := cmd.String("manifest"); manifest != "" {
		if err := batch.WriteManifest(manifest, results, nil); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	logger.Info("report written",
		zap.String("path", cfg.Report.Output),
		zap.Int("documents", totals.Documents),
		zap.Int("failed", totals.Failed),
		zap.Int("visit_failed", totals.VisitFailed),
		zap.Uint64("faces", totals.FaceCount),
		zap.Strings("top_textures", totals.TopTextures(5)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "snoreport",
		Usage:  "Decode every SNO scene node under a directory and write usage statistics",
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
				Usage:   "Report JSON path (default: report.json)",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Also write a per-document manifest JSON to this path",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of worker goroutines (default: NumCPU)",
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
