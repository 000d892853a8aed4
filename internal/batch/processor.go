// Package batch decodes every document of a collection in parallel.
package batch

import (
	"context"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sno-scene-tools/internal/collection"
	"sno-scene-tools/internal/report"
	"sno-scene-tools/internal/sno"
)

// VisitFunc runs after a document decodes, e.g. to render a preview.
type VisitFunc func(ctx context.Context, path string, doc *sno.Document) error

// Config holds the shared settings for a batch run.
type Config struct {
	Workers  int
	Visit    VisitFunc
	Logger   *zap.Logger
	Progress time.Duration
}

// Result holds the outcome of processing one document.
type Result struct {
	Path     string        `json:"path"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Stats    *report.Stats `json:"stats,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Run processes every path known to cache. A failing document produces a
// failed Result and never stops the others. Cancelling ctx stops
// scheduling; documents already being decoded finish.
func Run(ctx context.Context, cfg Config, cache *collection.Cache) []Result {
	return RunPaths(ctx, cfg, cache, slices.Collect(cache.Paths()))
}

// RunPaths is Run restricted to paths, in the given order.
func RunPaths(ctx context.Context, cfg Config, cache *collection.Cache, paths []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}

	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					cfg.Logger.Info("batch: progress",
						zap.Int64("processed", p),
						zap.Int("total", total),
						zap.Float64("docs_per_sec", rate))
				}
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			results[i] = Result{Path: path, Error: ctx.Err().Error()}
			continue
		}
		g.Go(func() error {
			results[i] = process(ctx, cfg, cache, path)
			processed.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	close(done)

	cfg.Logger.Info("batch: done",
		zap.Int("total", total),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func process(ctx context.Context, cfg Config, cache *collection.Cache, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	doc, err := cache.Get(path)
	if err != nil {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		cfg.Logger.Warn("batch: decode failed", zap.String("path", path), zap.Error(err))
		return res
	}

	stats := report.Summarize(path, doc)
	res.Stats = &stats

	if cfg.Visit != nil {
		if err := cfg.Visit(ctx, path, doc); err != nil {
			res.Error = err.Error()
			res.Duration = time.Since(start)
			cfg.Logger.Warn("batch: visit failed", zap.String("path", path), zap.Error(err))
			return res
		}
	}

	res.Success = true
	res.Duration = time.Since(start)
	return res
}

// Tally folds results into report totals.
func Tally(results []Result) *report.Totals {
	t := report.NewTotals()
	for _, r := range results {
		switch {
		case r.Stats != nil:
			t.Add(*r.Stats)
			if !r.Success {
				t.VisitFail(r.Path, errString(r.Error))
			}
		default:
			t.Fail(r.Path, errString(r.Error))
		}
	}
	return t
}

type errString string

func (e errString) Error() string { return string(e) }
