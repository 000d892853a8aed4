package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"

	"sno-scene-tools/internal/postprocess"
	"sno-scene-tools/internal/raster"
	"sno-scene-tools/internal/sno"
	"sno-scene-tools/internal/texture"
)

// Preview renders each visited document to a WebP file under OutputDir,
// mirroring the document's path relative to Root.
type Preview struct {
	Root      string
	OutputDir string
	Resolver  texture.Resolver
	Options   raster.Options
	Fill      float64 // see postprocess.Fit; 0 keeps the full frame
	Logger    *zap.Logger
}

// OutputPath maps a document path to its preview path.
func (p *Preview) OutputPath(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return filepath.Join(p.OutputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".webp")
}

// Visit is a VisitFunc.
func (p *Preview) Visit(_ context.Context, path string, doc *sno.Document) error {
	img, st := raster.RenderDocument(doc, p.Resolver, p.Options)
	if st.Skipped > 0 && p.Logger != nil {
		p.Logger.Debug("preview: faces skipped",
			zap.String("path", path),
			zap.Int("skipped", st.Skipped))
	}
	img = postprocess.Downsample(img, p.Options.Supersample)
	img = postprocess.Fit(img, p.Fill)

	outPath := p.OutputPath(path)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
