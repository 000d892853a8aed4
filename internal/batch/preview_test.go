package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sno-scene-tools/internal/raster"
	"sno-scene-tools/internal/sno"
)

func TestPreviewOutputPath(t *testing.T) {
	p := &Preview{Root: "/scenes", OutputDir: "/out"}
	assert.Equal(t, filepath.Join("/out", "zone", "a.webp"), p.OutputPath(filepath.Join("/scenes", "zone", "a.scn")))
	assert.Equal(t, filepath.Join("/out", "b.webp"), p.OutputPath("/elsewhere/b.scn"))
}

func TestPreviewWritesWebP(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	p := &Preview{
		Root:      root,
		OutputDir: out,
		Options:   raster.Options{Size: 16, Supersample: 2},
	}

	doc := &sno.Document{
		VertexArray: []sno.Vertex{
			{Position: sno.V3{X: 0, Y: 0}, Color: sno.Color{G: 200, A: 255}},
			{Position: sno.V3{X: 4, Y: 0}, Color: sno.Color{G: 200, A: 255}},
			{Position: sno.V3{X: 0, Y: 4}, Color: sno.Color{G: 200, A: 255}},
		},
		SurfaceArray: []sno.Surface{{VertexCount: 3, FaceArray: []sno.Face{{A: 0, B: 1, C: 2}}}},
	}
	path := filepath.Join(root, "zone", "field.scn")
	require.NoError(t, p.Visit(context.Background(), path, doc))

	data, err := os.ReadFile(filepath.Join(out, "zone", "field.webp"))
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}
