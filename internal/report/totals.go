package report

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"sno-scene-tools/internal/sno"
)

// Failure stages.
const (
	StageDecode = "decode"
	StageVisit  = "visit"
)

// Failure records a document that could not be decoded, or that decoded but
// failed a later step such as rendering.
type Failure struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Totals aggregates Stats across a tree of documents.
type Totals struct {
	Documents int `json:"documents"`
	Failed    int `json:"failed"`

	// VisitFailed counts decoded documents whose follow-up step failed.
	// They are also counted in Documents.
	VisitFailed int `json:"visit_failed"`

	CornerCount uint64 `json:"corner_count"`
	FaceCount   uint64 `json:"face_count"`
	Vertices    uint64 `json:"vertices"`
	Surfaces    uint64 `json:"surfaces"`

	LogicalMeshes int               `json:"logical_meshes"`
	Floors        map[sno.Floor]int `json:"floors"`
	Versions      map[string]int    `json:"versions"`

	// Textures counts the documents that reference each texture.
	Textures    map[string]int `json:"textures"`
	BspMaxDepth int            `json:"bsp_max_depth"`

	Failures []Failure `json:"failures,omitempty"`
}

// NewTotals returns empty Totals ready for Add.
func NewTotals() *Totals {
	return &Totals{
		Floors:   make(map[sno.Floor]int),
		Versions: make(map[string]int),
		Textures: make(map[string]int),
	}
}

// Add folds one document into t.
func (t *Totals) Add(s Stats) {
	t.Documents++
	t.CornerCount += s.CornerCount
	t.FaceCount += s.FaceCount
	t.Vertices += uint64(s.Vertices)
	t.Surfaces += uint64(s.Surfaces)
	t.LogicalMeshes += s.LogicalMeshes
	t.Versions[s.Version]++
	for f, n := range s.Floors {
		t.Floors[f] += n
	}
	for tex := range s.Textures {
		t.Textures[tex]++
	}
	t.BspMaxDepth = max(t.BspMaxDepth, s.BspMaxDepth)
}

// Fail records a document that failed to decode.
func (t *Totals) Fail(path string, err error) {
	t.Failed++
	t.Failures = append(t.Failures, Failure{Path: path, Stage: StageDecode, Error: err.Error()})
}

// VisitFail records a decoded document whose follow-up step failed. The
// document itself should already have been added with Add.
func (t *Totals) VisitFail(path string, err error) {
	t.VisitFailed++
	t.Failures = append(t.Failures, Failure{Path: path, Stage: StageVisit, Error: err.Error()})
}

// TopTextures returns up to n texture names ordered by document count,
// ties broken by name.
func (t *Totals) TopTextures(n int) []string {
	names := slices.Sorted(maps.Keys(t.Textures))
	slices.SortStableFunc(names, func(a, b string) int {
		return t.Textures[b] - t.Textures[a]
	})
	if n < len(names) {
		names = names[:n]
	}
	return names
}

// Write stores t as indented JSON at path.
func Write(path string, t *Totals) error {
	slices.SortFunc(t.Failures, func(a, b Failure) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
