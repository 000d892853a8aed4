// Package report computes usage statistics from decoded SNO documents.
//
// None of these figures exist in the file itself; they are derived from the
// surface and logical mesh arrays.
package report

import (
	"sno-scene-tools/internal/sno"
)

// Stats summarizes one document.
type Stats struct {
	Path    string `json:"path"`
	Version string `json:"version"`

	Doors    int `json:"doors"`
	Spots    int `json:"spots"`
	Vertices int `json:"vertices"`
	Surfaces int `json:"surfaces"`

	// CornerCount sums Surface.VertexCount; FaceCount sums decoded faces.
	CornerCount uint64 `json:"corner_count"`
	FaceCount   uint64 `json:"face_count"`

	Textures map[string]int    `json:"textures"`
	Floors   map[sno.Floor]int `json:"floors"`

	LogicalMeshes      int `json:"logical_meshes"`
	GeneralConnections int `json:"general_connections"`
	NodalPairs         int `json:"nodal_pairs"`
	TriangleSections   int `json:"triangle_sections"`

	BspNodes    int `json:"bsp_nodes"`
	BspLeaves   int `json:"bsp_leaves"`
	BspMaxDepth int `json:"bsp_max_depth"`
}

// Summarize derives Stats from doc.
func Summarize(path string, doc *sno.Document) Stats {
	s := Stats{
		Path:          path,
		Version:       doc.Version.String(),
		Doors:         len(doc.DoorArray),
		Spots:         len(doc.SpotArray),
		Vertices:      len(doc.VertexArray),
		Surfaces:      len(doc.SurfaceArray),
		Textures:      make(map[string]int),
		Floors:        make(map[sno.Floor]int),
		LogicalMeshes: len(doc.LogicalMesh),
	}

	for _, surf := range doc.SurfaceArray {
		s.CornerCount += uint64(surf.VertexCount)
		s.FaceCount += uint64(len(surf.FaceArray))
		s.Textures[surf.Texture]++
	}

	for i := range doc.LogicalMesh {
		m := &doc.LogicalMesh[i]
		s.Floors[m.Floor]++
		s.GeneralConnections += len(m.GeneralConnectionSection)
		s.TriangleSections += len(m.TriangleSection)
		for _, n := range m.NodalArray {
			s.NodalPairs += len(n.Data) / 2
		}
		m.BspTree.Walk(func(node *sno.BspSection, depth int) {
			s.BspNodes++
			if node.IsLeaf {
				s.BspLeaves++
			}
			if depth > s.BspMaxDepth {
				s.BspMaxDepth = depth
			}
		})
	}
	return s
}
