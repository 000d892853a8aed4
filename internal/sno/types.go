package sno

import "fmt"

// Magic identifies an SNO document.
const Magic = "SNOD"

// Version is the format version declared in the document header.
type Version struct {
	Major uint32
	Minor uint32
}

// AtLeast reports whether v >= major.minor.
func (v Version) AtLeast(major, minor uint32) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// V3 is a 3D vector.
type V3 struct {
	X, Y, Z float32
}

// Color is an RGBA byte color.
type Color struct {
	R, G, B, A uint8
}

// Tcoords is a texture coordinate pair.
type Tcoords struct {
	U, V float32
}

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min V3
	Max V3
}

// Door is a portal record.
type Door struct {
	ID          uint32
	Center      V3
	XAxis       V3
	YAxis       V3
	ZAxis       V3
	VertexArray []uint32
}

// Spot is a named anchor.
type Spot struct {
	Axes   [3]V3
	Center V3
	Label  string
}

// Vertex is one entry of the document vertex array.
type Vertex struct {
	Position V3
	Normal   V3
	Color    Color
	UVCoords Tcoords
}

// Face is a triangle index triple local to a surface.
type Face struct {
	A, B, C uint16
}

// Surface is a textured group of faces.
//
// VertexCount counts index-table entries, three per face, and is unrelated to
// Document.VertexCount.
type Surface struct {
	Texture     string
	StartCorner uint32
	SpanCorner  uint32
	VertexCount uint32
	FaceArray   []Face
}

// Triangle holds three positions.
type Triangle struct {
	A, B, C V3
}

// TriangleSection is an oriented triangle.
type TriangleSection struct {
	Triangle Triangle
	Normal   V3
}

// TriangleIndexSection62 appears in connection sections from version 6.2.
type TriangleIndexSection62 struct {
	Triangles        []uint16
	LocalConnections []uint16
}

// GeneralConnectionSection links a logical mesh to another one.
// Center is nil before 6.4 and Triangles is nil before 6.2.
type GeneralConnectionSection struct {
	NewID     uint16
	MinBox    V3
	MaxBox    V3
	Center    *V3
	Triangles *TriangleIndexSection62
}

// NodalSection holds node-local connectivity as flat u16 pairs.
type NodalSection struct {
	FarID uint8
	Data  []uint16
}

// Pairs groups Data in twos.
func (n NodalSection) Pairs() [][2]uint16 {
	out := make([][2]uint16, len(n.Data)/2)
	for i := range out {
		out[i] = [2]uint16{n.Data[2*i], n.Data[2*i+1]}
	}
	return out
}

// BspSection is one node of a logical mesh BSP tree. Children are owned.
type BspSection struct {
	BoundingBox  BoundingBox
	IsLeaf       bool
	TriangleData []uint16
	Children     []BspSection
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *BspSection) Walk(fn func(node *BspSection, depth int)) {
	n.walk(fn, 0)
}

func (n *BspSection) walk(fn func(*BspSection, int), depth int) {
	fn(n, depth)
	for i := range n.Children {
		n.Children[i].walk(fn, depth+1)
	}
}

// LogicalMesh is one navigable region of a document.
type LogicalMesh struct {
	Index                    uint8
	BoundingBox              BoundingBox
	Floor                    Floor
	GeneralConnectionSection []GeneralConnectionSection
	NodalArray               []NodalSection
	TriangleSection          []TriangleSection
	BspTree                  BspSection
}

// Document is a fully decoded SNO file.
//
// VertexCount is the length of VertexArray. TriangleCount is kept as read.
// Checksum is nil before 6.2.
type Document struct {
	Magic          [4]byte
	Version        Version
	DoorCount      uint32
	SpotCount      uint32
	VertexCount    uint32
	TriangleCount  uint32
	TextureCount   uint32
	BoundingBox    BoundingBox
	CentroidOffset V3
	Tile           uint32
	Reserved0      uint32
	Reserved1      uint32
	Reserved2      uint32
	Checksum       *uint32

	DoorArray    []Door
	SpotArray    []Spot
	VertexArray  []Vertex
	SurfaceArray []Surface

	LogicalMeshCount uint32
	LogicalMesh      []LogicalMesh
}
