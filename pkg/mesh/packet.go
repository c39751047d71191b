package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
)

// UpdatePacket is an immutable, one-shot snapshot of a section's buffers
// plus the render flags that travel with it. Every buffer is deep-copied
// at snapshot time, so a packet is self-contained and may be handed to a
// render/upload goroutine with no further synchronization. The core
// never reads a packet after building it.
type UpdatePacket struct {
	Layout      Layout
	Bounds      geom.Box
	Visible     bool
	CastsShadow bool
	Frequency   UpdateFrequency

	Positions []mgl32.Vec3
	Vertices  []float32
	Indices   []uint32

	// Inclusion flags: which buffers this packet carries. A carried but
	// empty buffer is distinct from an omitted one.
	HasPositions bool
	HasVertices  bool
	HasIndices   bool

	// AdjacencyIndices marks Indices as adjacency-expanded tessellation
	// data rather than plain triangle indices.
	AdjacencyIndices bool
}

func (p *UpdatePacket) setPositions(positions []mgl32.Vec3) {
	p.Positions = append([]mgl32.Vec3(nil), positions...)
	p.HasPositions = true
}

func (p *UpdatePacket) setVertices(vertices []float32) {
	p.Vertices = append([]float32(nil), vertices...)
	p.HasVertices = true
}

func (p *UpdatePacket) setIndices(indices []uint32, adjacency bool) {
	p.Indices = append([]uint32(nil), indices...)
	p.HasIndices = true
	p.AdjacencyIndices = adjacency
}
