package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
)

// UpdateFrequency hints how often a section's geometry will be replaced.
// The render layer uses it to pick a GPU buffer usage strategy; the core
// stores it but never consumes it.
type UpdateFrequency int32

// Update frequency hints.
const (
	FrequencyInfrequent UpdateFrequency = iota
	FrequencyOccasional
	FrequencyFrequent
)

// String returns the frequency name.
func (f UpdateFrequency) String() string {
	switch f {
	case FrequencyInfrequent:
		return "Infrequent"
	case FrequencyOccasional:
		return "Occasional"
	case FrequencyFrequent:
		return "Frequent"
	default:
		return "Unknown"
	}
}

// Section is one independently renderable chunk of a mesh: a vertex
// buffer store, an index buffer store, a bounding box and per-section
// render flags. Sections are created with a fixed vertex layout and have
// their buffers replaced wholesale through UpdateGeometry.
//
// All mutating methods must be called from a single logical update
// goroutine and complete synchronously. Snapshot methods produce
// immutable, deep-copied packets that may be handed across a thread
// boundary with no further synchronization.
type Section struct {
	vertices VertexBuffer
	indices  IndexBuffer

	collisionEnabled bool
	visible          bool
	castsShadow      bool
	useAdjacency     bool
	frequency        UpdateFrequency
}

// NewSection creates an empty section with the given vertex layout and
// update frequency hint. Sections start visible and shadow-casting with
// collision disabled, matching how the render layer expects fresh
// sections to behave.
func NewSection(tag LayoutTag, frequency UpdateFrequency) *Section {
	return &Section{
		vertices:    VertexBuffer{layout: LayoutFor(tag)},
		visible:     true,
		castsShadow: true,
		frequency:   frequency,
	}
}

// Layout returns the section's vertex capability table.
func (s *Section) Layout() Layout { return s.vertices.layout }

// Bounds returns the section's bounding box.
func (s *Section) Bounds() geom.Box { return s.vertices.Bounds() }

// VertexCount returns the number of vertices.
func (s *Section) VertexCount() int { return s.vertices.Len() }

// Indices returns the primary triangle index buffer (read-only).
func (s *Section) Indices() []uint32 { return s.indices.Primary() }

// AllPositions returns every vertex position from the active position
// source. For dual-buffer layouts the returned slice aliases internal
// storage and must be treated as read-only.
func (s *Section) AllPositions() []mgl32.Vec3 { return s.vertices.AllPositions() }

// CollisionEnabled reports whether collision geometry should be built
// from this section.
func (s *Section) CollisionEnabled() bool { return s.collisionEnabled }

// SetCollisionEnabled toggles collision geometry for this section.
func (s *Section) SetCollisionEnabled(v bool) { s.collisionEnabled = v }

// Visible reports whether the section should be drawn.
func (s *Section) Visible() bool { return s.visible }

// SetVisible toggles drawing of the section.
func (s *Section) SetVisible(v bool) { s.visible = v }

// CastsShadow reports whether the section casts shadows.
func (s *Section) CastsShadow() bool { return s.castsShadow }

// SetCastsShadow toggles shadow casting.
func (s *Section) SetCastsShadow(v bool) { s.castsShadow = v }

// UseAdjacency reports whether snapshots should carry the adjacency
// index buffer when one exists.
func (s *Section) UseAdjacency() bool { return s.useAdjacency }

// SetUseAdjacency is set by the render integration layer when the
// section's material needs tessellation adjacency data.
func (s *Section) SetUseAdjacency(v bool) { s.useAdjacency = v }

// Frequency returns the update frequency hint.
func (s *Section) Frequency() UpdateFrequency { return s.frequency }

// GeometryUpdate carries replacement data for UpdateGeometry. Nil slices
// are left untouched. Bounds, when non-nil, is trusted verbatim instead
// of recomputing from the replaced positions. With Move=true supplied
// slices are adopted directly and must not be reused by the caller.
type GeometryUpdate struct {
	Vertices  []float32
	Positions []mgl32.Vec3
	Indices   []uint32
	Bounds    *geom.Box
	Move      bool
}

// UpdateGeometry replaces whichever buffers the update supplies and
// reports whether the section's bounding box changed as a result.
//
// The update is validated in full before any buffer is touched: on error
// the section keeps its prior, fully-consistent state. Contract rules:
// at least one buffer must be supplied; position-only data is rejected
// for layouts with intrinsic positions; dual-buffer layouts must end the
// update with matching vertex and position counts; indices must come in
// whole triangles and stay inside the resulting vertex range.
func (s *Section) UpdateGeometry(u GeometryUpdate) (bool, error) {
	if u.Vertices == nil && u.Positions == nil && u.Indices == nil {
		return false, ErrMissingBuffer
	}
	layout := s.vertices.layout
	if layout.HasPosition() && u.Positions != nil {
		return false, ErrUnexpectedPositions
	}
	if u.Vertices != nil && len(u.Vertices)%layout.Stride != 0 {
		return false, ErrBadVertexStride
	}

	// Prospective counts after the update.
	attrCount := len(s.vertices.data) / layout.Stride
	if u.Vertices != nil {
		attrCount = len(u.Vertices) / layout.Stride
	}
	posCount := len(s.vertices.positions)
	if u.Positions != nil {
		posCount = len(u.Positions)
	}

	vertexCount := attrCount
	if !layout.HasPosition() {
		if posCount == 0 && attrCount > 0 {
			return false, ErrMissingBuffer
		}
		if posCount != attrCount {
			return false, ErrPositionCountMismatch
		}
		vertexCount = posCount
	}

	indices := u.Indices
	if indices == nil {
		indices = s.indices.primary
	}
	if len(indices)%3 != 0 {
		return false, ErrIndexCount
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return false, ErrIndexOutOfRange
		}
	}

	boundsChanged := false
	if u.Positions != nil {
		changed, err := s.vertices.ReplacePositions(u.Positions, u.Bounds, u.Move)
		if err != nil {
			return false, err
		}
		boundsChanged = boundsChanged || changed
	}
	if u.Vertices != nil {
		changed, err := s.vertices.Replace(u.Vertices, u.Bounds, u.Move)
		if err != nil {
			return false, err
		}
		boundsChanged = boundsChanged || changed
	}
	if u.Indices != nil {
		s.indices.Replace(u.Indices, u.Move)
	}

	return boundsChanged, nil
}

// RecalculateBounds forces a full bounding-box recomputation from the
// active position source, discarding any previously trusted explicit
// box. Returns whether the box changed.
func (s *Section) RecalculateBounds() bool {
	return s.vertices.Recalculate()
}

// GenerateNormalsAndTangents rebuilds the normal and tangent attributes
// of the vertex buffer from the active position source and the primary
// index buffer. Returns ErrNoTangentSpace for layouts without writable
// normal/tangent/uv attributes, and ErrPositionCountMismatch when a
// dual-buffer section's attribute buffer does not cover its positions
// (a deserialized section, for example, holds positions but no render
// attributes until the caller supplies them); the section is left
// untouched in either case. Must be re-run after geometry updates, as
// derived attributes are never regenerated automatically.
func (s *Section) GenerateNormalsAndTangents() error {
	layout := s.vertices.layout
	if !layout.HasTangentSpace() {
		return ErrNoTangentSpace
	}
	if !layout.HasPosition() && len(s.vertices.positions)*layout.Stride != len(s.vertices.data) {
		return ErrPositionCountMismatch
	}
	computeTangents(layout, s.vertices.data, s.vertices.positions, s.indices.primary)
	return nil
}

// GenerateTessellationAdjacency derives the adjacency index buffer from
// the primary index buffer and the active position source, replacing any
// previously stored adjacency data. Like tangents, adjacency silently
// goes stale after geometry updates; re-running the generator is the
// caller's responsibility.
func (s *Section) GenerateTessellationAdjacency() {
	adj := buildAdjacency(s.AllPositions(), s.indices.primary)
	s.indices.ReplaceAdjacency(adj, true)
}

// SnapshotForCreation builds the full packet the render layer needs to
// create GPU-side resources for this section: the position-only buffer
// for dual-buffer layouts, the complete vertex buffer, and the actively
// selected index buffer.
func (s *Section) SnapshotForCreation() *UpdatePacket {
	pkt := s.newPacket()
	if !s.vertices.layout.HasPosition() {
		pkt.setPositions(s.vertices.positions)
	}
	pkt.setVertices(s.vertices.data)
	pkt.setIndices(s.indices.Active(s.useAdjacency))
	return pkt
}

// SnapshotForUpdate builds a partial packet carrying only the requested
// buffers, minimizing transfer cost for incremental GPU updates. Index
// selection goes through the same path as creation snapshots. Position
// requests are ignored for layouts with intrinsic positions, which never
// carry a position-only buffer.
func (s *Section) SnapshotForUpdate(includePositions, includeVertices, includeIndices bool) *UpdatePacket {
	pkt := s.newPacket()
	if includePositions && !s.vertices.layout.HasPosition() {
		pkt.setPositions(s.vertices.positions)
	}
	if includeVertices {
		pkt.setVertices(s.vertices.data)
	}
	if includeIndices {
		pkt.setIndices(s.indices.Active(s.useAdjacency))
	}
	return pkt
}

// SnapshotPositionsOnly builds a lightweight packet carrying only the
// position-only buffer, for high-frequency deformation updates that skip
// full vertex re-upload. For layouts with intrinsic positions the packet
// carries no buffers at all.
func (s *Section) SnapshotPositionsOnly() *UpdatePacket {
	pkt := s.newPacket()
	if !s.vertices.layout.HasPosition() {
		pkt.setPositions(s.vertices.positions)
	}
	return pkt
}

func (s *Section) newPacket() *UpdatePacket {
	return &UpdatePacket{
		Layout:      s.vertices.layout,
		Bounds:      s.vertices.Bounds(),
		Visible:     s.visible,
		CastsShadow: s.castsShadow,
		Frequency:   s.frequency,
	}
}
