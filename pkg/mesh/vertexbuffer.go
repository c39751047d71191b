package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
)

// VertexBuffer stores one section's vertex data: an interleaved attribute
// buffer laid out per the section's Layout, and - for layouts without an
// intrinsic position - a separate position-only buffer that collision and
// deformation paths can update without touching render attributes.
//
// The buffer owns the section bounding box. Whichever buffer is the
// active position source (position-only buffer for dual-buffer layouts,
// the interleaved buffer otherwise) keeps the box in sync on replacement.
type VertexBuffer struct {
	layout    Layout
	data      []float32
	positions []mgl32.Vec3
	bounds    geom.Box
}

// NewVertexBuffer creates an empty vertex buffer for the given layout.
func NewVertexBuffer(tag LayoutTag) *VertexBuffer {
	return &VertexBuffer{layout: LayoutFor(tag)}
}

// Layout returns the buffer's capability table.
func (b *VertexBuffer) Layout() Layout { return b.layout }

// Len returns the vertex count.
func (b *VertexBuffer) Len() int {
	if b.layout.HasPosition() {
		return len(b.data) / b.layout.Stride
	}
	return len(b.positions)
}

// Data returns the interleaved attribute buffer. Callers must treat the
// returned slice as read-only; mutating it bypasses bounds maintenance.
func (b *VertexBuffer) Data() []float32 { return b.data }

// Bounds returns the current bounding box.
func (b *VertexBuffer) Bounds() geom.Box { return b.bounds }

// Replace swaps in a new interleaved vertex buffer.
//
// For layouts with an intrinsic position the bounding box is recomputed
// from each vertex's position field during the copy, unless explicit is
// non-nil, in which case the supplied box is trusted verbatim with no
// recomputation. For dual-buffer layouts bounds are owned by the
// position-only buffer and this never touches them.
//
// With move=true the caller's slice is adopted directly and must not be
// used again; otherwise the data is copied. The returned bool reports
// whether the stored bounding box changed.
func (b *VertexBuffer) Replace(verts []float32, explicit *geom.Box, move bool) (bool, error) {
	if len(verts)%b.layout.Stride != 0 {
		return false, ErrBadVertexStride
	}

	if !b.layout.HasPosition() {
		if move {
			b.data = verts
		} else {
			b.data = append([]float32(nil), verts...)
		}
		return false, nil
	}

	var newBounds geom.Box
	switch {
	case explicit != nil:
		if move {
			b.data = verts
		} else {
			b.data = append([]float32(nil), verts...)
		}
		newBounds = *explicit
	case move:
		b.data = verts
		for i, n := 0, len(verts)/b.layout.Stride; i < n; i++ {
			newBounds = newBounds.Extend(b.layout.Position(b.data, i))
		}
	default:
		// Copy and fold the box in the same pass.
		b.data = make([]float32, len(verts))
		copy(b.data, verts)
		for i, n := 0, len(verts)/b.layout.Stride; i < n; i++ {
			newBounds = newBounds.Extend(b.layout.Position(b.data, i))
		}
	}

	return b.storeBounds(newBounds), nil
}

// ReplacePositions swaps in a new position-only buffer with the same
// box-or-recompute policy as Replace. It is the only way to move bounds
// for dual-buffer layouts; for layouts with intrinsic positions it is a
// contract violation.
func (b *VertexBuffer) ReplacePositions(positions []mgl32.Vec3, explicit *geom.Box, move bool) (bool, error) {
	if b.layout.HasPosition() {
		return false, ErrUnexpectedPositions
	}

	if move {
		b.positions = positions
	} else {
		b.positions = append([]mgl32.Vec3(nil), positions...)
	}

	var newBounds geom.Box
	if explicit != nil {
		newBounds = *explicit
	} else {
		newBounds = geom.FromPoints(b.positions)
	}

	return b.storeBounds(newBounds), nil
}

// AllPositions returns every vertex position from the active position
// source. For dual-buffer layouts this is the position-only buffer itself
// and must be treated as read-only; for intrinsic-position layouts the
// positions are copied out of the interleaved buffer.
func (b *VertexBuffer) AllPositions() []mgl32.Vec3 {
	if !b.layout.HasPosition() {
		return b.positions
	}
	out := make([]mgl32.Vec3, b.Len())
	for i := range out {
		out[i] = b.layout.Position(b.data, i)
	}
	return out
}

// Recalculate rebuilds the bounding box from the active position source,
// discarding any previously trusted explicit box. Returns whether the
// box changed. This is the recovery path after external buffer mutation
// bypassed the replace operations.
func (b *VertexBuffer) Recalculate() bool {
	var newBounds geom.Box
	if b.layout.HasPosition() {
		for i, n := 0, b.Len(); i < n; i++ {
			newBounds = newBounds.Extend(b.layout.Position(b.data, i))
		}
	} else {
		newBounds = geom.FromPoints(b.positions)
	}
	return b.storeBounds(newBounds)
}

func (b *VertexBuffer) storeBounds(newBounds geom.Box) bool {
	if b.bounds.Eq(newBounds) {
		return false
	}
	b.bounds = newBounds
	return true
}
