package mesh

// IndexBuffer stores a section's primary triangle indices plus a lazily
// derived tessellation-adjacency buffer. Replacing the primary buffer
// never touches the adjacency buffer; the adjacency data silently goes
// stale and must be regenerated by the caller.
type IndexBuffer struct {
	primary   []uint32
	adjacency []uint32
}

// Replace swaps in a new primary index buffer. With move=true the
// caller's slice is adopted directly; otherwise it is copied.
func (b *IndexBuffer) Replace(indices []uint32, move bool) {
	if move {
		b.primary = indices
	} else {
		b.primary = append([]uint32(nil), indices...)
	}
}

// ReplaceAdjacency swaps in a new adjacency index buffer.
func (b *IndexBuffer) ReplaceAdjacency(indices []uint32, move bool) {
	if move {
		b.adjacency = indices
	} else {
		b.adjacency = append([]uint32(nil), indices...)
	}
}

// Primary returns the primary triangle index buffer (read-only).
func (b *IndexBuffer) Primary() []uint32 { return b.primary }

// Adjacency returns the adjacency index buffer (read-only). Empty until
// generated, and stale after any primary replacement until regenerated.
func (b *IndexBuffer) Adjacency() []uint32 { return b.adjacency }

// TriangleCount returns the number of triangles in the primary buffer.
func (b *IndexBuffer) TriangleCount() int { return len(b.primary) / 3 }

// Active selects the index buffer a snapshot should carry: the adjacency
// buffer when useAdjacency is set and adjacency data exists, otherwise
// the primary buffer. The second return reports which was chosen.
//
// Every snapshot site goes through this one function so the creation and
// update paths can never disagree about the selection.
func (b *IndexBuffer) Active(useAdjacency bool) ([]uint32, bool) {
	if useAdjacency && len(b.adjacency) > 0 {
		return b.adjacency, true
	}
	return b.primary, false
}
