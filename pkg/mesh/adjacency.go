package mesh

import "github.com/go-gl/mathgl/mgl32"

// buildAdjacency derives a tessellation-adjacency index buffer from a
// primary triangle index buffer and its vertex positions. The output
// stores nine indices per input triangle:
//
//	[i0 i1 i2  a01 a12 a20  d0 d1 d2]
//
// i0..i2 are the triangle's own indices, winding preserved. aXY is the
// opposite-vertex index of the neighbor sharing edge (iX, iY); boundary
// edges with no neighbor self-reference the triangle's own opposite
// vertex. d0..d2 are the position-dominant indices: the first index seen
// at each corner's position, letting the tessellation stage weld seams
// where a position is duplicated across vertices with differing
// attributes.
//
// Edges are matched by welded position, not raw index, so duplicated
// vertices along UV or normal seams still find their neighbors.
func buildAdjacency(positions []mgl32.Vec3, indices []uint32) []uint32 {
	if len(indices) == 0 {
		return nil
	}

	// Weld duplicated positions: canonical[i] is the first vertex index
	// at position[i]. mgl32.Vec3 is a comparable array type, so exact
	// positions key the map directly.
	canonical := make([]uint32, len(positions))
	firstAt := make(map[mgl32.Vec3]uint32, len(positions))
	for i, p := range positions {
		if first, ok := firstAt[p]; ok {
			canonical[i] = first
		} else {
			firstAt[p] = uint32(i)
			canonical[i] = uint32(i)
		}
	}

	// One entry per unordered welded edge, recording the opposite vertex
	// of up to two incident triangles.
	type edgeUse struct {
		tri      [2]int
		opposite [2]uint32
		count    int
	}
	edgeKey := func(a, b uint32) [2]uint32 {
		if a > b {
			a, b = b, a
		}
		return [2]uint32{a, b}
	}

	triCount := len(indices) / 3
	edges := make(map[[2]uint32]*edgeUse, triCount*3/2)
	for t := 0; t < triCount; t++ {
		i0, i1, i2 := indices[t*3], indices[t*3+1], indices[t*3+2]
		c0, c1, c2 := canonical[i0], canonical[i1], canonical[i2]
		for _, pair := range [3][3]uint32{{c0, c1, i2}, {c1, c2, i0}, {c2, c0, i1}} {
			key := edgeKey(pair[0], pair[1])
			use, ok := edges[key]
			if !ok {
				use = &edgeUse{}
				edges[key] = use
			}
			if use.count < 2 {
				use.tri[use.count] = t
				use.opposite[use.count] = pair[2]
				use.count++
			}
		}
	}

	out := make([]uint32, 0, triCount*9)
	for t := 0; t < triCount; t++ {
		i0, i1, i2 := indices[t*3], indices[t*3+1], indices[t*3+2]
		c0, c1, c2 := canonical[i0], canonical[i1], canonical[i2]

		neighbor := func(ca, cb, selfOpposite uint32) uint32 {
			use := edges[edgeKey(ca, cb)]
			for k := 0; k < use.count; k++ {
				if use.tri[k] != t {
					return use.opposite[k]
				}
			}
			// Boundary edge: self-reference sentinel.
			return selfOpposite
		}

		out = append(out,
			i0, i1, i2,
			neighbor(c0, c1, i2),
			neighbor(c1, c2, i0),
			neighbor(c2, c0, i1),
			c0, c1, c2,
		)
	}
	return out
}
