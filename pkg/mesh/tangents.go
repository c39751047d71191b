package mesh

import "github.com/go-gl/mathgl/mgl32"

// computeTangents rebuilds the normal and tangent attributes of an
// interleaved vertex buffer in place. Positions are read from the
// position-only buffer when the layout lacks an intrinsic position
// attribute; for dual-buffer sections positions and attributes are no
// longer co-located, so the two sources must not be conflated.
//
// Per triangle, the face normal (area-weighted by the unnormalized cross
// product) and the UV-space tangent/bitangent directions are accumulated
// into the three vertices. Each vertex then normalizes its normal,
// orthogonalizes the tangent against it (Gram-Schmidt) and derives the
// handedness sign from the accumulated bitangent.
func computeTangents(layout Layout, verts []float32, positions []mgl32.Vec3, indices []uint32) {
	vertexCount := len(verts) / layout.Stride

	position := func(i uint32) mgl32.Vec3 {
		if layout.HasPosition() {
			return layout.Position(verts, int(i))
		}
		return positions[i]
	}

	normals := make([]mgl32.Vec3, vertexCount)
	tan1 := make([]mgl32.Vec3, vertexCount)
	tan2 := make([]mgl32.Vec3, vertexCount)

	for tri := 0; tri+2 < len(indices); tri += 3 {
		i0, i1, i2 := indices[tri], indices[tri+1], indices[tri+2]

		p0 := position(i0)
		e1 := position(i1).Sub(p0)
		e2 := position(i2).Sub(p0)

		// Unnormalized cross product: contribution is proportional to
		// triangle area, so large faces dominate shared normals.
		faceNormal := e1.Cross(e2)
		normals[i0] = normals[i0].Add(faceNormal)
		normals[i1] = normals[i1].Add(faceNormal)
		normals[i2] = normals[i2].Add(faceNormal)

		uv0 := layout.UV(verts, int(i0))
		s1 := layout.UV(verts, int(i1)).Sub(uv0)
		s2 := layout.UV(verts, int(i2)).Sub(uv0)

		det := s1[0]*s2[1] - s2[0]*s1[1]
		if det == 0 {
			// Degenerate UV mapping; no tangent direction to extract.
			continue
		}
		r := 1.0 / det

		sdir := e1.Mul(s2[1]).Sub(e2.Mul(s1[1])).Mul(r)
		tdir := e2.Mul(s1[0]).Sub(e1.Mul(s2[0])).Mul(r)

		tan1[i0] = tan1[i0].Add(sdir)
		tan1[i1] = tan1[i1].Add(sdir)
		tan1[i2] = tan1[i2].Add(sdir)
		tan2[i0] = tan2[i0].Add(tdir)
		tan2[i1] = tan2[i1].Add(tdir)
		tan2[i2] = tan2[i2].Add(tdir)
	}

	for i := 0; i < vertexCount; i++ {
		n := safeNormalize(normals[i], mgl32.Vec3{0, 0, 1})
		layout.SetNormal(verts, i, n)

		// Gram-Schmidt: project the accumulated tangent onto the plane
		// perpendicular to the normal.
		t := tan1[i].Sub(n.Mul(n.Dot(tan1[i])))
		t = safeNormalize(t, perpendicular(n))

		w := float32(1)
		if n.Cross(t).Dot(tan2[i]) < 0 {
			w = -1
		}
		layout.SetTangent(verts, i, t, w)
	}
}

// safeNormalize normalizes v, falling back when v has no usable length.
func safeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	const minLenSq = 1e-12
	if v.LenSqr() < minLenSq {
		return fallback
	}
	return v.Normalize()
}

// perpendicular returns an arbitrary unit vector perpendicular to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs32(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return safeNormalize(n.Cross(axis), mgl32.Vec3{1, 0, 0})
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
