// Package collision provides ray casting against the collision
// geometry of mesh sections. It reads section buffers through their
// public accessors and never mutates section state.
package collision

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
	"github.com/meshforge/runtimemesh/pkg/mesh"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// Hit describes a ray intersection with collision geometry.
type Hit struct {
	Section  int
	Triangle int
	Distance float32
	Point    mgl32.Vec3
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport
// dimensions. invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	// Normalized device coords (-1 to 1), Y flipped
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH

	nearWorld := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1.0, 1.0})

	if nearWorld.W() != 0 {
		nearWorld = nearWorld.Mul(1 / nearWorld.W())
	}
	if farWorld.W() != 0 {
		farWorld = farWorld.Mul(1 / farWorld.W())
	}

	origin := nearWorld.Vec3()
	dir := farWorld.Vec3().Sub(origin)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}

	return Ray{Origin: origin, Direction: dir}
}

// IntersectBox tests the ray against an axis-aligned box using the
// slab method. Returns the entry distance, or the exit distance when
// the ray starts inside. Invalid boxes never intersect.
func (r Ray) IntersectBox(box geom.Box) (t float32, hit bool) {
	if !box.Valid {
		return 0, false
	}

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// triEpsilon rejects rays nearly parallel to the triangle plane.
const triEpsilon = 1e-7

// IntersectTriangle tests the ray against a single triangle
// (Möller–Trumbore). Back faces hit too; culling is the caller's
// concern.
func (r Ray) IntersectTriangle(v0, v1, v2 mgl32.Vec3) (t float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -triEpsilon && det < triEpsilon {
		return 0, false
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(v0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < 0 {
		return 0, false
	}
	return t, true
}

// World is a read-only view over a set of sections for ray queries.
// Only sections with collision enabled participate.
type World struct {
	sections map[int]*mesh.Section
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{sections: make(map[int]*mesh.Section)}
}

// Add registers a section under an id. Re-adding an id replaces it.
func (w *World) Add(id int, s *mesh.Section) {
	w.sections[id] = s
}

// Remove unregisters a section.
func (w *World) Remove(id int) {
	delete(w.sections, id)
}

// Raycast finds the closest triangle hit across all collision-enabled
// sections. The box test prunes sections before per-triangle work.
func (w *World) Raycast(r Ray) (Hit, bool) {
	best := Hit{Distance: float32(gomath.MaxFloat32)}
	found := false

	for id, s := range w.sections {
		if !s.CollisionEnabled() {
			continue
		}
		if _, hit := r.IntersectBox(s.Bounds()); !hit {
			continue
		}

		positions := s.AllPositions()
		indices := s.Indices()
		if len(positions) == 0 {
			continue
		}
		for tri := 0; tri+2 < len(indices); tri += 3 {
			v0 := positions[indices[tri]]
			v1 := positions[indices[tri+1]]
			v2 := positions[indices[tri+2]]
			t, hit := r.IntersectTriangle(v0, v1, v2)
			if hit && t < best.Distance {
				best = Hit{
					Section:  id,
					Triangle: tri / 3,
					Distance: t,
					Point:    r.Origin.Add(r.Direction.Mul(t)),
				}
				found = true
			}
		}
	}

	return best, found
}
