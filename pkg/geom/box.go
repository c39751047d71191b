// Package geom provides geometric primitives shared by the mesh engine.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Box is an axis-aligned bounding box. The zero value is the empty box,
// which acts as the identity for Extend: extending it with a point yields
// a degenerate box containing exactly that point.
type Box struct {
	Min   mgl32.Vec3
	Max   mgl32.Vec3
	Valid bool
}

// NewBox creates a valid box spanning min to max.
func NewBox(min, max mgl32.Vec3) Box {
	return Box{Min: min, Max: max, Valid: true}
}

// Extend returns the box grown to include p.
func (b Box) Extend(p mgl32.Vec3) Box {
	if !b.Valid {
		return Box{Min: p, Max: p, Valid: true}
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// FromPoints computes the bounding box of a point set.
// An empty set yields the empty box.
func FromPoints(points []mgl32.Vec3) Box {
	var b Box
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// Eq reports whether two boxes are identical. All six scalar bounds must
// match exactly; no epsilon is applied. Callers rely on this to detect
// no-op bounds updates and skip propagating them downstream.
func (b Box) Eq(other Box) bool {
	return b == other
}

// Contains reports whether p lies inside the box (inclusive).
func (b Box) Contains(p mgl32.Vec3) bool {
	if !b.Valid {
		return false
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}
