package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
	"github.com/meshforge/runtimemesh/pkg/mesh"
)

const eps = 1e-5

func floorSection(t *testing.T) *mesh.Section {
	t.Helper()
	s := mesh.NewSection(mesh.LayoutPos, mesh.FrequencyInfrequent)
	// Unit quad in the XZ plane at y=0.
	verts := []float32{
		0, 0, 0,
		1, 0, 0,
		1, 0, 1,
		0, 0, 1,
	}
	_, err := s.UpdateGeometry(mesh.GeometryUpdate{
		Vertices: verts,
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	})
	if err != nil {
		t.Fatalf("UpdateGeometry failed: %v", err)
	}
	s.SetCollisionEnabled(true)
	return s
}

func TestIntersectBox(t *testing.T) {
	box := geom.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	tests := []struct {
		name    string
		ray     Ray
		wantHit bool
		wantT   float32
	}{
		{
			name:    "straight on",
			ray:     Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}},
			wantHit: true,
			wantT:   4,
		},
		{
			name:    "misses to the side",
			ray:     Ray{Origin: mgl32.Vec3{3, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}},
			wantHit: false,
		},
		{
			name:    "pointing away",
			ray:     Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, -1}},
			wantHit: false,
		},
		{
			name:    "starts inside returns exit",
			ray:     Ray{Origin: mgl32.Vec3{0, 0, 0}, Direction: mgl32.Vec3{0, 0, 1}},
			wantHit: true,
			wantT:   1,
		},
		{
			name:    "axis-parallel outside slab",
			ray:     Ray{Origin: mgl32.Vec3{0, 5, -5}, Direction: mgl32.Vec3{0, 0, 1}},
			wantHit: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, hit := tc.ray.IntersectBox(box)
			if hit != tc.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tc.wantHit)
			}
			if hit && mgl32.Abs(got-tc.wantT) > eps {
				t.Errorf("t = %v, want %v", got, tc.wantT)
			}
		})
	}
}

func TestIntersectBoxInvalidNeverHits(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, 1}}
	if _, hit := ray.IntersectBox(geom.Box{}); hit {
		t.Error("ray must not hit an invalid box")
	}
}

func TestIntersectTriangle(t *testing.T) {
	v0 := mgl32.Vec3{0, 0, 0}
	v1 := mgl32.Vec3{1, 0, 0}
	v2 := mgl32.Vec3{0, 1, 0}

	down := Ray{Origin: mgl32.Vec3{0.25, 0.25, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	tt, hit := down.IntersectTriangle(v0, v1, v2)
	if !hit {
		t.Fatal("expected hit through triangle interior")
	}
	if mgl32.Abs(tt-5) > eps {
		t.Errorf("t = %v, want 5", tt)
	}

	outside := Ray{Origin: mgl32.Vec3{0.9, 0.9, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if _, hit := outside.IntersectTriangle(v0, v1, v2); hit {
		t.Error("hit outside triangle bounds")
	}

	parallel := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{1, 0, 0}}
	if _, hit := parallel.IntersectTriangle(v0, v1, v2); hit {
		t.Error("hit from a ray parallel to the triangle plane")
	}

	behind := Ray{Origin: mgl32.Vec3{0.25, 0.25, -5}, Direction: mgl32.Vec3{0, 0, -1}}
	if _, hit := behind.IntersectTriangle(v0, v1, v2); hit {
		t.Error("hit a triangle behind the ray origin")
	}
}

func TestRaycastFindsClosestSection(t *testing.T) {
	w := NewWorld()
	w.Add(1, floorSection(t))

	// A second floor above the first; the ray from above must hit it first.
	upper := mesh.NewSection(mesh.LayoutPos, mesh.FrequencyInfrequent)
	verts := []float32{
		0, 2, 0,
		1, 2, 0,
		1, 2, 1,
		0, 2, 1,
	}
	if _, err := upper.UpdateGeometry(mesh.GeometryUpdate{
		Vertices: verts,
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}); err != nil {
		t.Fatalf("UpdateGeometry failed: %v", err)
	}
	upper.SetCollisionEnabled(true)
	w.Add(2, upper)

	ray := Ray{Origin: mgl32.Vec3{0.5, 10, 0.5}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, ok := w.Raycast(ray)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Section != 2 {
		t.Errorf("hit section %d, want 2 (the closer one)", hit.Section)
	}
	if mgl32.Abs(hit.Distance-8) > eps {
		t.Errorf("distance = %v, want 8", hit.Distance)
	}
	if mgl32.Abs(hit.Point.Y()-2) > eps {
		t.Errorf("hit point y = %v, want 2", hit.Point.Y())
	}
}

func TestRaycastSkipsCollisionDisabled(t *testing.T) {
	w := NewWorld()
	s := floorSection(t)
	s.SetCollisionEnabled(false)
	w.Add(1, s)

	ray := Ray{Origin: mgl32.Vec3{0.5, 10, 0.5}, Direction: mgl32.Vec3{0, -1, 0}}
	if _, ok := w.Raycast(ray); ok {
		t.Error("raycast must skip sections with collision disabled")
	}
}

func TestRaycastRemove(t *testing.T) {
	w := NewWorld()
	w.Add(1, floorSection(t))
	w.Remove(1)

	ray := Ray{Origin: mgl32.Vec3{0.5, 10, 0.5}, Direction: mgl32.Vec3{0, -1, 0}}
	if _, ok := w.Raycast(ray); ok {
		t.Error("raycast hit a removed section")
	}
}

func TestScreenToRayCenterLooksForward(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	inv := proj.Mul4(view).Inv()

	ray := ScreenToRay(640, 360, 1280, 720, inv)

	// Center of the screen: direction is straight down -Z.
	if mgl32.Abs(ray.Direction.X()) > 1e-3 || mgl32.Abs(ray.Direction.Y()) > 1e-3 {
		t.Errorf("center ray direction = %v, want -Z axis", ray.Direction)
	}
	if ray.Direction.Z() >= 0 {
		t.Errorf("center ray points away from the scene: %v", ray.Direction)
	}
	if mgl32.Abs(ray.Direction.Len()-1) > 1e-4 {
		t.Errorf("direction not normalized: len = %v", ray.Direction.Len())
	}
}
