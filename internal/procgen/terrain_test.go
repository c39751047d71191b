package procgen

import (
	"testing"

	"github.com/meshforge/runtimemesh/pkg/mesh"
)

func testParams() Params {
	return Params{
		TilesX:    4,
		TilesZ:    3,
		TileSize:  2,
		Amplitude: 5,
		Frequency: 0.1,
		Seed:      1337,
	}
}

func TestGridIndices(t *testing.T) {
	indices := gridIndices(2, 2)
	if len(indices) != 2*2*6 {
		t.Fatalf("index count = %d, want %d", len(indices), 24)
	}
	// First quad: vertices 0,1 on row 0 and 3,4 on row 1.
	want := []uint32{0, 3, 1, 1, 3, 4}
	for i, w := range want {
		if indices[i] != w {
			t.Errorf("indices[%d] = %d, want %d", i, indices[i], w)
		}
	}
	for _, idx := range indices {
		if idx >= 9 {
			t.Fatalf("index %d out of range for 3x3 vertex grid", idx)
		}
	}
}

func TestHeightDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(testParams())
	b := NewGenerator(testParams())
	if a.Height(3.5, 7.25) != b.Height(3.5, 7.25) {
		t.Error("same seed must produce the same heights")
	}

	p := testParams()
	p.Seed = 9999
	c := NewGenerator(p)
	same := true
	for _, xz := range [][2]float32{{1, 1}, {5, 3}, {2.5, 8}} {
		if a.Height(xz[0], xz[1]) != c.Height(xz[0], xz[1]) {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical height fields")
	}
}

func TestHeightBoundedByAmplitude(t *testing.T) {
	g := NewGenerator(testParams())
	// Octave sums can overshoot the nominal noise range a little, so
	// allow some headroom over the configured amplitude.
	limit := g.params.Amplitude * 1.5
	for x := float32(0); x < 20; x += 0.7 {
		for z := float32(0); z < 20; z += 0.7 {
			h := g.Height(x, z)
			if h > limit || h < -limit {
				t.Fatalf("height %v at (%v,%v) far exceeds amplitude %v", h, x, z, g.params.Amplitude)
			}
		}
	}
}

func TestBuildStatic(t *testing.T) {
	p := testParams()
	g := NewGenerator(p)
	s, err := g.BuildStatic()
	if err != nil {
		t.Fatalf("BuildStatic failed: %v", err)
	}

	wantVerts := (p.TilesX + 1) * (p.TilesZ + 1)
	if s.VertexCount() != wantVerts {
		t.Errorf("vertex count = %d, want %d", s.VertexCount(), wantVerts)
	}
	if got := len(s.Indices()); got != p.TilesX*p.TilesZ*6 {
		t.Errorf("index count = %d, want %d", got, p.TilesX*p.TilesZ*6)
	}
	if s.Layout().Tag != mesh.LayoutPosNormTanUV {
		t.Errorf("layout = %v, want %v", s.Layout().Tag, mesh.LayoutPosNormTanUV)
	}
	if !s.CollisionEnabled() {
		t.Error("terrain must have collision enabled")
	}

	box := s.Bounds()
	if !box.Valid {
		t.Fatal("bounds not computed")
	}
	if box.Min.X() != 0 || box.Min.Z() != 0 {
		t.Errorf("bounds min = %v, want origin corner", box.Min)
	}
	spanX := float32(p.TilesX) * p.TileSize
	if box.Max.X() != spanX {
		t.Errorf("bounds max x = %v, want %v", box.Max.X(), spanX)
	}
	if box.Max.Y() > p.Amplitude*1.5 || box.Min.Y() < -p.Amplitude*1.5 {
		t.Errorf("bounds y range [%v, %v] exceeds amplitude", box.Min.Y(), box.Max.Y())
	}

	// Generated normals should be unit length and mostly upward for a
	// gently rolling field.
	layout := s.Layout()
	data := s.SnapshotForCreation().Vertices
	for i := 0; i < s.VertexCount(); i++ {
		n := layout.Normal(data, i)
		if d := n.Len(); d < 0.999 || d > 1.001 {
			t.Fatalf("normal %d not unit length: %v", i, d)
		}
	}
}

func TestBuildDeformableAndDeform(t *testing.T) {
	p := testParams()
	g := NewGenerator(p)
	s, err := g.BuildDeformable()
	if err != nil {
		t.Fatalf("BuildDeformable failed: %v", err)
	}

	if s.Layout().Tag != mesh.LayoutNormTanUV {
		t.Fatalf("layout = %v, want split-position layout", s.Layout().Tag)
	}
	if s.Frequency() != mesh.FrequencyFrequent {
		t.Errorf("frequency = %v, want frequent", s.Frequency())
	}

	before := s.SnapshotPositionsOnly()
	if !before.HasPositions {
		t.Fatal("positions-only snapshot missing positions")
	}

	if _, err := g.Deform(s, 1.5); err != nil {
		t.Fatalf("Deform failed: %v", err)
	}

	after := s.SnapshotPositionsOnly()
	if len(after.Positions) != len(before.Positions) {
		t.Fatalf("deform changed vertex count: %d -> %d", len(before.Positions), len(after.Positions))
	}

	moved := false
	for i := range after.Positions {
		if after.Positions[i] != before.Positions[i] {
			moved = true
		}
		// Deform only displaces along Y.
		if after.Positions[i].X() != before.Positions[i].X() ||
			after.Positions[i].Z() != before.Positions[i].Z() {
			t.Fatalf("vertex %d moved horizontally", i)
		}
	}
	if !moved {
		t.Error("deform left every position unchanged")
	}
}
