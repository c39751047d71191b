package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
)

// triangleVerts builds an interleaved single-triangle buffer for a
// layout with intrinsic positions: (0,0,0), (1,0,0), (0,1,0).
func triangleVerts(tag LayoutTag) []float32 {
	layout := LayoutFor(tag)
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}

	data := make([]float32, 3*layout.Stride)
	for i, p := range positions {
		if layout.PositionOff >= 0 {
			layout.SetPosition(data, i, p)
		}
		if layout.UVOff >= 0 {
			layout.SetUV(data, i, uvs[i])
		}
	}
	return data
}

func TestReplaceRecomputesBounds(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)

	changed, err := b.Replace(triangleVerts(LayoutPosNormTanUV), nil, false)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if !changed {
		t.Error("first replace should report a bounds change")
	}

	want := geom.NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 0})
	if !b.Bounds().Eq(want) {
		t.Errorf("bounds = %+v, want %+v", b.Bounds(), want)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestReplaceTrustsExplicitBox(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)

	// A deliberately wrong, degenerate box: if replace recomputed the
	// bounds this value could never survive.
	bogus := geom.NewBox(mgl32.Vec3{42, 42, 42}, mgl32.Vec3{42, 42, 42})
	if _, err := b.Replace(triangleVerts(LayoutPosNormTanUV), &bogus, false); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if !b.Bounds().Eq(bogus) {
		t.Errorf("explicit box not trusted verbatim: got %+v, want %+v", b.Bounds(), bogus)
	}
}

func TestReplaceUnchangedBoundsReportsFalse(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	verts := triangleVerts(LayoutPosNormTanUV)

	if _, err := b.Replace(verts, nil, false); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	changed, err := b.Replace(verts, nil, false)
	if err != nil {
		t.Fatalf("second Replace failed: %v", err)
	}
	if changed {
		t.Error("replacing with identical geometry must not report a bounds change")
	}
}

func TestReplaceBadStride(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	if _, err := b.Replace(make([]float32, 13), nil, false); err != ErrBadVertexStride {
		t.Errorf("expected ErrBadVertexStride, got %v", err)
	}
	if b.Len() != 0 {
		t.Error("failed replace must leave the buffer untouched")
	}
}

func TestDualBufferReplaceNeverTouchesBounds(t *testing.T) {
	b := NewVertexBuffer(LayoutNormTanUV)

	changed, err := b.Replace(make([]float32, 3*LayoutFor(LayoutNormTanUV).Stride), nil, false)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if changed {
		t.Error("attribute replace on a dual-buffer layout must report unchanged bounds")
	}
	if b.Bounds().Valid {
		t.Error("bounds must stay empty until positions arrive")
	}
}

func TestReplacePositionsOwnsBounds(t *testing.T) {
	b := NewVertexBuffer(LayoutNormTanUV)
	pts := []mgl32.Vec3{{-1, 0, 0}, {2, 3, 0}, {0, 0, -5}}

	changed, err := b.ReplacePositions(pts, nil, false)
	if err != nil {
		t.Fatalf("ReplacePositions failed: %v", err)
	}
	if !changed {
		t.Error("first position replace should change bounds")
	}

	want := geom.NewBox(mgl32.Vec3{-1, 0, -5}, mgl32.Vec3{2, 3, 0})
	if !b.Bounds().Eq(want) {
		t.Errorf("bounds = %+v, want %+v", b.Bounds(), want)
	}
}

func TestReplacePositionsRejectedForIntrinsicLayout(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	if _, err := b.ReplacePositions([]mgl32.Vec3{{0, 0, 0}}, nil, false); err != ErrUnexpectedPositions {
		t.Errorf("expected ErrUnexpectedPositions, got %v", err)
	}
}

func TestAllPositionsCopiesIntrinsic(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	if _, err := b.Replace(triangleVerts(LayoutPosNormTanUV), nil, false); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	pts := b.AllPositions()
	want := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if len(pts) != len(want) {
		t.Fatalf("AllPositions returned %d points, want %d", len(pts), len(want))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, pts[i], want[i])
		}
	}

	// The copy must be detached from the interleaved buffer.
	pts[0] = mgl32.Vec3{99, 99, 99}
	if got := b.Layout().Position(b.Data(), 0); got != (mgl32.Vec3{0, 0, 0}) {
		t.Error("mutating the extracted copy leaked into the vertex buffer")
	}
}

func TestAllPositionsDualBuffer(t *testing.T) {
	b := NewVertexBuffer(LayoutNormTanUV)
	pts := []mgl32.Vec3{{1, 2, 3}}
	if _, err := b.ReplacePositions(pts, nil, false); err != nil {
		t.Fatalf("ReplacePositions failed: %v", err)
	}
	got := b.AllPositions()
	if len(got) != 1 || got[0] != pts[0] {
		t.Errorf("AllPositions = %v, want %v", got, pts)
	}
}

func TestRecalculateDiscardsExplicitBox(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	bogus := geom.NewBox(mgl32.Vec3{-100, -100, -100}, mgl32.Vec3{100, 100, 100})
	if _, err := b.Replace(triangleVerts(LayoutPosNormTanUV), &bogus, false); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if !b.Recalculate() {
		t.Error("recalculating away from a bogus explicit box should report a change")
	}
	want := geom.NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 0})
	if !b.Bounds().Eq(want) {
		t.Errorf("bounds = %+v, want %+v", b.Bounds(), want)
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	b := NewVertexBuffer(LayoutPosNormTanUV)
	if _, err := b.Replace(triangleVerts(LayoutPosNormTanUV), nil, false); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	b.Recalculate()
	first := b.Bounds()
	if b.Recalculate() {
		t.Error("second recalculation must be a no-op")
	}
	if !b.Bounds().Eq(first) {
		t.Errorf("bounds drifted across recalculations: %+v vs %+v", b.Bounds(), first)
	}
}

func TestMoveAndCopyProduceIdenticalState(t *testing.T) {
	src := triangleVerts(LayoutPosNormTanUV)

	moved := NewVertexBuffer(LayoutPosNormTanUV)
	movedInput := append([]float32(nil), src...)
	if _, err := moved.Replace(movedInput, nil, true); err != nil {
		t.Fatalf("move Replace failed: %v", err)
	}

	copied := NewVertexBuffer(LayoutPosNormTanUV)
	if _, err := copied.Replace(src, nil, false); err != nil {
		t.Fatalf("copy Replace failed: %v", err)
	}

	if !moved.Bounds().Eq(copied.Bounds()) {
		t.Errorf("bounds differ: move %+v, copy %+v", moved.Bounds(), copied.Bounds())
	}
	md, cd := moved.Data(), copied.Data()
	if len(md) != len(cd) {
		t.Fatalf("data lengths differ: %d vs %d", len(md), len(cd))
	}
	for i := range md {
		if md[i] != cd[i] {
			t.Fatalf("data differs at %d: %v vs %v", i, md[i], cd[i])
		}
	}
}
