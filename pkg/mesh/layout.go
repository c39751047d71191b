// Package mesh implements runtime-mutable mesh sections: per-section
// vertex/index storage, bounding-box maintenance, tangent generation,
// tessellation-adjacency derivation, and snapshot packets for hand-off
// to a render-side upload layer.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// LayoutTag identifies one of the supported vertex attribute layouts.
// A section is created with a fixed tag that never changes for its life.
type LayoutTag uint8

// Supported vertex layouts.
const (
	// LayoutPos holds only a position. Used for untextured geometry
	// such as debug shapes.
	LayoutPos LayoutTag = iota

	// LayoutPosColor holds a position and an RGBA color.
	LayoutPosColor

	// LayoutPosNormUV holds position, normal and one UV channel.
	LayoutPosNormUV

	// LayoutPosNormTanUV is the full render vertex: position, normal,
	// tangent (xyz plus handedness w) and one UV channel.
	LayoutPosNormTanUV

	// LayoutNormTanUV is the dual-buffer layout: normal, tangent and UV
	// with no intrinsic position. Sections using it keep positions in a
	// separate position-only buffer so physics-relevant geometry can be
	// moved without rewriting render attributes.
	LayoutNormTanUV
)

// String returns the layout name.
func (t LayoutTag) String() string {
	switch t {
	case LayoutPos:
		return "Pos"
	case LayoutPosColor:
		return "PosColor"
	case LayoutPosNormUV:
		return "PosNormUV"
	case LayoutPosNormTanUV:
		return "PosNormTanUV"
	case LayoutNormTanUV:
		return "NormTanUV"
	default:
		return "Unknown"
	}
}

// Layout is the capability table for a vertex layout. Vertex buffers are
// flat []float32 slices with Stride floats per vertex; each attribute
// offset is a float index into a vertex record, or -1 when the layout
// does not carry that attribute.
type Layout struct {
	Tag           LayoutTag
	Stride        int
	PositionOff   int // 3 floats
	NormalOff     int // 3 floats
	TangentOff    int // 4 floats, w is handedness (+1 or -1)
	UVOff         int // 2 floats
	ColorOff      int // 4 floats
}

var layouts = [...]Layout{
	LayoutPos:          {Tag: LayoutPos, Stride: 3, PositionOff: 0, NormalOff: -1, TangentOff: -1, UVOff: -1, ColorOff: -1},
	LayoutPosColor:     {Tag: LayoutPosColor, Stride: 7, PositionOff: 0, NormalOff: -1, TangentOff: -1, UVOff: -1, ColorOff: 3},
	LayoutPosNormUV:    {Tag: LayoutPosNormUV, Stride: 8, PositionOff: 0, NormalOff: 3, TangentOff: -1, UVOff: 6, ColorOff: -1},
	LayoutPosNormTanUV: {Tag: LayoutPosNormTanUV, Stride: 12, PositionOff: 0, NormalOff: 3, TangentOff: 6, UVOff: 10, ColorOff: -1},
	LayoutNormTanUV:    {Tag: LayoutNormTanUV, Stride: 9, PositionOff: -1, NormalOff: 0, TangentOff: 3, UVOff: 7, ColorOff: -1},
}

// LayoutFor returns the capability table for a tag.
func LayoutFor(tag LayoutTag) Layout {
	return layouts[tag]
}

// HasPosition reports whether the layout carries an intrinsic position
// attribute. Layouts without one require a separate position-only buffer.
func (l Layout) HasPosition() bool { return l.PositionOff >= 0 }

// HasTangentSpace reports whether the layout exposes writable normal,
// tangent and UV attributes, which tangent generation needs.
func (l Layout) HasTangentSpace() bool {
	return l.NormalOff >= 0 && l.TangentOff >= 0 && l.UVOff >= 0
}

// Position reads the position of vertex i from an interleaved buffer.
// Only valid for layouts with an intrinsic position.
func (l Layout) Position(data []float32, i int) mgl32.Vec3 {
	off := i*l.Stride + l.PositionOff
	return mgl32.Vec3{data[off], data[off+1], data[off+2]}
}

// SetPosition writes the position of vertex i.
func (l Layout) SetPosition(data []float32, i int, p mgl32.Vec3) {
	off := i*l.Stride + l.PositionOff
	data[off], data[off+1], data[off+2] = p[0], p[1], p[2]
}

// Normal reads the normal of vertex i.
func (l Layout) Normal(data []float32, i int) mgl32.Vec3 {
	off := i*l.Stride + l.NormalOff
	return mgl32.Vec3{data[off], data[off+1], data[off+2]}
}

// SetNormal writes the normal of vertex i.
func (l Layout) SetNormal(data []float32, i int, n mgl32.Vec3) {
	off := i*l.Stride + l.NormalOff
	data[off], data[off+1], data[off+2] = n[0], n[1], n[2]
}

// Tangent reads the tangent of vertex i, returning the xyz direction and
// the handedness sign stored in w.
func (l Layout) Tangent(data []float32, i int) (mgl32.Vec3, float32) {
	off := i*l.Stride + l.TangentOff
	return mgl32.Vec3{data[off], data[off+1], data[off+2]}, data[off+3]
}

// SetTangent writes the tangent of vertex i.
func (l Layout) SetTangent(data []float32, i int, t mgl32.Vec3, w float32) {
	off := i*l.Stride + l.TangentOff
	data[off], data[off+1], data[off+2], data[off+3] = t[0], t[1], t[2], w
}

// UV reads the texture coordinate of vertex i.
func (l Layout) UV(data []float32, i int) mgl32.Vec2 {
	off := i*l.Stride + l.UVOff
	return mgl32.Vec2{data[off], data[off+1]}
}

// SetUV writes the texture coordinate of vertex i.
func (l Layout) SetUV(data []float32, i int, uv mgl32.Vec2) {
	off := i*l.Stride + l.UVOff
	data[off], data[off+1] = uv[0], uv[1]
}
