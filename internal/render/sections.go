package render

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/meshforge/runtimemesh/internal/logger"
	"github.com/meshforge/runtimemesh/pkg/mesh"
)

// sectionResources holds the GPU-side state for one mesh section.
// Dual-buffer layouts keep positions in a separate VBO; intrinsic
// layouts leave posVBO at zero and source position from the
// interleaved attribute buffer.
type sectionResources struct {
	layout mesh.Layout

	vao     uint32
	attrVBO uint32
	posVBO  uint32
	ebo     uint32

	// Allocated element counts, so re-uploads of unchanged size can use
	// BufferSubData instead of reallocating.
	attrLen int
	posLen  int
	idxLen  int

	indexCount int32
	adjacency  bool
	visible    bool
	usage      uint32
}

// usageFor maps a section's declared update frequency to a GL buffer
// usage hint.
func usageFor(freq mesh.UpdateFrequency) uint32 {
	switch freq {
	case mesh.FrequencyFrequent:
		return gl.STREAM_DRAW
	case mesh.FrequencyOccasional:
		return gl.DYNAMIC_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

// CreateSection allocates GPU resources for a section from a creation
// packet. An existing section with the same id is replaced.
func (r *Renderer) CreateSection(id int, pkt *mesh.UpdatePacket) {
	if _, exists := r.sections[id]; exists {
		r.RemoveSection(id)
	}

	res := &sectionResources{
		layout: pkt.Layout,
		usage:  usageFor(pkt.Frequency),
	}

	gl.GenVertexArrays(1, &res.vao)
	gl.BindVertexArray(res.vao)

	gl.GenBuffers(1, &res.attrVBO)
	if !pkt.Layout.HasPosition() {
		gl.GenBuffers(1, &res.posVBO)
	}
	gl.GenBuffers(1, &res.ebo)

	r.setupAttribPointers(res)
	gl.BindVertexArray(0)

	r.sections[id] = res
	r.UpdateSection(id, pkt)

	logger.Info("section created",
		zap.Int("section", id),
		zap.Stringer("layout", pkt.Layout.Tag),
		zap.Stringer("frequency", pkt.Frequency),
	)
}

// UpdateSection uploads the buffers a packet carries. Buffers the
// packet omits keep their previous GPU contents.
func (r *Renderer) UpdateSection(id int, pkt *mesh.UpdatePacket) {
	res, ok := r.sections[id]
	if !ok {
		logger.Warn("update for unknown section", zap.Int("section", id))
		return
	}

	res.visible = pkt.Visible

	if pkt.HasVertices {
		uploadFloats(res.attrVBO, pkt.Vertices, &res.attrLen, res.usage)
	}
	if pkt.HasPositions && res.posVBO != 0 {
		uploadVec3s(res.posVBO, pkt.Positions, &res.posLen, res.usage)
	}
	if pkt.HasIndices {
		uploadIndices(res.ebo, pkt.Indices, &res.idxLen, res.usage)
		res.indexCount = int32(len(pkt.Indices))
		res.adjacency = pkt.AdjacencyIndices
		if pkt.AdjacencyIndices {
			logger.Warn("section uploaded adjacency indices without a tessellation pipeline",
				zap.Int("section", id))
		}
	}
}

// RemoveSection frees a section's GPU resources.
func (r *Renderer) RemoveSection(id int) {
	res, ok := r.sections[id]
	if !ok {
		return
	}

	gl.DeleteBuffers(1, &res.attrVBO)
	if res.posVBO != 0 {
		gl.DeleteBuffers(1, &res.posVBO)
	}
	gl.DeleteBuffers(1, &res.ebo)
	gl.DeleteVertexArrays(1, &res.vao)

	delete(r.sections, id)
	logger.Info("section removed", zap.Int("section", id))
}

// setupAttribPointers wires the VAO's attribute bindings from the
// section layout. Attribute locations match the shader: 0 position,
// 1 normal, 2 tangent, 3 uv, 4 color.
func (r *Renderer) setupAttribPointers(res *sectionResources) {
	const floatSize = 4
	l := res.layout
	stride := int32(l.Stride * floatSize)

	if l.HasPosition() {
		gl.BindBuffer(gl.ARRAY_BUFFER, res.attrVBO)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, uintptr(l.PositionOff*floatSize))
	} else {
		gl.BindBuffer(gl.ARRAY_BUFFER, res.posVBO)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*floatSize, 0)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, res.attrVBO)
	if l.NormalOff >= 0 {
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, uintptr(l.NormalOff*floatSize))
	}
	if l.TangentOff >= 0 {
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, uintptr(l.TangentOff*floatSize))
	}
	if l.UVOff >= 0 {
		gl.EnableVertexAttribArray(3)
		gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, stride, uintptr(l.UVOff*floatSize))
	}
	if l.ColorOff >= 0 {
		gl.EnableVertexAttribArray(4)
		gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, stride, uintptr(l.ColorOff*floatSize))
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, res.ebo)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func uploadFloats(vbo uint32, data []float32, allocated *int, usage uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	size := len(data) * 4
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, usage)
		*allocated = 0
		return
	}
	if len(data) == *allocated {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(data))
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(data), usage)
		*allocated = len(data)
	}
}

func uploadVec3s(vbo uint32, data []mgl32.Vec3, allocated *int, usage uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	size := len(data) * int(unsafe.Sizeof(mgl32.Vec3{}))
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, usage)
		*allocated = 0
		return
	}
	if len(data) == *allocated {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(data))
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(data), usage)
		*allocated = len(data)
	}
}

func uploadIndices(ebo uint32, data []uint32, allocated *int, usage uint32) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	size := len(data) * 4
	if len(data) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, usage)
		*allocated = 0
		return
	}
	if len(data) == *allocated {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, size, gl.Ptr(data))
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, size, gl.Ptr(data), usage)
		*allocated = len(data)
	}
}
