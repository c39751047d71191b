package mesh

import "errors"

// Contract-violation errors. These signal caller bugs (mismatched buffer
// lengths, wrong buffer for a layout, out-of-range indices). A mutating
// operation that returns one of these has not touched the section: the
// prior, fully-consistent state is preserved.
var (
	ErrBadVertexStride       = errors.New("mesh: vertex data length is not a multiple of the layout stride")
	ErrMissingBuffer         = errors.New("mesh: missing required buffer for layout")
	ErrUnexpectedPositions   = errors.New("mesh: position-only buffer supplied for a layout with intrinsic positions")
	ErrPositionCountMismatch = errors.New("mesh: position-only buffer length does not match vertex count")
	ErrIndexCount            = errors.New("mesh: index count is not a multiple of 3")
	ErrIndexOutOfRange       = errors.New("mesh: index value out of vertex range")
	ErrNoTangentSpace        = errors.New("mesh: layout has no writable normal/tangent/uv attributes")
)

// Serialization errors.
var (
	ErrBadMagic           = errors.New("mesh: invalid section magic")
	ErrUnsupportedVersion = errors.New("mesh: unsupported section format version")
	ErrTruncated          = errors.New("mesh: truncated section data")
)
