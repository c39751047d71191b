package mesh

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/geom"
)

// Section persistence. The numeric contract is fixed for backward
// compatibility: after the header, a section stores - in this exact
// order - the position-only buffer (only for dual-buffer layouts, and
// only from VersionDualBuffer on), the primary index buffer, the
// bounding box, the collision-enabled flag, the visibility flag and the
// update frequency as an int32. The interleaved render-attribute buffer
// is not persisted; render attributes are rebuilt by the mesh source.
//
// All values are little-endian.

// sectionMagic identifies persisted section data.
const sectionMagic = "RMSC"

// Section format versions.
const (
	// VersionInitial sections predate the dual-buffer split and never
	// carry a position-only buffer.
	VersionInitial uint8 = 1

	// VersionDualBuffer adds the position-only buffer for layouts
	// without an intrinsic position attribute.
	VersionDualBuffer uint8 = 2

	// CurrentVersion is written by WriteSection.
	CurrentVersion = VersionDualBuffer
)

// maxBufferLen caps buffer counts read from untrusted data.
const maxBufferLen = 1 << 28

// WriteSection serializes a section to w in the current format version.
func WriteSection(w io.Writer, s *Section) error {
	if _, err := w.Write([]byte(sectionMagic)); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	header := [2]uint8{CurrentVersion, uint8(s.vertices.layout.Tag)}
	if err := binary.Write(w, binary.LittleEndian, header[:]); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if !s.vertices.layout.HasPosition() {
		if err := writeVec3s(w, s.vertices.positions); err != nil {
			return fmt.Errorf("writing position buffer: %w", err)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.indices.primary))); err != nil {
		return fmt.Errorf("writing index count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.indices.primary); err != nil {
		return fmt.Errorf("writing index buffer: %w", err)
	}

	if err := writeBox(w, s.vertices.bounds); err != nil {
		return fmt.Errorf("writing bounding box: %w", err)
	}

	flags := [2]uint8{boolByte(s.collisionEnabled), boolByte(s.visible)}
	if err := binary.Write(w, binary.LittleEndian, flags[:]); err != nil {
		return fmt.Errorf("writing flags: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, int32(s.frequency)); err != nil {
		return fmt.Errorf("writing update frequency: %w", err)
	}

	return nil
}

// ReadSection deserializes a section from r. Sections written at
// VersionInitial load with an empty position-only buffer regardless of
// layout; callers owning such data must supply positions before use.
func ReadSection(r io.Reader) (*Section, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncated)
	}
	if string(magic[:]) != sectionMagic {
		return nil, ErrBadMagic
	}

	var header [2]uint8
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncated)
	}
	version := header[0]
	if version < VersionInitial || version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	tag := LayoutTag(header[1])
	if int(tag) >= len(layouts) {
		return nil, fmt.Errorf("mesh: unknown layout tag %d", tag)
	}

	s := NewSection(tag, FrequencyInfrequent)

	if !s.vertices.layout.HasPosition() && version >= VersionDualBuffer {
		positions, err := readVec3s(r)
		if err != nil {
			return nil, fmt.Errorf("reading position buffer: %w", err)
		}
		s.vertices.positions = positions
	}

	var indexCount uint32
	if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
		return nil, fmt.Errorf("%w: reading index count", ErrTruncated)
	}
	if indexCount > maxBufferLen {
		return nil, fmt.Errorf("mesh: invalid index count %d", indexCount)
	}
	indices := make([]uint32, indexCount)
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, fmt.Errorf("%w: reading index buffer", ErrTruncated)
	}
	s.indices.primary = indices

	bounds, err := readBox(r)
	if err != nil {
		return nil, fmt.Errorf("reading bounding box: %w", err)
	}
	s.vertices.bounds = bounds

	var flags [2]uint8
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return nil, fmt.Errorf("%w: reading flags", ErrTruncated)
	}
	s.collisionEnabled = flags[0] != 0
	s.visible = flags[1] != 0

	var freq int32
	if err := binary.Read(r, binary.LittleEndian, &freq); err != nil {
		return nil, fmt.Errorf("%w: reading update frequency", ErrTruncated)
	}
	s.frequency = UpdateFrequency(freq)

	return s, nil
}

func writeVec3s(w io.Writer, v []mgl32.Vec3) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v)
}

func readVec3s(r io.Reader) ([]mgl32.Vec3, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading count", ErrTruncated)
	}
	if count > maxBufferLen {
		return nil, fmt.Errorf("mesh: invalid position count %d", count)
	}
	v := make([]mgl32.Vec3, count)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("%w: reading values", ErrTruncated)
	}
	return v, nil
}

func writeBox(w io.Writer, b geom.Box) error {
	if err := binary.Write(w, binary.LittleEndian, b.Min); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, b.Max); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, boolByte(b.Valid))
}

func readBox(r io.Reader) (geom.Box, error) {
	var b geom.Box
	if err := binary.Read(r, binary.LittleEndian, &b.Min); err != nil {
		return b, fmt.Errorf("%w: reading min", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &b.Max); err != nil {
		return b, fmt.Errorf("%w: reading max", ErrTruncated)
	}
	var valid uint8
	if err := binary.Read(r, binary.LittleEndian, &valid); err != nil {
		return b, fmt.Errorf("%w: reading validity", ErrTruncated)
	}
	b.Valid = valid != 0
	return b, nil
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
