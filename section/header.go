package section

import (
	"fmt"
	"math"

	"github.com/arloliu/meshpack/errs"
	"github.com/arloliu/meshpack/format"
	"github.com/arloliu/meshpack/internal/bitio"
)

// Header is the stream header.
//
// Layout:
//
//	magic "MSHPK" | major | minor | kind | uvarint numPoints |
//	[mesh: uvarint numFaces] | attribute count |
//	[minor >= 1: uvarint extension length | compression | flag | [checksum]]
type Header struct {
	Kind          format.GeometryKind
	Major         uint8
	Minor         uint8
	NumPoints     uint32
	NumFaces      uint32 // meshes only
	NumAttributes uint8

	// Extension fields, present from minor version 1.
	Compression format.CompressionType
	Flag        Flag
	Checksum    uint64 // valid when Flag.HasChecksum()
}

// NewHeader creates a header of the current version without body
// compression or checksum.
func NewHeader(kind format.GeometryKind) *Header {
	return &Header{
		Kind:        kind,
		Major:       MajorVersion,
		Minor:       MinorVersion,
		Compression: format.CompressionNone,
	}
}

// Write serializes the header.
func (h *Header) Write(w *bitio.Writer) {
	w.WriteBytes([]byte(Magic))
	_ = w.WriteByte(h.Major)
	_ = w.WriteByte(h.Minor)
	_ = w.WriteByte(byte(h.Kind))
	w.WriteUvarint(uint64(h.NumPoints))
	if h.Kind == format.KindMesh {
		w.WriteUvarint(uint64(h.NumFaces))
	}
	_ = w.WriteByte(h.NumAttributes)

	if h.Minor == 0 {
		return
	}

	ext := []byte{byte(h.Compression), byte(h.Flag)}
	if h.Flag.HasChecksum() {
		ext = append(ext, make([]byte, ChecksumSize)...)
		for i := range ChecksumSize {
			ext[minExtensionSize+i] = byte(h.Checksum >> (8 * i))
		}
	}
	w.WriteSection(ext)
}

// Bytes serializes the header into a new byte slice.
func (h *Header) Bytes() []byte {
	w := bitio.NewWriter()
	h.Write(w)

	return w.Finish()
}

// Parse reads the header from r.
//
// Returns:
//   - error: errs.ErrUnsupportedFormat for a bad magic, major version,
//     geometry kind, compression or flag; errs.ErrLimitExceeded for counts
//     beyond 32 bits; errs.ErrTruncatedStream when r ends early
func (h *Header) Parse(r *bitio.Reader) error {
	magic, err := r.ReadBytes(MagicSize)
	if err != nil {
		return err
	}

	if string(magic) != Magic {
		return fmt.Errorf("%w: bad magic %q", errs.ErrUnsupportedFormat, magic)
	}

	if h.Major, err = r.ReadByte(); err != nil {
		return err
	}

	if h.Major != MajorVersion {
		return fmt.Errorf("%w: major version %d, supported %d", errs.ErrUnsupportedFormat, h.Major, MajorVersion)
	}

	if h.Minor, err = r.ReadByte(); err != nil {
		return err
	}

	kind, err := r.ReadByte()
	if err != nil {
		return err
	}
	h.Kind = format.GeometryKind(kind)

	if !h.Kind.IsValid() {
		return fmt.Errorf("%w: geometry kind %d", errs.ErrUnsupportedFormat, kind)
	}

	if h.NumPoints, err = readCount(r, "points"); err != nil {
		return err
	}

	h.NumFaces = 0
	if h.Kind == format.KindMesh {
		if h.NumFaces, err = readCount(r, "faces"); err != nil {
			return err
		}
	}

	if h.NumAttributes, err = r.ReadByte(); err != nil {
		return err
	}

	h.Compression = format.CompressionNone
	h.Flag = 0
	h.Checksum = 0
	if h.Minor == 0 {
		return nil
	}

	return h.parseExtension(r)
}

func (h *Header) parseExtension(r *bitio.Reader) error {
	ext, err := r.ReadSection()
	if err != nil {
		return err
	}

	if len(ext) < minExtensionSize || len(ext) > maxExtensionSize {
		return fmt.Errorf("%w: header extension of %d bytes", errs.ErrUnsupportedFormat, len(ext))
	}

	h.Compression = format.CompressionType(ext[0])
	if !h.Compression.IsValid() {
		return fmt.Errorf("%w: body compression %d", errs.ErrUnsupportedFormat, ext[0])
	}

	h.Flag = Flag(ext[1])
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	if h.Flag.HasChecksum() {
		if len(ext) < minExtensionSize+ChecksumSize {
			return fmt.Errorf("%w: checksum flag without checksum", errs.ErrTruncatedStream)
		}

		for i := range ChecksumSize {
			h.Checksum |= uint64(ext[minExtensionSize+i]) << (8 * i)
		}
	}

	// Bytes beyond the known fields belong to newer minor versions.
	return nil
}

func readCount(r *bitio.Reader, what string) (uint32, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}

	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d %s", errs.ErrLimitExceeded, v, what)
	}

	return uint32(v), nil
}

// ParseHeader parses a header from the start of data.
//
// Returns:
//   - Header: parsed header
//   - int: number of bytes consumed
//   - error: see Header.Parse
func ParseHeader(data []byte) (Header, int, error) {
	r := bitio.NewReader(data)
	h := Header{}
	if err := h.Parse(r); err != nil {
		return Header{}, 0, err
	}

	return h, r.Offset(), nil
}
