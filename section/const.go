package section

// Magic identifies a meshpack stream.
const Magic = "MSHPK"

// Format version written by this package. Streams with another major version
// are rejected; newer minor versions only append header extension fields.
const (
	MajorVersion = 1
	MinorVersion = 1
)

const (
	// Flag bits
	ChecksumMask     = 0x01 // Mask for body checksum bit (bit 0)
	ReservedBitsMask = 0xFE // Mask for reserved bits (bits 1-7)
)

// offsets and sizes in the stream
const (
	MagicSize        = len(Magic) // magic tag size in bytes
	ChecksumSize     = 8          // xxHash64 of the stored body, little-endian
	minExtensionSize = 2          // compression byte and flag byte
)

// maxExtensionSize bounds the header extension, leaving room for fields
// added by later minor versions.
const maxExtensionSize = 1 << 10
