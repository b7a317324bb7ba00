// Package section defines the binary layout of a meshpack stream.
//
// This package serializes and parses the header, the connectivity section and
// the attribute sections. It validates every enum and count it reads, but
// leaves the meaning of payloads to the codec package.
//
// # Stream Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header                                                  │
//	│  - Magic "MSHPK" (5 bytes), major, minor, kind          │
//	│  - uvarint numPoints, [mesh] uvarint numFaces           │
//	│  - attribute count (1 byte)                             │
//	│  - [minor >= 1] extension: compression, flag, checksum  │
//	├─────────────────────────────────────────────────────────┤
//	│ Body (optionally compressed: uvarint rawLen + data)     │
//	│  ┌───────────────────────────────────────────────────┐  │
//	│  │ Connectivity section (mesh only)                  │  │
//	│  │  - method (1 byte), uvarint length, payload       │  │
//	│  ├───────────────────────────────────────────────────┤  │
//	│  │ Attribute section × attribute count               │  │
//	│  │  - descriptor                                     │  │
//	│  │  - [explicit mapping] uvarint length, payload     │  │
//	│  │  - uvarint length, residual payload               │  │
//	│  └───────────────────────────────────────────────────┘  │
//	└─────────────────────────────────────────────────────────┘
//
// All fixed-width fields are little-endian. Bytes after the last attribute
// section are ignored.
//
// # Header Extension
//
// Minor version 1 appends a length-prefixed extension to the header:
//
//	Byte  | Field       | Description
//	------|-------------|-------------------------------------------
//	0     | Compression | format.CompressionType of the body
//	1     | Flag        | bit 0: checksum present, bits 1-7 reserved
//	2-9   | Checksum    | xxHash64 of the stored body (if flagged)
//
// Readers skip extension bytes they do not know, so later minor versions can
// add fields without breaking older readers.
//
// # Attribute Descriptor
//
//	Field             | Encoding
//	------------------|-----------------------------------------
//	Type              | 1 byte, format.AttributeType
//	DataType          | 1 byte, format.DataType
//	Components        | 1 byte, >= 1
//	QuantizationBits  | 1 byte, 0 or [1, 24], float only
//	Predictor         | 1 byte, format.PredictorType
//	NumValues         | uvarint
//	Mapping           | 1 byte, format.MappingMode
//	Mins, Range       | float32 × (Components + 1), quantized only
package section
