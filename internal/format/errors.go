package format

import "errors"

var (
	// ErrInvalidMagic is returned when a file does not start with a known magic.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrUnsupportedVersion is returned for flat files with an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrTruncated is returned when data ends before a declared structure does.
	ErrTruncated = errors.New("truncated data")

	// ErrOffsetOutOfRange is returned when a flat section lies outside the file.
	ErrOffsetOutOfRange = errors.New("section offset out of range")

	// ErrCorrupt is returned for structurally invalid content.
	ErrCorrupt = errors.New("corrupt data")

	// ErrInvalidID is returned when an id cannot be represented in a format.
	ErrInvalidID = errors.New("invalid id")

	// ErrChecksumMismatch is returned when a flat body does not match its stored CRC32C.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
