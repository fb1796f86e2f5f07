package pocketvec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pocketvec/cipher"
	"github.com/hupe1980/pocketvec/internal/format"
)

var (
	// ErrEmptyVector is returned when adding a zero-length vector.
	ErrEmptyVector = errors.New("empty vector")

	// ErrDuplicateID is returned when adding an id that is already stored.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrKeyRequired is returned when loading an encrypted file without a key.
	ErrKeyRequired = errors.New("encrypted store requires a key")

	// ErrDecrypt is returned when an encrypted file cannot be decrypted,
	// including a wrong key that yields an unrecognizable stream.
	ErrDecrypt = cipher.ErrDecrypt

	// ErrNotLoaded is returned by a FlatStore that has no mapped file.
	ErrNotLoaded = errors.New("flat store not loaded")
)

// Format errors.
var (
	ErrInvalidMagic       = format.ErrInvalidMagic
	ErrUnsupportedVersion = format.ErrUnsupportedVersion
	ErrTruncated          = format.ErrTruncated
	ErrOffsetOutOfRange   = format.ErrOffsetOutOfRange
	ErrCorrupt            = format.ErrCorrupt
	ErrInvalidID          = format.ErrInvalidID
	ErrChecksumMismatch   = format.ErrChecksumMismatch
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }
