package mpq

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic is returned when a file does not begin with the MPQ\x1A magic.
	ErrInvalidMagic = errors.New("mpq: invalid magic")
	// ErrUnsupportedVersion is returned for a format-version greater than 1.
	ErrUnsupportedVersion = errors.New("mpq: unsupported format version")
	// ErrNotFound is returned when a logical name has no matching archive entry.
	ErrNotFound = errors.New("mpq: file not found")
	// ErrTruncated is returned when a count/offset pair or table read runs past a buffer.
	ErrTruncated = errors.New("mpq: truncated data")
	// ErrEncrypted is returned for a multi-sector block whose ENCRYPTED
	// flag is set: decryption needs a per-sector key increment this
	// reader does not implement, so it refuses the block rather than
	// decrypt it incorrectly. Single-unit encrypted blocks decrypt fine.
	ErrEncrypted = errors.New("mpq: multi-sector encrypted file content is unsupported")
)

// ErrUnsupportedCompression is returned by the sector decompressor when it
// encounters an algorithm bit it does not implement.
type ErrUnsupportedCompression struct {
	Code byte
}

func (e ErrUnsupportedCompression) Error() string {
	return fmt.Sprintf("mpq: unsupported compression algorithm 0x%02x", e.Code)
}
