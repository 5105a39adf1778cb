package m2

import "errors"

var (
	// ErrInvalidMagic is returned when a buffer is neither MD20 nor MD21.
	ErrInvalidMagic = errors.New("m2: invalid magic")
	// ErrUnsupportedVersion is reserved for future version gating; no M2
	// version is currently rejected by this decoder.
	ErrUnsupportedVersion = errors.New("m2: unsupported version")
	// ErrTruncated is returned when a count/offset pair or fixed-size
	// record runs past the end of its buffer.
	ErrTruncated = errors.New("m2: truncated data")
	// ErrInvalidUTF8 is returned when a name field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("m2: invalid utf-8 in name field")
)
