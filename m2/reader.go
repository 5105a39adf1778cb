package m2

import (
	"encoding/binary"
	"math"
)

// cursor is a small bounds-checked little-endian reader over a byte
// slice, used for both the MD20 payload and the skin file format.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) u32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

func (c *cursor) u8() (uint8, error) {
	if c.remaining() < 1 {
		return 0, ErrTruncated
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) f32() (float32, error) {
	bits, err := c.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// arrayRef is a (count, offset) pair naming an array elsewhere in the
// buffer; offset is relative to the payload origin (byte 0 of the MD20
// payload), as required by spec.
type arrayRef struct {
	count  uint32
	offset uint32
}

func (c *cursor) arrayRef() (arrayRef, error) {
	count, err := c.u32()
	if err != nil {
		return arrayRef{}, err
	}
	offset, err := c.u32()
	if err != nil {
		return arrayRef{}, err
	}
	return arrayRef{count: count, offset: offset}, nil
}

// slice returns the sub-slice of payload named by ref, bounds-checked
// against elemSize.
func (ref arrayRef) slice(payload []byte, elemSize int) ([]byte, error) {
	start := uint64(ref.offset)
	length := uint64(ref.count) * uint64(elemSize)
	if start+length > uint64(len(payload)) {
		return nil, ErrTruncated
	}
	return payload[start : start+length], nil
}
