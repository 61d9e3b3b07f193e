package utils

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrOutOfBounds reports a read that would leave the buffer. Callers
// wrap it with the context of the field being read.
var ErrOutOfBounds = errors.New("read out of bounds")

// InBounds reports whether [off, off+width) lies inside a buffer of
// the given length. Guards against overflow of off+width.
func InBounds(length int, off, width uint64) bool {
	if off > math.MaxUint64-width {
		return false
	}
	return off+width <= uint64(length)
}

// U8 reads a byte at offset.
func U8(buf []byte, off uint64) (uint8, error) {
	if !InBounds(len(buf), off, 1) {
		return 0, ErrOutOfBounds
	}
	return buf[off], nil
}

// U16 reads a 16-bit value at offset using the given byte order.
func U16(buf []byte, off uint64, order binary.ByteOrder) (uint16, error) {
	if !InBounds(len(buf), off, 2) {
		return 0, ErrOutOfBounds
	}
	return order.Uint16(buf[off:]), nil
}

// U32 reads a 32-bit value at offset using the given byte order.
func U32(buf []byte, off uint64, order binary.ByteOrder) (uint32, error) {
	if !InBounds(len(buf), off, 4) {
		return 0, ErrOutOfBounds
	}
	return order.Uint32(buf[off:]), nil
}

// U64 reads a 64-bit value at offset using the given byte order.
func U64(buf []byte, off uint64, order binary.ByteOrder) (uint64, error) {
	if !InBounds(len(buf), off, 8) {
		return 0, ErrOutOfBounds
	}
	return order.Uint64(buf[off:]), nil
}

// F32 reads a 32-bit IEEE float at offset using the given byte order.
func F32(buf []byte, off uint64, order binary.ByteOrder) (float32, error) {
	bits, err := U32(buf, off, order)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// CString reads a null-terminated string at offset. The terminator is
// required; a string running to the end of the buffer is out of bounds.
func CString(buf []byte, off uint64) (string, error) {
	if off >= uint64(len(buf)) {
		return "", ErrOutOfBounds
	}
	for end := off; end < uint64(len(buf)); end++ {
		if buf[end] == 0 {
			return string(buf[off:end]), nil
		}
	}
	return "", ErrOutOfBounds
}
