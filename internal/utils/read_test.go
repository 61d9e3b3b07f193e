package utils

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(8, 0, 8))
	assert.True(t, InBounds(8, 4, 4))
	assert.False(t, InBounds(8, 5, 4))
	assert.False(t, InBounds(8, 8, 1))
	assert.True(t, InBounds(0, 0, 0))

	// off+width must not wrap around.
	assert.False(t, InBounds(8, ^uint64(0), 4))
	assert.False(t, InBounds(8, ^uint64(0)-1, 2))
}

func TestReadBothOrders(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	v32, err := U32(buf, 0, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v32)

	v32, err = U32(buf, 0, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v32)

	v64, err := U64(buf, 0, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0807060504030201), v64)

	v16, err := U16(buf, 6, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0708), v16)
}

func TestReadOutOfBounds(t *testing.T) {
	buf := []byte{0x01, 0x02}

	_, err := U32(buf, 0, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = U8(buf, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = U64(nil, 0, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestF32(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x3F} // 0.5 little-endian
	v, err := F32(buf, 0, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), v)
}

func TestCString(t *testing.T) {
	buf := []byte("hello\x00world\x00")

	s, err := CString(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = CString(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", s)

	// Unterminated tail is an error.
	_, err = CString([]byte("abc"), 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = CString(buf, uint64(len(buf)))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
