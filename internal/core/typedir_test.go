package core

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTypeFixture assembles a v2 container whose type directory is
// handed in as raw record bytes.
func buildTypeFixture(t *testing.T, typeCount uint32, records []byte) *Container {
	t.Helper()

	buf := make([]byte, 0x18+len(records))
	le := binary.LittleEndian

	le.PutUint32(buf[offMagic:], MagicLittleEndian)
	le.PutUint32(buf[offVersion:], 2)
	le.PutUint32(buf[offTypeCount:], typeCount)
	le.PutUint32(buf[offTypeOffset:], 0x18)
	copy(buf[0x18:], records)

	c, err := ReadContainer(buf)
	require.NoError(t, err)
	return c
}

func TestReadTypesStructWithMembers(t *testing.T) {
	le := binary.LittleEndian

	// One struct record: 32-byte header plus two 32-byte members.
	rec := make([]byte, typeRecordHeaderSize+2*typeMemberSize)
	le.PutUint32(rec[0x00:], uint32(KindStruct))
	le.PutUint32(rec[0x04:], 24)         // size
	le.PutUint32(rec[0x08:], 8)          // alignment
	le.PutUint32(rec[0x0C:], 0x94407F4C) // name hash ("GraphScript")
	le.PutUint32(rec[0x10:], 0)          // name offset: none
	le.PutUint32(rec[0x14:], 0)          // flags
	le.PutUint32(rec[0x18:], 2)          // member count
	le.PutUint32(rec[0x1C:], 32)         // members offset

	m0 := rec[typeRecordHeaderSize:]
	le.PutUint32(m0[0x00:], 0xAAAA0001) // member name hash
	le.PutUint32(m0[0x04:], 0xBBBB0001) // member type hash
	// Byte offset with flag bits in the upper 8; only the low 24
	// survive parsing.
	le.PutUint32(m0[0x08:], 0xFF000010)
	le.PutUint32(m0[0x0C:], 8) // byte size

	m1 := rec[typeRecordHeaderSize+typeMemberSize:]
	le.PutUint32(m1[0x00:], 0xAAAA0002)
	le.PutUint32(m1[0x04:], 0xBBBB0002)
	le.PutUint32(m1[0x08:], 0x18)
	le.PutUint32(m1[0x0C:], 4)
	le.PutUint32(m1[0x10:], 3)          // bit offset
	le.PutUint32(m1[0x14:], 0x7F)       // default value
	le.PutUint32(m1[0x1C:], 0x00000001) // flags

	c := buildTypeFixture(t, 1, rec)
	require.Len(t, c.Types, 1)

	typ := c.Types[0x94407F4C]
	require.NotNil(t, typ)
	assert.Equal(t, KindStruct, typ.Kind)
	assert.Equal(t, uint32(24), typ.Size)
	assert.Equal(t, uint32(8), typ.Alignment)
	require.Len(t, typ.Members, 2)

	assert.Equal(t, uint32(0x10), typ.Members[0].Offset, "upper 8 flag bits must be masked")
	assert.Equal(t, uint32(8), typ.Members[0].Size)
	assert.Equal(t, uint32(0x18), typ.Members[1].Offset)
	assert.Equal(t, uint32(3), typ.Members[1].BitOffset)
	assert.Equal(t, uint32(0x7F), typ.Members[1].Default)
	assert.Equal(t, uint32(1), typ.Members[1].Flags)
}

func TestReadTypesConsecutiveRecords(t *testing.T) {
	le := binary.LittleEndian

	// A scalar (no members) followed by a string-hash record: the
	// second record must be found 32 bytes after the first.
	recs := make([]byte, 2*typeRecordHeaderSize)
	le.PutUint32(recs[0x00:], uint32(KindScalar))
	le.PutUint32(recs[0x04:], 4)
	le.PutUint32(recs[0x0C:], 0x11110000)

	second := recs[typeRecordHeaderSize:]
	le.PutUint32(second[0x00:], uint32(KindStringHash))
	le.PutUint32(second[0x04:], 4)
	le.PutUint32(second[0x0C:], 0x22220000)

	c := buildTypeFixture(t, 2, recs)
	require.Len(t, c.Types, 2)
	assert.Equal(t, KindScalar, c.Types[0x11110000].Kind)
	assert.Equal(t, KindStringHash, c.Types[0x22220000].Kind)
}

func TestReadTypesTruncatedRecord(t *testing.T) {
	le := binary.LittleEndian

	// Record header declares a member that falls off the end.
	rec := make([]byte, typeRecordHeaderSize)
	le.PutUint32(rec[0x00:], uint32(KindStruct))
	le.PutUint32(rec[0x18:], 1) // member count, but no member bytes

	buf := make([]byte, 0x18+len(rec))
	le.PutUint32(buf[offMagic:], MagicLittleEndian)
	le.PutUint32(buf[offVersion:], 2)
	le.PutUint32(buf[offTypeCount:], 1)
	le.PutUint32(buf[offTypeOffset:], 0x18)
	copy(buf[0x18:], rec)

	_, err := ReadContainer(buf)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestTypeKindString(t *testing.T) {
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "struct", KindStruct.String())
	assert.Equal(t, "string_hash", KindStringHash.String())
	assert.Equal(t, "kind_42", TypeKind(42).String())
}
