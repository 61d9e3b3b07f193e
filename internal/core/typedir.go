package core

import (
	"fmt"

	"github.com/gigaHours/madmax-gsrc-editor/internal/utils"
)

// TypeKind identifies the shape of a type directory entry.
type TypeKind uint32

// Type kind constants from the ADF type directory.
const (
	KindScalar      TypeKind = 0
	KindStruct      TypeKind = 1
	KindPointer     TypeKind = 2
	KindArray       TypeKind = 3
	KindInlineArray TypeKind = 4
	KindString      TypeKind = 5
	KindEnum        TypeKind = 8
	KindStringHash  TypeKind = 9
)

var kindNames = map[TypeKind]string{
	KindScalar:      "scalar",
	KindStruct:      "struct",
	KindPointer:     "pointer",
	KindArray:       "array",
	KindInlineArray: "inline_array",
	KindString:      "string",
	KindEnum:        "enum",
	KindStringHash:  "string_hash",
}

// String returns the kind's directory name, or its numeric value for
// kinds outside the known set.
func (k TypeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind_%d", uint32(k))
}

// Member offsets carry flag bits above the 24-bit byte offset. The
// flags are undocumented; they are masked away and never interpreted.
const memberOffsetMask = 0x00FFFFFF

// TypeMember is one member record of a struct or enum type.
type TypeMember struct {
	NameHash  uint32
	TypeHash  uint32
	Offset    uint32 // byte offset, low 24 bits only
	Size      uint32
	BitOffset uint32
	Default   uint32
	Flags     uint32
}

// Type is one entry of the ADF type directory.
type Type struct {
	Kind      TypeKind
	Size      uint32
	Alignment uint32
	NameHash  uint32
	Name      string
	Flags     uint32
	Members   []TypeMember
}

// Type directory record layout: eight u32 fields, then member
// records of eight u32 each. The next record starts
// 32 + 32*member_count bytes after the current record's start.
const (
	typeRecordHeaderSize = 32
	typeMemberSize       = 32
)

func (c *Container) readTypes(count, offset uint32) error {
	c.Types = make(map[uint32]*Type, count)
	if count == 0 {
		return nil
	}

	pos := uint64(offset)
	for i := uint32(0); i < count; i++ {
		if !utils.InBounds(len(c.Buf), pos, typeRecordHeaderSize) {
			return fmt.Errorf("%w: type record %d at 0x%X", ErrTruncated, i, pos)
		}
		rec := c.Buf[pos:]

		t := &Type{
			Kind:      TypeKind(c.Order.Uint32(rec[0x00:])),
			Size:      c.Order.Uint32(rec[0x04:]),
			Alignment: c.Order.Uint32(rec[0x08:]),
			NameHash:  c.Order.Uint32(rec[0x0C:]),
			Flags:     c.Order.Uint32(rec[0x14:]),
		}
		nameOffset := c.Order.Uint32(rec[0x10:])
		memberCount := c.Order.Uint32(rec[0x18:])
		membersOffset := c.Order.Uint32(rec[0x1C:])
		_ = membersOffset // members are packed right after the header

		if nameOffset != 0 {
			// Name offset is relative to the record's own start.
			if s, err := utils.CString(c.Buf, pos+uint64(nameOffset)); err == nil {
				t.Name = s
			}
		}

		memberBase := pos + typeRecordHeaderSize
		if memberCount > 0 {
			if !utils.InBounds(len(c.Buf), memberBase, uint64(memberCount)*typeMemberSize) {
				return fmt.Errorf("%w: type record %d members at 0x%X", ErrTruncated, i, memberBase)
			}
			t.Members = make([]TypeMember, memberCount)
			for m := uint32(0); m < memberCount; m++ {
				mrec := c.Buf[memberBase+uint64(m)*typeMemberSize:]
				t.Members[m] = TypeMember{
					NameHash:  c.Order.Uint32(mrec[0x00:]),
					TypeHash:  c.Order.Uint32(mrec[0x04:]),
					Offset:    c.Order.Uint32(mrec[0x08:]) & memberOffsetMask,
					Size:      c.Order.Uint32(mrec[0x0C:]),
					BitOffset: c.Order.Uint32(mrec[0x10:]),
					Default:   c.Order.Uint32(mrec[0x14:]),
					Flags:     c.Order.Uint32(mrec[0x1C:]),
				}
			}
		}

		c.Types[t.NameHash] = t
		pos += typeRecordHeaderSize + uint64(memberCount)*typeMemberSize
	}
	return nil
}
