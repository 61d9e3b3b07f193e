// Package core provides low-level Avalanche Data Format (ADF)
// container parsing. It handles the versioned header, the type and
// instance directories, and the string tables, and exposes a payload
// window per instance for the GraphScript decoder to walk.
package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gigaHours/madmax-gsrc-editor/internal/utils"
)

// ADF magic read as a little-endian u32 from offset 0. The value
// identifies the byte order of the rest of the file.
const (
	MagicLittleEndian = 0x41444620
	MagicBigEndian    = 0x20464441
)

// Supported container versions.
const (
	Version2 = 2
	Version3 = 3
	Version4 = 4
)

// Fatal container-level failures. Everything the reader returns wraps
// one of these four sentinels.
var (
	ErrBadMagic           = errors.New("bad ADF magic")
	ErrUnsupportedVersion = errors.New("unsupported ADF version")
	ErrTruncated          = errors.New("truncated ADF container")
	ErrNoInstance         = errors.New("ADF container has no instances")
)

// Instance is one entry of the instance directory. PayloadOffset and
// PayloadSize delimit the instance's bytes inside the file buffer.
type Instance struct {
	NameHash      uint32
	TypeHash      uint32
	Name          string
	PayloadOffset uint32
	PayloadSize   uint32
}

// Container is a parsed ADF envelope over a caller-owned byte buffer.
// The buffer is never written to.
type Container struct {
	Buf     []byte
	Order   binary.ByteOrder
	Version uint32

	// Description is the fixed-location comment string (version 4+).
	Description string

	// DeclaredSize is the file size recorded in the header (version
	// 4+); informational, never trusted over the buffer length.
	DeclaredSize uint32

	Instances    []Instance
	Types        map[uint32]*Type
	StringHashes []uint32

	// stringTable holds the version 4+ string-data entries, indexed
	// by the instance directory.
	stringTable []string
}

// Container header field offsets, common to all supported versions.
// Version 3 appends the string-hash table fields, version 4 the
// string-data table, declared size, and description.
//
//	0x00: magic
//	0x04: version
//	0x08: instance count        0x0C: instance directory offset
//	0x10: type count            0x14: type directory offset
//	0x18: string-hash count     0x1C: string-hash offset     (v3+)
//	0x20: string-data count     0x24: string-data offset     (v4)
//	0x28: declared file size                                 (v4)
//	0x40: null-terminated description                        (v4)
const (
	offMagic          = 0x00
	offVersion        = 0x04
	offInstanceCount  = 0x08
	offInstanceOffset = 0x0C
	offTypeCount      = 0x10
	offTypeOffset     = 0x14
	offStrHashCount   = 0x18
	offStrHashOffset  = 0x1C
	offStrDataCount   = 0x20
	offStrDataOffset  = 0x24
	offDeclaredSize   = 0x28
	offDescription    = 0x40

	headerSizeV2 = 0x18
	headerSizeV3 = 0x20
	headerSizeV4 = 0x40
)

// ReadContainer parses the ADF envelope in buf. The buffer is
// retained by the returned Container (payload windows alias it) but
// is treated as read-only throughout.
func ReadContainer(buf []byte) (*Container, error) {
	magic, err := utils.U32(buf, offMagic, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%w: file shorter than magic", ErrTruncated)
	}

	var order binary.ByteOrder
	switch magic {
	case MagicLittleEndian:
		order = binary.LittleEndian
	case MagicBigEndian:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, magic)
	}

	version, err := utils.U32(buf, offVersion, order)
	if err != nil {
		return nil, fmt.Errorf("%w: file shorter than header", ErrTruncated)
	}

	var headerSize uint64
	switch version {
	case Version2:
		headerSize = headerSizeV2
	case Version3:
		headerSize = headerSizeV3
	case Version4:
		headerSize = headerSizeV4
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if !utils.InBounds(len(buf), 0, headerSize) {
		return nil, fmt.Errorf("%w: file shorter than version %d header", ErrTruncated, version)
	}

	c := &Container{
		Buf:     buf,
		Order:   order,
		Version: version,
	}

	// The header region is in bounds; fixed-offset reads cannot fail.
	instanceCount := order.Uint32(buf[offInstanceCount:])
	instanceOffset := order.Uint32(buf[offInstanceOffset:])
	typeCount := order.Uint32(buf[offTypeCount:])
	typeOffset := order.Uint32(buf[offTypeOffset:])

	if version >= Version3 {
		strHashCount := order.Uint32(buf[offStrHashCount:])
		strHashOffset := order.Uint32(buf[offStrHashOffset:])
		if err := c.readStringHashes(strHashCount, strHashOffset); err != nil {
			return nil, err
		}
	}

	if version >= Version4 {
		c.DeclaredSize = order.Uint32(buf[offDeclaredSize:])
		strDataCount := order.Uint32(buf[offStrDataCount:])
		strDataOffset := order.Uint32(buf[offStrDataOffset:])
		if err := c.readStringTable(strDataCount, strDataOffset); err != nil {
			return nil, err
		}

		desc, err := utils.CString(buf, offDescription)
		if err != nil {
			return nil, fmt.Errorf("%w: description string", ErrTruncated)
		}
		c.Description = desc
	}

	if err := c.readTypes(typeCount, typeOffset); err != nil {
		return nil, err
	}
	if err := c.readInstances(instanceCount, instanceOffset); err != nil {
		return nil, err
	}

	return c, nil
}

// Instance directory entry sizes. Version 4 packs six u32 fields;
// earlier versions use 48-byte entries with a reserved tail.
const (
	instanceEntrySizeV4     = 24
	instanceEntrySizeLegacy = 48
)

func (c *Container) readInstances(count, offset uint32) error {
	if count == 0 {
		return nil
	}

	entrySize := uint64(instanceEntrySizeLegacy)
	if c.Version >= Version4 {
		entrySize = instanceEntrySizeV4
	}
	if !utils.InBounds(len(c.Buf), uint64(offset), uint64(count)*entrySize) {
		return fmt.Errorf("%w: instance directory at 0x%X", ErrTruncated, offset)
	}

	c.Instances = make([]Instance, 0, count)
	for i := uint32(0); i < count; i++ {
		base := c.Buf[uint64(offset)+uint64(i)*entrySize:]

		inst := Instance{
			NameHash:      c.Order.Uint32(base[0x00:]),
			TypeHash:      c.Order.Uint32(base[0x04:]),
			PayloadOffset: c.Order.Uint32(base[0x08:]),
			PayloadSize:   c.Order.Uint32(base[0x0C:]),
		}

		if c.Version >= Version4 {
			nameIndex := c.Order.Uint32(base[0x10:])
			if int(nameIndex) < len(c.stringTable) {
				inst.Name = c.stringTable[nameIndex]
			}
		}
		if inst.Name == "" {
			inst.Name = fmt.Sprintf("instance_%d", i)
		}

		if !utils.InBounds(len(c.Buf), uint64(inst.PayloadOffset), uint64(inst.PayloadSize)) {
			return fmt.Errorf("%w: instance %d payload [0x%X, +0x%X)",
				ErrTruncated, i, inst.PayloadOffset, inst.PayloadSize)
		}

		c.Instances = append(c.Instances, inst)
	}
	return nil
}

func (c *Container) readStringHashes(count, offset uint32) error {
	if count == 0 {
		return nil
	}
	if !utils.InBounds(len(c.Buf), uint64(offset), uint64(count)*4) {
		return fmt.Errorf("%w: string-hash table at 0x%X", ErrTruncated, offset)
	}
	c.StringHashes = make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		c.StringHashes[i] = c.Order.Uint32(c.Buf[uint64(offset)+uint64(i)*4:])
	}
	return nil
}

// readStringTable scans the packed null-terminated string-data table:
// entry i starts after i terminators from the table base.
func (c *Container) readStringTable(count, offset uint32) error {
	if count == 0 {
		return nil
	}
	c.stringTable = make([]string, 0, count)
	pos := uint64(offset)
	for i := uint32(0); i < count; i++ {
		s, err := utils.CString(c.Buf, pos)
		if err != nil {
			return fmt.Errorf("%w: string-data entry %d", ErrTruncated, i)
		}
		c.stringTable = append(c.stringTable, s)
		pos += uint64(len(s)) + 1
	}
	return nil
}

// Payload returns the byte window of instance i. The slice aliases
// the container buffer; callers must not modify it.
func (c *Container) Payload(i int) ([]byte, error) {
	if len(c.Instances) == 0 {
		return nil, ErrNoInstance
	}
	if i < 0 || i >= len(c.Instances) {
		return nil, fmt.Errorf("%w: instance %d of %d", ErrNoInstance, i, len(c.Instances))
	}
	inst := c.Instances[i]
	return c.Buf[inst.PayloadOffset : uint64(inst.PayloadOffset)+uint64(inst.PayloadSize)], nil
}

// StringTable returns the version 4+ string-data entries.
func (c *Container) StringTable() []string {
	return c.stringTable
}
