// Package gstest builds synthetic ADF/GraphScript buffers for tests.
// Specs describe the logical tree; the builder lays out the
// offset-relative records and wraps them in a minimal container, in
// either byte order.
package gstest

import "encoding/binary"

// DataSpec describes one Data record.
type DataSpec struct {
	NameHash  uint32
	TypeHash  uint32
	Value     []byte
	Reference bool
}

// DataSetSpec describes one DataSet record with its data and children.
type DataSetSpec struct {
	NameHash uint32
	Data     []DataSpec
	Children []DataSetSpec
}

// NodeSpec describes one node: class, function, and root DataSet.
type NodeSpec struct {
	ClassHash    uint32
	FunctionHash uint32
	Root         DataSetSpec
}

// GraphSpec describes a whole GraphScript payload.
type GraphSpec struct {
	Nodes  []NodeSpec
	Global []byte
}

// Record geometry mirrored from the decoder.
const (
	graphHeaderSize = 0x30
	nodeStride      = 0x40
	dataSetStride   = 0x30
	dataStride      = 0x20
)

type payloadBuilder struct {
	order binary.ByteOrder
	buf   []byte
}

func (b *payloadBuilder) grow(n int) uint64 {
	off := uint64(len(b.buf))
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

func (b *payloadBuilder) appendBytes(p []byte) uint64 {
	off := uint64(len(b.buf))
	b.buf = append(b.buf, p...)
	return off
}

func (b *payloadBuilder) putU32(off uint64, v uint32) { b.order.PutUint32(b.buf[off:], v) }
func (b *payloadBuilder) putU64(off uint64, v uint64) { b.order.PutUint64(b.buf[off:], v) }

func (b *payloadBuilder) putData(off uint64, d DataSpec) {
	b.putU32(off+0x00, d.NameHash)
	b.putU32(off+0x04, d.TypeHash)
	if len(d.Value) > 0 {
		vOff := b.appendBytes(d.Value)
		b.putU64(off+0x08, vOff)
		b.putU64(off+0x10, uint64(len(d.Value)))
	}
	if d.Reference {
		b.buf[off+0x18] = 1
	}
}

func (b *payloadBuilder) putDataSet(off uint64, ds DataSetSpec) {
	b.putU32(off+0x00, ds.NameHash)
	if len(ds.Data) > 0 {
		dOff := b.grow(len(ds.Data) * dataStride)
		b.putU64(off+0x08, dOff)
		b.putU64(off+0x10, uint64(len(ds.Data)))
		for i, d := range ds.Data {
			b.putData(dOff+uint64(i)*dataStride, d)
		}
	}
	if len(ds.Children) > 0 {
		cOff := b.grow(len(ds.Children) * dataSetStride)
		b.putU64(off+0x18, cOff)
		b.putU64(off+0x20, uint64(len(ds.Children)))
		for i, c := range ds.Children {
			b.putDataSet(cOff+uint64(i)*dataSetStride, c)
		}
	}
}

// BuildPayload lays out the GraphScript records for spec.
func BuildPayload(spec GraphSpec, order binary.ByteOrder) []byte {
	b := &payloadBuilder{order: order}
	b.grow(graphHeaderSize)

	// Inline global Data record at 0x10.
	b.putData(0x10, DataSpec{Value: spec.Global})

	if len(spec.Nodes) > 0 {
		nodesOff := b.grow(len(spec.Nodes) * nodeStride)
		b.putU64(0x00, nodesOff)
		b.putU64(0x08, uint64(len(spec.Nodes)))
		for i, n := range spec.Nodes {
			base := nodesOff + uint64(i)*nodeStride
			b.putU32(base+0x00, n.ClassHash)
			b.putU32(base+0x08, n.FunctionHash)
			b.putDataSet(base+0x10, n.Root)
		}
	}

	return b.buf
}

// WrapContainer embeds a payload as the sole instance of a minimal
// version 4 container in the given byte order.
func WrapContainer(payload []byte, order binary.ByteOrder) []byte {
	// An empty description (single terminator, padded to 8) sits at
	// 0x40, then the one-entry instance directory.
	const (
		headerSize    = 0x40
		instanceSize  = 24
		instanceOff   = headerSize + 8
		payloadOffset = instanceOff + instanceSize
	)

	buf := make([]byte, payloadOffset+len(payload))

	// Magic bytes identify the byte order: reading the first 4 bytes
	// as a little-endian u32 yields 0x41444620 for LE files and
	// 0x20464441 for BE files.
	if order == binary.BigEndian {
		binary.LittleEndian.PutUint32(buf[0x00:], 0x20464441)
	} else {
		binary.LittleEndian.PutUint32(buf[0x00:], 0x41444620)
	}
	order.PutUint32(buf[0x04:], 4)                 // version
	order.PutUint32(buf[0x08:], 1)                 // instance count
	order.PutUint32(buf[0x0C:], instanceOff)       // instance directory
	order.PutUint32(buf[0x28:], uint32(len(buf)))  // declared size

	order.PutUint32(buf[instanceOff+0x00:], 0xC0FFEE01)        // instance name hash
	order.PutUint32(buf[instanceOff+0x04:], 0x94407F4C)        // type hash
	order.PutUint32(buf[instanceOff+0x08:], payloadOffset)     // payload offset
	order.PutUint32(buf[instanceOff+0x0C:], uint32(len(payload)))

	copy(buf[payloadOffset:], payload)
	return buf
}

// BuildContainer is BuildPayload followed by WrapContainer.
func BuildContainer(spec GraphSpec, order binary.ByteOrder) []byte {
	return WrapContainer(BuildPayload(spec, order), order)
}
