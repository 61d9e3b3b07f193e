// Package structures decodes the GraphScript payload tree carried
// inside an ADF instance: Graph -> Node -> DataSet -> Data, stored as
// offset-relative records. Every relative offset read from a record
// is an index into the payload window; each hop is range-checked
// against it.
package structures

import (
	"encoding/binary"
	"fmt"

	"github.com/gigaHours/madmax-gsrc-editor/internal/core"
	"github.com/gigaHours/madmax-gsrc-editor/internal/hashes"
	"github.com/gigaHours/madmax-gsrc-editor/internal/utils"
)

// Well-known DataSet role names. A pin category is identified by its
// name hash matching one of these.
var (
	HashInputPins    = hashes.Hash("input_pins")
	HashOutputPins   = hashes.Hash("output_pins")
	HashVariablePins = hashes.Hash("variable_pins")
	HashName         = hashes.Hash("Name")
	HashValue        = hashes.Hash("Value")
)

// Data is a leaf value record. Value is a copy decoupled from the
// input buffer; its length is the record's byte count, clipped to the
// payload when the declared range runs past it.
type Data struct {
	NameHash  uint32
	TypeHash  uint32
	Value     []byte
	Reference bool
}

// DataSet is a named container of Data records and child DataSets.
type DataSet struct {
	NameHash uint32
	Data     []Data
	Children []DataSet
}

// Child returns the child DataSet whose name hash matches, or nil.
func (ds *DataSet) Child(nameHash uint32) *DataSet {
	for i := range ds.Children {
		if ds.Children[i].NameHash == nameHash {
			return &ds.Children[i]
		}
	}
	return nil
}

// Find returns the Data record whose name hash matches, or nil.
func (ds *DataSet) Find(nameHash uint32) *Data {
	for i := range ds.Data {
		if ds.Data[i].NameHash == nameHash {
			return &ds.Data[i]
		}
	}
	return nil
}

// Node is one graph vertex. FunctionHash is stored by the engine as a
// function pointer at runtime; it is carried verbatim and never
// consumed here.
type Node struct {
	Index        uint32
	ClassHash    uint32
	FunctionHash uint32
	Root         DataSet
}

// ClassName resolves the node's class hash for display.
func (n *Node) ClassName() string {
	return hashes.Resolve(n.ClassHash)
}

// Graph is the decoded top-level record. Global is the graph's single
// top-level Data record; its value bytes are the indirection pool
// referenced by variable-node fields and connection descriptors.
type Graph struct {
	Nodes  []Node
	Global Data
}

// GlobalBlob returns the indirection pool bytes.
func (g *Graph) GlobalBlob() []byte {
	return g.Global.Value
}

// Record layouts. All offsets are relative to the payload base and
// stored in 8-byte slots; hashes are u32; widths in bytes.
//
//	Graph   0x00 nodes offset   0x08 node count   0x10 inline Data (global blob)
//	Node    0x00 class hash     0x08 function hash  0x10 inline DataSet
//	DataSet 0x00 name hash      0x08 data offset  0x10 data count
//	        0x18 child offset   0x20 child count
//	Data    0x00 name hash      0x04 type hash    0x08 value offset
//	        0x10 value count    0x18 reference flag (u8)
const (
	graphHeaderSize = 0x30 // fields + inline global Data record
	nodeStride      = 0x40
	dataSetStride   = 0x30
	dataStride      = 0x20
)

// Child DataSets can point back at an ancestor in a malformed file;
// the walk stops rather than recursing forever.
const maxDataSetDepth = 64

// DecodeGraph walks the GraphScript records in payload using the
// container's byte order. The payload must hold at least the Graph
// header; everything below it degrades per-record (a record that
// falls outside the payload is dropped, the rest of the graph is
// kept).
func DecodeGraph(payload []byte, order binary.ByteOrder) (*Graph, error) {
	if !utils.InBounds(len(payload), 0, graphHeaderSize) {
		return nil, fmt.Errorf("%w: payload shorter than graph header", core.ErrTruncated)
	}

	nodesOffset := order.Uint64(payload[0x00:])
	nodeCount := order.Uint64(payload[0x08:])

	g := &Graph{
		Global: decodeData(payload, 0x10, order),
	}

	if nodesOffset == 0 || nodeCount == 0 {
		return g, nil
	}

	g.Nodes = make([]Node, 0, clampCount(nodeCount, len(payload), nodeStride))
	for i := uint64(0); i < nodeCount; i++ {
		base := nodesOffset + i*nodeStride
		if !utils.InBounds(len(payload), base, nodeStride) {
			break
		}
		g.Nodes = append(g.Nodes, Node{
			Index:        uint32(len(g.Nodes)),
			ClassHash:    order.Uint32(payload[base+0x00:]),
			FunctionHash: order.Uint32(payload[base+0x08:]),
			Root:         decodeDataSet(payload, base+0x10, order, 0),
		})
	}

	return g, nil
}

// decodeDataSet reads the DataSet record at base. The record itself
// is known to be in bounds when called from a validated parent; a
// base outside the payload yields an empty set.
func decodeDataSet(payload []byte, base uint64, order binary.ByteOrder, depth int) DataSet {
	if depth > maxDataSetDepth || !utils.InBounds(len(payload), base, dataSetStride) {
		return DataSet{}
	}

	ds := DataSet{
		NameHash: order.Uint32(payload[base+0x00:]),
	}

	dataOffset := order.Uint64(payload[base+0x08:])
	dataCount := order.Uint64(payload[base+0x10:])
	childOffset := order.Uint64(payload[base+0x18:])
	childCount := order.Uint64(payload[base+0x20:])

	if dataOffset != 0 && dataCount != 0 {
		ds.Data = make([]Data, 0, clampCount(dataCount, len(payload), dataStride))
		for i := uint64(0); i < dataCount; i++ {
			rec := dataOffset + i*dataStride
			if !utils.InBounds(len(payload), rec, dataStride) {
				break
			}
			ds.Data = append(ds.Data, decodeData(payload, rec, order))
		}
	}

	if childOffset != 0 && childCount != 0 {
		ds.Children = make([]DataSet, 0, clampCount(childCount, len(payload), dataSetStride))
		for i := uint64(0); i < childCount; i++ {
			rec := childOffset + i*dataSetStride
			if !utils.InBounds(len(payload), rec, dataSetStride) {
				break
			}
			ds.Children = append(ds.Children, decodeDataSet(payload, rec, order, depth+1))
		}
	}

	return ds
}

// decodeData reads the Data record at base and materializes its value
// bytes as a copy clipped to the payload.
func decodeData(payload []byte, base uint64, order binary.ByteOrder) Data {
	if !utils.InBounds(len(payload), base, dataStride) {
		return Data{}
	}

	d := Data{
		NameHash:  order.Uint32(payload[base+0x00:]),
		TypeHash:  order.Uint32(payload[base+0x04:]),
		Reference: payload[base+0x18] != 0,
	}

	valueOffset := order.Uint64(payload[base+0x08:])
	valueCount := order.Uint64(payload[base+0x10:])
	if valueOffset == 0 || valueCount == 0 {
		return d
	}

	if valueOffset > uint64(len(payload)) {
		return d
	}
	end := valueOffset + valueCount
	if end > uint64(len(payload)) || end < valueOffset {
		end = uint64(len(payload))
	}
	d.Value = make([]byte, end-valueOffset)
	copy(d.Value, payload[valueOffset:end])

	return d
}

// clampCount bounds a declared record count by what the payload could
// possibly hold, so preallocation cannot be attacker-driven.
func clampCount(declared uint64, payloadLen int, stride uint64) int {
	max := uint64(payloadLen) / stride
	if declared > max {
		return int(max)
	}
	return int(declared)
}
