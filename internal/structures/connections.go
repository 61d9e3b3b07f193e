package structures

import "encoding/binary"

// ConnectionKind distinguishes flow edges from variable edges.
type ConnectionKind uint8

const (
	// FlowConnection is implied by an entry under a node's
	// output_pins; it points at the node the flow continues with.
	FlowConnection ConnectionKind = iota
	// VariableConnection is recovered from variable_pins with the
	// direction reversed: the variable node supplies data to the
	// functional node that declared the slot.
	VariableConnection
)

// String returns the wire-facing kind name.
func (k ConnectionKind) String() string {
	if k == VariableConnection {
		return "variable"
	}
	return "flow"
}

// Connection is a derived edge between two nodes, referenced by index.
type Connection struct {
	Source    uint32
	SourcePin uint32
	Target    uint32
	TargetPin uint32
	Kind      ConnectionKind
}

// ExtractConnections scans every node's output_pins and variable_pins
// sub-datasets and decodes their descriptors into typed connections.
// Descriptors with short value bytes, out-of-range blob offsets, or
// out-of-range node indices are skipped; the rest of the graph is
// kept.
func ExtractConnections(g *Graph, order binary.ByteOrder) []Connection {
	global := g.GlobalBlob()
	nodeCount := uint32(len(g.Nodes))
	var conns []Connection

	for i := range g.Nodes {
		node := &g.Nodes[i]

		if pins := node.Root.Child(HashOutputPins); pins != nil {
			for p := range pins.Children {
				pin := &pins.Children[p]
				for d := range pin.Data {
					target, ok := derefNodeIndex(&pin.Data[d], global, order, nodeCount)
					if !ok {
						continue
					}
					conns = append(conns, Connection{
						Source:    node.Index,
						SourcePin: pin.NameHash,
						Target:    target,
						TargetPin: pin.Data[d].NameHash,
						Kind:      FlowConnection,
					})
				}
			}
		}

		if pins := node.Root.Child(HashVariablePins); pins != nil {
			for p := range pins.Children {
				pin := &pins.Children[p]
				for d := range pin.Data {
					source, ok := derefNodeIndex(&pin.Data[d], global, order, nodeCount)
					if !ok {
						continue
					}
					// Reversed: the dereferenced node feeds this one.
					conns = append(conns, Connection{
						Source:    source,
						SourcePin: pin.NameHash,
						Target:    node.Index,
						TargetPin: pin.NameHash,
						Kind:      VariableConnection,
					})
				}
			}
		}
	}

	return conns
}

// derefNodeIndex interprets the descriptor's first 4 value bytes as a
// global-blob offset and reads the node index stored there.
func derefNodeIndex(d *Data, global []byte, order binary.ByteOrder, nodeCount uint32) (uint32, bool) {
	if len(d.Value) < 4 {
		return 0, false
	}
	off := order.Uint32(d.Value)
	if uint64(off)+4 > uint64(len(global)) {
		return 0, false
	}
	idx := order.Uint32(global[off:])
	if idx >= nodeCount {
		return 0, false
	}
	return idx, true
}
