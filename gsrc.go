// Package gsrc decodes Avalanche Data Format (ADF) containers
// carrying GraphScript node graphs and lays the result out for a
// node-editor viewport. The input is an opaque byte buffer; the
// output is a set of nodes with resolved names, typed edges, and one
// 2-D position per node.
package gsrc

import (
	"encoding/binary"
	"io"

	"github.com/gigaHours/madmax-gsrc-editor/internal/core"
	"github.com/gigaHours/madmax-gsrc-editor/internal/hashes"
	"github.com/gigaHours/madmax-gsrc-editor/internal/layout"
	"github.com/gigaHours/madmax-gsrc-editor/internal/structures"
)

// Fatal decode failures, matchable with errors.Is. Apart from a payload
// too short for its graph header (ErrTruncated), anything below the
// container level degrades instead of failing: malformed descriptors
// are skipped, uninterpretable values fall back to hex display.
var (
	ErrBadMagic           = core.ErrBadMagic
	ErrUnsupportedVersion = core.ErrUnsupportedVersion
	ErrTruncated          = core.ErrTruncated
	ErrNoInstance         = core.ErrNoInstance
)

// Decode parses the ADF container in buf and returns the decoded,
// laid-out graph of its first instance. The buffer may be freed once
// Decode returns; the Document owns all its bytes.
func Decode(buf []byte) (*Document, error) {
	return DecodeInstance(buf, 0)
}

// DecodeInstance decodes the i-th instance of the container.
func DecodeInstance(buf []byte, i int) (*Document, error) {
	c, err := core.ReadContainer(buf)
	if err != nil {
		return nil, err
	}

	payload, err := c.Payload(i)
	if err != nil {
		return nil, err
	}

	g, err := structures.DecodeGraph(payload, c.Order)
	if err != nil {
		return nil, err
	}

	conns := structures.ExtractConnections(g, c.Order)
	positions := layout.Compute(len(g.Nodes), conns)

	doc := &Document{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(conns)),
	}

	for n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, buildNode(&g.Nodes[n], g, c.Order, positions[n]))
	}
	for _, conn := range conns {
		kind := EdgeFlow
		if conn.Kind == structures.VariableConnection {
			kind = EdgeVariable
		}
		doc.Edges = append(doc.Edges, Edge{
			SourceIndex:   conn.Source,
			SourcePinHash: conn.SourcePin,
			TargetIndex:   conn.Target,
			TargetPinHash: conn.TargetPin,
			Kind:          kind,
		})
	}

	return doc, nil
}

func buildNode(n *structures.Node, g *structures.Graph, order binary.ByteOrder, pos layout.Position) Node {
	className := n.ClassName()

	out := Node{
		Index:        n.Index,
		ClassHash:    n.ClassHash,
		ClassName:    className,
		FunctionHash: n.FunctionHash,
		Position:     Position{X: pos.X, Y: pos.Y},
	}

	// Parameters are the root DataSet's own data records. Variable
	// nodes route their Name and Value through the global blob.
	isVariable := structures.IsVariableClass(className)
	for i := range n.Root.Data {
		out.Parameters = append(out.Parameters, buildData(&n.Root.Data[i], g, order, isVariable, className))
	}

	out.InputPins = buildPins(n.Root.Child(structures.HashInputPins), g, order)
	out.OutputPins = buildPins(n.Root.Child(structures.HashOutputPins), g, order)
	out.VariablePins = buildPins(n.Root.Child(structures.HashVariablePins), g, order)

	return out
}

func buildPins(category *structures.DataSet, g *structures.Graph, order binary.ByteOrder) []Pin {
	if category == nil {
		return nil
	}
	pins := make([]Pin, 0, len(category.Children))
	for i := range category.Children {
		child := &category.Children[i]
		pin := Pin{
			Hash: child.NameHash,
			Name: hashes.Resolve(child.NameHash),
		}
		for d := range child.Data {
			pin.Data = append(pin.Data, buildData(&child.Data[d], g, order, false, ""))
		}
		pins = append(pins, pin)
	}
	return pins
}

func buildData(d *structures.Data, g *structures.Graph, order binary.ByteOrder, variableNode bool, className string) Data {
	name := hashes.Resolve(d.NameHash)

	display := ""
	switch {
	case variableNode && d.NameHash == structures.HashName:
		display = structures.DerefVariableName(d, g.GlobalBlob(), order)
	case variableNode && d.NameHash == structures.HashValue && d.Reference:
		display = structures.DerefVariableValue(d, g.GlobalBlob(), order, className)
	default:
		display = structures.Display(d, order)
	}

	return Data{
		Name:      name,
		Type:      hashes.Resolve(d.TypeHash),
		Bytes:     d.Value,
		Reference: d.Reference,
		Display:   display,
	}
}

// Layout recomputes positions for an externally filtered edge set,
// with the same determinism guarantees as Decode.
func Layout(nodeCount int, edges []Edge) []Position {
	conns := make([]structures.Connection, 0, len(edges))
	for _, e := range edges {
		kind := structures.FlowConnection
		if e.Kind == EdgeVariable {
			kind = structures.VariableConnection
		}
		conns = append(conns, structures.Connection{
			Source:    e.SourceIndex,
			SourcePin: e.SourcePinHash,
			Target:    e.TargetIndex,
			TargetPin: e.TargetPinHash,
			Kind:      kind,
		})
	}
	raw := layout.Compute(nodeCount, conns)
	positions := make([]Position, len(raw))
	for i, p := range raw {
		positions[i] = Position{X: p.X, Y: p.Y}
	}
	return positions
}

// HashName computes the engine's lookup3 hash of a name.
func HashName(s string) uint32 {
	return hashes.Hash(s)
}

// ResolveHash returns the known name for a hash, or its canonical
// 0xXXXXXXXX form.
func ResolveHash(h uint32) string {
	return hashes.Resolve(h)
}

// RegisterName adds a name to the reverse-lookup dictionary. Existing
// entries for the same hash are preserved.
func RegisterName(s string) uint32 {
	return hashes.Register(s)
}

// LoadDictionary merges a newline-separated name list into the
// reverse-lookup dictionary. Call before decoding; the registry is
// meant to be read-only once decodes begin.
func LoadDictionary(r io.Reader) error {
	return hashes.LoadDictionary(r)
}
