// Package layout computes deterministic 2-D positions for a decoded
// flow graph: layered (Sugiyama-style) placement for functional
// nodes, a grid zone below them for variable-producing nodes.
package layout

import "github.com/gigaHours/madmax-gsrc-editor/internal/structures"

// Placement constants.
const (
	LayerGapX   = 360
	LayerGapY   = 140
	MaxPerLayer = 4

	VarCellW   = 240
	VarCellH   = 100
	VarColumns = 6
	VarZoneGap = 160

	OrphanGapX = 300
)

// Position is a node's viewport coordinate. Coordinates may be
// negative; the viewport is responsible for framing.
type Position struct {
	X float32
	Y float32
}

// Compute returns one position per node index. It never fails: any
// node set, including empty, fully cyclic, or fully variable, yields
// a finite position map. Output is deterministic for a given input.
func Compute(nodeCount int, conns []structures.Connection) []Position {
	positions := make([]Position, nodeCount)
	if nodeCount == 0 {
		return positions
	}

	// Partition: a node is variable-producing iff it sources a
	// variable connection; everything else is functional, including
	// variable targets.
	isVariable := make([]bool, nodeCount)
	for _, c := range conns {
		if c.Kind == structures.VariableConnection && int(c.Source) < nodeCount {
			isVariable[c.Source] = true
		}
	}

	// Flow adjacency restricted to functional nodes.
	parents := make([][]int, nodeCount)
	children := make([][]int, nodeCount)
	for _, c := range conns {
		if c.Kind != structures.FlowConnection {
			continue
		}
		s, t := int(c.Source), int(c.Target)
		if s >= nodeCount || t >= nodeCount || isVariable[s] || isVariable[t] {
			continue
		}
		children[s] = append(children[s], t)
		parents[t] = append(parents[t], s)
	}

	layer, topo := layerByLongestPath(nodeCount, isVariable, parents, children)
	compact(topo, parents, layer)

	layers := buildLayers(nodeCount, isVariable, layer)
	layers = splitOversized(layers, layer)
	orderByBarycenter(layers, parents, children)

	placed := make([]bool, nodeCount)
	for l, members := range layers {
		k := len(members)
		for i, n := range members {
			positions[n] = Position{
				X: float32(l * LayerGapX),
				Y: (float32(i) - float32(k-1)/2) * LayerGapY,
			}
			placed[n] = true
		}
	}

	// Variable zone anchor: below the lowest functional node, at the
	// leftmost functional x.
	var minX, bottomY float32
	first := true
	for n := 0; n < nodeCount; n++ {
		if !placed[n] {
			continue
		}
		if first {
			minX, bottomY = positions[n].X, positions[n].Y
			first = false
			continue
		}
		if positions[n].X < minX {
			minX = positions[n].X
		}
		if positions[n].Y > bottomY {
			bottomY = positions[n].Y
		}
	}
	baseY := bottomY + VarZoneGap

	// Connected variable nodes first, then the rest, both by index.
	hasTarget := make([]bool, nodeCount)
	for _, c := range conns {
		if c.Kind == structures.VariableConnection &&
			int(c.Source) < nodeCount && int(c.Target) < nodeCount {
			hasTarget[c.Source] = true
		}
	}
	var varList []int
	for n := 0; n < nodeCount; n++ {
		if isVariable[n] && hasTarget[n] {
			varList = append(varList, n)
		}
	}
	for n := 0; n < nodeCount; n++ {
		if isVariable[n] && !hasTarget[n] {
			varList = append(varList, n)
		}
	}
	for i, n := range varList {
		positions[n] = Position{
			X: minX + float32(i%VarColumns)*VarCellW,
			Y: baseY + float32(i/VarColumns)*VarCellH,
		}
		placed[n] = true
	}

	// Orphan row below the variable grid for anything left over.
	varRows := (len(varList) + VarColumns - 1) / VarColumns
	orphanY := baseY + float32(varRows)*VarCellH + VarZoneGap
	k := 0
	for n := 0; n < nodeCount; n++ {
		if placed[n] {
			continue
		}
		positions[n] = Position{X: minX + float32(k)*OrphanGapX, Y: orphanY}
		k++
	}

	return positions
}

// layerByLongestPath runs a Kahn traversal over the functional
// subgraph, seeding with zero-in-degree nodes at layer 0. Each child
// lands at max(current, parent+1). Cycle members never reach zero
// in-degree on their own; whenever the queue drains with functional
// nodes still waiting, the lowest-index one is dequeued forcibly at
// its current, unelevated layer (layer 0 for a cycle with no upstream
// parent)
// so its descendants keep propagating instead of being stranded at
// the zero default. Returns the layer assignment and the dequeue
// order.
func layerByLongestPath(nodeCount int, isVariable []bool, parents, children [][]int) ([]int, []int) {
	layer := make([]int, nodeCount)
	indeg := make([]int, nodeCount)
	for n := 0; n < nodeCount; n++ {
		indeg[n] = len(parents[n])
	}

	done := make([]bool, nodeCount)
	var queue, topo []int
	for n := 0; n < nodeCount; n++ {
		if !isVariable[n] && indeg[n] == 0 {
			queue = append(queue, n)
		}
	}

	next := 0 // scan cursor for force-dequeuing cycle-blocked nodes
	for {
		if len(queue) == 0 {
			for ; next < nodeCount; next++ {
				if !isVariable[next] && !done[next] {
					break
				}
			}
			if next == nodeCount {
				break
			}
			queue = append(queue, next)
		}

		u := queue[0]
		queue = queue[1:]
		if done[u] {
			continue
		}
		done[u] = true
		topo = append(topo, u)

		for _, v := range children[u] {
			// A dequeued node's layer is final; back-edges into it
			// must not re-elevate.
			if done[v] {
				continue
			}
			if layer[u]+1 > layer[v] {
				layer[v] = layer[u] + 1
			}
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	return layer, topo
}

// compact resets each node, in dequeue order, to one past its deepest
// already-placed parent (or 0 when it has none), pulling floating
// nodes leftward. Only parents that precede the node in the dequeue
// order count: a cycle's back-edge parent comes later and must not
// drag its target rightward.
func compact(topo []int, parents [][]int, layer []int) {
	pos := make([]int, len(parents))
	for i, u := range topo {
		pos[u] = i
	}
	for i, u := range topo {
		l := 0
		for _, p := range parents[u] {
			if pos[p] < i && layer[p]+1 > l {
				l = layer[p] + 1
			}
		}
		layer[u] = l
	}
}

// buildLayers groups functional nodes by layer, ascending node index
// within each layer.
func buildLayers(nodeCount int, isVariable []bool, layer []int) [][]int {
	maxLayer := 0
	for n := 0; n < nodeCount; n++ {
		if !isVariable[n] && layer[n] > maxLayer {
			maxLayer = layer[n]
		}
	}
	layers := make([][]int, maxLayer+1)
	any := false
	for n := 0; n < nodeCount; n++ {
		if isVariable[n] {
			continue
		}
		layers[layer[n]] = append(layers[layer[n]], n)
		any = true
	}
	if !any {
		return nil
	}
	return layers
}

// splitOversized breaks layers with more than MaxPerLayer members
// into chunks, inserting the new layers immediately to the right and
// shifting everything past them. Layers are processed right-to-left
// so earlier splits do not disturb the walk.
func splitOversized(layers [][]int, layer []int) [][]int {
	for l := len(layers) - 1; l >= 0; l-- {
		members := layers[l]
		if len(members) <= MaxPerLayer {
			continue
		}
		chunks := (len(members) + MaxPerLayer - 1) / MaxPerLayer
		extra := chunks - 1

		expanded := make([][]int, 0, len(layers)+extra)
		expanded = append(expanded, layers[:l]...)
		for c := 0; c < chunks; c++ {
			lo := c * MaxPerLayer
			hi := lo + MaxPerLayer
			if hi > len(members) {
				hi = len(members)
			}
			expanded = append(expanded, members[lo:hi])
		}
		expanded = append(expanded, layers[l+1:]...)
		layers = expanded

		for i, ms := range layers {
			for _, n := range ms {
				layer[n] = i
			}
		}
	}
	return layers
}
