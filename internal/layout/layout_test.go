package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigaHours/madmax-gsrc-editor/internal/structures"
)

func flow(s, t uint32) structures.Connection {
	return structures.Connection{Source: s, Target: t, Kind: structures.FlowConnection}
}

func variable(s, t uint32) structures.Connection {
	return structures.Connection{Source: s, Target: t, Kind: structures.VariableConnection}
}

func TestComputeEmptyGraph(t *testing.T) {
	positions := Compute(0, nil)
	assert.Empty(t, positions)
}

func TestComputeSingleNode(t *testing.T) {
	positions := Compute(1, nil)
	require.Len(t, positions, 1)
	assert.Equal(t, Position{X: 0, Y: 0}, positions[0])
}

func TestComputeLinearChain(t *testing.T) {
	// 0 -> 1 -> 2: one node per layer, x stepping by the layer gap,
	// y at each layer's midpoint.
	positions := Compute(3, []structures.Connection{flow(0, 1), flow(1, 2)})
	require.Len(t, positions, 3)

	assert.Equal(t, Position{X: 0, Y: 0}, positions[0])
	assert.Equal(t, Position{X: 360, Y: 0}, positions[1])
	assert.Equal(t, Position{X: 720, Y: 0}, positions[2])
}

func TestComputeFanOutSplitsLayer(t *testing.T) {
	// Node 0 with five flow children: the children's layer exceeds
	// MaxPerLayer and splits into 4 + 1.
	conns := []structures.Connection{
		flow(0, 1), flow(0, 2), flow(0, 3), flow(0, 4), flow(0, 5),
	}
	positions := Compute(6, conns)
	require.Len(t, positions, 6)

	perX := map[float32]int{}
	for _, p := range positions {
		perX[p.X]++
	}
	assert.Equal(t, 1, perX[0], "root alone at layer 0")
	assert.Equal(t, 4, perX[360], "first chunk fills layer 1")
	assert.Equal(t, 1, perX[720], "remainder lands on the inserted layer")
	for x, n := range perX {
		assert.LessOrEqual(t, n, MaxPerLayer, "layer at x=%v overfull", x)
	}
}

func TestComputeLayerMonotonicity(t *testing.T) {
	// A small DAG; every flow edge must move strictly rightward.
	conns := []structures.Connection{
		flow(0, 2), flow(1, 2), flow(2, 3), flow(2, 4), flow(1, 4), flow(4, 5),
	}
	positions := Compute(6, conns)

	for _, c := range conns {
		assert.Less(t, positions[c.Source].X, positions[c.Target].X,
			"edge %d->%d", c.Source, c.Target)
	}
}

func TestComputeCycleAnchorsAtLayerZero(t *testing.T) {
	// Pure cycle: the forced entry stays at layer 0 and the other
	// member unwinds to its right. The layout must still be total
	// and finite.
	positions := Compute(2, []structures.Connection{flow(0, 1), flow(1, 0)})
	require.Len(t, positions, 2)

	assert.Equal(t, float32(0), positions[0].X)
	assert.Equal(t, float32(360), positions[1].X)

	for _, p := range positions {
		assert.False(t, math.IsNaN(float64(p.X)) || math.IsInf(float64(p.X), 0))
		assert.False(t, math.IsNaN(float64(p.Y)) || math.IsInf(float64(p.Y), 0))
	}
}

func TestComputeCycleTailPropagates(t *testing.T) {
	// 0 <-> 1 with a tail 1 -> 2: the tail is not a cycle member and
	// must land strictly to the right of its parent instead of being
	// stranded at layer 0.
	positions := Compute(3, []structures.Connection{flow(0, 1), flow(1, 0), flow(1, 2)})
	require.Len(t, positions, 3)

	assert.Equal(t, float32(0), positions[0].X)
	assert.Less(t, positions[1].X, positions[2].X)
}

func TestComputeCycleAndDagParentsAgree(t *testing.T) {
	// Node 2 has one parent inside the 0<->1 cycle and one ordinary
	// DAG parent (3 -> 4 -> 2); it must end up past both.
	conns := []structures.Connection{
		flow(0, 1), flow(1, 0), flow(1, 2),
		flow(3, 4), flow(4, 2),
	}
	positions := Compute(5, conns)

	assert.Less(t, positions[1].X, positions[2].X)
	assert.Less(t, positions[4].X, positions[2].X)
}

func TestComputeCompactionPullsFloatersLeft(t *testing.T) {
	// 0 -> 1 -> 2 plus a disconnected 3: the floater seeds at layer 0
	// and stays there next to the chain head.
	positions := Compute(4, []structures.Connection{flow(0, 1), flow(1, 2)})
	assert.Equal(t, float32(0), positions[3].X)
}

func TestComputeVariableZone(t *testing.T) {
	// Node 1 supplies a variable to node 0: it leaves the layered
	// area and lands on the grid below.
	positions := Compute(2, []structures.Connection{variable(1, 0)})
	require.Len(t, positions, 2)

	assert.Equal(t, Position{X: 0, Y: 0}, positions[0], "functional node is layered")
	assert.Equal(t, Position{X: 0, Y: VarZoneGap}, positions[1], "variable node sits one zone gap below")
}

func TestComputeVariableGridWraps(t *testing.T) {
	// Seven variable nodes feeding node 0: the grid wraps after six
	// columns.
	var conns []structures.Connection
	for s := uint32(1); s <= 7; s++ {
		conns = append(conns, variable(s, 0))
	}
	positions := Compute(8, conns)

	for i := 0; i < 6; i++ {
		p := positions[1+i]
		assert.Equal(t, float32(i*VarCellW), p.X)
		assert.Equal(t, float32(VarZoneGap), p.Y)
	}
	assert.Equal(t, Position{X: 0, Y: VarZoneGap + VarCellH}, positions[7])
}

func TestComputeVariableTargetStaysFunctional(t *testing.T) {
	// Node 1 is a variable target and a flow participant: it stays
	// functional. Node 2 sources the variable edge.
	conns := []structures.Connection{
		flow(0, 1),
		variable(2, 1),
	}
	positions := Compute(3, conns)

	assert.Equal(t, float32(360), positions[1].X, "variable target keeps its flow layer")
	assert.Greater(t, positions[2].Y, positions[0].Y, "variable source is below the layered area")
}

func TestComputeDeterministic(t *testing.T) {
	conns := []structures.Connection{
		flow(0, 1), flow(0, 2), flow(1, 3), flow(2, 3), flow(3, 4),
		flow(0, 5), flow(5, 3),
		variable(6, 1), variable(7, 3),
	}
	a := Compute(8, conns)
	b := Compute(8, conns)
	assert.Equal(t, a, b)
}

func TestComputeTotality(t *testing.T) {
	// All shapes yield exactly one finite position per node.
	cases := [][]structures.Connection{
		nil,
		{flow(0, 0)},
		{variable(0, 1), variable(1, 0)},
		{flow(0, 1), flow(1, 2), flow(2, 0), variable(3, 1)},
	}
	for _, conns := range cases {
		positions := Compute(4, conns)
		require.Len(t, positions, 4)
		for _, p := range positions {
			assert.False(t, math.IsNaN(float64(p.X)) || math.IsInf(float64(p.X), 0))
			assert.False(t, math.IsNaN(float64(p.Y)) || math.IsInf(float64(p.Y), 0))
		}
	}
}

func TestComputeBarycenterReducesCrossings(t *testing.T) {
	// Two parents each with a dedicated child, wired crosswise in
	// index order: 0->3, 1->2. Barycenter ordering aligns children
	// under their parents.
	conns := []structures.Connection{flow(0, 3), flow(1, 2)}
	positions := Compute(4, conns)

	// Parents keep index order in layer 0.
	require.Less(t, positions[0].Y, positions[1].Y)
	// Children follow their parents' ranks, undoing the crossing.
	assert.Less(t, positions[3].Y, positions[2].Y)
}
