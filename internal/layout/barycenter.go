package layout

import "sort"

// Number of alternating barycenter sweeps. Even passes walk forward
// using parents as the neighborhood, odd passes walk backward using
// children.
const barycenterPasses = 8

// orderByBarycenter reorders each layer's members by the mean rank of
// their neighbors in the adjacent neighborhood. Nodes without
// neighbors keep their current rank, and ties preserve the incoming
// order: the sort must be stable or layouts stop being reproducible.
func orderByBarycenter(layers [][]int, parents, children [][]int) {
	if len(layers) < 2 {
		return
	}

	var maxNode int
	for _, ms := range layers {
		for _, n := range ms {
			if n > maxNode {
				maxNode = n
			}
		}
	}
	rank := make([]float64, maxNode+1)
	updateRanks := func(members []int) {
		for i, n := range members {
			rank[n] = float64(i)
		}
	}
	for _, ms := range layers {
		updateRanks(ms)
	}

	reorder := func(members []int, neighborhood [][]int) {
		bary := make([]float64, len(members))
		for i, n := range members {
			ns := neighborhood[n]
			if len(ns) == 0 {
				bary[i] = rank[n]
				continue
			}
			sum := 0.0
			for _, m := range ns {
				sum += rank[m]
			}
			bary[i] = sum / float64(len(ns))
		}

		idx := make([]int, len(members))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return bary[idx[a]] < bary[idx[b]]
		})

		sorted := make([]int, len(members))
		for i, j := range idx {
			sorted[i] = members[j]
		}
		copy(members, sorted)
		updateRanks(members)
	}

	for pass := 0; pass < barycenterPasses; pass++ {
		if pass%2 == 0 {
			for l := 1; l < len(layers); l++ {
				reorder(layers[l], parents)
			}
		} else {
			for l := len(layers) - 2; l >= 0; l-- {
				reorder(layers[l], children)
			}
		}
	}
}
