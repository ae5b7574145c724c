package model

import "sort"

// permutation maps between the solver's class order (the order in which
// classes were first seen during training) and canonical order (ascending
// label value), for single classes and for pairwise classifier slots.
type permutation struct {
	rankToSolver []int
	solverToRank []int
	// slots[c] is the solver slot holding canonical pair slot c.
	slots []int
	// signs[c] is -1 where the solver orders the pair of slot c the other
	// way round.
	signs []float64
}

func newPermutation(solverLabels []int) permutation {
	n := len(solverLabels)
	p := permutation{
		rankToSolver: make([]int, n),
		solverToRank: make([]int, n),
	}
	for k := range p.rankToSolver {
		p.rankToSolver[k] = k
	}
	sort.SliceStable(p.rankToSolver, func(a, b int) bool {
		return solverLabels[p.rankToSolver[a]] < solverLabels[p.rankToSolver[b]]
	})
	for r, k := range p.rankToSolver {
		p.solverToRank[k] = r
	}

	nrc := n * (n - 1) / 2
	p.slots = make([]int, nrc)
	p.signs = make([]float64, nrc)
	slot := 0
	for k1 := 0; k1 < n-1; k1++ {
		for k2 := k1 + 1; k2 < n; k2++ {
			r1, r2 := p.solverToRank[k1], p.solverToRank[k2]
			sign := 1.0
			if r1 > r2 {
				r1, r2 = r2, r1
				sign = -1
			}
			c := pairSlot(n, r1, r2)
			p.slots[c] = slot
			p.signs[c] = sign
			slot++
		}
	}
	return p
}

// pairSlot is the position of pair (a, b), a < b, in the row-major upper
// triangle of an n by n matrix without its diagonal.
func pairSlot(n, a, b int) int {
	return (2*n-3-a)*a/2 + b - 1
}

// apply rearranges arr from solver slot order into canonical order in place
// and corrects the signs.
func (p permutation) apply(arr []float64) {
	visited := make([]bool, len(arr))
	for c := range arr {
		if visited[c] {
			continue
		}
		h := c
		for p.slots[h] != c {
			next := p.slots[h]
			arr[h], arr[next] = arr[next], arr[h]
			visited[h] = true
			h = next
		}
		visited[h] = true
	}
	for c := range arr {
		arr[c] *= p.signs[c]
	}
}
