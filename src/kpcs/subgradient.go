package kpcs

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	eps              = 1e-6
	subgradBaseStep  = 2.0
	subgradCoeffStep = 0.5
	subgradMinStep   = 1e-4
	subgradMaxRounds = 200
	subgradPatience  = 5
)

// ratioOrder sorts variables by decreasing c_i / w_i.
func (pk *packing) ratioOrder(c *mat.VecDense) []int {
	order := make([]int, pk.n)
	ratios := make([]float64, pk.n)
	for i := range order {
		order[i] = i
		ratios[i] = pk.ratio(i, c.AtVec(i))
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ratios[order[a]] > ratios[order[b]]
	})
	return order
}

// reducedValues returns v_i minus the multipliers of the conflict rows
// containing i.
func (pk *packing) reducedValues(lambda []float64) *mat.VecDense {
	c := mat.NewVecDense(pk.values.Len(), nil)
	c.CloneFromVec(pk.values)
	for e, edge := range pk.edges {
		c.SetVec(edge[0], c.AtVec(edge[0])-lambda[e])
		c.SetVec(edge[1], c.AtVec(edge[1])-lambda[e])
	}
	return c
}

// fractional solves the continuous knapsack over the variables that are not
// fixed or skipped, taking them in order. If x is non nil it receives the
// optimal fractional point.
func (pk *packing) fractional(c *mat.VecDense, order []int, skip func(int) bool, capacity float64, x []float64) float64 {
	bound := 0.0
	remaining := capacity
	for _, i := range order {
		ci := c.AtVec(i)
		if ci <= 0 || pk.fixed[i] || (skip != nil && skip(i)) {
			continue
		}
		w := pk.weights.AtVec(i)
		if w <= remaining {
			bound += ci
			remaining -= w
			if x != nil {
				x[i] = 1
			}
			continue
		}
		f := remaining / w
		bound += ci * f
		if x != nil {
			x[i] = f
		}
		break
	}
	return bound
}

// closes reports whether no integer solution can beat incumbent when the
// relaxation is bounded by bound.
func closes(bound, incumbent float64) bool {
	return math.Floor(bound+eps) <= incumbent
}

// optimizeSubgradient relaxes the conflict rows and searches multipliers
// that minimise the Lagrangean bound. It returns the best bound found and
// its multipliers.
func (pk *packing) optimizeSubgradient(incumbent float64) (bestBound float64, bestLambda []float64) {
	lambda := make([]float64, len(pk.edges))
	bestBound = math.Inf(1)
	bestLambda = slices.Clone(lambda)

	mu := subgradBaseStep
	noImprovementRounds := 0
	x := make([]float64, pk.n)
	g := make([]float64, len(pk.edges))

	for range subgradMaxRounds {
		c := pk.reducedValues(lambda)
		for i := range x {
			x[i] = 0
		}
		bound := pk.fractional(c, pk.ratioOrder(c), nil, pk.capacity, x) + floats.Sum(lambda)

		if bound < bestBound-eps {
			bestBound = bound
			copy(bestLambda, lambda)
			noImprovementRounds = 0
		} else {
			noImprovementRounds++
			if noImprovementRounds == subgradPatience {
				mu *= subgradCoeffStep
				noImprovementRounds = 0
			}
		}
		if closes(bestBound, incumbent) || mu < subgradMinStep {
			return
		}

		for e, edge := range pk.edges {
			g[e] = 1 - x[edge[0]] - x[edge[1]]
		}
		norm := floats.Dot(g, g)
		if norm < eps {
			return
		}
		step := mu * (bound - incumbent) / norm
		for e := range lambda {
			lambda[e] = math.Max(0, lambda[e]-step*g[e])
		}
	}
	return
}
