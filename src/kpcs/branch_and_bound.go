package kpcs

import (
	"context"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const defaultCheckEvery = 256

// BranchAndBound is a native backend for models in knapsack-with-conflicts
// form: a single knapsack row, pairwise "at most one" rows and fixings to 0.
// It returns ErrUnsupportedModel for anything else.
type BranchAndBound struct {
	// CheckEvery is how many nodes are explored between deadline checks.
	CheckEvery int
}

type node struct {
	depth    int
	selected []bool
	blocked  []int
	weight   float64
	value    float64
	reduced  float64
}

func (bb *BranchAndBound) Solve(ctx context.Context, model *Model, timeLimit time.Duration) (*Assignment, error) {
	pk, err := newPacking(model)
	if err != nil {
		return nil, err
	}
	if pk.capacity < 0 {
		return &Assignment{Status: Infeasible}, nil
	}
	if timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeLimit)
		defer cancel()
	}
	checkEvery := bb.CheckEvery
	if checkEvery <= 0 {
		checkEvery = defaultCheckEvery
	}
	return pk.branchAndBound(ctx, checkEvery), nil
}

func solution(status Status, selected []bool, value float64) *Assignment {
	return &Assignment{
		Status:       status,
		Values:       selected,
		Objective:    value,
		HasObjective: true,
	}
}

func (pk *packing) include(n *node, i int, reduced *mat.VecDense) *node {
	child := &node{
		depth:    n.depth + 1,
		selected: slices.Clone(n.selected),
		blocked:  slices.Clone(n.blocked),
		weight:   n.weight + pk.weights.AtVec(i),
		value:    n.value + pk.values.AtVec(i),
		reduced:  n.reduced + reduced.AtVec(i),
	}
	child.selected[i] = true
	for _, j := range pk.adj[i] {
		child.blocked[j]++
	}
	return child
}

func (pk *packing) branchAndBound(ctx context.Context, checkEvery int) *Assignment {
	best, bestValue := pk.greedy()
	rootBound, lambda := pk.optimizeSubgradient(bestValue)
	if closes(rootBound, bestValue) {
		return solution(Optimal, best, bestValue)
	}
	if ctx.Err() != nil {
		return solution(Feasible, best, bestValue)
	}

	reduced := pk.reducedValues(lambda)
	lagrOrder := pk.ratioOrder(reduced)
	order := pk.ratioOrder(pk.values)
	pos := make([]int, pk.n)
	for p, i := range order {
		pos[i] = p
	}
	lambdaSum := floats.Sum(lambda)

	nodes := NewStack[*node]()
	nodes.Push(&node{selected: make([]bool, pk.n), blocked: make([]int, pk.n)})

	for explored := 1; nodes.Size() > 0; explored++ {
		if explored%checkEvery == 0 && ctx.Err() != nil {
			return solution(Feasible, best, bestValue)
		}
		n := nodes.Pop()
		if n.value > bestValue {
			best = slices.Clone(n.selected)
			bestValue = n.value
		}

		for n.depth < pk.n && (pk.fixed[order[n.depth]] || n.blocked[order[n.depth]] > 0) {
			n.depth++
		}
		if n.depth == pk.n {
			continue
		}

		skip := func(i int) bool {
			return pos[i] < n.depth || n.blocked[i] > 0
		}
		remaining := pk.capacity - n.weight
		bound := math.Min(
			lambdaSum+n.reduced+pk.fractional(reduced, lagrOrder, skip, remaining, nil),
			n.value+pk.fractional(pk.values, order, skip, remaining, nil),
		)
		if closes(bound, bestValue) {
			continue
		}

		i := order[n.depth]
		nodes.Push(&node{
			depth:    n.depth + 1,
			selected: n.selected,
			blocked:  n.blocked,
			weight:   n.weight,
			value:    n.value,
			reduced:  n.reduced,
		})
		if n.weight+pk.weights.AtVec(i) <= pk.capacity {
			nodes.Push(pk.include(n, i, reduced))
		}
	}
	return solution(Optimal, best, bestValue)
}
