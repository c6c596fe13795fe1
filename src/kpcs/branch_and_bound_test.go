package kpcs

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForce enumerates every subset of a small instance.
func bruteForce(model *Model) int {
	best := 0
	values := make([]bool, model.NumVars)
	for mask := 0; mask < 1<<model.NumVars; mask++ {
		for i := range values {
			values[i] = mask&(1<<i) != 0
		}
		if model.Satisfies(values) == nil {
			best = max(best, model.Evaluate(values))
		}
	}
	return best
}

func solveNative(t *testing.T, inst *Instance) Result {
	t.Helper()
	model := BuildModel(inst)
	a, err := (&BranchAndBound{}).Solve(context.Background(), model, DefaultTimeLimit)
	require.NoError(t, err)
	res, err := Aggregate(inst, model, a, 0)
	require.NoError(t, err)
	return res
}

func TestBranchAndBound_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		inst         *Instance
		wantSelected []int
		wantWeight   int
		wantValue    int
	}{
		{name: "no conflicts", inst: threeItems(5), wantSelected: []int{0, 1}, wantWeight: 5, wantValue: 7},
		{name: "pair conflict", inst: threeItems(5, [2]int{0, 1}), wantSelected: []int{2}, wantWeight: 4, wantValue: 5},
		{name: "self conflict", inst: threeItems(10, [2]int{0, 0}), wantSelected: []int{1, 2}, wantWeight: 7, wantValue: 9},
		{name: "out of range conflict", inst: threeItems(5, [2]int{5, 7}), wantSelected: []int{0, 1}, wantWeight: 5, wantValue: 7},
		{name: "everything fits", inst: threeItems(100), wantSelected: []int{0, 1, 2}, wantWeight: 9, wantValue: 12},
		{name: "nothing fits", inst: threeItems(1), wantSelected: []int{}, wantWeight: 0, wantValue: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := solveNative(t, tt.inst)
			assert.Equal(t, Optimal, res.Status)
			assert.Equal(t, tt.wantSelected, res.Selected)
			assert.Equal(t, tt.wantWeight, res.TotalWeight)
			assert.Equal(t, tt.wantValue, res.TotalValue)
		})
	}
}

func TestBranchAndBound_EdgeCases(t *testing.T) {
	res := solveNative(t, &Instance{Capacity: 10})
	assert.Equal(t, Optimal, res.Status)
	assert.Empty(t, res.Selected)

	res = solveNative(t, &Instance{Items: []Item{{Weight: 0, Value: 5}, {Weight: 0, Value: 0}, {Weight: 3, Value: 2}}, Capacity: 2})
	assert.Equal(t, Optimal, res.Status)
	assert.Equal(t, []int{0}, res.Selected)
	assert.Equal(t, 5, res.TotalValue)

	a, err := (&BranchAndBound{}).Solve(context.Background(), BuildModel(threeItems(-1)), time.Second)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, a.Status)
}

func TestBranchAndBound_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := range 60 {
		n := 1 + rng.Intn(12)
		inst := Generate(rng, n, 0.2, 0.15)
		inst.Capacity = rng.Intn(1 + 10*n)
		if round%5 == 0 && n > 1 {
			inst.Conflicts = append(inst.Conflicts, [2]int{rng.Intn(n), -1}, [2]int{n - 1, n - 1})
		}
		model := BuildModel(inst)

		a, err := (&BranchAndBound{CheckEvery: 1}).Solve(context.Background(), model, DefaultTimeLimit)
		require.NoError(t, err)
		require.Equal(t, Optimal, a.Status, "round %d", round)
		require.NoError(t, model.Satisfies(a.Values), "round %d", round)
		assert.Equal(t, bruteForce(model), model.Evaluate(a.Values), "round %d:\n%v", round, inst)
		assert.Equal(t, float64(model.Evaluate(a.Values)), a.Objective, "round %d", round)
	}
}

func TestBranchAndBound_TimeLimit(t *testing.T) {
	inst := Generate(rand.New(rand.NewSource(7)), 300, 0.05, 0.02)
	model := BuildModel(inst)

	a, err := (&BranchAndBound{CheckEvery: 1}).Solve(context.Background(), model, time.Nanosecond)
	require.NoError(t, err)
	require.True(t, a.Status.HasSolution(), "status %v", a.Status)
	assert.NoError(t, model.Satisfies(a.Values))

	res, err := Aggregate(inst, model, a, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.TotalWeight, inst.Capacity)
}

func TestBranchAndBound_UnsupportedModel(t *testing.T) {
	tests := []struct {
		name  string
		model *Model
	}{
		{name: "two knapsack rows", model: &Model{NumVars: 2, Constraints: []Constraint{
			{Name: "a", Terms: []Term{{0, 2}}, Sense: LessEq, RHS: 3},
			{Name: "b", Terms: []Term{{1, 2}}, Sense: LessEq, RHS: 3},
		}}},
		{name: "negative weight", model: &Model{NumVars: 1, Constraints: []Constraint{
			{Name: "a", Terms: []Term{{0, -2}}, Sense: LessEq, RHS: 3},
		}}},
		{name: "fixing to one", model: &Model{NumVars: 1, Constraints: []Constraint{
			{Name: "a", Terms: []Term{{0, 1}}, Sense: Equal, RHS: 1},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&BranchAndBound{}).Solve(context.Background(), tt.model, time.Second)
			assert.ErrorIs(t, err, ErrUnsupportedModel)
		})
	}
}

func TestPacking_Greedy(t *testing.T) {
	pk, err := newPacking(BuildModel(threeItems(6, [2]int{0, 2})))
	require.NoError(t, err)

	selected, value := pk.greedy()
	assert.Equal(t, Selection(3, 0, 1), selected)
	assert.Equal(t, 7.0, value)
}

func TestPacking_SubgradientBoundIsValid(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 20 {
		inst := Generate(rng, 10, 0.3, 0.1)
		model := BuildModel(inst)
		pk, err := newPacking(model)
		require.NoError(t, err)

		_, incumbent := pk.greedy()
		bound, lambda := pk.optimizeSubgradient(incumbent)
		assert.GreaterOrEqual(t, bound+eps, float64(bruteForce(model)))
		for _, l := range lambda {
			assert.GreaterOrEqual(t, l, 0.0)
		}
	}
}

func TestStack(t *testing.T) {
	s := NewStack[int]()
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 0, s.Pop())

	s.Push(1)
	s.Push(2)
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, 2, s.Pop())
	assert.Equal(t, 1, s.Pop())
	assert.Equal(t, 0, s.Size())
}
