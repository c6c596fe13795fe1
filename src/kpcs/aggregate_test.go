package kpcs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveFixed(t *testing.T, inst *Instance, a *Assignment) (Result, error) {
	t.Helper()
	model := BuildModel(inst)
	got, err := (&FixedSolver{Assignment: a}).Solve(context.Background(), model, DefaultTimeLimit)
	require.NoError(t, err)
	return Aggregate(inst, model, got, 3*time.Second)
}

func TestAggregate_Optimal(t *testing.T) {
	res, err := solveFixed(t, threeItems(5), &Assignment{
		Status:       Optimal,
		Values:       Selection(3, 0, 1),
		Objective:    7,
		HasObjective: true,
	})
	require.NoError(t, err)

	assert.Equal(t, Result{
		Status:      Optimal,
		Selected:    []int{0, 1},
		TotalWeight: 5,
		TotalValue:  7,
		Elapsed:     3 * time.Second,
	}, res)
	assert.True(t, res.Solved())
}

func TestAggregate_EmptySelection(t *testing.T) {
	res, err := solveFixed(t, threeItems(1), &Assignment{Status: Feasible, Values: Selection(3)})
	require.NoError(t, err)

	assert.True(t, res.Solved())
	assert.Equal(t, []int{}, res.Selected)
	assert.Equal(t, "", JoinIndices(res.Selected))
}

func TestAggregate_NoSolution(t *testing.T) {
	for _, status := range []Status{Infeasible, Unknown} {
		res, err := solveFixed(t, threeItems(5), &Assignment{Status: status})
		require.NoError(t, err)
		assert.Equal(t, Result{Status: status, Elapsed: 3 * time.Second}, res)
		assert.False(t, res.Solved())
	}

	res, err := Aggregate(threeItems(5), BuildModel(threeItems(5)), nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Unknown, res.Status)
	assert.Equal(t, time.Second, res.Elapsed)
}

func TestAggregate_ObjectiveMismatch(t *testing.T) {
	res, err := solveFixed(t, threeItems(5), &Assignment{
		Status:       Optimal,
		Values:       Selection(3, 2),
		Objective:    9,
		HasObjective: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistent))

	assert.Equal(t, Optimal, res.Status)
	assert.Equal(t, []int{2}, res.Selected)
	assert.Equal(t, 5, res.TotalValue)
}

func TestAggregate_ViolatingAssignmentIsRejected(t *testing.T) {
	tests := []struct {
		name   string
		inst   *Instance
		values []bool
	}{
		{name: "over capacity", inst: threeItems(5), values: Selection(3, 0, 1, 2)},
		{name: "conflict", inst: threeItems(10, [2]int{0, 2}), values: Selection(3, 0, 2)},
		{name: "self conflict", inst: threeItems(10, [2]int{1, 1}), values: Selection(3, 1)},
		{name: "too few values", inst: threeItems(10), values: Selection(2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := solveFixed(t, tt.inst, &Assignment{Status: Feasible, Values: tt.values})
			assert.ErrorIs(t, err, ErrInconsistent)
			assert.Equal(t, Unknown, res.Status)
			assert.False(t, res.Solved())
		})
	}
}

func TestFixedSolver_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := (&FixedSolver{Err: boom}).Solve(context.Background(), &Model{}, time.Second)
	assert.ErrorIs(t, err, boom)
}

func TestResult_String(t *testing.T) {
	res := Result{Status: Optimal, Selected: []int{0, 2}, TotalWeight: 6, TotalValue: 8, Elapsed: 1500 * time.Millisecond}
	assert.Equal(t, "Status: OPTIMAL\nPicked items: 0, 2\nTotal weight: 6\nTotal value: 8\nTime taken: 1.5000 seconds", res.String())

	res = Result{Status: Unknown, Elapsed: 250 * time.Millisecond}
	assert.Equal(t, "Status: UNKNOWN\nTime taken: 0.2500 seconds", res.String())
}
