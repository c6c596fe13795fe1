package kpcs

import (
	"context"
	"errors"
	"time"
)

const DefaultTimeLimit = 30 * time.Second

var (
	// ErrUnsupportedModel is returned by a backend given a model outside the
	// class of problems it handles.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrInconsistent flags a disagreement between a backend's answer and the
	// model it was given.
	ErrInconsistent = errors.New("inconsistent solver result")
)

// Solver is the boundary to an optimization backend. Solve must return
// within roughly timeLimit: with the best assignment found so far (Feasible)
// when optimality was not proven, or Unknown when none was found.
type Solver interface {
	Solve(ctx context.Context, model *Model, timeLimit time.Duration) (*Assignment, error)
}

// Budget returns how long a backend may search: timeLimit, cut short by the
// deadline of ctx. ok is false when neither bounds the search. An expired
// deadline yields a millisecond rather than zero so that engines reading zero
// as unlimited still stop at once.
func Budget(ctx context.Context, timeLimit time.Duration) (budget time.Duration, ok bool) {
	budget, ok = timeLimit, timeLimit > 0
	if deadline, has := ctx.Deadline(); has {
		if left := time.Until(deadline); !ok || left < budget {
			budget, ok = left, true
		}
	}
	if ok && budget < time.Millisecond {
		budget = time.Millisecond
	}
	return budget, ok
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, model *Model, timeLimit time.Duration) (*Assignment, error)

func (f SolverFunc) Solve(ctx context.Context, model *Model, timeLimit time.Duration) (*Assignment, error) {
	return f(ctx, model, timeLimit)
}

// FixedSolver returns the same assignment for every model.
type FixedSolver struct {
	Assignment *Assignment
	Err        error
}

func (s *FixedSolver) Solve(context.Context, *Model, time.Duration) (*Assignment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Assignment == nil {
		return &Assignment{Status: Unknown}, nil
	}
	a := *s.Assignment
	a.Values = append([]bool(nil), s.Assignment.Values...)
	return &a, nil
}

// Selection builds a 0/1 vector of length n with the given indices set.
func Selection(n int, selected ...int) []bool {
	values := make([]bool, n)
	for _, i := range selected {
		values[i] = true
	}
	return values
}
