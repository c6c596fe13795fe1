// Package pbsolve solves knapsack models with the gophersat pseudo-boolean
// solver by translating them to the OPB format.
package pbsolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crillab/gophersat/solver"
	"go.uber.org/zap"

	"kp_with_conflicts/src/kpcs"
)

type Solver struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{Logger: logger}
}

// step is one message of the improvement search: a strictly better
// assignment, or done when no better one exists.
type step struct {
	values []bool
	value  int
	done   bool
	err    error
}

// improveRow asks for an objective of at least best+1. It reports false when
// no assignment can reach it.
func improveRow(model *kpcs.Model, best int) (string, bool) {
	s := new(strings.Builder)
	reachable := 0
	for _, t := range model.Objective {
		if t.Coeff == 0 {
			continue
		}
		if t.Coeff > 0 {
			reachable += t.Coeff
		}
		writeTerm(s, t.Coeff, t.Var, false)
	}
	if reachable <= best {
		return "", false
	}
	fmt.Fprintf(s, ">= %d;\n", best+1)
	return s.String(), true
}

func send(ctx context.Context, steps chan<- step, st step) bool {
	select {
	case steps <- st:
		return true
	case <-ctx.Done():
		return false
	}
}

// search solves a sequence of decision problems, each one requiring a better
// objective than the last assignment found. gophersat cannot be interrupted
// inside a call, so ctx is checked between calls.
func (s *Solver) search(ctx context.Context, model *kpcs.Model, base string, steps chan<- step) {
	defer close(steps)
	text := base
	for round := 0; ctx.Err() == nil; round++ {
		pb, err := solver.ParseOPB(strings.NewReader(text))
		if err != nil {
			send(ctx, steps, step{err: fmt.Errorf("could not parse generated OPB: %w", err)})
			return
		}
		sat := solver.New(pb)
		if sat.Solve() != solver.Sat {
			send(ctx, steps, step{done: true})
			return
		}
		values := make([]bool, model.NumVars)
		copy(values, sat.Model())
		value := model.Evaluate(values)
		s.Logger.Debug("pseudo-boolean incumbent", zap.Int("round", round), zap.Int("value", value))
		if !send(ctx, steps, step{values: values, value: value}) {
			return
		}
		row, ok := improveRow(model, value)
		if !ok {
			send(ctx, steps, step{done: true})
			return
		}
		text = base + row
	}
}

func (s *Solver) Solve(ctx context.Context, model *kpcs.Model, timeLimit time.Duration) (*kpcs.Assignment, error) {
	if model.NumVars == 0 {
		if err := model.Satisfies([]bool{}); err != nil {
			return &kpcs.Assignment{Status: kpcs.Infeasible}, nil
		}
		return &kpcs.Assignment{Status: kpcs.Optimal, Values: []bool{}, HasObjective: true}, nil
	}
	out := toOPB(model)
	if out.infeasible != "" {
		return &kpcs.Assignment{Status: kpcs.Infeasible}, nil
	}

	var cancel context.CancelFunc
	if timeLimit > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeLimit)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	steps := make(chan step)
	go s.search(ctx, model, out.text, steps)

	var best *kpcs.Assignment
	for {
		select {
		case st, ok := <-steps:
			if !ok {
				return s.interrupted(best), nil
			}
			if st.err != nil {
				return nil, st.err
			}
			if st.done {
				if best == nil {
					return &kpcs.Assignment{Status: kpcs.Infeasible}, nil
				}
				best.Status = kpcs.Optimal
				return best, nil
			}
			best = &kpcs.Assignment{
				Status:       kpcs.Feasible,
				Values:       st.values,
				Objective:    float64(st.value),
				HasObjective: true,
			}
		case <-ctx.Done():
			return s.interrupted(best), nil
		}
	}
}

func (s *Solver) interrupted(best *kpcs.Assignment) *kpcs.Assignment {
	s.Logger.Debug("pseudo-boolean search interrupted", zap.Bool("incumbent", best != nil))
	if best == nil {
		return &kpcs.Assignment{Status: kpcs.Unknown}
	}
	return best
}
