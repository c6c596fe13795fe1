// Package lpsolve solves knapsack models with lp_solve through golp.
package lpsolve

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/draffensperger/golp"
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

func constraintType(sense kpcs.Sense) golp.ConstraintType {
	if sense == kpcs.Equal {
		return golp.EQ
	}
	return golp.LE
}

func defLP(model *kpcs.Model) (*golp.LP, error) {
	lp := golp.NewLP(0, model.NumVars)
	for j := range model.NumVars {
		lp.SetBinary(j, true)
	}
	for _, c := range model.Constraints {
		if err := lp.AddConstraint(c.Dense(model.NumVars), constraintType(c.Sense), float64(c.RHS)); err != nil {
			return nil, fmt.Errorf("could not add row %q: %w", c.Name, err)
		}
	}
	lp.SetObjFn(model.ObjectiveDense())
	lp.SetMaximize()
	return lp, nil
}

type outcome struct {
	status golp.SolutionType
	values []float64
	obj    float64
}

// timeoutSeconds rounds a budget up to the whole seconds lp_solve accepts.
func timeoutSeconds(budget time.Duration) int {
	return int(math.Ceil(budget.Seconds()))
}

// Solve runs lp_solve with its timeout set to the budget. On timeout lp_solve
// reports SUBOPTIMAL with its incumbent, or TIMEOUT when it has none.
func (s *Solver) Solve(ctx context.Context, model *kpcs.Model, timeLimit time.Duration) (*kpcs.Assignment, error) {
	if model.NumVars == 0 {
		if err := model.Satisfies([]bool{}); err != nil {
			return &kpcs.Assignment{Status: kpcs.Infeasible}, nil
		}
		return &kpcs.Assignment{Status: kpcs.Optimal, Values: []bool{}, HasObjective: true}, nil
	}
	if err := ctx.Err(); err != nil {
		return &kpcs.Assignment{Status: kpcs.Unknown}, nil
	}
	lp, err := defLP(model)
	if err != nil {
		return nil, err
	}
	if budget, ok := kpcs.Budget(ctx, timeLimit); ok {
		lp.SetTimeout(timeoutSeconds(budget))
	}

	status := lp.Solve()
	s.Logger.Debug("lp_solve finished", zap.Stringer("status", status))
	return s.assignment(model, outcome{status: status, values: lp.Variables(), obj: lp.Objective()}), nil
}

func (s *Solver) assignment(model *kpcs.Model, out outcome) *kpcs.Assignment {
	switch out.status {
	case golp.OPTIMAL, golp.SUBOPTIMAL:
	case golp.INFEASIBLE:
		return &kpcs.Assignment{Status: kpcs.Infeasible}
	default:
		return &kpcs.Assignment{Status: kpcs.Unknown}
	}
	if len(out.values) < model.NumVars {
		return &kpcs.Assignment{Status: kpcs.Unknown}
	}
	values := make([]bool, model.NumVars)
	for j := range values {
		values[j] = out.values[j] > 0.5
	}
	status := kpcs.Optimal
	if out.status == golp.SUBOPTIMAL {
		status = kpcs.Feasible
	}
	return &kpcs.Assignment{
		Status:       status,
		Values:       values,
		Objective:    out.obj,
		HasObjective: true,
	}
}
