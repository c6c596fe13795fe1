// Package mip solves knapsack models with the HiGHS MIP solver.
package mip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lanl/highs"
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

func defBinaryCols(lp *highs.Model, numCols int) {
	lp.VarTypes = make([]highs.VariableType, numCols)
	lp.ColLower = make([]float64, numCols)
	lp.ColUpper = make([]float64, numCols)

	for j := range numCols {
		lp.VarTypes[j] = highs.IntegerType
		lp.ColUpper[j] = 1
	}
}

func defRows(lp *highs.Model, model *kpcs.Model) {
	for i, c := range model.Constraints {
		lower, upper := c.Bounds()
		lp.RowLower = append(lp.RowLower, lower)
		lp.RowUpper = append(lp.RowUpper, upper)
		for _, t := range c.Terms {
			lp.ConstMatrix = append(lp.ConstMatrix, highs.Nonzero{Row: i, Col: t.Var, Val: float64(t.Coeff)})
		}
	}
}

func defModel(model *kpcs.Model) *highs.Model {
	lp := &highs.Model{Maximize: true}
	defBinaryCols(lp, model.NumVars)
	lp.ColCosts = model.ObjectiveDense()
	defRows(lp, model)
	return lp
}

// Solve runs HiGHS with its time_limit option set to the budget. A search
// stopped by the limit comes back from Highs_run as a warning without a
// readable solution, which is reported as Unknown.
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

	raw, err := defModel(model).ToRawModel()
	if err != nil {
		return nil, fmt.Errorf("could not load model into HiGHS: %w", err)
	}
	if err := raw.SetBoolOption("output_flag", false); err != nil {
		return nil, err
	}
	var secs float64
	if budget, ok := kpcs.Budget(ctx, timeLimit); ok {
		secs = budget.Seconds()
		if err := raw.SetFloat64Option("time_limit", secs); err != nil {
			return nil, err
		}
	}

	solution, err := raw.Solve()
	if err != nil {
		var cs highs.CallStatus
		if errors.As(err, &cs) && cs.IsWarning() {
			s.Logger.Warn("HiGHS stopped without a solution", zap.Error(err), zap.Float64("time_limit", secs))
			return &kpcs.Assignment{Status: kpcs.Unknown}, nil
		}
		return nil, err
	}
	s.Logger.Debug("HiGHS finished", zap.Stringer("status", solution.Status), zap.Float64("objective", solution.Objective))
	return s.assignment(model, solution.Status, solution.ColumnPrimal, solution.Objective), nil
}

func (s *Solver) assignment(model *kpcs.Model, status highs.ModelStatus, primal []float64, objective float64) *kpcs.Assignment {
	switch status {
	case highs.Optimal, highs.TimeLimit:
	case highs.Infeasible:
		return &kpcs.Assignment{Status: kpcs.Infeasible}
	default:
		return &kpcs.Assignment{Status: kpcs.Unknown}
	}
	if len(primal) < model.NumVars {
		return &kpcs.Assignment{Status: kpcs.Unknown}
	}
	values := make([]bool, model.NumVars)
	for j := range values {
		values[j] = primal[j] > 0.5
	}

	if status == highs.TimeLimit {
		// Keep the incumbent of an early stop if it is one.
		if model.Satisfies(values) != nil {
			return &kpcs.Assignment{Status: kpcs.Unknown}
		}
		return &kpcs.Assignment{
			Status:       kpcs.Feasible,
			Values:       values,
			Objective:    float64(model.Evaluate(values)),
			HasObjective: true,
		}
	}
	return &kpcs.Assignment{
		Status:       kpcs.Optimal,
		Values:       values,
		Objective:    objective,
		HasObjective: true,
	}
}
