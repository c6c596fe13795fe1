// Package batch runs a solver over a set of instance files and reports the
// outcome of each one.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"kp_with_conflicts/src/kpcs"
)

// Runner processes instance files strictly one at a time. A failing file is
// recorded and the run moves on.
type Runner struct {
	// Dir is joined to every path before it is opened. Paths are reported
	// as given.
	Dir       string
	Solver    kpcs.Solver
	TimeLimit time.Duration
	Reporter  *Reporter
	Metrics   *Metrics
	Logger    *zap.Logger
}

// ErrSolverPanic wraps a panic raised inside a backend.
var ErrSolverPanic = errors.New("solver panicked")

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run solves every path in order, prints the per-instance blocks and the
// final summary, and returns the summary.
func (r *Runner) Run(ctx context.Context, paths []string) *Summary {
	summary := new(Summary)
	r.Reporter.Found(len(paths))
	for _, path := range paths {
		summary.Add(r.solveOne(ctx, path))
	}
	r.Reporter.Summary(summary)
	return summary
}

// solve calls the backend, turning a panic into an error so that one instance
// cannot end the run.
func (r *Runner) solve(ctx context.Context, model *kpcs.Model, limit time.Duration) (a *kpcs.Assignment, err error) {
	defer func() {
		if p := recover(); p != nil {
			a, err = nil, fmt.Errorf("%w: %v", ErrSolverPanic, p)
		}
	}()
	return r.Solver.Solve(ctx, model, limit)
}

func (r *Runner) solveOne(ctx context.Context, path string) Entry {
	log := r.logger().With(zap.String("path", path))
	r.Reporter.Start(path)
	start := time.Now()

	inst, err := kpcs.LoadInstance(filepath.Join(r.Dir, path))
	if err != nil {
		log.Warn("Could not read instance", zap.Error(err))
		r.Reporter.ReadError(path, time.Since(start))
		if r.Metrics != nil {
			r.Metrics.ObserveReadError()
		}
		return NewEntry(path, ReadError, kpcs.Result{})
	}
	if inst.CountMismatch() {
		log.Warn("Parsed item count differs from the declared count",
			zap.Int("parsed", len(inst.Items)), zap.Int("declared", inst.DeclaredCount))
	}

	model := kpcs.BuildModel(inst)
	log.Debug("Model built", zap.Int("vars", model.NumVars), zap.Int("rows", len(model.Constraints)))

	limit := r.TimeLimit
	if limit <= 0 {
		limit = kpcs.DefaultTimeLimit
	}
	solveStart := time.Now()
	a, err := r.solve(ctx, model, limit)
	elapsed := time.Since(solveStart)
	if err != nil {
		log.Error("Solver failed", zap.Error(err))
		a = nil
	}

	res, err := kpcs.Aggregate(inst, model, a, elapsed)
	if err != nil {
		log.Error("Solver result failed the consistency check", zap.Error(err))
	}
	log.Debug("Instance solved", zap.Stringer("status", res.Status), zap.Duration("elapsed", elapsed))

	r.Reporter.Result(&res)
	if r.Metrics != nil {
		r.Metrics.ObserveResult(path, &res)
	}
	if res.Solved() {
		return NewEntry(path, Solved, res)
	}
	return NewEntry(path, NoSolution, res)
}
