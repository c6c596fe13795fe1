package kpcs

import (
	"fmt"
	"math"
	"time"
)

// Aggregate turns a backend assignment into a Result. Totals are recomputed
// from the instance. A non-nil error reports an internal inconsistency; an
// assignment that violates the model is downgraded to Unknown.
func Aggregate(inst *Instance, model *Model, a *Assignment, elapsed time.Duration) (Result, error) {
	if a == nil {
		return Result{Status: Unknown, Elapsed: elapsed}, nil
	}
	if !a.Status.HasSolution() {
		return Result{Status: a.Status, Elapsed: elapsed}, nil
	}

	if len(a.Values) != len(inst.Items) {
		return Result{Status: Unknown, Elapsed: elapsed},
			fmt.Errorf("%w: %d values for %d items", ErrInconsistent, len(a.Values), len(inst.Items))
	}
	if err := model.Satisfies(a.Values); err != nil {
		return Result{Status: Unknown, Elapsed: elapsed}, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	res := Result{
		Status:   a.Status,
		Selected: make([]int, 0),
		Elapsed:  elapsed,
	}
	for i, picked := range a.Values {
		if picked {
			res.Selected = append(res.Selected, i)
			res.TotalWeight += inst.Items[i].Weight
			res.TotalValue += inst.Items[i].Value
		}
	}

	if a.HasObjective && math.Abs(a.Objective-float64(res.TotalValue)) > 0.5 {
		return res, fmt.Errorf("%w: backend objective %v, recomputed value %d", ErrInconsistent, a.Objective, res.TotalValue)
	}
	return res, nil
}
