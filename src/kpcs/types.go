package kpcs

import (
	"fmt"
	"strings"
	"time"
)

type Item struct {
	Weight int
	Value  int
}

// Instance is a knapsack instance with pairwise conflicts. Conflict indices
// refer to positions in Items and are not guaranteed to be in range.
type Instance struct {
	Items            []Item
	Capacity         int
	Conflicts        [][2]int
	DeclaredCount    int
	HasDeclaredCount bool
}

// CountMismatch reports whether the file header declared an item count that
// differs from the number of parsed items.
func (inst *Instance) CountMismatch() bool {
	return inst.HasDeclaredCount && inst.DeclaredCount != len(inst.Items)
}

type Status int

const (
	Unknown Status = iota
	Optimal
	Feasible
	Infeasible
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// HasSolution is true for the statuses that carry a concrete assignment.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Assignment is what a backend returns for a model.
type Assignment struct {
	Status       Status
	Values       []bool
	Objective    float64
	HasObjective bool
}

type Result struct {
	Status      Status
	Selected    []int
	TotalWeight int
	TotalValue  int
	Elapsed     time.Duration
}

func (r *Result) Solved() bool {
	return r.Status.HasSolution()
}

func (r *Result) String() string {
	s := new(strings.Builder)
	if !r.Solved() {
		fmt.Fprintf(s, "Status: %v\n", r.Status)
		fmt.Fprintf(s, "Time taken: %.4f seconds", r.Elapsed.Seconds())
		return s.String()
	}
	fmt.Fprintf(s, "Status: %v\n", r.Status)
	fmt.Fprintf(s, "Picked items: %s\n", JoinIndices(r.Selected))
	fmt.Fprintf(s, "Total weight: %d\n", r.TotalWeight)
	fmt.Fprintf(s, "Total value: %d\n", r.TotalValue)
	fmt.Fprintf(s, "Time taken: %.4f seconds", r.Elapsed.Seconds())
	return s.String()
}

func (inst *Instance) String() string {
	s := new(strings.Builder)
	s.WriteString(fmt.Sprintf("N. items: %d\n", len(inst.Items)))
	if inst.HasDeclaredCount {
		s.WriteString(fmt.Sprintf("Declared items: %d\n", inst.DeclaredCount))
	}
	s.WriteString(fmt.Sprintf("Capacity: %d\n", inst.Capacity))

	for i, item := range inst.Items {
		s.WriteString(fmt.Sprintf("%d\tValue: %d, Weight: %d\n", i, item.Value, item.Weight))
	}

	s.WriteString("Conflicts:\n")
	for _, pair := range inst.Conflicts {
		s.WriteString(fmt.Sprintf("%v\n", pair))
	}

	return s.String()
}

// JoinIndices renders indices as a comma-separated list, empty for none.
func JoinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprint(idx)
	}
	return strings.Join(parts, ", ")
}
