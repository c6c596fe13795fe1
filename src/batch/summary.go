package batch

import (
	"fmt"

	"kp_with_conflicts/src/kpcs"
)

type Kind int

const (
	Solved Kind = iota
	NoSolution
	ReadError
)

func (k Kind) String() string {
	switch k {
	case Solved:
		return "solved"
	case NoSolution:
		return "no_solution"
	default:
		return "read_error"
	}
}

// Entry is the outcome of one instance file.
type Entry struct {
	Path    string
	Outcome string
	Kind    Kind
	Result  kpcs.Result
}

func outcome(kind Kind, res *kpcs.Result) string {
	switch kind {
	case Solved:
		return fmt.Sprintf("Value=%d, Weight=%d, Picked=%d, Time Taken=%.4fs",
			res.TotalValue, res.TotalWeight, len(res.Selected), res.Elapsed.Seconds())
	case NoSolution:
		return "No solution"
	default:
		return "Error: unable to read file"
	}
}

func NewEntry(path string, kind Kind, res kpcs.Result) Entry {
	return Entry{Path: path, Outcome: outcome(kind, &res), Kind: kind, Result: res}
}

// Summary collects entries in processing order.
type Summary struct {
	Entries []Entry
}

func (s *Summary) Add(e Entry) {
	s.Entries = append(s.Entries, e)
}

func (s *Summary) Count(kind Kind) int {
	n := 0
	for _, e := range s.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
