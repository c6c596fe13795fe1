package batch

import (
	"fmt"
	"io"
	"time"

	"kp_with_conflicts/src/kpcs"
)

// Reporter writes the human readable report. Nothing else is written to its
// writer.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Found(n int) {
	fmt.Fprintf(r.w, "Found %d knapsack instance files.\n\n", n)
}

func (r *Reporter) Start(path string) {
	fmt.Fprintf(r.w, "Solving instance: %s\n", path)
}

func (r *Reporter) Result(res *kpcs.Result) {
	if !res.Solved() {
		fmt.Fprintln(r.w, "  No feasible solution found or solver timed out.")
		fmt.Fprintf(r.w, "  Time taken: %.4f seconds\n", res.Elapsed.Seconds())
		return
	}
	fmt.Fprintf(r.w, "  Picked items: %s\n", kpcs.JoinIndices(res.Selected))
	fmt.Fprintf(r.w, "  Total weight: %d\n", res.TotalWeight)
	fmt.Fprintf(r.w, "  Total value: %d\n", res.TotalValue)
	fmt.Fprintf(r.w, "  Time taken: %.4f seconds\n", res.Elapsed.Seconds())
}

func (r *Reporter) ReadError(path string, elapsed time.Duration) {
	fmt.Fprintf(r.w, "  Error processing %s: unable to read file.\n", path)
	fmt.Fprintf(r.w, "  Time taken before error: %.4f seconds\n", elapsed.Seconds())
}

func (r *Reporter) Summary(s *Summary) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "--- Summary of all instances ---")
	for _, e := range s.Entries {
		fmt.Fprintf(r.w, "%s: %s\n", e.Path, e.Outcome)
	}
}
