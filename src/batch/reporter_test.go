package batch

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"kp_with_conflicts/src/kpcs"
)

func sampleSummary() *Summary {
	s := new(Summary)
	s.Add(NewEntry("C1/a.txt_1", Solved, kpcs.Result{
		Status:      kpcs.Optimal,
		Selected:    []int{0, 3, 4},
		TotalWeight: 12,
		TotalValue:  40,
		Elapsed:     1500 * time.Millisecond,
	}))
	s.Add(NewEntry("C1/b.txt_1", NoSolution, kpcs.Result{Status: kpcs.Unknown, Elapsed: 30 * time.Second}))
	s.Add(NewEntry("C1/c.txt_1", ReadError, kpcs.Result{}))
	return s
}

func TestReporter_Instance(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out)

	r.Found(3)
	r.Start("C1/a.txt_1")
	r.Result(&kpcs.Result{Status: kpcs.Optimal, Selected: []int{1, 2}, TotalWeight: 7, TotalValue: 9, Elapsed: 250 * time.Millisecond})
	r.Start("C1/b.txt_1")
	r.Result(&kpcs.Result{Status: kpcs.Infeasible, Elapsed: 2 * time.Second})
	r.Start("C1/c.txt_1")
	r.ReadError("C1/c.txt_1", 0)
	r.Start("C1/d.txt_1")
	r.Result(&kpcs.Result{Status: kpcs.Feasible, Selected: []int{}})

	want := `Found 3 knapsack instance files.

Solving instance: C1/a.txt_1
  Picked items: 1, 2
  Total weight: 7
  Total value: 9
  Time taken: 0.2500 seconds
Solving instance: C1/b.txt_1
  No feasible solution found or solver timed out.
  Time taken: 2.0000 seconds
Solving instance: C1/c.txt_1
  Error processing C1/c.txt_1: unable to read file.
  Time taken before error: 0.0000 seconds
Solving instance: C1/d.txt_1
  Picked items: 
  Total weight: 0
  Total value: 0
  Time taken: 0.0000 seconds
`
	assert.Equal(t, want, out.String())
}

func TestReporter_Summary(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Summary(sampleSummary())

	want := `
--- Summary of all instances ---
C1/a.txt_1: Value=40, Weight=12, Picked=3, Time Taken=1.5000s
C1/b.txt_1: No solution
C1/c.txt_1: Error: unable to read file
`
	assert.Equal(t, want, out.String())
}

func TestSummary_Count(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, 1, s.Count(Solved))
	assert.Equal(t, 1, s.Count(NoSolution))
	assert.Equal(t, 1, s.Count(ReadError))
	assert.Equal(t, 0, new(Summary).Count(Solved))
}

func TestWriteYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteYAML(&out, sampleSummary()))

	var got report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, 3, got.Instances)
	assert.Equal(t, 1, got.Solved)
	assert.Equal(t, 1, got.NoSolution)
	assert.Equal(t, 1, got.ReadErrors)
	require.Len(t, got.Entries, 3)

	assert.Equal(t, reportEntry{
		Path:        "C1/a.txt_1",
		Outcome:     "Value=40, Weight=12, Picked=3, Time Taken=1.5000s",
		Status:      "OPTIMAL",
		Picked:      []int{0, 3, 4},
		TotalWeight: 12,
		TotalValue:  40,
		TimeTaken:   1.5,
	}, got.Entries[0])
	assert.Equal(t, "no_solution", got.Entries[1].Status)
	assert.Equal(t, "read_error", got.Entries[2].Status)
	assert.True(t, strings.HasPrefix(out.String(), "instances: 3\n"))
}
