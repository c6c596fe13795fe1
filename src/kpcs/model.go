package kpcs

import (
	"fmt"
	"math"
	"strings"
)

type Sense int

const (
	LessEq Sense = iota
	Equal
)

func (s Sense) String() string {
	if s == Equal {
		return "="
	}
	return "<="
}

type Term struct {
	Var   int
	Coeff int
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   int
}

// Model is a 0/1 linear program: boolean variables, linear rows and a linear
// objective that is always maximised.
type Model struct {
	NumVars     int
	Constraints []Constraint
	Objective   []Term
}

const CapacityRow = "capacity"

// BuildModel encodes inst exactly. Conflicts referencing an index outside
// the item range are dropped; repeated pairs are encoded once.
func BuildModel(inst *Instance) *Model {
	n := len(inst.Items)
	m := &Model{NumVars: n}

	capacity := Constraint{Name: CapacityRow, Sense: LessEq, RHS: inst.Capacity}
	for i, item := range inst.Items {
		if item.Weight != 0 {
			capacity.Terms = append(capacity.Terms, Term{Var: i, Coeff: item.Weight})
		}
		if item.Value != 0 {
			m.Objective = append(m.Objective, Term{Var: i, Coeff: item.Value})
		}
	}
	m.Constraints = append(m.Constraints, capacity)

	seen := make(map[[2]int]bool)
	for _, pair := range inst.Conflicts {
		i, j := pair[0], pair[1]
		if i < 0 || j < 0 || i >= n || j >= n {
			continue
		}
		if i > j {
			i, j = j, i
		}
		if seen[[2]int{i, j}] {
			continue
		}
		seen[[2]int{i, j}] = true

		if i == j {
			m.Constraints = append(m.Constraints, Constraint{
				Name:  fmt.Sprintf("exclude_%d", i),
				Terms: []Term{{Var: i, Coeff: 1}},
				Sense: Equal,
				RHS:   0,
			})
		} else {
			m.Constraints = append(m.Constraints, Constraint{
				Name:  fmt.Sprintf("conflict_%d_%d", i, j),
				Terms: []Term{{Var: i, Coeff: 1}, {Var: j, Coeff: 1}},
				Sense: LessEq,
				RHS:   1,
			})
		}
	}
	return m
}

func (c *Constraint) Activity(values []bool) int {
	sum := 0
	for _, t := range c.Terms {
		if t.Var < len(values) && values[t.Var] {
			sum += t.Coeff
		}
	}
	return sum
}

func (c *Constraint) Holds(values []bool) bool {
	if c.Sense == Equal {
		return c.Activity(values) == c.RHS
	}
	return c.Activity(values) <= c.RHS
}

// Bounds returns the row bounds in the lower <= activity <= upper form used by
// LP backends.
func (c *Constraint) Bounds() (lower, upper float64) {
	if c.Sense == Equal {
		return float64(c.RHS), float64(c.RHS)
	}
	return math.Inf(-1), float64(c.RHS)
}

// Dense returns the row coefficients as a slice of length numVars.
func (c *Constraint) Dense(numVars int) []float64 {
	row := make([]float64, numVars)
	for _, t := range c.Terms {
		row[t.Var] += float64(t.Coeff)
	}
	return row
}

func (m *Model) ObjectiveDense() []float64 {
	row := make([]float64, m.NumVars)
	for _, t := range m.Objective {
		row[t.Var] += float64(t.Coeff)
	}
	return row
}

func (m *Model) Evaluate(values []bool) int {
	sum := 0
	for _, t := range m.Objective {
		if t.Var < len(values) && values[t.Var] {
			sum += t.Coeff
		}
	}
	return sum
}

// Satisfies returns an error naming the first row violated by values.
func (m *Model) Satisfies(values []bool) error {
	if len(values) != m.NumVars {
		return fmt.Errorf("assignment has %d values, model has %d variables", len(values), m.NumVars)
	}
	for i := range m.Constraints {
		c := &m.Constraints[i]
		if !c.Holds(values) {
			return fmt.Errorf("row %q violated: activity %d %v %d", c.Name, c.Activity(values), c.Sense, c.RHS)
		}
	}
	return nil
}

func (m *Model) String() string {
	s := new(strings.Builder)
	fmt.Fprintf(s, "N. vars: %d\n", m.NumVars)
	s.WriteString("max:")
	for _, t := range m.Objective {
		fmt.Fprintf(s, " %+d x%d", t.Coeff, t.Var)
	}
	s.WriteRune('\n')
	for _, c := range m.Constraints {
		fmt.Fprintf(s, "%s:", c.Name)
		for _, t := range c.Terms {
			fmt.Fprintf(s, " %+d x%d", t.Coeff, t.Var)
		}
		fmt.Fprintf(s, " %v %d\n", c.Sense, c.RHS)
	}
	return s.String()
}
