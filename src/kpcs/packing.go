package kpcs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// packing is the knapsack-with-conflicts shape of a Model: one row with
// non-negative weights, pairwise "at most one" rows and variables fixed to 0.
type packing struct {
	n        int
	values   *mat.VecDense
	weights  *mat.VecDense
	capacity float64
	edges    [][2]int
	adj      [][]int
	fixed    []bool
}

func isPairRow(c *Constraint) bool {
	return c.Sense == LessEq && c.RHS == 1 && len(c.Terms) == 2 &&
		c.Terms[0].Coeff == 1 && c.Terms[1].Coeff == 1 &&
		c.Terms[0].Var != c.Terms[1].Var
}

func newPacking(model *Model) (*packing, error) {
	n := model.NumVars
	pk := &packing{
		n:       n,
		values:  mat.NewVecDense(max(n, 1), nil),
		weights: mat.NewVecDense(max(n, 1), nil),
		adj:     make([][]int, n),
		fixed:   make([]bool, n),
	}
	for _, t := range model.Objective {
		pk.values.SetVec(t.Var, pk.values.AtVec(t.Var)+float64(t.Coeff))
	}

	hasCapacity := false
	for i := range model.Constraints {
		c := &model.Constraints[i]
		switch {
		case c.Sense == Equal:
			if len(c.Terms) != 1 || c.Terms[0].Coeff == 0 || c.RHS != 0 {
				return nil, fmt.Errorf("%w: row %q is not a fixing to zero", ErrUnsupportedModel, c.Name)
			}
			pk.fixed[c.Terms[0].Var] = true
		case isPairRow(c):
			a, b := c.Terms[0].Var, c.Terms[1].Var
			pk.edges = append(pk.edges, [2]int{a, b})
			pk.adj[a] = append(pk.adj[a], b)
			pk.adj[b] = append(pk.adj[b], a)
		default:
			if hasCapacity {
				return nil, fmt.Errorf("%w: more than one knapsack row (%q)", ErrUnsupportedModel, c.Name)
			}
			for _, t := range c.Terms {
				if t.Coeff < 0 {
					return nil, fmt.Errorf("%w: negative coefficient in row %q", ErrUnsupportedModel, c.Name)
				}
				pk.weights.SetVec(t.Var, pk.weights.AtVec(t.Var)+float64(t.Coeff))
			}
			pk.capacity = float64(c.RHS)
			hasCapacity = true
		}
	}

	// Every row is a packing row, so a variable with no positive value is 0 in
	// some optimal solution.
	for i := range n {
		if pk.values.AtVec(i) <= 0 {
			pk.fixed[i] = true
		}
	}
	return pk, nil
}

func (pk *packing) ratio(i int, value float64) float64 {
	w := pk.weights.AtVec(i)
	if w == 0 {
		if value > 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return value / w
}

func (pk *packing) conflictsWith(selected []bool, i int) bool {
	for _, j := range pk.adj[i] {
		if selected[j] {
			return true
		}
	}
	return false
}

func (pk *packing) evaluate(selected []bool) float64 {
	v := 0.0
	for i, ok := range selected {
		if ok {
			v += pk.values.AtVec(i)
		}
	}
	return v
}
