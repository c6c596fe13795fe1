package pbsolve

import (
	"fmt"
	"strings"

	"kp_with_conflicts/src/kpcs"
)

// opb is the OPB rendering of a model. Maximising sum(c x) is written as
// minimising the value left out: sum(c ~x) for c > 0 and sum(-c x) for c < 0.
type opb struct {
	text       string
	infeasible string
}

func writeTerm(s *strings.Builder, coeff, v int, negated bool) {
	if negated {
		fmt.Fprintf(s, "%d ~x%d ", coeff, v+1)
	} else {
		fmt.Fprintf(s, "%d x%d ", coeff, v+1)
	}
}

// slack reports whether a <= row holds for every assignment, so that its
// OPB form would have a degree of zero or less.
func slack(c *kpcs.Constraint) bool {
	if c.Sense != kpcs.LessEq {
		return false
	}
	positive := 0
	for _, t := range c.Terms {
		if t.Coeff > 0 {
			positive += t.Coeff
		}
	}
	return positive <= c.RHS
}

func toOPB(model *kpcs.Model) *opb {
	out := new(opb)

	terms := 0
	obj := new(strings.Builder)
	obj.WriteString("min: ")
	for _, t := range model.Objective {
		switch {
		case t.Coeff > 0:
			writeTerm(obj, t.Coeff, t.Var, true)
			terms++
		case t.Coeff < 0:
			writeTerm(obj, -t.Coeff, t.Var, false)
			terms++
		}
	}

	rows := new(strings.Builder)
	numRows := 0
	for i := range model.Constraints {
		c := &model.Constraints[i]
		if slack(c) {
			continue
		}
		sign := 1
		op := "="
		if c.Sense == kpcs.LessEq {
			sign = -1
			op = ">="
		}
		written := 0
		for _, t := range c.Terms {
			if t.Coeff != 0 {
				writeTerm(rows, sign*t.Coeff, t.Var, false)
				written++
			}
		}
		if written == 0 {
			if !c.Holds(nil) {
				out.infeasible = c.Name
				return out
			}
			continue
		}
		fmt.Fprintf(rows, "%s %d;\n", op, sign*c.RHS)
		numRows++
	}

	s := new(strings.Builder)
	fmt.Fprintf(s, "* #variable= %d #constraint= %d\n", model.NumVars, numRows)
	if terms > 0 {
		s.WriteString(obj.String())
		s.WriteString(";\n")
	}
	s.WriteString(rows.String())
	out.text = s.String()
	return out
}
