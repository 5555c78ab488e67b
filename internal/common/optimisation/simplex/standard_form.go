package simplex

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/fairdiv/internal/common/linalg"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

type variableKind int

const (
	// x = offset + y[col]
	shifted variableKind = iota
	// x = offset - y[col]
	reflected
	// x = y[col] - y[neg]
	split
	// x = offset
	fixed
)

type variableMapping struct {
	kind   variableKind
	col    int
	neg    int
	offset float64
}

// standardForm is the program
//
//	minimise c^T y  s.t.  A y = b, y >= 0
//
// together with the mapping from y back to the variables of the original program.
type standardForm struct {
	c        []float64
	rows     []map[int]float64
	b        []float64
	n        int
	mappings []variableMapping
}

func (sf *standardForm) addColumn() int {
	sf.n++
	sf.c = append(sf.c, 0)
	return sf.n - 1
}

func (sf *standardForm) addRow(row map[int]float64, rhs float64) {
	sf.rows = append(sf.rows, row)
	sf.b = append(sf.b, rhs)
}

// newStandardForm converts a program with a linear objective into standard form.
// Variables are shifted by finite lower bounds, reflected if only the upper bound is finite, and split otherwise.
// Inequality rows get a slack column and upper bounds not implied by the equality rows get a row of their own.
func newStandardForm(p *optimisation.Program) *standardForm {
	sf := &standardForm{mappings: make([]variableMapping, len(p.Variables))}
	implied := optimisation.ImpliedUpperBounds(p)
	type boundRow struct {
		col   int
		bound float64
	}
	var boundRows []boundRow
	for i, v := range p.Variables {
		lowerFinite := !math.IsInf(v.Lower, -1)
		upperFinite := !math.IsInf(v.Upper, 1)
		switch {
		case lowerFinite && upperFinite && v.Lower == v.Upper:
			sf.mappings[i] = variableMapping{kind: fixed, offset: v.Lower}
		case lowerFinite:
			sf.mappings[i] = variableMapping{kind: shifted, col: sf.addColumn(), offset: v.Lower}
			if upperFinite && !implied[i] {
				boundRows = append(boundRows, boundRow{col: sf.mappings[i].col, bound: v.Upper - v.Lower})
			}
		case upperFinite:
			sf.mappings[i] = variableMapping{kind: reflected, col: sf.addColumn(), offset: v.Upper}
		default:
			sf.mappings[i] = variableMapping{kind: split, col: sf.addColumn(), neg: sf.addColumn()}
		}
	}

	for _, c := range p.Constraints {
		row, rhs := sf.substitute(c.Expr)
		rhs = c.Rhs - rhs
		switch c.Relation {
		case optimisation.LessOrEqual:
			row[sf.addColumn()] = 1
		case optimisation.GreaterOrEqual:
			row[sf.addColumn()] = -1
		}
		sf.addRow(row, rhs)
	}
	for _, br := range boundRows {
		sf.addRow(map[int]float64{br.col: 1, sf.addColumn(): 1}, br.bound)
	}

	for _, t := range p.Objective.Terms {
		if t.Weight == 0 {
			continue
		}
		row, _ := sf.substitute(t.Expr)
		for col, coeff := range row {
			// Maximise by minimising the negation.
			sf.c[col] -= t.Weight * coeff
		}
	}
	return sf
}

// substitute expresses e in terms of the standard form columns,
// returning the column coefficients and the constant part.
func (sf *standardForm) substitute(e optimisation.LinearExpr) (map[int]float64, float64) {
	e = e.Normalised()
	row := make(map[int]float64, len(e.Terms))
	constant := e.Constant
	for _, t := range e.Terms {
		m := sf.mappings[t.Var]
		switch m.kind {
		case shifted:
			row[m.col] += t.Coeff
			constant += t.Coeff * m.offset
		case reflected:
			row[m.col] -= t.Coeff
			constant += t.Coeff * m.offset
		case split:
			row[m.col] += t.Coeff
			row[m.neg] -= t.Coeff
		case fixed:
			constant += t.Coeff * m.offset
		}
	}
	return row, constant
}

// variables maps a standard form solution y back to the variables of the original program.
func (sf *standardForm) variables(y []float64) []float64 {
	x := make([]float64, len(sf.mappings))
	for i, m := range sf.mappings {
		switch m.kind {
		case shifted:
			x[i] = m.offset + y[m.col]
		case reflected:
			x[i] = m.offset - y[m.col]
		case split:
			x[i] = y[m.col] - y[m.neg]
		case fixed:
			x[i] = m.offset
		}
	}
	return x
}

// reduced is a standard form program with empty rows, empty columns, and linearly dependent rows removed,
// as required by lp.Simplex.
type reduced struct {
	c    []float64
	a    *mat.Dense
	b    []float64
	cols []int
	// Rows dropped as linearly dependent; these must be checked once a solution is found.
	dependent []int
}

type reduction int

const (
	reductionOk reduction = iota
	reductionInfeasible
	reductionUnbounded
)

func (sf *standardForm) reduce(tol float64) (*reduced, reduction, error) {
	usedCols := make([]bool, sf.n)
	var rows []int
	for i, row := range sf.rows {
		empty := true
		for col, coeff := range row {
			if coeff != 0 {
				usedCols[col] = true
				empty = false
			}
		}
		if empty {
			if math.Abs(sf.b[i]) > tol {
				return nil, reductionInfeasible, nil
			}
			continue
		}
		rows = append(rows, i)
	}

	// An unconstrained column sits at zero unless decreasing the objective along it is free.
	var cols []int
	for col := 0; col < sf.n; col++ {
		if usedCols[col] {
			cols = append(cols, col)
		} else if sf.c[col] < 0 {
			return nil, reductionUnbounded, nil
		}
	}

	rv := &reduced{cols: cols, c: make([]float64, len(cols))}
	for k, col := range cols {
		rv.c[k] = sf.c[col]
	}
	if len(rows) == 0 {
		return rv, reductionOk, nil
	}

	dense := func(rows []int) *mat.Dense {
		a := mat.NewDense(len(rows), len(cols), nil)
		for r, i := range rows {
			for k, col := range cols {
				a.Set(r, k, sf.rows[i][col])
			}
		}
		return a
	}
	rank, err := linalg.Rank(dense(rows), linalg.DefaultRcond)
	if err != nil {
		return nil, reductionOk, err
	}
	if rank < len(rows) {
		var independent []int
		for _, i := range rows {
			candidate := append(append([]int{}, independent...), i)
			r, err := linalg.Rank(dense(candidate), linalg.DefaultRcond)
			if err != nil {
				return nil, reductionOk, err
			}
			if r == len(candidate) {
				independent = candidate
			} else {
				rv.dependent = append(rv.dependent, i)
			}
		}
		rows = independent
	}

	rv.a = dense(rows)
	rv.b = make([]float64, len(rows))
	for r, i := range rows {
		rv.b[r] = sf.b[i]
	}
	return rv, reductionOk, nil
}

// expand maps a solution of the reduced program back to a standard form solution.
func (r *reduced) expand(n int, y []float64) []float64 {
	rv := make([]float64, n)
	for k, col := range r.cols {
		rv[col] = y[k]
	}
	return rv
}

// violation returns the largest residual of a standard form row at y.
func (sf *standardForm) violation(rows []int, y []float64) float64 {
	rv := 0.0
	for _, i := range rows {
		lhs := 0.0
		for col, coeff := range sf.rows[i] {
			lhs += coeff * y[col]
		}
		rv = math.Max(rv, math.Abs(lhs-sf.b[i]))
	}
	return rv
}
