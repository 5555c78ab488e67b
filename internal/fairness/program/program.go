// Package program formulates allocation criteria as convex programs.
//
// All criteria share the same feasible region: one variable per (resource, agent) pair in [0, 1],
// and every resource fully allocated. They differ only in their objective.
package program

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
)

// Model is a program for some criterion together with the information needed to interpret its solution.
type Model struct {
	Criterion Criterion
	Program   *optimisation.Program
	// Shares[j][i] is the index of the variable holding the share of resource j given to agent i.
	Shares [][]int
	// Utilities[i] is the utility of agent i as an expression in the program's variables.
	Utilities []optimisation.LinearExpr
	// Index of the minimum utility variable of egalitarian programs; -1 otherwise.
	MinUtility int
}

// Build validates prefs and returns the program for criterion.
func Build(prefs division.Preferences, criterion Criterion) (*Model, error) {
	if err := division.ValidatePreferences(prefs); err != nil {
		return nil, err
	}
	if fisher, ok := criterion.(Fisher); ok {
		if err := division.ValidateBudgets(prefs, fisher.Budgets); err != nil {
			return nil, err
		}
	}
	if u, ok := criterion.(Utilitarian); ok && (math.IsNaN(u.Floor) || math.IsInf(u.Floor, 0)) {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "floor",
			Value:   u.Floor,
			Message: "must be finite",
		})
	}

	agents, resources := prefs.NumAgents(), prefs.NumResources()
	m := &Model{
		Criterion:  criterion,
		Program:    &optimisation.Program{},
		Shares:     make([][]int, resources),
		Utilities:  make([]optimisation.LinearExpr, agents),
		MinUtility: -1,
	}
	p := m.Program

	for j := 0; j < resources; j++ {
		m.Shares[j] = make([]int, agents)
		var row optimisation.LinearExpr
		for i := 0; i < agents; i++ {
			v := p.AddVariable(fmt.Sprintf("x[%d][%d]", j, i), 0, 1)
			m.Shares[j][i] = v
			row.Add(v, 1)
			if prefs[i][j] != 0 {
				m.Utilities[i].Add(v, prefs[i][j])
			}
		}
		p.AddConstraint(fmt.Sprintf("resource %d", j), row, optimisation.Equal, 1)
	}

	// The uniform split is strictly inside every resource simplex.
	p.Start = make([]float64, len(p.Variables))
	for i := range p.Start {
		p.Start[i] = 1 / float64(agents)
	}

	switch c := criterion.(type) {
	case Egalitarian:
		z := p.AddVariable("z", math.Inf(-1), math.Inf(1))
		m.MinUtility = z
		for i, u := range m.Utilities {
			row := optimisation.LinearExpr{Terms: append(append([]optimisation.Term{}, u.Terms...), optimisation.Term{Var: z, Coeff: -1})}
			p.AddConstraint(fmt.Sprintf("agent %d above minimum", i), row, optimisation.GreaterOrEqual, 0)
		}
		p.AddObjectiveTerm(1, optimisation.LinearExpr{Terms: []optimisation.Term{{Var: z, Coeff: 1}}}, false)
		p.Start = append(p.Start, minUtility(m.Utilities, p.Start)-1)
	case Utilitarian:
		for i, u := range m.Utilities {
			if c.Floor > 0 {
				p.AddConstraint(fmt.Sprintf("agent %d above floor", i), u, optimisation.GreaterOrEqual, c.Floor)
			}
			p.AddObjectiveTerm(1, u, false)
		}
	case Nash:
		for _, u := range m.Utilities {
			p.AddObjectiveTerm(1, u, true)
		}
	case Fisher:
		for i, u := range m.Utilities {
			p.AddObjectiveTerm(c.Budgets[i], u, true)
		}
	default:
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "criterion",
			Value:   fmt.Sprintf("%T", criterion),
			Message: "unknown criterion",
		})
	}
	return m, nil
}

// Allocation returns the allocation held by solution, with shares clipped to [0, 1].
func (m *Model) Allocation(solution *optimisation.Solution) division.Allocation {
	rv := division.NewAllocation(len(m.Shares), len(m.Utilities))
	for j, row := range m.Shares {
		for i, v := range row {
			rv[j][i] = math.Max(0, math.Min(1, solution.Value(v)))
		}
	}
	return rv
}

func minUtility(utilities []optimisation.LinearExpr, x []float64) float64 {
	rv := math.Inf(1)
	for _, u := range utilities {
		rv = math.Min(rv, u.Eval(x))
	}
	return rv
}
