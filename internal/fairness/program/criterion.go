package program

import "github.com/armadaproject/fairdiv/internal/fairness/division"

// Criterion selects the objective of an allocation program.
// It is one of Egalitarian, Utilitarian, Nash, or Fisher.
type Criterion interface {
	// Name returns a short lower-case name of the criterion.
	Name() string
	isCriterion()
}

// Egalitarian maximises the minimum utility across agents.
type Egalitarian struct{}

// Utilitarian maximises the sum of utilities.
// If Floor is positive, every agent must receive utility at least Floor.
type Utilitarian struct {
	Floor float64
}

// Nash maximises the sum of the logarithms of utilities, i.e., the product of utilities.
type Nash struct{}

// Fisher maximises the budget-weighted sum of the logarithms of utilities.
// Its optimum is the allocation of the competitive equilibrium of a Fisher market with these budgets.
type Fisher struct {
	Budgets division.Budgets
}

func (Egalitarian) Name() string { return "egalitarian" }
func (Utilitarian) Name() string { return "utilitarian" }
func (Nash) Name() string        { return "nash" }
func (Fisher) Name() string      { return "fisher" }

func (Egalitarian) isCriterion() {}
func (Utilitarian) isCriterion() {}
func (Nash) isCriterion()        {}
func (Fisher) isCriterion()      {}
