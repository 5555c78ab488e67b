// Package equilibrium computes competitive equilibria of Fisher markets with linear utilities.
package equilibrium

import (
	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/fairness/allocation"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
)

// Shares at or below this value are treated as zero when deriving prices.
const holdingThreshold = 1e-6

// Result is a Fisher market equilibrium.
// If Status is allocation.StatusNonOptimal, Allocation and Prices are nil.
type Result struct {
	Status     allocation.Status
	Allocation division.Allocation
	Prices     []float64
	Utilities  []float64
}

// IsOptimal returns true if r is non-nil and its allocation and prices can be trusted.
func (r *Result) IsOptimal() bool {
	return r != nil && r.Status == allocation.StatusOptimal
}

// Spending returns the amount each agent pays for its bundle at the equilibrium prices.
// At equilibrium every agent with positive utility spends its whole budget.
func (r *Result) Spending() []float64 {
	if r.Allocation == nil || r.Prices == nil {
		return nil
	}
	_, agents := r.Allocation.Shape()
	rv := make([]float64, agents)
	for j, row := range r.Allocation {
		for i, share := range row {
			rv[i] += r.Prices[j] * share
		}
	}
	return rv
}

// Compute finds the equilibrium allocation by maximising the budget-weighted sum of log utilities
// and then derives the prices supporting it.
func Compute(ctx *fairdivcontext.Context, solver *allocation.Solver, prefs division.Preferences, budgets division.Budgets) (*Result, error) {
	result, err := solver.Fisher(ctx, prefs, budgets)
	if err != nil {
		return nil, err
	}
	if !result.IsOptimal() {
		return &Result{Status: result.Status, Utilities: result.Utilities}, nil
	}
	prices := Prices(prefs, result.Allocation, budgets)
	ctx.Log.Debugf("equilibrium prices are %v", prices)
	return &Result{
		Status:     result.Status,
		Allocation: result.Allocation,
		Prices:     prices,
		Utilities:  result.Utilities,
	}, nil
}

// Prices returns the price of each resource supporting alloc as an equilibrium.
//
// The price of a resource is set by the first agent holding a positive share of it whose utility is positive:
// such an agent spends its budget only on resources maximising value per unit of money,
// so price[r] = budget[i] * prefs[i][r] / utility[i].
// Resources nobody holds or values have price zero.
func Prices(prefs division.Preferences, alloc division.Allocation, budgets division.Budgets) []float64 {
	utilities := division.Utilities(prefs, alloc)
	rv := make([]float64, len(alloc))
	for j, row := range alloc {
		for i, share := range row {
			if share > holdingThreshold && utilities[i] > 0 {
				rv[j] = budgets[i] * prefs[i][j] / utilities[i]
				break
			}
		}
	}
	return rv
}
