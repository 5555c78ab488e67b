// Package division holds the data model shared by all allocation criteria:
// preferences of agents over divisible resources, budgets, and allocations.
//
// Preferences are indexed [agent][resource] and allocations [resource][agent].
// Utilities are always derived from the two and never stored.
package division

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	fairdivslices "github.com/armadaproject/fairdiv/internal/common/slices"
)

// Preferences holds the value each agent assigns to one full unit of each resource.
type Preferences [][]float64

// NumAgents returns the number of agents.
func (p Preferences) NumAgents() int {
	return len(p)
}

// NumResources returns the number of resources.
func (p Preferences) NumResources() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// IsZero returns true if no agent values any resource.
func (p Preferences) IsZero() bool {
	for _, row := range p {
		for _, v := range row {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Budgets holds the purchasing power of each agent in a Fisher market.
type Budgets []float64

// EqualBudgets returns budgets of 1 for n agents.
func EqualBudgets(n int) Budgets {
	return fairdivslices.Ones[float64](n)
}

// Allocation holds the share of each resource given to each agent.
type Allocation [][]float64

// NewAllocation returns an all-zero allocation of the given shape.
func NewAllocation(resources, agents int) Allocation {
	rv := make(Allocation, resources)
	for j := range rv {
		rv[j] = make([]float64, agents)
	}
	return rv
}

// Shape returns the number of resources and agents.
func (a Allocation) Shape() (resources, agents int) {
	if len(a) == 0 {
		return 0, 0
	}
	return len(a), len(a[0])
}

// Share returns the share of resource given to agent.
func (a Allocation) Share(resource, agent int) float64 {
	return a[resource][agent]
}

// Bundle returns the shares of every resource given to agent.
func (a Allocation) Bundle(agent int) []float64 {
	return fairdivslices.Column(a, agent)
}

// Validate returns an error if some share is outside [0, 1] or some resource is not fully allocated,
// allowing for an absolute error of tol.
func (a Allocation) Validate(tol float64) error {
	for j, row := range a {
		sum := 0.0
		for i, share := range row {
			if math.IsNaN(share) || share < -tol || share > 1+tol {
				return errors.WithStack(&ErrInfeasibleAllocation{
					Resource: j,
					Agent:    i,
					Message:  fmt.Sprintf("share %v outside [0, 1]", share),
				})
			}
			sum += share
		}
		if math.Abs(sum-1) > tol {
			return errors.WithStack(&ErrInfeasibleAllocation{
				Resource: j,
				Agent:    -1,
				Message:  fmt.Sprintf("shares sum to %v instead of 1", sum),
			})
		}
	}
	return nil
}

// Utilities returns the utility of each agent, sum_j alloc[j][i] * prefs[i][j].
func Utilities(prefs Preferences, alloc Allocation) []float64 {
	rv := make([]float64, prefs.NumAgents())
	for i, row := range prefs {
		for j, v := range row {
			if j < len(alloc) && i < len(alloc[j]) {
				rv[i] += alloc[j][i] * v
			}
		}
	}
	return rv
}

// ValidatePreferences returns an error if prefs is empty, ragged, or contains negative entries.
// Every negative entry is reported; use errors.As to retrieve an *ErrInvalidPreference.
func ValidatePreferences(prefs Preferences) error {
	if prefs.NumAgents() == 0 {
		return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "preferences",
			Value:   "[]",
			Message: "at least one agent is required",
		})
	}
	if prefs.NumResources() == 0 {
		return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "preferences",
			Value:   "[[]]",
			Message: "at least one resource is required",
		})
	}
	var result *multierror.Error
	for i, row := range prefs {
		if len(row) != prefs.NumResources() {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("preferences[%d]", i),
				Value:   len(row),
				Message: fmt.Sprintf("expected %d resources", prefs.NumResources()),
			})
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				result = multierror.Append(result, &ErrInvalidPreference{Agent: i, Resource: j, Value: v})
			}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// ValidateBudgets returns an error if the number of budgets differs from the number of agents
// or if some budget is negative or not finite.
func ValidateBudgets(prefs Preferences, budgets Budgets) error {
	if len(budgets) != prefs.NumAgents() {
		return errors.WithStack(&ErrBudgetMismatch{Budgets: len(budgets), Agents: prefs.NumAgents()})
	}
	for i, b := range budgets {
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("budgets[%d]", i),
				Value:   b,
				Message: "budgets must be finite and non-negative",
			})
		}
	}
	return nil
}
