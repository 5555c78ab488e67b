package division

import "fmt"

// ErrInvalidPreference is returned when a preference matrix contains a negative or non-finite entry.
type ErrInvalidPreference struct {
	Agent    int
	Resource int
	Value    float64
}

func (err *ErrInvalidPreference) Error() string {
	reason := "preference matrix cannot contain negative values"
	if !(err.Value < 0) {
		reason = "preference matrix must contain finite values"
	}
	return fmt.Sprintf("%s; agent %d has value %v for resource %d", reason, err.Agent, err.Value, err.Resource)
}

// ErrBudgetMismatch is returned when the number of budgets differs from the number of agents.
type ErrBudgetMismatch struct {
	Budgets int
	Agents  int
}

func (err *ErrBudgetMismatch) Error() string {
	return fmt.Sprintf("number of agents must match the number of budgets; got %d agents and %d budgets", err.Agents, err.Budgets)
}

// ErrInfeasibleAllocation is returned when an allocation does not distribute every resource exactly once.
type ErrInfeasibleAllocation struct {
	Resource int
	Agent    int
	Message  string
}

func (err *ErrInfeasibleAllocation) Error() string {
	if err.Agent < 0 {
		return fmt.Sprintf("resource %d is not validly allocated; %s", err.Resource, err.Message)
	}
	return fmt.Sprintf("share of resource %d given to agent %d is invalid; %s", err.Resource, err.Agent, err.Message)
}
