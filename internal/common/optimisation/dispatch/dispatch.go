// Package dispatch routes programs to the oracle able to solve them.
package dispatch

import (
	"github.com/pkg/errors"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

// Oracle sends programs with linear objectives to one oracle and all others to another.
type Oracle struct {
	linear      optimisation.Oracle
	logarithmic optimisation.Oracle
}

func New(linear, logarithmic optimisation.Oracle) (*Oracle, error) {
	if linear == nil {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: "linear", Value: nil, Message: "oracle is required"})
	}
	if logarithmic == nil {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: "logarithmic", Value: nil, Message: "oracle is required"})
	}
	return &Oracle{linear: linear, logarithmic: logarithmic}, nil
}

func MustNew(linear, logarithmic optimisation.Oracle) *Oracle {
	oracle, err := New(linear, logarithmic)
	if err != nil {
		panic(err)
	}
	return oracle
}

func (o *Oracle) Solve(ctx *fairdivcontext.Context, p *optimisation.Program) (*optimisation.Solution, error) {
	if p.Objective.IsLinear() {
		return o.linear.Solve(ctx, p)
	}
	return o.logarithmic.Solve(ctx, p)
}
