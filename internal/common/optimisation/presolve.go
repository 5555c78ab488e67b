package optimisation

import "math"

const impliedBoundTol = 1e-12

// ImpliedUpperBounds returns, for each variable, whether its upper bound is infinite or implied by the constraints,
// in which case it need not be enforced separately.
//
// An upper bound U on x_j is implied by an equality sum_k a_k x_k == b in which every a_k is positive,
// every x_k has a non-negative lower bound, and b / a_j <= U.
// Each resource row of an allocation program implies its variables are at most 1 in this way.
func ImpliedUpperBounds(p *Program) []bool {
	rv := make([]bool, len(p.Variables))
	for i, v := range p.Variables {
		rv[i] = math.IsInf(v.Upper, 1)
	}
	for _, c := range p.Constraints {
		if c.Relation != Equal {
			continue
		}
		expr := c.Expr.Normalised()
		rhs := c.Rhs - expr.Constant
		if len(expr.Terms) == 0 || rhs < 0 {
			continue
		}
		eligible := true
		for _, t := range expr.Terms {
			if t.Coeff <= 0 || p.Variables[t.Var].Lower < 0 {
				eligible = false
				break
			}
		}
		if !eligible {
			continue
		}
		for _, t := range expr.Terms {
			if rhs/t.Coeff <= p.Variables[t.Var].Upper+impliedBoundTol {
				rv[t.Var] = true
			}
		}
	}
	return rv
}
