package allocation

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/barrier"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/dispatch"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/simplex"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
)

const (
	// Tolerance on the structural invariants of allocations.
	feasibilityTol = 1e-4
	// Tolerance on reported values.
	valueTol = 1e-6
)

func testOracle() optimisation.Oracle {
	return dispatch.MustNew(simplex.MustNew(simplex.DefaultTolerance), barrier.MustNew(barrier.DefaultConfig()))
}

type recordingReporter struct {
	reports []string
}

func (r *recordingReporter) ReportAllocation(criterion string, status string) {
	r.reports = append(r.reports, criterion+"/"+status)
}

type stubOracle struct {
	status optimisation.Status
	err    error
}

func (o *stubOracle) Solve(_ *fairdivcontext.Context, _ *optimisation.Program) (*optimisation.Solution, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &optimisation.Solution{Status: o.status}, nil
}

func assertFeasible(t *testing.T, alloc division.Allocation, resources, agents int) {
	t.Helper()
	r, a := alloc.Shape()
	require.Equal(t, resources, r)
	require.Equal(t, agents, a)
	assert.NoError(t, alloc.Validate(feasibilityTol))
}

func TestEgalitarian(t *testing.T) {
	tests := map[string]struct {
		prefs                division.Preferences
		expectedOptimalValue float64
		// Utilities expected exactly (within valueTol); nil entries are not checked.
		expectedUtilities []*float64
		// Agents expected to receive strictly more than the optimal value.
		expectedAbove []int
	}{
		"lecture example": {
			prefs:                division.Preferences{{80, 19, 1}, {79, 1, 20}},
			expectedOptimalValue: 59.25,
			expectedUtilities:    []*float64{ptr(59.25), ptr(59.25)},
		},
		"fair but not efficient": {
			prefs:                division.Preferences{{100, 0}, {0, 50}},
			expectedOptimalValue: 50,
			expectedUtilities:    []*float64{nil, ptr(50)},
			expectedAbove:        []int{0},
		},
		"all zeros": {
			prefs:                division.Preferences{{0, 0}, {0, 0}},
			expectedOptimalValue: 0,
			expectedUtilities:    []*float64{ptr(0), ptr(0)},
		},
		"symmetric": {
			prefs:                division.Preferences{{100, 20}, {20, 100}},
			expectedOptimalValue: 100,
			expectedUtilities:    []*float64{ptr(100), ptr(100)},
		},
		"three agents one resource each": {
			prefs:                division.Preferences{{0, 0, 3}, {0, 21, 0}, {11, 0, 0}},
			expectedOptimalValue: 3,
			expectedUtilities:    []*float64{ptr(3), nil, nil},
			expectedAbove:        []int{1, 2},
		},
		"three agents": {
			prefs: division.Preferences{{2, 4, 8}, {8, 2, 4}, {2, 3, 2}},
		},
		"four agents two resources": {
			prefs: division.Preferences{{100, 0}, {0, 100}, {50, 50}, {30, 30}},
		},
		"four agents four resources": {
			prefs: division.Preferences{{100, 0, 3, 4}, {0, 100, 1, 2}, {50, 50, 4, 5}, {30, 30, 7, 7}},
		},
		"fractional values": {
			prefs: division.Preferences{{0.7, 0.1}, {0.3, 0.4}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			reporter := &recordingReporter{}
			result, err := MustNewSolver(testOracle(), reporter).Egalitarian(fairdivcontext.Background(), tc.prefs)
			require.NoError(t, err)
			require.Equal(t, StatusOptimal, result.Status)
			assertFeasible(t, result.Allocation, tc.prefs.NumResources(), tc.prefs.NumAgents())
			require.Len(t, result.Utilities, tc.prefs.NumAgents())
			assert.Equal(t, []string{"egalitarian/optimal"}, reporter.reports)

			// The optimal value is the minimum utility.
			minUtility := result.Utilities[0]
			for _, u := range result.Utilities {
				minUtility = math.Min(minUtility, u)
			}
			assert.InDelta(t, result.OptimalValue, minUtility, valueTol*math.Max(1, result.OptimalValue))

			if tc.expectedUtilities == nil {
				return
			}
			assert.InDelta(t, tc.expectedOptimalValue, result.OptimalValue, valueTol)
			for i, expected := range tc.expectedUtilities {
				if expected != nil {
					assert.InDelta(t, *expected, result.Utilities[i], valueTol)
				}
			}
			for _, i := range tc.expectedAbove {
				assert.Greater(t, result.Utilities[i], tc.expectedOptimalValue+1)
			}
		})
	}
}

func TestEgalitarian_AllZerosIsExact(t *testing.T) {
	result, err := MustNewSolver(testOracle(), nil).Egalitarian(fairdivcontext.Background(), division.Preferences{{0, 0}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, 0.0, result.OptimalValue)
	assert.Equal(t, []float64{0, 0}, result.Utilities)
}

func TestUtilitarian(t *testing.T) {
	result, err := MustNewSolver(testOracle(), nil).Utilitarian(fairdivcontext.Background(), division.Preferences{{80, 19, 1}, {79, 1, 20}})
	require.NoError(t, err)
	require.True(t, result.IsOptimal())
	assert.InDeltaSlice(t, []float64{1, 0}, result.Allocation[0], valueTol)
	assert.InDeltaSlice(t, []float64{1, 0}, result.Allocation[1], valueTol)
	assert.InDeltaSlice(t, []float64{0, 1}, result.Allocation[2], valueTol)
	assert.InDeltaSlice(t, []float64{99, 20}, result.Utilities, valueTol)
}

func TestNash(t *testing.T) {
	tests := map[string]struct {
		prefs             division.Preferences
		expectedUtilities []float64
	}{
		"identical preferences": {
			prefs:             division.Preferences{{1, 1}, {1, 1}},
			expectedUtilities: []float64{1, 1},
		},
		"disjoint preferences": {
			prefs:             division.Preferences{{10, 0}, {0, 5}},
			expectedUtilities: []float64{10, 5},
		},
		"one resource": {
			prefs:             division.Preferences{{4}, {1}},
			expectedUtilities: []float64{2, 0.5},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := MustNewSolver(testOracle(), nil).Nash(fairdivcontext.Background(), tc.prefs)
			require.NoError(t, err)
			require.True(t, result.IsOptimal())
			assertFeasible(t, result.Allocation, tc.prefs.NumResources(), tc.prefs.NumAgents())
			assert.InDeltaSlice(t, tc.expectedUtilities, result.Utilities, 1e-5)
		})
	}
}

func TestNashTwoAgent(t *testing.T) {
	tests := map[string]struct {
		t                        float64
		expectedShareOfResource1 float64
		expectedShareOfResource2 *float64
	}{
		"t=0":    {t: 0, expectedShareOfResource1: 1, expectedShareOfResource2: ptr(0)},
		"t=0.25": {t: 0.25, expectedShareOfResource1: 1, expectedShareOfResource2: ptr(0)},
		"t=0.5":  {t: 0.5, expectedShareOfResource1: 1, expectedShareOfResource2: ptr(0)},
		"t=0.6":  {t: 0.6, expectedShareOfResource1: 1 / 1.2, expectedShareOfResource2: ptr(0)},
		"t=0.75": {t: 0.75, expectedShareOfResource1: 2.0 / 3.0, expectedShareOfResource2: ptr(0)},
		// Neither agent values the second resource.
		"t=1": {t: 1, expectedShareOfResource1: 0.5},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := MustNewSolver(testOracle(), nil).NashTwoAgent(fairdivcontext.Background(), tc.t)
			require.NoError(t, err)
			require.Equal(t, StatusOptimal, result.Status)
			assertFeasible(t, result.Allocation, 2, 2)
			assert.InDelta(t, tc.expectedShareOfResource1, result.ShareOfResource1, 1e-4)
			if tc.expectedShareOfResource2 != nil {
				assert.InDelta(t, *tc.expectedShareOfResource2, result.ShareOfResource2, 1e-4)
			}
		})
	}
}

func TestNashTwoAgent_InvalidT(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1} {
		_, err := MustNewSolver(testOracle(), nil).NashTwoAgent(fairdivcontext.Background(), v)
		var e *fairdiverrors.ErrInvalidArgument
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "t", e.Name)
	}
}

func TestFisher_LargerBudgetNeverWorseOff(t *testing.T) {
	prefs := division.Preferences{{3, 3, 3}, {3, 3, 3}, {3, 3, 3}}
	result, err := MustNewSolver(testOracle(), nil).Fisher(fairdivcontext.Background(), prefs, division.Budgets{50, 30, 20})
	require.NoError(t, err)
	require.True(t, result.IsOptimal())
	assertFeasible(t, result.Allocation, 3, 3)
	assert.GreaterOrEqual(t, result.Utilities[0], result.Utilities[1])
	assert.GreaterOrEqual(t, result.Utilities[1], result.Utilities[2])
	assert.InDeltaSlice(t, []float64{4.5, 2.7, 1.8}, result.Utilities, 1e-5)
}

func TestSolver_InvalidInput(t *testing.T) {
	solver := MustNewSolver(testOracle(), nil)
	ctx := fairdivcontext.Background()
	negative := division.Preferences{{-10, 20}, {30, 40}}

	_, err := solver.Egalitarian(ctx, negative)
	var invalid *division.ErrInvalidPreference
	assert.ErrorAs(t, err, &invalid)

	_, err = solver.Fisher(ctx, negative, division.Budgets{1, 1})
	assert.ErrorAs(t, err, &invalid)

	_, err = solver.Fisher(ctx, division.Preferences{{1, 2}, {3, 4}}, division.Budgets{1})
	var mismatch *division.ErrBudgetMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestSolver_NonOptimal(t *testing.T) {
	reporter := &recordingReporter{}
	solver := MustNewSolver(&stubOracle{status: optimisation.StatusNotConverged}, reporter)
	ctx := fairdivcontext.Background()
	prefs := division.Preferences{{1, 2}, {3, 4}}

	egalitarian, err := solver.Egalitarian(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, StatusNonOptimal, egalitarian.Status)
	assert.Nil(t, egalitarian.Allocation)
	assert.Equal(t, []float64{0, 0}, egalitarian.Utilities)

	nash, err := solver.NashTwoAgent(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, StatusNonOptimal, nash.Status)

	fisher, err := solver.Fisher(ctx, prefs, division.Budgets{1, 1})
	require.NoError(t, err)
	assert.False(t, fisher.IsOptimal())

	assert.Equal(t, []string{"egalitarian/non optimal", "nash/non optimal", "fisher/non optimal"}, reporter.reports)
}

// sequenceOracle delegates to oracle, except that the solves numbered in notConverged report StatusNotConverged.
type sequenceOracle struct {
	oracle       optimisation.Oracle
	notConverged map[int]bool
	calls        int
}

func (o *sequenceOracle) Solve(ctx *fairdivcontext.Context, p *optimisation.Program) (*optimisation.Solution, error) {
	o.calls++
	if o.notConverged[o.calls] {
		return &optimisation.Solution{Status: optimisation.StatusNotConverged}, nil
	}
	return o.oracle.Solve(ctx, p)
}

func TestEgalitarian_ReportsOnlyRequestedCriterion(t *testing.T) {
	prefs := division.Preferences{{80, 19, 1}, {79, 1, 20}}
	tests := map[string]struct {
		notConverged    map[int]bool
		expectedStatus  Status
		expectedReports []string
	}{
		"refined": {
			expectedStatus:  StatusOptimal,
			expectedReports: []string{"egalitarian/optimal"},
		},
		"refinement not converged": {
			notConverged:    map[int]bool{2: true},
			expectedStatus:  StatusOptimal,
			expectedReports: []string{"egalitarian/optimal"},
		},
		"max-min not converged": {
			notConverged:    map[int]bool{1: true},
			expectedStatus:  StatusNonOptimal,
			expectedReports: []string{"egalitarian/non optimal"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			reporter := &recordingReporter{}
			oracle := &sequenceOracle{oracle: testOracle(), notConverged: tc.notConverged}
			result, err := MustNewSolver(oracle, reporter).Egalitarian(fairdivcontext.Background(), prefs)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, result.Status)
			assert.Equal(t, tc.expectedReports, reporter.reports)
			if result.IsOptimal() {
				assertFeasible(t, result.Allocation, 3, 2)
				assert.InDelta(t, 59.25, result.OptimalValue, valueTol)
			}
		})
	}
}

func TestSolver_OracleError(t *testing.T) {
	solver := MustNewSolver(&stubOracle{err: errors.New("oracle unavailable")}, nil)
	_, err := solver.Nash(fairdivcontext.Background(), division.Preferences{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solving nash program")
}

func TestNewSolver(t *testing.T) {
	_, err := NewSolver(nil, nil)
	assert.True(t, fairdiverrors.IsInvalidArgument(err))
	assert.Panics(t, func() { MustNewSolver(nil, nil) })
}

func ptr(v float64) *float64 {
	return &v
}
