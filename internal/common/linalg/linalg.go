package linalg

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultRcond is the relative threshold below which singular values are treated as zero.
const DefaultRcond = 1e-12

// NullSpace returns an n x k matrix whose columns form an orthonormal basis for the null space of the m x n matrix a,
// where k = n - rank(a). Singular values smaller than rcond times the largest are treated as zero.
// If the null space is trivial, the returned matrix is nil.
func NullSpace(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	_, n := a.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFullV); !ok {
		return nil, errors.New("singular value decomposition failed")
	}
	rank := rankOf(svd.Values(nil), rcond)
	if rank == n {
		return nil, nil
	}
	var v mat.Dense
	svd.VTo(&v)
	return mat.DenseCopyOf(v.Slice(0, n, rank, n)), nil
}

// Rank returns the numerical rank of a, treating singular values smaller than rcond times the largest as zero.
func Rank(a mat.Matrix, rcond float64) (int, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDNone); !ok {
		return 0, errors.New("singular value decomposition failed")
	}
	return rankOf(svd.Values(nil), rcond), nil
}

// PseudoSolve returns the minimum-norm least-squares solution x of a x = b.
func PseudoSolve(a mat.Matrix, b []float64, rcond float64) ([]float64, error) {
	m, n := a.Dims()
	if len(b) != m {
		return nil, errors.Errorf("right-hand side has length %d; expected %d", len(b), m)
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, errors.New("singular value decomposition failed")
	}
	values := svd.Values(nil)
	rank := rankOf(values, rcond)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// x = V_r diag(1/s_r) U_r^T b
	x := mat.NewVecDense(n, nil)
	if rank == 0 {
		return x.RawVector().Data, nil
	}
	utb := mat.NewVecDense(rank, nil)
	utb.MulVec(u.Slice(0, m, 0, rank).T(), mat.NewVecDense(m, b))
	for i := 0; i < rank; i++ {
		utb.SetVec(i, utb.AtVec(i)/values[i])
	}
	x.MulVec(v.Slice(0, n, 0, rank), utb)
	return x.RawVector().Data, nil
}

func rankOf(values []float64, rcond float64) int {
	if len(values) == 0 || values[0] <= 0 {
		return 0
	}
	threshold := rcond * values[0]
	rank := 0
	for _, s := range values {
		if s > threshold {
			rank++
		}
	}
	return rank
}
