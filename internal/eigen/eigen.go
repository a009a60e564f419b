// Package eigen computes the dominant eigenpairs of a square matrix.
//
// Both solvers return pairs ordered by descending eigenvalue magnitude.
// Equal magnitudes are ordered by larger real part, then by the position
// the underlying factorization reported them in. Eigenvalues may be complex;
// only the real part of each unit-norm eigenvector is kept.
package eigen

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/gonum/matrix/mat64"
	"github.com/sirupsen/logrus"
)

// Pair is an eigenvalue and the real part of its eigenvector
type Pair struct {
	Value  complex128
	Vector []float64
}

// Decomposer returns the k eigenpairs of a with largest magnitude
type Decomposer interface {
	Decompose(a mat64.Matrix, k int) ([]Pair, error)
}

// DecompositionError is returned when the requested eigenpairs cannot be computed
type DecompositionError struct {
	K      int
	Rows   int
	Cols   int
	Reason string
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("eigen-decomposition of %dx%d matrix for k=%d: %s", e.Rows, e.Cols, e.K, e.Reason)
}

// FromConfig returns the solver selected by cfg
func FromConfig(cfg config.Config, log logrus.FieldLogger) Decomposer {
	if cfg.Solver == config.SolverDense {
		return Dense{}
	}
	return Subspace{MaxIter: cfg.MaxIter, Tol: cfg.Tol, Seed: cfg.Seed, Log: log}
}

// checkRequest validates a and k and returns the side length of a
func checkRequest(a mat64.Matrix, k int) (int, error) {
	r, c := a.Dims()
	fail := func(reason string) (int, error) {
		return 0, &DecompositionError{K: k, Rows: r, Cols: c, Reason: reason}
	}

	if r != c {
		return fail("matrix is not square")
	}
	if k < 1 {
		return fail("k must be positive")
	}
	// Iterative solvers cannot return every pair of an n x n matrix.
	if k > r-1 {
		return fail(fmt.Sprintf("k must be at most %d", r-1))
	}
	// LAPACK balancing never terminates on NaN or Inf input.
	if !finite(a) {
		return fail("matrix has non-finite entries")
	}
	return r, nil
}

func finite(a mat64.Matrix) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// candidate is one eigenpair of a factorization, before selection
type candidate struct {
	index int
	value complex128
	re    []float64
	im    []float64 // nil for a real eigenvalue
}

// candidates unpacks the eigenvalues and right eigenvectors of mat64.Eigen.
// A complex conjugate pair occupies two adjacent columns holding the real
// and imaginary parts of the first eigenvector; the second is its conjugate.
func candidates(values []complex128, vecs *mat64.Dense) []candidate {
	cs := make([]candidate, 0, len(values))
	for j := 0; j < len(values); j++ {
		re := mat64.Col(nil, j, vecs)
		if imag(values[j]) == 0 || j+1 == len(values) {
			cs = append(cs, candidate{index: j, value: values[j], re: re})
			continue
		}

		im := mat64.Col(nil, j+1, vecs)
		conj := make([]float64, len(im))
		for i, v := range im {
			conj[i] = -v
		}
		cs = append(cs,
			candidate{index: j, value: values[j], re: re, im: im},
			candidate{index: j + 1, value: values[j+1], re: append([]float64(nil), re...), im: conj},
		)
		j++
	}
	return cs
}

func sortCandidates(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		mi, mj := cmplx.Abs(cs[i].value), cmplx.Abs(cs[j].value)
		if mi != mj {
			return mi > mj
		}
		if ri, rj := real(cs[i].value), real(cs[j].value); ri != rj {
			return ri > rj
		}
		return cs[i].index < cs[j].index
	})
}
