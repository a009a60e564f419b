package eigen

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	"github.com/sirupsen/logrus"
)

// Subspace finds the dominant eigenpairs by subspace iteration with
// Rayleigh-Ritz projection. A block of p > k orthonormal vectors is
// repeatedly multiplied by the matrix and re-orthonormalized; the small
// p x p projection is factorized densely every step. Iteration stops once
// every one of the k leading Ritz pairs satisfies
// |A x - lambda x| <= Tol * |lambda_1|, or fails after MaxIter steps.
type Subspace struct {
	MaxIter int
	Tol     float64
	Seed    int64
	Log     logrus.FieldLogger
}

// blockSize oversamples k so the k-th Ritz value converges at rate
// |lambda_(p+1) / lambda_k|
func blockSize(k, n int) int {
	extra := k
	if extra < 10 {
		extra = 10
	}
	if k+extra > n {
		return n
	}
	return k + extra
}

func (s Subspace) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Decompose implements Decomposer
func (s Subspace) Decompose(a mat64.Matrix, k int) ([]Pair, error) {
	n, err := checkRequest(a, k)
	if err != nil {
		return nil, err
	}

	log := s.logger().WithFields(logrus.Fields{"n": n, "k": k})

	p := blockSize(k, n)
	if p == n {
		// the block would span the whole space
		log.Debug("block covers the full matrix, using dense factorization")
		return Dense{}.Decompose(a, k)
	}

	rnd := rand.New(rand.NewSource(s.Seed))
	q := make([][]float64, p)
	for j := range q {
		q[j] = randomVector(rnd, n)
	}
	orthonormalize(q, rnd)

	block := mat64.NewDense(n, p, nil)
	image := mat64.NewDense(n, p, nil)
	aq := make([][]float64, p)
	h := mat64.NewDense(p, p, nil)

	for it := 1; it <= s.MaxIter; it++ {
		for j := range q {
			block.SetCol(j, q[j])
		}
		image.Mul(a, block)
		for j := range aq {
			aq[j] = mat64.Col(aq[j], j, image)
		}

		{ // Rayleigh-Ritz: H = Q^T A Q
			for i := 0; i < p; i++ {
				for j := 0; j < p; j++ {
					h.Set(i, j, floats.Dot(q[i], aq[j]))
				}
			}
		}

		var eig mat64.Eigen
		if ok := eig.Factorize(h, false, true); !ok {
			return nil, &DecompositionError{K: k, Rows: n, Cols: n, Reason: "projected factorization did not converge"}
		}
		cs := candidates(eig.Values(nil), eig.Vectors())
		sortCandidates(cs)
		cs = cs[:k]

		scale := cmplx.Abs(cs[0].value)
		worst := 0.0
		pairs := make([]Pair, k)
		for i, c := range cs {
			x, r := ritzPair(q, aq, c)
			if scale > 0 {
				r /= scale
			}
			worst = math.Max(worst, r)
			pairs[i] = Pair{Value: c.value, Vector: x}
		}

		log.WithFields(logrus.Fields{"iteration": it, "residual": worst}).Debug("subspace step")
		if worst <= s.Tol {
			log.WithField("iterations", it).Info("Eigenpairs converged")
			return pairs, nil
		}

		// next block spans A Q
		for j := range q {
			copy(q[j], aq[j])
		}
		orthonormalize(q, rnd)
	}

	return nil, &DecompositionError{
		K: k, Rows: n, Cols: n,
		Reason: "no convergence within the iteration budget",
	}
}

// ritzPair lifts the projected eigenvector of c back to the full space and
// returns the real part of the Ritz vector with its residual norm.
func ritzPair(q, aq [][]float64, c candidate) ([]float64, float64) {
	n := len(q[0])
	xr := make([]float64, n)
	axr := make([]float64, n)
	for j, y := range c.re {
		floats.AddScaled(xr, y, q[j])
		floats.AddScaled(axr, y, aq[j])
	}

	lr, li := real(c.value), imag(c.value)

	// real part: A xr - lr xr + li xi
	rr := make([]float64, n)
	copy(rr, axr)
	floats.AddScaled(rr, -lr, xr)
	if c.im == nil {
		return xr, floats.Norm(rr, 2)
	}

	xi := make([]float64, n)
	axi := make([]float64, n)
	for j, y := range c.im {
		floats.AddScaled(xi, y, q[j])
		floats.AddScaled(axi, y, aq[j])
	}
	floats.AddScaled(rr, li, xi)

	// imaginary part: A xi - lr xi - li xr
	ri := axi
	floats.AddScaled(ri, -lr, xi)
	floats.AddScaled(ri, -li, xr)

	return xr, math.Hypot(floats.Norm(rr, 2), floats.Norm(ri, 2))
}

func randomVector(rnd *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	return v
}

// orthonormalize runs modified Gram-Schmidt twice over the columns of q in
// place. A column that collapses is replaced by a fresh random direction.
func orthonormalize(q [][]float64, rnd *rand.Rand) {
	const collapse = 1e-10

	for j := range q {
		for attempt := 0; ; attempt++ {
			before := floats.Norm(q[j], 2)
			for pass := 0; pass < 2; pass++ {
				for i := 0; i < j; i++ {
					floats.AddScaled(q[j], -floats.Dot(q[i], q[j]), q[i])
				}
			}
			after := floats.Norm(q[j], 2)
			if after > collapse*before && after > 0 {
				floats.Scale(1/after, q[j])
				break
			}
			if attempt == 3 {
				panic("eigen: cannot extend orthonormal basis")
			}
			copy(q[j], randomVector(rnd, len(q[j])))
		}
	}
}
