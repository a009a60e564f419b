package eigen

import (
	"github.com/gonum/matrix/mat64"
)

// Dense factorizes the whole matrix and keeps the k largest pairs. Cost is
// cubic in the side length; fine for small matrices and for checking Subspace.
type Dense struct{}

// Decompose implements Decomposer
func (Dense) Decompose(a mat64.Matrix, k int) ([]Pair, error) {
	n, err := checkRequest(a, k)
	if err != nil {
		return nil, err
	}

	var eig mat64.Eigen
	if ok := eig.Factorize(a, false, true); !ok {
		return nil, &DecompositionError{K: k, Rows: n, Cols: n, Reason: "factorization did not converge"}
	}

	cs := candidates(eig.Values(nil), eig.Vectors())
	sortCandidates(cs)

	pairs := make([]Pair, k)
	for i := range pairs {
		pairs[i] = Pair{Value: cs[i].value, Vector: cs[i].re}
	}
	return pairs, nil
}
