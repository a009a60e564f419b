package calc

import (
	"github.com/gonum/matrix/mat64"
)

// Clamp copies inputMat into a new matrix with values limited to [lo, hi]
func Clamp(inputMat mat64.Matrix, lo, hi float64) *mat64.Dense {
	rows, cols := inputMat.Dims()
	outputMat := mat64.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			outputMat.Set(i, j, ClampValue(inputMat.At(i, j), lo, hi))
		}
	}

	return outputMat
}

// ClampValue limits v to [lo, hi]
func ClampValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Unit maps v from [lo, hi] onto [0, 1], saturating outside the range
func Unit(v, lo, hi float64) float64 {
	return (ClampValue(v, lo, hi) - lo) / (hi - lo)
}
