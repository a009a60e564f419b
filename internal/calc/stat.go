package calc

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// Statistic summarises the values of a matrix
type Statistic struct {
	Min float64
	Max float64
	Avg float64
	Std float64
}

// Stat computes the value spread of inputMat. Display ranges are configured
// rather than derived from data; this is what gets logged next to them.
func Stat(inputMat mat64.Matrix) Statistic {
	rows, cols := inputMat.Dims()
	values := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			values = append(values, inputMat.At(i, j))
		}
	}
	if len(values) == 0 {
		return Statistic{}
	}

	n := float64(len(values))
	avg := floats.Sum(values) / n
	avgSqr := floats.Dot(values, values) / n

	return Statistic{
		Min: floats.Min(values),
		Max: floats.Max(values),
		Avg: avg,
		Std: math.Sqrt(math.Max(avgSqr-avg*avg, 0)),
	}
}

// Outside counts values that fall outside [lo, hi]
func Outside(inputMat mat64.Matrix, lo, hi float64) int {
	rows, cols := inputMat.Dims()
	cnt := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := inputMat.At(i, j); v < lo || v > hi {
				cnt++
			}
		}
	}
	return cnt
}
