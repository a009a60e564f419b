// Package montage tiles eigen-patches into a single grid image.
package montage

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// ShapeMismatchError reports data whose length does not fit the shape it
// is being placed into
type ShapeMismatchError struct {
	What string
	Got  int
	Want string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s has %d values, want %s", e.What, e.Got, e.Want)
}

// Layout is the tile grid of a montage
type Layout struct {
	Rows int
	Cols int
}

// Tiles is the number of cells in the grid
func (l Layout) Tiles() int {
	return l.Rows * l.Cols
}

// Cell returns the grid cell of component n. Components fill the grid row by row.
func (l Layout) Cell(n int) (row, col int) {
	return n / l.Cols, n % l.Cols
}

// Compose places the first l.Tiles() vectors, each reshaped row-major to
// psize x psize, into a (psize*l.Rows) x (psize*l.Cols) image. Values are
// copied as is.
func Compose(vectors [][]float64, psize int, l Layout) (*mat64.Dense, error) {
	if l.Rows < 1 || l.Cols < 1 || psize < 1 {
		return nil, fmt.Errorf("invalid montage: %dx%d tiles of %d pixels", l.Rows, l.Cols, psize)
	}
	if len(vectors) < l.Tiles() {
		return nil, &ShapeMismatchError{
			What: "component list",
			Got:  len(vectors),
			Want: fmt.Sprintf("at least %d", l.Tiles()),
		}
	}

	img := mat64.NewDense(psize*l.Rows, psize*l.Cols, nil)
	for n := 0; n < l.Tiles(); n++ {
		v := vectors[n]
		if len(v) != psize*psize {
			return nil, &ShapeMismatchError{
				What: fmt.Sprintf("component %d", n),
				Got:  len(v),
				Want: fmt.Sprintf("%d (%dx%d)", psize*psize, psize, psize),
			}
		}

		j, i := l.Cell(n)
		for y := 0; y < psize; y++ {
			for x := 0; x < psize; x++ {
				img.Set(j*psize+y, i*psize+x, v[y*psize+x])
			}
		}
	}

	return img, nil
}

// Reshape lays a flat vector out row-major with cols columns.
func Reshape(flat []float32, cols int) (*mat64.Dense, error) {
	if cols < 1 || len(flat) == 0 || len(flat)%cols != 0 {
		return nil, &ShapeMismatchError{
			What: "patch vector",
			Got:  len(flat),
			Want: fmt.Sprintf("a positive multiple of %d", cols),
		}
	}

	buf := make([]float64, len(flat))
	for i, v := range flat {
		buf[i] = float64(v)
	}
	return mat64.NewDense(len(flat)/cols, cols, buf), nil
}
