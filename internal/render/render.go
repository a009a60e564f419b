// Package render displays 2-D arrays. The pipeline only needs "show this
// clamped, colormapped matrix with a title"; each Renderer decides how.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/KyungWonPark/eigenpatch/internal/calc"
	"github.com/gonum/matrix/mat64"
)

// Options controls how a matrix is displayed
type Options struct {
	Colormap string
	Min      float64
	Max      float64
	Title    string
	Colorbar bool
}

// Renderer displays img and returns once the display is dismissed
type Renderer interface {
	Render(img mat64.Matrix, opts Options) error
}

// grayImage maps img onto 16-bit gray levels, Min → black and Max → white.
// NaN becomes black.
func grayImage(img mat64.Matrix, lo, hi float64) *image.Gray16 {
	rows, cols := img.Dims()
	g := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := img.At(y, x)
			if math.IsNaN(v) {
				continue
			}
			g.SetGray16(x, y, color.Gray16{Y: uint16(calc.Unit(v, lo, hi)*0xffff + 0.5)})
		}
	}
	return g
}

func level(img image.Image, x, y int) float64 {
	return float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y) / 0xffff
}
