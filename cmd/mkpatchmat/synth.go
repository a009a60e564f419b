package main

import (
	"math"

	"github.com/gonum/floats"
)

// meanPatch is a radial ramp, bright in the centre
func meanPatch(psize int) []float32 {
	data := make([]float32, psize*psize)
	c := float64(psize-1) / 2
	for y := 0; y < psize; y++ {
		for x := 0; x < psize; x++ {
			r := math.Hypot(float64(x)-c, float64(y)-c) / (c + 1)
			data[y*psize+x] = float32(1 - r*r/2)
		}
	}
	return data
}

func identity(n int) []float32 {
	data := make([]float32, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return data
}

// wave is a unit-norm cosine grating with fx, fy periods per patch
func wave(psize, fx, fy int) []float64 {
	v := make([]float64, psize*psize)
	for y := 0; y < psize; y++ {
		for x := 0; x < psize; x++ {
			phase := 2 * math.Pi * float64(fx*x+fy*y) / float64(psize)
			v[y*psize+x] = math.Cos(phase)
		}
	}
	floats.Scale(1/floats.Norm(v, 2), v)
	return v
}

// waves is sum_c decay^c v_c v_c^T + floor*I over low frequency gratings v_c.
// The gratings are orthonormal, so they are the eigenvectors and the
// eigenvalues are decay^c + floor in that order.
func waves(psize, count int, decay, floor float64) []float32 {
	var comps [][]float64
	for s := 0; len(comps) < count && s < psize; s++ {
		for fy := 0; fy <= s && len(comps) < count; fy++ {
			fx := s - fy
			if 2*fx >= psize || 2*fy >= psize {
				continue
			}
			comps = append(comps, wave(psize, fx, fy))
		}
	}

	n := psize * psize
	acc := make([]float64, n*n)
	w := 1.0
	for _, v := range comps {
		for i := 0; i < n; i++ {
			if v[i] == 0 {
				continue
			}
			floats.AddScaled(acc[i*n:(i+1)*n], w*v[i], v)
		}
		w *= decay
	}

	data := make([]float32, n*n)
	for i, v := range acc {
		data[i] = float32(v)
	}
	for i := 0; i < n; i++ {
		data[i*n+i] += float32(floor)
	}
	return data
}
