// Package config holds the immutable run configuration shared by the
// decoding, classification, decomposition and rendering stages.
package config

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Variant identifies one of the on-disk layouts produced upstream
type Variant string

const (
	// VariantA is the FloatImage layout: [key, width, height, bands], big-endian floats
	VariantA Variant = "a"
	// VariantB is the OpenCV mat layout: [type, rows, cols], big-endian floats
	VariantB Variant = "b"
	// VariantC is the keyed OpenCV mat layout: [key, type, rows, cols], native floats
	VariantC Variant = "c"
	// VariantNpy is a numpy .npy file holding a 1-D or 2-D float array
	VariantNpy Variant = "npy"
)

// FloatOrder selects the byte order of payload floats.
type FloatOrder int

const (
	BigEndian FloatOrder = iota
	// NativeEndian follows the host. Variant C files were written from raw
	// OpenCV buffers and carry whatever order the producing machine had.
	NativeEndian
)

func (o FloatOrder) String() string {
	if o == NativeEndian {
		return "native"
	}
	return "big-endian"
}

// ByteOrder returns the encoding/binary order for o
func (o FloatOrder) ByteOrder() binary.ByteOrder {
	if o == NativeEndian {
		return binary.NativeEndian
	}
	return binary.BigEndian
}

// Format describes how a binary matrix file is laid out.
type Format struct {
	Variant    Variant
	HeaderLen  int
	FloatOrder FloatOrder
}

// FormatFor returns the layout of variant v
func FormatFor(v Variant) (Format, error) {
	switch v {
	case VariantA:
		return Format{Variant: v, HeaderLen: 4, FloatOrder: BigEndian}, nil
	case VariantB:
		return Format{Variant: v, HeaderLen: 3, FloatOrder: BigEndian}, nil
	case VariantC:
		return Format{Variant: v, HeaderLen: 4, FloatOrder: NativeEndian}, nil
	case VariantNpy:
		// npy headers are synthesized as Variant B
		return Format{Variant: v, HeaderLen: 3, FloatOrder: BigEndian}, nil
	}
	return Format{}, errors.Errorf("unknown format variant %q", v)
}

// Range is a closed display range.
type Range struct {
	Min float64
	Max float64
}

// Config is built once at startup and passed by value to every stage.
type Config struct {
	Format    Format
	PatchSize int

	// Montage grid. Rows*Cols eigen-patches are computed and shown.
	GridRows int
	GridCols int

	Solver  string
	MaxIter int
	Tol     float64
	Seed    int64

	MeanRange    Range
	MontageRange Range
	Colormap     string
}

const (
	SolverSubspace = "subspace"
	SolverDense    = "dense"
)

// Default returns the configuration the tool historically used for variant v.
func Default(v Variant) (Config, error) {
	f, err := FormatFor(v)
	if err != nil {
		return Config{}, err
	}

	psize := 48
	if v == VariantB {
		psize = 64
	}

	return Config{
		Format:       f,
		PatchSize:    psize,
		GridRows:     3,
		GridCols:     5,
		Solver:       SolverSubspace,
		MaxIter:      300,
		Tol:          1e-6,
		Seed:         1,
		MeanRange:    Range{Min: 0.0, Max: 1.0},
		MontageRange: Range{Min: -0.1, Max: 0.1},
		Colormap:     "gray",
	}, nil
}

// Components is the number of eigen-patches shown in the montage
func (c Config) Components() int {
	return c.GridRows * c.GridCols
}

// Validate rejects configurations no stage can run with.
func (c Config) Validate() error {
	if _, err := FormatFor(c.Format.Variant); err != nil {
		return err
	}
	if c.Format.HeaderLen != 3 && c.Format.HeaderLen != 4 {
		return errors.Errorf("header length must be 3 or 4, got %d", c.Format.HeaderLen)
	}
	if c.PatchSize < 1 {
		return errors.Errorf("patch size must be positive, got %d", c.PatchSize)
	}
	if c.GridRows < 1 || c.GridCols < 1 {
		return errors.Errorf("montage grid must be at least 1x1, got %dx%d", c.GridRows, c.GridCols)
	}
	if c.Solver != SolverSubspace && c.Solver != SolverDense {
		return errors.Errorf("unknown solver %q", c.Solver)
	}
	if c.MaxIter < 1 {
		return errors.Errorf("max iterations must be positive, got %d", c.MaxIter)
	}
	if !(c.Tol > 0) || math.IsInf(c.Tol, 0) {
		return errors.Errorf("tolerance must be a positive number, got %g", c.Tol)
	}
	for name, r := range map[string]Range{"mean": c.MeanRange, "montage": c.MontageRange} {
		if !(r.Min < r.Max) {
			return errors.Errorf("%s display range is empty: [%g, %g]", name, r.Min, r.Max)
		}
	}
	return nil
}
