// Package classify decides whether a decoded matrix file holds a mean patch
// or a patch covariance matrix.
package classify

import (
	"fmt"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/KyungWonPark/eigenpatch/internal/io"
	"github.com/KyungWonPark/eigenpatch/internal/montage"
)

// Input is either a MeanPatch or a CovarianceMatrix
type Input interface {
	isInput()
	String() string
}

// MeanPatch is a flat mean patch of Length values
type MeanPatch struct {
	Length int
}

// CovarianceMatrix is a Rows x Cols matrix in reshape order
type CovarianceMatrix struct {
	Rows int
	Cols int
}

func (MeanPatch) isInput()        {}
func (CovarianceMatrix) isInput() {}

func (m MeanPatch) String() string {
	return fmt.Sprintf("mean patch (%d values)", m.Length)
}

func (c CovarianceMatrix) String() string {
	return fmt.Sprintf("covariance matrix (%dx%d)", c.Rows, c.Cols)
}

// Square reports whether the matrix can be eigen-decomposed
func (c CovarianceMatrix) Square() bool {
	return c.Rows == c.Cols
}

// Fields are the header values that matter for classification, read
// according to the file's layout.
type Fields struct {
	// Branch is compared against the patch size: width for Variant A, cols otherwise
	Branch int
	// Shape the payload is reshaped to on the covariance path
	Rows int
	Cols int
	// Declared is the number of payload values the header promises
	Declared int
	// Bands is the channel count, 1 outside Variant A
	Bands int
}

// HeaderFields reads Fields from h laid out as variant v.
func HeaderFields(h io.Header, v config.Variant) (Fields, error) {
	at := func(i int) int { return int(h[i]) }

	switch v {
	case config.VariantA:
		if len(h) != 4 {
			break
		}
		width, height, bands := at(1), at(2), at(3)
		return Fields{Branch: width, Rows: width, Cols: height, Declared: width * height * bands, Bands: bands}, nil
	case config.VariantB, config.VariantNpy:
		if len(h) != 3 {
			break
		}
		rows, cols := at(1), at(2)
		return Fields{Branch: cols, Rows: cols, Cols: rows, Declared: rows * cols, Bands: 1}, nil
	case config.VariantC:
		if len(h) != 4 {
			break
		}
		rows, cols := at(2), at(3)
		return Fields{Branch: cols, Rows: cols, Cols: rows, Declared: rows * cols, Bands: 1}, nil
	default:
		return Fields{}, fmt.Errorf("unknown format variant %q", v)
	}
	return Fields{}, fmt.Errorf("variant %q header has %d fields", v, len(h))
}

// Classify returns MeanPatch when the branch field equals psize and
// CovarianceMatrix otherwise. Only the header is consulted; the payload
// length must match what the header declares.
func Classify(m *io.Matrix, psize int) (Input, error) {
	f, err := HeaderFields(m.Header, m.Format.Variant)
	if err != nil {
		return nil, err
	}
	if len(m.Data) != f.Declared {
		return nil, &montage.ShapeMismatchError{
			What: "payload",
			Got:  len(m.Data),
			Want: fmt.Sprintf("%d declared by header %v", f.Declared, []int32(m.Header)),
		}
	}

	if f.Branch == psize {
		return MeanPatch{Length: len(m.Data)}, nil
	}
	// a covariance matrix is a single band
	if f.Bands != 1 {
		return nil, &montage.ShapeMismatchError{What: "covariance bands", Got: f.Bands, Want: "1"}
	}
	return CovarianceMatrix{Rows: f.Rows, Cols: f.Cols}, nil
}
