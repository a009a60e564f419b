package io

import (
	"os"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/hashicorp/go-multierror"
	"github.com/kshedden/gonpy"
	"github.com/pkg/errors"
)

// ReadNpyFile reads a 1-D or 2-D float32/float64 npy array. The shape is
// reported as a Variant B header [0, rows, cols]; a 1-D array is one row.
func ReadNpyFile(path string) (m *Matrix, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			cerr = errors.Wrapf(cerr, "close %s", path)
			if err == nil {
				err = cerr
			} else {
				err = multierror.Append(err, cerr)
			}
			m = nil
		}
	}()

	r, err := gonpy.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadNpyFile] parse %s", path)
	}

	var rows, cols int
	switch len(r.Shape) {
	case 1:
		rows, cols = 1, r.Shape[0]
	case 2:
		if r.ColumnMajor {
			return nil, errors.Errorf("[ReadNpyFile] %s: fortran-ordered arrays are not supported", path)
		}
		rows, cols = r.Shape[0], r.Shape[1]
	default:
		return nil, errors.Errorf("[ReadNpyFile] %s: want 1-D or 2-D array, got shape %v", path, r.Shape)
	}

	var data []float32
	switch r.Dtype {
	case "f4":
		data, err = r.GetFloat32()
	case "f8":
		var wide []float64
		wide, err = r.GetFloat64()
		data = make([]float32, len(wide))
		for i, v := range wide {
			data[i] = float32(v)
		}
	default:
		return nil, errors.Errorf("[ReadNpyFile] %s: unsupported dtype %q", path, r.Dtype)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadNpyFile] read %s", path)
	}

	f, _ := config.FormatFor(config.VariantNpy)
	return &Matrix{
		Format: f,
		Header: Header{0, int32(rows), int32(cols)},
		Data:   data,
	}, nil
}

// WriteNpyFile writes data as a rows x cols float32 npy array
func WriteNpyFile(path string, rows, cols int, data []float32) error {
	if rows*cols != len(data) {
		return errors.Errorf("[WriteNpyFile] shape %dx%d does not hold %d values", rows, cols, len(data))
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "[WriteNpyFile] open %s", path)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2
	return errors.Wrapf(w.WriteFloat32(data), "[WriteNpyFile] write %s", path)
}
