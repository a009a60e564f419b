package io

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/gonum/matrix/mat64"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const wordSize = 4

// CVFloat32 is the OpenCV type code of a single channel float32 matrix
const CVFloat32 = 5

// Header is the leading run of big-endian int32 values of a matrix file
type Header []int32

// NewHeader returns the header variant v uses for a rows x cols float32
// matrix. Unused leading fields are zero.
func NewHeader(v config.Variant, rows, cols int) (Header, error) {
	switch v {
	case config.VariantA:
		return Header{0, int32(rows), int32(cols), 1}, nil
	case config.VariantB, config.VariantNpy:
		return Header{CVFloat32, int32(rows), int32(cols)}, nil
	case config.VariantC:
		return Header{0, CVFloat32, int32(rows), int32(cols)}, nil
	}
	return nil, errors.Errorf("unknown format variant %q", v)
}

// Matrix is a decoded matrix file: its header and its flat float payload
type Matrix struct {
	Format config.Format
	Header Header
	Data   []float32
}

// ReadMatrix decodes a header of f.HeaderLen integers followed by floats
// until EOF.
func ReadMatrix(r io.Reader, f config.Format) (*Matrix, error) {
	hdrBuf := make([]byte, f.HeaderLen*wordSize)
	n, err := io.ReadFull(r, hdrBuf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, &TruncatedInputError{Section: "header", Got: n, Want: len(hdrBuf)}
	} else if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	header := make(Header, f.HeaderLen)
	for i := range header {
		header[i] = int32(binary.BigEndian.Uint32(hdrBuf[i*wordSize:]))
		if header[i] < 0 {
			return nil, &HeaderError{Index: i, Value: header[i]}
		}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read payload")
	}
	if rem := len(raw) % wordSize; rem != 0 {
		return nil, &TruncatedInputError{Section: "payload", Got: len(raw), Want: len(raw) - rem + wordSize}
	}

	order := f.FloatOrder.ByteOrder()
	data := make([]float32, len(raw)/wordSize)
	for i := range data {
		data[i] = math.Float32frombits(order.Uint32(raw[i*wordSize:]))
	}

	return &Matrix{Format: f, Header: header, Data: data}, nil
}

// ReadMatrixFile opens path and decodes it with ReadMatrix. The file is
// closed on every path; a close failure is reported alongside any decode error.
func ReadMatrixFile(path string, f config.Format) (m *Matrix, err error) {
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

	return ReadMatrix(bufio.NewReader(file), f)
}

// Load reads path in the layout named by f, dispatching npy files to ReadNpyFile
func Load(path string, f config.Format) (*Matrix, error) {
	if f.Variant == config.VariantNpy {
		return ReadNpyFile(path)
	}
	return ReadMatrixFile(path, f)
}

// WriteMatrix encodes header and data in layout f
func WriteMatrix(w io.Writer, f config.Format, header Header, data []float32) error {
	if len(header) != f.HeaderLen {
		return errors.Errorf("header has %d fields, layout %q wants %d", len(header), f.Variant, f.HeaderLen)
	}
	if err := binary.Write(w, binary.BigEndian, []int32(header)); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := binary.Write(w, f.FloatOrder.ByteOrder(), data); err != nil {
		return errors.Wrap(err, "write payload")
	}
	return nil
}

// WriteMatrixFile writes a matrix file to path
func WriteMatrixFile(path string, f config.Format, header Header, data []float32) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	w := bufio.NewWriter(file)
	if err := WriteMatrix(w, f, header, data); err != nil {
		return err
	}
	return errors.Wrapf(w.Flush(), "flush %s", path)
}

// ToDense copies the first rows*cols payload values into a row-major
// mat64 matrix. The caller has already checked the payload is long enough.
func (m *Matrix) ToDense(rows, cols int) *mat64.Dense {
	buf := make([]float64, rows*cols)
	for i := range buf {
		buf[i] = float64(m.Data[i])
	}
	return mat64.NewDense(rows, cols, buf)
}
