package viz

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/KyungWonPark/eigenpatch/internal/eigen"
	"github.com/KyungWonPark/eigenpatch/internal/io"
	"github.com/KyungWonPark/eigenpatch/internal/montage"
	"github.com/KyungWonPark/eigenpatch/internal/render"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

type call struct {
	rows, cols int
	img        *mat64.Dense
	opts       render.Options
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) Render(img mat64.Matrix, opts render.Options) error {
	rows, cols := img.Dims()
	r.calls = append(r.calls, call{rows: rows, cols: cols, img: mat64.DenseCopyOf(img), opts: opts})
	return r.err
}

type PipelineSuite struct {
	suite.Suite
	dir  string
	rec  *recorder
	hook *test.Hook
	log  *logrus.Logger
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.rec = &recorder{}
	s.log, s.hook = test.NewNullLogger()
	s.log.SetLevel(logrus.DebugLevel)
}

func (s *PipelineSuite) config(v config.Variant, psize int) config.Config {
	cfg, err := config.Default(v)
	s.Require().NoError(err)
	cfg.PatchSize = psize
	return cfg
}

func (s *PipelineSuite) write(name string, cfg config.Config, h io.Header, data []float32) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(io.WriteMatrixFile(path, cfg.Format, h, data))
	return path
}

func (s *PipelineSuite) run(cfg config.Config, path string) error {
	return New(cfg, s.rec, s.log).Run(path)
}

// symmetricData returns a row-major n x n symmetric matrix with a decaying spectrum
func symmetricData(n int, seed int64) []float32 {
	rnd := rand.New(rand.NewSource(seed))
	b := make([]float64, n*n)
	for i := range b {
		b[i] = rnd.NormFloat64()
	}
	data := make([]float32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var v float64
			for l := 0; l < n; l++ {
				v += b[i*n+l] * b[j*n+l] / float64(1+l*l)
			}
			data[i*n+j] = float32(v)
		}
	}
	return data
}

func identityData(n int) []float32 {
	data := make([]float32, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return data
}

func (s *PipelineSuite) TestMeanPatchSingleRow() {
	cfg := s.config(config.VariantB, 64)
	data := make([]float32, 64)
	for i := range data {
		data[i] = float32(i) / 64
	}
	path := s.write("mean.bin", cfg, io.Header{0, 1, 64}, data)

	s.Require().NoError(s.run(cfg, path))
	s.Require().Len(s.rec.calls, 1)
	c := s.rec.calls[0]
	s.Equal(1, c.rows)
	s.Equal(64, c.cols)
	s.Equal(MeanTitle, c.opts.Title)
	s.Equal(cfg.MeanRange.Min, c.opts.Min)
	s.Equal(cfg.MeanRange.Max, c.opts.Max)
	s.True(c.opts.Colorbar)
	s.Equal(float64(data[10]), c.img.At(0, 10))
}

func (s *PipelineSuite) TestMeanPatchSquare() {
	cfg := s.config(config.VariantA, 48)
	data := make([]float32, 48*48)
	for i := range data {
		data[i] = float32(i%7) / 7
	}
	path := s.write("mean.bin", cfg, io.Header{0, 48, 48, 1}, data)

	s.Require().NoError(s.run(cfg, path))
	s.Require().Len(s.rec.calls, 1)
	c := s.rec.calls[0]
	s.Equal(48, c.rows)
	s.Equal(48, c.cols)
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			s.Require().Equal(float64(data[y*48+x]), c.img.At(y, x))
		}
	}
}

func (s *PipelineSuite) TestCovarianceMontage() {
	const psize = 4
	for _, v := range []config.Variant{config.VariantA, config.VariantB, config.VariantC} {
		s.rec.calls = nil
		cfg := s.config(v, psize)
		n := psize * psize

		var h io.Header
		switch v {
		case config.VariantA:
			h = io.Header{0, int32(n), int32(n), 1}
		case config.VariantB:
			h = io.Header{5, int32(n), int32(n)}
		case config.VariantC:
			h = io.Header{0, 5, int32(n), int32(n)}
		}
		data := symmetricData(n, 3)
		path := s.write(string(v)+".bin", cfg, h, data)

		s.Require().NoError(s.run(cfg, path), "variant %s", v)
		s.Require().Len(s.rec.calls, 1)
		c := s.rec.calls[0]
		s.Equal(psize*3, c.rows)
		s.Equal(psize*5, c.cols)
		s.Equal(MontageTitle, c.opts.Title)
		s.Equal(-0.1, c.opts.Min)
		s.Equal(0.1, c.opts.Max)

		// the montage is exactly what the composer builds from the solver output
		a := mat64.NewDense(n, n, nil)
		for i := range data {
			a.Set(i/n, i%n, float64(data[i]))
		}
		pairs, err := eigen.Dense{}.Decompose(a, 15)
		s.Require().NoError(err)
		vectors := make([][]float64, len(pairs))
		for i, p := range pairs {
			vectors[i] = p.Vector
		}
		want, err := montage.Compose(vectors, psize, montage.Layout{Rows: 3, Cols: 5})
		s.Require().NoError(err)
		s.True(mat64.EqualApprox(want, c.img, 1e-9), "variant %s", v)
	}

	s.NotEmpty(s.hook.AllEntries())
}

func (s *PipelineSuite) TestCovarianceFromNpy() {
	const psize = 4
	cfg := s.config(config.VariantNpy, psize)
	path := filepath.Join(s.dir, "cov.npy")
	s.Require().NoError(io.WriteNpyFile(path, 16, 16, symmetricData(16, 8)))

	s.Require().NoError(s.run(cfg, path))
	s.Require().Len(s.rec.calls, 1)
	s.Equal(12, s.rec.calls[0].rows)
	s.Equal(20, s.rec.calls[0].cols)
}

func (s *PipelineSuite) TestIdentityCovarianceFullSize() {
	if testing.Short() {
		s.T().Skip("decodes a 2304x2304 matrix")
	}
	cfg := s.config(config.VariantB, 48)
	path := s.write("identity.bin", cfg, io.Header{0, 2304, 2304}, identityData(2304))

	s.Require().NoError(s.run(cfg, path))
	s.Require().Len(s.rec.calls, 1)
	s.Equal(144, s.rec.calls[0].rows)
	s.Equal(240, s.rec.calls[0].cols)

	var diagonalizing bool
	for _, e := range s.hook.AllEntries() {
		if e.Message == "Diagonalizing..." {
			diagonalizing = true
		}
	}
	s.True(diagonalizing)
}

func (s *PipelineSuite) TestShortPayload() {
	cfg := s.config(config.VariantB, 64)
	path := s.write("short.bin", cfg, io.Header{0, 4096, 4096}, make([]float32, 4095))

	err := s.run(cfg, path)
	var shape *montage.ShapeMismatchError
	s.Require().True(errors.As(err, &shape), "got %v", err)
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestRaggedPayload() {
	cfg := s.config(config.VariantB, 64)
	path := s.write("ragged.bin", cfg, io.Header{0, 1, 64}, make([]float32, 64))
	s.appendBytes(path, 2)

	err := s.run(cfg, path)
	var trunc *io.TruncatedInputError
	s.Require().True(errors.As(err, &trunc), "got %v", err)
	s.Equal(258, trunc.Got)
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestNonSquareCovariance() {
	cfg := s.config(config.VariantB, 4)
	path := s.write("rect.bin", cfg, io.Header{0, 8, 16}, make([]float32, 128))

	err := s.run(cfg, path)
	var derr *eigen.DecompositionError
	s.Require().True(errors.As(err, &derr), "got %v", err)
	s.Equal(15, derr.K)
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestNonFiniteCovariance() {
	cfg := s.config(config.VariantB, 8)
	data := identityData(64)
	data[5] = float32(math.NaN())
	path := s.write("nan.bin", cfg, io.Header{0, 64, 64}, data)

	err := s.run(cfg, path)
	var derr *eigen.DecompositionError
	s.Require().True(errors.As(err, &derr), "got %v", err)
	s.Contains(derr.Reason, "non-finite")
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestMultiBandCovariance() {
	cfg := s.config(config.VariantA, 4)
	path := s.write("bands.bin", cfg, io.Header{0, 16, 16, 3}, make([]float32, 16*16*3))

	err := s.run(cfg, path)
	var shape *montage.ShapeMismatchError
	s.Require().True(errors.As(err, &shape), "got %v", err)
	s.Equal(3, shape.Got)
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestTooFewComponents() {
	// a 9x9 matrix cannot yield 15 components
	cfg := s.config(config.VariantB, 3)
	path := s.write("small.bin", cfg, io.Header{0, 9, 9}, identityData(9))

	err := s.run(cfg, path)
	var derr *eigen.DecompositionError
	s.Require().True(errors.As(err, &derr), "got %v", err)
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestMissingFile() {
	cfg := s.config(config.VariantA, 48)
	s.Error(s.run(cfg, filepath.Join(s.dir, "missing.bin")))
	s.Empty(s.rec.calls)
}

func (s *PipelineSuite) TestRendererError() {
	cfg := s.config(config.VariantB, 64)
	path := s.write("mean.bin", cfg, io.Header{0, 1, 64}, make([]float32, 64))
	s.rec.err = errors.New("display closed")

	err := s.run(cfg, path)
	s.Require().Error(err)
	s.Contains(err.Error(), "display closed")
}

func (s *PipelineSuite) appendBytes(path string, n int) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	s.Require().NoError(err)
	_, err = f.Write(make([]byte, n))
	s.Require().NoError(err)
	s.Require().NoError(f.Close())
}
