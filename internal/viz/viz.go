// Package viz runs the read → classify → decompose → compose → render
// pipeline for one input file.
package viz

import (
	"github.com/KyungWonPark/eigenpatch/internal/calc"
	"github.com/KyungWonPark/eigenpatch/internal/classify"
	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/KyungWonPark/eigenpatch/internal/eigen"
	"github.com/KyungWonPark/eigenpatch/internal/io"
	"github.com/KyungWonPark/eigenpatch/internal/montage"
	"github.com/KyungWonPark/eigenpatch/internal/render"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	MeanTitle    = "Average Patch"
	MontageTitle = "Principal Components of Covariance Matrix"
)

// Pipeline holds the collaborators of a run
type Pipeline struct {
	Config   config.Config
	Renderer render.Renderer
	Solver   eigen.Decomposer
	Log      logrus.FieldLogger
}

// New builds a Pipeline with the solver selected by cfg
func New(cfg config.Config, r render.Renderer, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Renderer: r,
		Solver:   eigen.FromConfig(cfg, log),
		Log:      log,
	}
}

// Run visualizes the matrix file at path. Nothing is rendered unless every
// earlier stage succeeded.
func (p *Pipeline) Run(path string) error {
	log := p.Log.WithField("input", path)

	log.Info("Reading matrix...")
	m, err := io.Load(path, p.Config.Format)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"header": []int32(m.Header),
		"values": len(m.Data),
		"floats": p.Config.Format.FloatOrder.String(),
	}).Info("Decoded")

	in, err := classify.Classify(m, p.Config.PatchSize)
	if err != nil {
		return err
	}
	log.WithField("psize", p.Config.PatchSize).Infof("Classified as %s", in)

	switch in := in.(type) {
	case classify.MeanPatch:
		return p.showMean(m)
	case classify.CovarianceMatrix:
		return p.showComponents(m, in)
	}
	return errors.Errorf("unhandled input %T", in)
}

func (p *Pipeline) showMean(m *io.Matrix) error {
	img, err := montage.Reshape(m.Data, p.Config.PatchSize)
	if err != nil {
		return err
	}

	return p.render(img, MeanTitle, p.Config.MeanRange)
}

func (p *Pipeline) showComponents(m *io.Matrix, cov classify.CovarianceMatrix) error {
	k := p.Config.Components()
	if !cov.Square() {
		return &eigen.DecompositionError{K: k, Rows: cov.Rows, Cols: cov.Cols, Reason: "matrix is not square"}
	}
	a := m.ToDense(cov.Rows, cov.Cols)

	p.Log.WithFields(logrus.Fields{"n": cov.Rows, "k": k}).Info("Diagonalizing...")
	pairs, err := p.Solver.Decompose(a, k)
	if err != nil {
		return err
	}

	vectors := make([][]float64, len(pairs))
	for i, pair := range pairs {
		vectors[i] = pair.Vector
		p.Log.WithFields(logrus.Fields{"component": i, "eigenvalue": pair.Value}).Debug("Eigenvalue")
	}

	img, err := montage.Compose(vectors, p.Config.PatchSize, montage.Layout{Rows: p.Config.GridRows, Cols: p.Config.GridCols})
	if err != nil {
		return err
	}

	return p.render(img, MontageTitle, p.Config.MontageRange)
}

func (p *Pipeline) render(img *mat64.Dense, title string, rng config.Range) error {
	rows, cols := img.Dims()
	st := calc.Stat(img)
	p.Log.WithFields(logrus.Fields{
		"rows":    rows,
		"cols":    cols,
		"min":     st.Min,
		"max":     st.Max,
		"clipped": calc.Outside(img, rng.Min, rng.Max),
	}).Infof("Rendering %q in [%g, %g]", title, rng.Min, rng.Max)

	err := p.Renderer.Render(img, render.Options{
		Colormap: p.Config.Colormap,
		Min:      rng.Min,
		Max:      rng.Max,
		Title:    title,
		Colorbar: true,
	})
	return errors.Wrap(err, "render")
}
