package main

import (
	"io"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/KyungWonPark/eigenpatch/internal/render"
	"github.com/pkg/errors"
)

// Options are the command line flags of showcov
type Options struct {
	OpenCV    bool   `long:"opencv" description:"Input was written by the keyed OpenCV mat serializer (variant c) instead of the FloatImage writer (variant a)"`
	Variant   string `long:"variant" choice:"a" choice:"b" choice:"c" choice:"npy" description:"Input layout; overrides --opencv"`
	PatchSize int    `long:"psize" description:"Patch side length (48 for variants a and c, 64 for b)"`

	MeanMin    float64 `long:"mean-min" default:"0" description:"Lower display bound for a mean patch"`
	MeanMax    float64 `long:"mean-max" default:"1" description:"Upper display bound for a mean patch"`
	MontageMin float64 `long:"clim-min" default:"-0.1" description:"Lower display bound for eigen-patches"`
	MontageMax float64 `long:"clim-max" default:"0.1" description:"Upper display bound for eigen-patches"`
	Colormap   string  `long:"colormap" default:"gray" description:"gray, hot, jet or viridis"`

	Renderer string `long:"renderer" choice:"terminal" choice:"shm" choice:"csv" default:"terminal" description:"How to display the result"`
	Viewer   string `long:"viewer" description:"Viewer executable for the shm renderer"`
	Width    int    `long:"width" default:"120" description:"Terminal columns available to the image"`
	Wait     bool   `long:"wait" description:"Keep the terminal image up until Enter is pressed"`

	Solver  string  `long:"solver" choice:"subspace" choice:"dense" default:"subspace" description:"Eigen solver"`
	MaxIter int     `long:"max-iter" default:"300" description:"Iteration budget of the subspace solver"`
	Tol     float64 `long:"tol" default:"1e-6" description:"Relative residual at which eigenpairs count as converged"`
	Seed    int64   `long:"seed" default:"1" description:"Seed of the solver's starting block"`

	Verbose bool `short:"v" long:"verbose" description:"Log solver progress"`

	Args struct {
		Input string `positional-arg-name:"input" description:"Mean or covariance matrix file"`
	} `positional-args:"yes" required:"yes"`
}

func (o *Options) variant() config.Variant {
	switch {
	case o.Variant != "":
		return config.Variant(o.Variant)
	case o.OpenCV:
		return config.VariantC
	}
	return config.VariantA
}

// Config turns the flags into the run configuration
func (o *Options) Config() (config.Config, error) {
	cfg, err := config.Default(o.variant())
	if err != nil {
		return config.Config{}, err
	}

	if o.PatchSize != 0 {
		cfg.PatchSize = o.PatchSize
	}
	cfg.MeanRange = config.Range{Min: o.MeanMin, Max: o.MeanMax}
	cfg.MontageRange = config.Range{Min: o.MontageMin, Max: o.MontageMax}
	cfg.Colormap = o.Colormap
	cfg.Solver = o.Solver
	cfg.MaxIter = o.MaxIter
	cfg.Tol = o.Tol
	cfg.Seed = o.Seed

	if _, err := render.LookupColormap(cfg.Colormap); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

// NewRenderer builds the renderer selected by the flags
func (o *Options) NewRenderer(stdout, stderr io.Writer, stdin io.Reader) (render.Renderer, error) {
	switch o.Renderer {
	case "terminal", "":
		t := render.Terminal{Out: stdout, Width: o.Width}
		if o.Wait {
			t.Wait = stdin
		}
		return t, nil
	case "csv":
		return render.CSV{Out: stdout}, nil
	case "shm":
		if o.Viewer == "" {
			return nil, errors.New("--renderer shm needs --viewer")
		}
		return render.SharedMemory{Viewer: o.Viewer, Stdout: stdout, Stderr: stderr}, nil
	}
	return nil, errors.Errorf("unknown renderer %q", o.Renderer)
}
