package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/eigenpatch/internal/config"
	"github.com/KyungWonPark/eigenpatch/internal/io"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options are the command line flags of mkpatchmat
type Options struct {
	Variant   string  `long:"variant" choice:"a" choice:"b" choice:"c" choice:"npy" default:"a" description:"Output layout"`
	PatchSize int     `long:"psize" default:"48" description:"Patch side length"`
	Kind      string  `long:"kind" choice:"mean" choice:"identity" choice:"waves" default:"waves" description:"What to write"`
	Count     int     `long:"count" default:"20" description:"Number of gratings in a waves matrix"`
	Decay     float64 `long:"decay" default:"0.8" description:"Eigenvalue ratio between consecutive gratings"`
	Floor     float64 `long:"floor" default:"0.001" description:"Added to the diagonal of a waves matrix"`

	Args struct {
		Output string `positional-arg-name:"output" description:"File to write"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := write(&opts, logrus.New()); err != nil {
		fmt.Fprintf(os.Stderr, "mkpatchmat: %v\n", err)
		os.Exit(1)
	}
}

func write(opts *Options, log logrus.FieldLogger) error {
	if opts.PatchSize < 1 {
		return errors.Errorf("patch size must be positive, got %d", opts.PatchSize)
	}
	v := config.Variant(opts.Variant)
	f, err := config.FormatFor(v)
	if err != nil {
		return err
	}

	n := opts.PatchSize * opts.PatchSize
	rows, cols := n, n
	var data []float32
	switch opts.Kind {
	case "mean":
		rows, cols = opts.PatchSize, opts.PatchSize
		data = meanPatch(opts.PatchSize)
	case "identity":
		data = identity(n)
	case "waves":
		data = waves(opts.PatchSize, opts.Count, opts.Decay, opts.Floor)
	default:
		return errors.Errorf("unknown kind %q", opts.Kind)
	}

	log.WithFields(logrus.Fields{
		"variant": v,
		"kind":    opts.Kind,
		"rows":    rows,
		"cols":    cols,
	}).Infof("Writing %s...", opts.Args.Output)

	if v == config.VariantNpy {
		return io.WriteNpyFile(opts.Args.Output, rows, cols, data)
	}
	h, err := io.NewHeader(v, rows, cols)
	if err != nil {
		return err
	}
	return io.WriteMatrixFile(opts.Args.Output, f, h, data)
}
