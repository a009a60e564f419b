package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/eigenpatch/internal/viz"
	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] input"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(&opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "showcov: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *Options, log *logrus.Logger) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	r, err := opts.NewRenderer(os.Stdout, os.Stderr, os.Stdin)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"variant": cfg.Format.Variant,
		"psize":   cfg.PatchSize,
		"solver":  cfg.Solver,
	}).Infof("Input file: %s", opts.Args.Input)

	return viz.New(cfg, r, log).Run(opts.Args.Input)
}
