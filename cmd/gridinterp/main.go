package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"gridinterp/internal/logging"
	"gridinterp/pkg/config"
	"gridinterp/pkg/interpolation"
	"gridinterp/pkg/records"
	"gridinterp/pkg/scan"
	"gridinterp/pkg/visualization"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "gridinterp: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gridinterp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "gridinterp.yaml", "YAML configuration file (defaults are used if it does not exist)")
	division := fs.Int("division", 0, "Grid cells across the widest side of the data (overrides config)")
	workers := fs.Int("workers", 0, "Number of parallel query workers (overrides config)")
	validate := fs.Bool("validate", false, "Run leave-one-out cross validation before scanning")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	imagePath := fs.String("image", "", "Also render the scanned plane to this PNG file (overrides config)")
	writeConfig := fs.String("write-config", "", "Write the effective configuration to this path and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: gridinterp [flags] [file ...]\n\nReads samples from the named files, or stdin, and prints interpolated values on a plane.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *division > 0 {
		cfg.Index.Division = *division
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if *validate {
		cfg.Processing.Validate = true
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if *imagePath != "" {
		cfg.Output.Image = *imagePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if *writeConfig != "" {
		return config.SaveConfig(cfg, *writeConfig)
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(stderr, cfg.Output.LogFormat, level)

	ds := interpolation.New()
	if err := load(ds, fs.Args(), stdin, cfg.Columns, logger); err != nil {
		return err
	}

	start := time.Now()
	if err := ds.BuildIndex(cfg.Index.Division); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	if stats, err := ds.Stats(); err == nil {
		logger.Info("index built",
			"points", stats.Points,
			"buckets", stats.Buckets,
			"cellSize", stats.CellSize,
			"division", stats.Division,
			"maxBucket", stats.MaxBucket,
			"meanBucket", stats.MeanBucket,
			"elapsed", time.Since(start))
	}

	if cfg.Processing.Validate {
		v, err := ds.CrossValidate(ctx, func(done, total int) {
			logger.Debug("cross validation", "completed", done, "total", total)
		})
		if err != nil {
			return fmt.Errorf("cross validation failed: %w", err)
		}
		logger.Info("cross validation",
			"evaluated", v.Evaluated,
			"unresolved", v.Unresolved,
			"rmse", v.RMSE,
			"meanAbsError", v.MeanAbsError)
	}

	start = time.Now()
	opts := scan.Options{
		Workers:  cfg.Processing.Workers,
		DataDims: len(cfg.Columns.Data),
		Progress: func(done, total int) {
			logger.Debug("scan", "dispatched", done, "total", total)
		},
	}
	results, err := scan.Run(ctx, ds, cfg.Scan, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	resolved := 0
	for _, r := range results {
		if r.OK {
			resolved++
		}
	}
	logger.Info("scan complete",
		"queries", len(results),
		"resolved", resolved,
		"workers", cfg.Processing.Workers,
		"elapsed", time.Since(start))

	if err := scan.Write(stdout, results, opts); err != nil {
		return err
	}

	if cfg.Output.Image != "" {
		viewer, err := visualization.NewViewer(results, 2*cfg.Scan.Steps()+1)
		if err != nil {
			return err
		}
		if err := viewer.SavePNG(cfg.Output.ImageComponent, cfg.Output.Image); err != nil {
			return err
		}
		logger.Info("image saved", "path", cfg.Output.Image, "component", cfg.Output.ImageComponent)
	}
	return nil
}

// load reads every input in order into ds. No names, or "-", means stdin.
func load(ds *interpolation.DataSet, names []string, stdin io.Reader, cols records.Columns, logger *logging.Logger) error {
	if len(names) == 0 {
		names = []string{"-"}
	}
	for _, name := range names {
		if err := loadOne(ds, name, stdin, cols, logger); err != nil {
			return err
		}
	}
	logger.Info("samples loaded", "points", ds.Len(), "inputs", len(names))
	return nil
}

// openInput opens a named input file.
var openInput = func(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// loadOne reads a single input and closes it before returning.
func loadOne(ds *interpolation.DataSet, name string, stdin io.Reader, cols records.Columns, logger *logging.Logger) error {
	var r io.Reader = stdin
	source := "stdin"
	if name != "-" {
		f, err := openInput(name)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
		source = name
	}

	n, err := records.NewReader(r, source, cols).ReadAll(ds)
	if err != nil {
		return err
	}
	logger.WithSource(source).Debug("input loaded", "points", n)
	return nil
}
