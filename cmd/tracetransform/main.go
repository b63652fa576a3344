package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"tracetransform/pkg/backend"
	"tracetransform/pkg/config"
	"tracetransform/pkg/functional"
	"tracetransform/pkg/imageio"
	"tracetransform/pkg/logging"
	"tracetransform/pkg/tracetransform"
	"tracetransform/pkg/visualization"
)

// listFlag collects a repeatable string flag
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	// Parse command line arguments
	var tFlags, pFlags listFlag
	configPath := flag.String("config", "tracetransform.yaml", "Configuration file")
	inputFile := flag.String("input", "", "Image to process (PGM, PNG, JPEG, GIF, TIFF or BMP)")
	outputFile := flag.String("output", "", "Output CSV file for the feature matrix")
	flag.Var(&tFlags, "T", "T-functional to use (radon, T1..T5); repeatable or comma separated")
	flag.Var(&pFlags, "P", "P-functional to use (P1..P3, H<order>); repeatable or comma separated")
	quiet := flag.Bool("q", false, "Only report warnings and errors")
	verbose := flag.Bool("v", false, "Verbose output, writes one CSV per trace")
	debug := flag.Bool("d", false, "Debug output, writes sinogram images")
	parallel := flag.Bool("parallel", false, "Evaluate T-functionals concurrently")
	angleStep := flag.Float64("angle-step", 1, "Angular sampling step in degrees")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "parallel":
			cfg.Transform.Parallel = *parallel
		case "angle-step":
			cfg.Transform.AngleStep = *angleStep
		case "output":
			cfg.Output.FeaturesFile = *outputFile
		}
	})
	if len(tFlags) > 0 {
		cfg.Transform.TFunctionals = tFlags
	}
	if len(pFlags) > 0 {
		cfg.Transform.PFunctionals = pFlags
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(cfg, *quiet, *verbose, *debug)

	ts, err := functional.ParseTList(cfg.Transform.TFunctionals)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	ps, regime, err := functional.ParsePList(cfg.Transform.PFunctionals)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	dev := backend.NewCPU(backend.CPUOptions{
		Workers:     cfg.Backend.Workers,
		MemoryLimit: cfg.MemoryLimit(),
		Logger:      logger,
	})
	if logger.Enabled(logging.Trace) {
		info := dev.Device()
		logger.Tracef("Using %s with %d workers, memory limit %d bytes, features [%s]",
			info.Name, info.Workers, info.MemoryLimit, strings.Join(info.Features, " "))
	}

	img, err := imageio.Read(*inputFile)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	logger.Infof("Loaded %s (%dx%d)", *inputFile, img.Width, img.Height)

	params := &tracetransform.Params{
		AngleStep: cfg.Transform.AngleStep,
		Parallel:  cfg.Transform.Parallel,
	}
	if logger.Enabled(logging.Trace) {
		params.OnSinogram = sinogramWriter(cfg.Output.SinogramDir, logger)
	}

	transformer, err := tracetransform.NewTransformer(dev, params, logger)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	// Run the trace transform pipeline
	logger.Infof("Running %d T- and %d %s P-functionals...", len(ts), len(ps), regime)
	startTime := time.Now()
	features, err := transformer.Transform(img, ts, ps)
	if err != nil {
		logger.Errorf("Trace transform failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("Trace transform completed in %.2f seconds", time.Since(startTime).Seconds())

	if err := visualization.SaveFeatures(cfg.Output.FeaturesFile, features); err != nil {
		logger.Errorf("Failed to save features: %v", err)
		os.Exit(1)
	}
	logger.Infof("Feature matrix saved to: %s", cfg.Output.FeaturesFile)

	// Write every trace separately in verbose mode
	if logger.Enabled(logging.Debug) {
		for j, header := range features.Headers {
			filename := filepath.Join(cfg.Output.TraceDir, "trace_"+header+".csv")
			if err := visualization.WriteTrace(filename, header, features.Column(j)); err != nil {
				logger.Warnf("Failed to save trace %s: %v", header, err)
			}
		}
		logger.Debugf("Traces saved to: %s", cfg.Output.TraceDir)
	}

	stats := dev.Stats()
	logger.Debugf("Device memory: peak %d bytes over %d allocations", stats.PeakBytes, stats.Allocations)
}

func newLogger(cfg *config.Config, quiet, verbose, debug bool) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	opts := logging.Options{Threshold: level, Timestamps: cfg.Logging.Timestamps}
	switch {
	case debug:
		opts.Threshold = logging.Trace
		opts.Timestamps = true
		opts.Levels = true
	case verbose:
		opts.Threshold = logging.Debug
	case quiet:
		opts.Threshold = logging.Warning
	}
	return logging.New(os.Stderr, opts)
}

// sinogramWriter saves every sinogram of the run as an image
func sinogramWriter(dir string, logger *logging.Logger) func(functional.T, string, *mat.Dense) {
	// T-functionals may run concurrently
	var mu sync.Mutex
	return func(t functional.T, stage string, m *mat.Dense) {
		filename := filepath.Join(dir, fmt.Sprintf("sinogram_%s_%s.png", t.Name(), stage))
		mu.Lock()
		defer mu.Unlock()
		if err := visualization.SaveSinogram(filename, m); err != nil {
			logger.Warnf("Failed to save sinogram %s: %v", filename, err)
			return
		}
		logger.Tracef("Saved sinogram %s", filename)
	}
}
