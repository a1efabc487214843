package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/schnet/internal/config"
	"github.com/OpenTraceLab/schnet/internal/logging"
	"github.com/OpenTraceLab/schnet/internal/metrics"
	"github.com/OpenTraceLab/schnet/internal/pipeline"
	"github.com/OpenTraceLab/schnet/internal/storage"
)

// app bundles the services shared by every subcommand
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *storage.Store
	proc     *pipeline.Processor
}

// newApp loads configuration, applies flags set on cmd over it and wires
// the pipeline.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		cfg.Set(config.KeyTolerance, strconv.FormatFloat(tolerance, 'g', -1, 64))
	}
	if flags.Changed("rotate-pins") {
		cfg.Set(config.KeyRotatePins, strconv.FormatBool(rotatePins))
	}
	if flags.Changed("max-depth") {
		cfg.Set(config.KeyMaxDepth, strconv.Itoa(maxDepth))
	}
	if f := flags.Lookup("strip"); f != nil && f.Changed {
		cfg.Set(config.KeyStripPresentation, f.Value.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	level := cfg.GetString(config.KeyLogLevel, "info")
	if verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(logging.Config{
		Level:  level,
		Format: cfg.GetString(config.KeyLogFormat, "json"),
		Fields: map[string]string{"service": "schnet"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	proc, err := pipeline.New(pipeline.OptionsFromConfig(cfg), logger, m)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  m,
		store:    storage.New(cfg.GetS3Config(), logger),
		proc:     proc,
	}, nil
}

// process runs the pipeline over input; "-" reads stdin
func (a *app) process(ctx context.Context, input string) (*pipeline.Result, error) {
	if input == "-" {
		return a.proc.ProcessReader(ctx, "stdin", os.Stdin)
	}

	loc, err := storage.ParseLocation(input)
	if err != nil {
		return nil, err
	}
	rc, err := a.store.Open(ctx, input)
	if err != nil {
		a.metrics.RecordError(metrics.ErrorIO)
		return nil, err
	}
	defer rc.Close()

	return a.proc.ProcessReader(ctx, loc.Name(), rc)
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func writeLines(w io.Writer, lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
