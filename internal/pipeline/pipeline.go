// Package pipeline runs the parse, build, synthesize and serialize stages
// over one schematic source and reports what happened.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/schnet/internal/config"
	"github.com/OpenTraceLab/schnet/internal/metrics"
	"github.com/OpenTraceLab/schnet/pkg/kicad/export"
	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

// Stage names used in logs and the stage duration metric
const (
	StageParse      = "parse"
	StageBuild      = "build"
	StageSynthesize = "synthesize"
	StageSerialize  = "serialize"
)

// Options configures a Processor
type Options struct {
	Tolerance         float64
	RotatePins        bool
	MaxDepth          int
	StripPresentation bool
}

// DefaultOptions returns the built-in defaults
func DefaultOptions() Options {
	return Options{
		Tolerance: sexp.DefaultTolerance,
		MaxDepth:  kicadsexp.DefaultMaxDepth,
	}
}

// OptionsFromConfig reads processing options from cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Tolerance:         cfg.Tolerance(),
		RotatePins:        cfg.RotatePins(),
		MaxDepth:          cfg.MaxDepth(),
		StripPresentation: cfg.StripPresentation(),
	}
}

// Result is the outcome of one successful run
type Result struct {
	ProcessingID string
	Schematic    *schematic.Schematic
	Document     *export.Document
	Nets         []*netlist.Net
	Stats        export.Statistics
	Collisions   []*netlist.Net
	Hash         string // content hash, see export.ContentHash
	Duration     time.Duration
}

// Processor runs documents through the pipeline. It holds no per-document
// state and may be shared between goroutines.
type Processor struct {
	opts    Options
	netCfg  *netlist.Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// New validates opts and creates a Processor. A nil logger discards logs;
// nil metrics record into a private registry.
func New(opts Options, logger *zap.Logger, m *metrics.Metrics) (*Processor, error) {
	netCfg := &netlist.Config{Tolerance: opts.Tolerance, RotatePins: opts.RotatePins}
	if err := netCfg.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", opts.MaxDepth)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &Processor{
		opts:    opts,
		netCfg:  netCfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// ProcessReader reads all of r and processes it under name
func (p *Processor) ProcessReader(ctx context.Context, name string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", name, err)
		p.fail(name, "", metrics.ErrorIO, err)
		return nil, err
	}
	return p.Process(ctx, name, data)
}

// Process runs every stage over data. name is recorded as the original
// filename in the document.
func (p *Processor) Process(ctx context.Context, name string, data []byte) (*Result, error) {
	timer := metrics.NewTimer()
	id := p.newID()
	log := p.logger.With(zap.String("file", name), zap.String("processing_id", id))

	p.metrics.InputBytes.Add(float64(len(data)))

	var root *kicadsexp.List
	err := p.stage(ctx, StageParse, func() (err error) {
		root, err = kicadsexp.ParseRoot(string(data), schematic.RootTag, kicadsexp.Options{MaxDepth: p.opts.MaxDepth})
		return err
	})
	if err != nil {
		return nil, p.fail(name, id, Classify(err), err)
	}

	var sch *schematic.Schematic
	err = p.stage(ctx, StageBuild, func() (err error) {
		sch, err = schematic.Build(root)
		return err
	})
	if err != nil {
		return nil, p.fail(name, id, Classify(err), err)
	}
	for _, d := range sch.Dropped {
		log.Warn("dropped symbol without reference",
			zap.String("lib_id", d.LibraryID),
			zap.Int("offset", d.Offset))
	}

	var nets []*netlist.Net
	err = p.stage(ctx, StageSynthesize, func() (err error) {
		nets, err = netlist.FromSchematic(sch, p.netCfg)
		return err
	})
	if err != nil {
		return nil, p.fail(name, id, Classify(err), err)
	}
	collisions := netlist.Collisions(nets)
	for _, n := range collisions {
		log.Warn("net name collision",
			zap.String("net", n.Name),
			zap.Int("index", n.Index),
			zap.String("key", n.Key()))
	}

	var doc *export.Document
	var hash string
	err = p.stage(ctx, StageSerialize, func() (err error) {
		doc = export.Serialize(sch, nets, export.Options{
			Filename:          name,
			ProcessingID:      id,
			Timestamp:         p.now(),
			StripPresentation: p.opts.StripPresentation,
		})
		hash, err = export.ContentHash(doc)
		return err
	})
	if err != nil {
		return nil, p.fail(name, id, Classify(err), err)
	}

	stats := export.Stats(doc)
	p.metrics.RecordSuccess(stats.Components, stats.Nets, stats.DanglingNets, stats.NameCollisions, len(sch.Dropped))

	res := &Result{
		ProcessingID: id,
		Schematic:    sch,
		Document:     doc,
		Nets:         nets,
		Stats:        stats,
		Collisions:   collisions,
		Hash:         hash,
		Duration:     timer.Duration(),
	}

	log.Info("processed schematic",
		zap.Int("components", stats.Components),
		zap.Int("nets", stats.Nets),
		zap.Int("dangling_nets", stats.DanglingNets),
		zap.Int("unconnected_components", stats.UnconnectedComponents),
		zap.String("hash", hash),
		zap.Duration("duration", res.Duration))

	return res, nil
}

// stage runs fn after checking ctx and records its duration
func (p *Processor) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := metrics.NewTimer()
	err := fn()
	p.metrics.ObserveStage(name, timer.Duration())
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Processor) fail(name, id, kind string, err error) error {
	p.metrics.RecordError(kind)
	p.logger.Error("failed to process schematic",
		zap.String("file", name),
		zap.String("processing_id", id),
		zap.String("kind", kind),
		zap.Error(err))
	return err
}

// Classify maps an error to its metrics kind
func Classify(err error) string {
	switch {
	case errors.Is(err, sexp.ErrNestingTooDeep):
		return metrics.ErrorNesting
	case errors.Is(err, sexp.ErrSyntax):
		return metrics.ErrorSyntax
	case errors.Is(err, sexp.ErrFormat):
		return metrics.ErrorFormat
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ErrorIO
	default:
		return metrics.ErrorOther
	}
}
