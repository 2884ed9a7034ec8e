package streamgen

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/logger"
)

// Catalog is everything a Source knows about the interfaces to adapt.
type Catalog struct {
	Interfaces []Interface

	// Warnings are relayed to the host as SG002 diagnostics
	Warnings []string
}

// Source loads the interface catalog.
type Source interface {
	// Name identifies the source in logs, e.g. "packages" or "manifest"
	Name() string
	Load(ctx context.Context) (*Catalog, error)
}

// Options configure a Driver.
type Options struct {
	// Local is the package generated units are declared in. Types of this
	// package render unqualified.
	Local Package

	// Workers bounds concurrent per-interface pipelines; 0 means GOMAXPROCS
	Workers int

	// Canary emits a marker unit on every pass, so the host can tell the
	// generator ran even when nothing was generated
	Canary bool

	// Verbosity follows the -v count; from trace level on the source of
	// rejected units is logged
	Verbosity int
}

// Summary is the outcome of one pass.
type Summary struct {
	RunID      string        `json:"run_id"`
	Interfaces int           `json:"interfaces"`
	Emitted    int           `json:"emitted"`
	Rejected   int           `json:"rejected"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Files      []string      `json:"files"`
	Duration   time.Duration `json:"duration"`
}

// CanaryRenderer is an optional interface a Target implements to render the
// marker unit emitted when Options.Canary is set.
type CanaryRenderer interface {
	RenderCanary(local Package) (*Unit, error)
}

// Driver runs generation passes: it loads the catalog, runs the pipeline for
// every interface, and emits units or reports diagnostics.
type Driver struct {
	target   Target
	emitter  Emitter
	reporter Reporter
	opts     Options
	log      *zap.SugaredLogger
}

// NewDriver creates a driver. A nil reporter discards diagnostics.
func NewDriver(target Target, emitter Emitter, reporter Reporter, opts Options) *Driver {
	if reporter == nil {
		reporter = ReporterFunc(func(Diagnostic) {})
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Driver{
		target:   target,
		emitter:  emitter,
		reporter: reporter,
		opts:     opts,
		log:      logger.ComponentLogger("streamgen.driver"),
	}
}

// outcome of the pipeline for one interface
type outcome struct {
	unit     *Unit
	err      error
	duration time.Duration
}

// Run executes one pass over src.
//
// Only a catalog that cannot be loaded fails the pass; it is reported as
// SG999 and returned. Every per-interface failure, including a panic, is
// reported and the pass continues. Units are emitted and diagnostics
// reported in catalog order regardless of which pipeline finished first.
func (d *Driver) Run(ctx context.Context, src Source) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	log := d.log.With(logger.FieldRunID, summary.RunID)
	ctx = logger.WithRunID(ctx, summary.RunID)

	d.reporter.Report(infof(CodeStarted, "streamgen started (%s target, %s source)", d.target.Language(), src.Name()))
	if d.opts.Canary {
		d.emitCanary(ctx, &summary, log)
	}

	catalog, err := src.Load(ctx)
	if err != nil {
		err = errors.Wrapf(errors.WithStack(err), "%s source", src.Name())
		d.reporter.Report(errorf(CodeInternal, "catalog could not be loaded: %v", err))
		log.Errorw("Catalog load failed", logger.FieldSource, src.Name(), logger.FieldError, err)
		summary.Failed++
		summary.Duration = time.Since(start)
		d.reportSummary(summary)
		return summary, err
	}

	for _, w := range catalog.Warnings {
		d.reporter.Report(Diagnostic{Code: CodeCatalogWarning, Severity: SeverityWarning, Message: w})
	}
	summary.Interfaces = len(catalog.Interfaces)
	d.reporter.Report(infof(CodeCatalog, "%d interfaces found", len(catalog.Interfaces)))
	log.Infow("Catalog loaded",
		logger.FieldSource, src.Name(),
		logger.FieldCount, len(catalog.Interfaces),
		logger.FieldWorkers, d.opts.Workers)

	outcomes := make([]outcome, len(catalog.Interfaces))
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for i, owner := range catalog.Interfaces {
		g.Go(func() error {
			began := time.Now()
			unit, err := d.Generate(owner)
			outcomes[i] = outcome{unit: unit, err: err, duration: time.Since(began)}
			return nil
		})
	}
	g.Wait()

	seen := make(map[string]string, len(outcomes))
	for i, o := range outcomes {
		d.settle(ctx, catalog.Interfaces[i], o, seen, &summary, log)
	}

	summary.Duration = time.Since(start)
	log.Infow("Generation pass finished",
		logger.FieldEmitted, summary.Emitted,
		logger.FieldRejected, summary.Rejected,
		logger.FieldFailed, summary.Failed,
		logger.FieldDurationMS, summary.Duration.Milliseconds())
	d.reportSummary(summary)
	return summary, nil
}

// settle emits or reports the outcome of one interface.
func (d *Driver) settle(ctx context.Context, owner Interface, o outcome, seen map[string]string, summary *Summary, log *zap.SugaredLogger) {
	name := owner.QualifiedName()
	log = log.With(logger.FieldInterface, name)

	var rejection *Rejection
	switch {
	case errors.As(o.err, &rejection):
		summary.Rejected++
		d.reporter.Report(Diagnostic{
			Code:      CodeRejected,
			Severity:  SeverityError,
			Message:   fmt.Sprintf("generated unit rejected: %s", rejection.Reason),
			Interface: name,
			File:      rejection.Filename,
		})
		log.Warnw("Unit rejected", logger.FieldFile, rejection.Filename, logger.FieldReason, rejection.Reason)
		if o.unit != nil && logger.ShouldLogTrace(d.opts.Verbosity) {
			log.Debugw("Rejected source", logger.FieldUnit, string(o.unit.Source))
		}
		return
	case o.err != nil:
		summary.Failed++
		d.reporter.Report(Diagnostic{
			Code:      CodeInternal,
			Severity:  SeverityError,
			Message:   fmt.Sprintf("generation failed: %+v", o.err),
			Interface: name,
		})
		log.Errorw("Generation failed", logger.FieldError, o.err)
		return
	case o.unit == nil:
		summary.Skipped++
		log.Debugw("No adaptable events", logger.FieldCount, len(owner.Events))
		return
	}

	if prev, dup := seen[o.unit.Filename]; dup {
		summary.Failed++
		d.reporter.Report(Diagnostic{
			Code:      CodeInternal,
			Severity:  SeverityError,
			Message:   fmt.Sprintf("unit %s already generated for %s", o.unit.TypeName, prev),
			Interface: name,
			File:      o.unit.Filename,
		})
		return
	}
	seen[o.unit.Filename] = name

	if err := d.emitter.Emit(ctx, o.unit); err != nil {
		summary.Failed++
		d.reporter.Report(Diagnostic{
			Code:      CodeInternal,
			Severity:  SeverityError,
			Message:   fmt.Sprintf("unit could not be emitted: %v", err),
			Interface: name,
			File:      o.unit.Filename,
		})
		return
	}
	summary.Emitted++
	summary.Files = append(summary.Files, o.unit.Filename)
	log.Debugw("Unit emitted",
		logger.FieldFile, o.unit.Filename,
		logger.FieldDurationMS, o.duration.Milliseconds())
}

// Generate runs the pure pipeline for one interface: collect imports,
// classify every valid event, synthesize adapters, assemble and validate.
//
// It returns a nil unit when the interface has no adaptable event. A unit
// failing validation is returned together with its *Rejection. Panics are
// recovered and returned as errors.
func (d *Driver) Generate(owner Interface) (unit *Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			unit = nil
			err = errors.WithStack(errors.Newf("panic while generating %s: %v", owner.QualifiedName(), r))
		}
	}()

	imports := CollectImports(d.target.Baseline(), d.opts.Local, owner, d.target.Locals()...)
	short := ShortName(owner.Name)
	container := TypeName(short)

	// parameters must not shadow the types the unit declares
	taken := imports.Names()
	taken[container] = true
	for _, ev := range owner.ValidEvents() {
		taken[ArgsTypeName(short, ev.Name)] = true
	}
	escape := func(name string) string { return d.target.Escape(name, taken) }

	var wrappers []WrapperSpec
	for _, ev := range owner.ValidEvents() {
		shape, err := Classify(ev.Callback, escape)
		if errors.IsUnusableShape(err) {
			d.log.Debugw("Event skipped", logger.FieldInterface, owner.QualifiedName(), logger.FieldEvent, ev.Name, logger.FieldReason, err)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "event %s", ev.Name)
		}

		w, err := d.target.Wrapper(WrapperRequest{
			Container: container,
			ShortName: short,
			Owner:     owner,
			Event:     ev,
			Shape:     shape,
			Qualifier: imports.Qualifier(),
		})
		if errors.IsUnusableShape(err) {
			d.log.Debugw("Event skipped", logger.FieldInterface, owner.QualifiedName(), logger.FieldEvent, ev.Name, logger.FieldReason, err)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "event %s", ev.Name)
		}
		wrappers = append(wrappers, w)
	}

	unit, err = Assemble(d.target, d.opts.Local, owner, imports, wrappers)
	if err != nil || unit == nil {
		return nil, err
	}

	formatted, err := d.target.Validate(unit.Filename, unit.Source)
	if err != nil {
		return unit, err
	}
	unit.Source = formatted
	return unit, nil
}

func (d *Driver) emitCanary(ctx context.Context, summary *Summary, log *zap.SugaredLogger) {
	cr, ok := d.target.(CanaryRenderer)
	if !ok {
		log.Debugw("Target has no canary unit", logger.FieldLanguage, d.target.Language())
		return
	}
	unit, err := cr.RenderCanary(d.opts.Local)
	if err == nil {
		err = d.emitter.Emit(ctx, unit)
	}
	if err != nil {
		summary.Failed++
		d.reporter.Report(errorf(CodeInternal, "canary unit could not be emitted: %v", err))
		return
	}
	summary.Files = append(summary.Files, unit.Filename)
}

func (d *Driver) reportSummary(s Summary) {
	if sr, ok := d.reporter.(SummaryReporter); ok {
		sr.ReportSummary(s)
	}
}
