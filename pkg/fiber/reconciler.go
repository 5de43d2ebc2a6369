package fiber

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
	"github.com/vango-dev/didact/pkg/host/idle"
	"github.com/vango-dev/didact/pkg/metrics"
)

// Default tracer name for render passes.
const defaultTracerName = "didact"

// Pass triggers.
const (
	TriggerRender = "render"
	TriggerState  = "state"
)

// yieldThreshold is the remaining slice time below which the work loop
// yields back to the host.
const yieldThreshold = time.Millisecond

// CommitStats describes one committed render pass.
type CommitStats struct {
	Pass       uint64
	Trigger    string
	Units      int
	Slices     int
	Placements int
	Updates    int
	Deletions  int
	Duration   time.Duration
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithTracer sets the tracer used for render pass spans.
// Default: otel.Tracer("didact") from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = tracer
	}
}

// WithMetrics sets the metrics collector. Default: none.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Reconciler) {
		r.metrics = c
	}
}

// WithCommitHook registers fn to run after every commit.
func WithCommitHook(fn func(CommitStats)) Option {
	return func(r *Reconciler) {
		r.onCommit = fn
	}
}

// passState tracks the render pass in progress.
type passState struct {
	id      uint64
	trigger string
	span    trace.Span
	units   int
	slices  int
}

// Reconciler owns one fiber tree and the host tree it drives.
type Reconciler struct {
	adapter   host.Adapter
	scheduler host.IdleScheduler
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *metrics.Collector
	onCommit  func(CommitStats)

	currentRoot *Fiber
	wipRoot     *Fiber
	nextUnit    *Fiber
	deletions   []*Fiber

	// Last render request; state updates re-render from here.
	hasRoot     bool
	rootElement *element.Element
	container   host.Node

	scheduled      bool
	looping        bool
	inUnit         bool
	pendingRestart bool
	pendingTrigger string

	pass   passState
	passes uint64
	last   CommitStats
}

// New creates a Reconciler that mutates hosts through adapter and runs work
// in slices obtained from scheduler.
func New(adapter host.Adapter, scheduler host.IdleScheduler, opts ...Option) *Reconciler {
	r := &Reconciler{
		adapter:   adapter,
		scheduler: scheduler,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(defaultTracerName)
	}
	return r
}

// Render requests that container display el. Any pass in progress is
// discarded. If container is the node of the last committed root, the new
// tree is reconciled against it; otherwise every node is placed fresh.
// Nothing happens until the scheduler grants idle time. Called from inside a
// component, the request replaces the pass once that component returns.
//
// Host nodes must be comparable with ==.
func (r *Reconciler) Render(el *element.Element, container host.Node) {
	r.hasRoot = true
	r.rootElement = el
	r.container = container
	if r.inUnit {
		r.deferRestart(TriggerRender)
		return
	}
	r.beginPass(r.newRoot(), TriggerRender)
}

// newRoot builds a root fiber from the last render request.
func (r *Reconciler) newRoot() *Fiber {
	root := &Fiber{node: r.container}
	if r.rootElement != nil {
		root.Props.Children = []*element.Element{r.rootElement}
	}
	if r.currentRoot != nil && r.currentRoot.node == r.container {
		root.alternate = r.currentRoot
	}
	return root
}

// scheduleUpdate starts a fresh pass from the root. A request made while a
// unit is running takes effect once the unit returns.
func (r *Reconciler) scheduleUpdate() {
	if r.inUnit {
		r.deferRestart(TriggerState)
		return
	}
	if !r.hasRoot {
		errors.Fault(errors.CodeNoRenderRoot, "state update with no render root")
	}
	r.beginPass(r.newRoot(), TriggerState)
}

// deferRestart records a restart for performUnit. A pending render request
// keeps its trigger over later state updates.
func (r *Reconciler) deferRestart(trigger string) {
	if !r.pendingRestart || trigger == TriggerRender {
		r.pendingTrigger = trigger
	}
	r.pendingRestart = true
}

func (r *Reconciler) beginPass(root *Fiber, trigger string) {
	if r.wipRoot != nil {
		r.endPass("superseded", nil)
		r.metrics.PassSuperseded()
	}
	r.passes++
	r.wipRoot = root
	r.nextUnit = root
	r.deletions = nil

	_, span := r.tracer.Start(context.Background(), "didact.render",
		trace.WithAttributes(
			attribute.Int64("didact.pass", int64(r.passes)),
			attribute.String("didact.trigger", trigger),
		),
	)
	r.pass = passState{id: r.passes, trigger: trigger, span: span}
	r.metrics.PassStarted(trigger)
	r.logger.Debug("render pass started", "pass", r.passes, "trigger", trigger)

	if !r.scheduled && !r.looping {
		r.scheduled = true
		r.scheduler.RequestIdle(r.WorkLoop)
	}
}

// endPass abandons the pass in progress.
func (r *Reconciler) endPass(reason string, err error) {
	p := r.pass
	r.logger.Debug("render pass discarded",
		"pass", p.id,
		"reason", reason,
		"units", p.units,
	)
	if p.span != nil {
		p.span.SetAttributes(
			attribute.String("didact.outcome", reason),
			attribute.Int("didact.units", p.units),
		)
		if err != nil {
			p.span.RecordError(err)
			p.span.SetStatus(codes.Error, err.Error())
		}
		p.span.End()
	}
	r.wipRoot = nil
	r.nextUnit = nil
	r.deletions = nil
	r.pass = passState{}
}

// WorkLoop runs units of work until the deadline leaves less than a
// millisecond, then commits if the pass is complete or asks for another
// slice otherwise. It is the callback handed to the IdleScheduler.
func (r *Reconciler) WorkLoop(d host.Deadline) {
	r.scheduled = false
	if r.nextUnit == nil && r.wipRoot == nil {
		return
	}
	r.looping = true
	r.pass.slices++
	r.metrics.Slice()

	yield := false
	for r.nextUnit != nil && !yield {
		r.nextUnit = r.performUnit(r.nextUnit)
		yield = d.TimeRemaining() < yieldThreshold
	}
	r.looping = false

	if r.nextUnit == nil && r.wipRoot != nil {
		r.commitRoot()
	}
	if r.nextUnit != nil && !r.scheduled {
		r.scheduled = true
		r.scheduler.RequestIdle(r.WorkLoop)
	}
}

// performUnit runs one unit and handles restarts requested during it. A
// panic abandons the pass and is re-raised.
func (r *Reconciler) performUnit(f *Fiber) (next *Fiber) {
	r.inUnit = true
	defer func() {
		r.inUnit = false
		if rec := recover(); rec != nil {
			r.pendingRestart = false
			r.pendingTrigger = ""
			r.looping = false
			var err error
			if de, ok := errors.AsFault(rec); ok {
				err = de
			} else {
				err = fmt.Errorf("%v", rec)
			}
			r.logger.Error("render pass failed", "pass", r.pass.id, "fiber", f.label(), "error", err)
			r.endPass("failed", err)
			panic(rec)
		}
	}()

	next = r.performUnitOfWork(f)
	r.pass.units++
	r.metrics.Unit()

	if r.pendingRestart {
		trigger := r.pendingTrigger
		r.pendingRestart = false
		r.pendingTrigger = ""
		r.inUnit = false
		r.beginPass(r.newRoot(), trigger)
		return r.nextUnit
	}
	return next
}

// Flush runs all pending work to completion, ignoring deadlines.
func (r *Reconciler) Flush() {
	for r.wipRoot != nil {
		r.WorkLoop(idle.Unlimited{})
	}
}

// Pending reports whether a render pass is in progress.
func (r *Reconciler) Pending() bool {
	return r.wipRoot != nil
}

// Current returns the root of the last committed fiber tree, or nil.
func (r *Reconciler) Current() *Fiber {
	return r.currentRoot
}

// LastCommit returns the stats of the last commit.
func (r *Reconciler) LastCommit() CommitStats {
	return r.last
}
