// Package driver runs the coroutine lowering over whole modules: it
// loads and saves msgpack module snapshots and fans the per-function
// state transform out over a worker pool.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"coil/internal/coroutine"
	"coil/internal/diag"
	"coil/internal/mir"
	"coil/internal/observ"
	"coil/internal/trace"
	"coil/internal/types"
)

// LowerOptions tunes one LowerModule run.
type LowerOptions struct {
	// Jobs bounds the worker pool; 0 means GOMAXPROCS.
	Jobs int
	// Panic selects the unwinding model handed to the transform.
	Panic coroutine.PanicStrategy
	// ValidateConflicts enables the aliasing re-check inside the pass.
	ValidateConflicts bool
	// MaxDiagnostics caps each function's bag.
	MaxDiagnostics int
	// Progress receives per-function events (optional).
	Progress ProgressSink
}

// FuncResult is the outcome of lowering one body.
type FuncResult struct {
	Name string
	// Skipped is set for bodies that are not coroutines.
	Skipped bool
	// Err is set when the transform rejected the body.
	Err error
	// Bag holds the function's delayed diagnostics (witness gaps,
	// structural findings).
	Bag *diag.Bag
	// Timing is the function's phase report.
	Timing observ.Report
}

// LowerResult is the outcome of one whole-module run.
type LowerResult struct {
	// Funcs follows module order regardless of worker scheduling.
	Funcs []FuncResult

	Lowered int
	Skipped int
	Failed  int

	// Timing folds every function's timer into one module report.
	Timing observ.Report
}

// HasErrors reports whether any function failed or bagged an error.
func (r *LowerResult) HasErrors() bool {
	if r.Failed > 0 {
		return true
	}
	for i := range r.Funcs {
		if r.Funcs[i].Bag != nil && r.Funcs[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// LowerModule lowers every coroutine body in m in place. Each body gets
// its own worker, diagnostic bag and timer; results come back in module
// order. The module itself must be structurally valid: validation
// findings of coroutine bodies fail those bodies without aborting the
// rest of the run.
func LowerModule(ctx context.Context, m *mir.Module, opts LowerOptions) (*LowerResult, error) {
	if m == nil {
		return nil, fmt.Errorf("driver: nil module")
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 100
	}

	tracer := trace.FromContext(ctx)
	driverSpan := trace.Begin(tracer, trace.ScopeDriver, "lower-module", 0)

	// Параллельные воркеры не должны писать в общий интернер, поэтому
	// типы получателей (ref/pin/rawptr), которые синтез интернирует,
	// создаются заранее, пока поток один.
	preinternReceiverTypes(m)

	res := &LowerResult{Funcs: make([]FuncResult, len(m.Funcs))}
	timers := make([]*observ.Timer, len(m.Funcs))

	// Все queued/skipped уходят до запуска воркеров, чтобы после этой
	// точки в сток писали только они.
	for i, f := range m.Funcs {
		res.Funcs[i].Name = f.Name
		if !f.IsCoroutine() {
			res.Funcs[i].Skipped = true
			res.Skipped++
			emit(opts.Progress, Event{Func: f.Name, Stage: StageLower, Status: StatusSkipped})
			continue
		}
		emit(opts.Progress, Event{Func: f.Name, Stage: StageLower, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(m.Funcs), 1)))

	for i, f := range m.Funcs {
		if res.Funcs[i].Skipped {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			emit(opts.Progress, Event{Func: f.Name, Stage: StageLower, Status: StatusWorking})

			bag := diag.NewBag(maxDiags)
			timer := observ.NewTimer()
			timers[i] = timer
			res.Funcs[i].Bag = bag

			err := lowerOne(tracer, driverSpan.ID(), m.Types, f, bag, timer, opts)
			res.Funcs[i].Err = err
			res.Funcs[i].Timing = timer.Report()

			status := StatusDone
			if err != nil {
				status = StatusError
			}
			emit(opts.Progress, Event{
				Func: f.Name, Stage: StageLower, Status: status,
				Err: err, Elapsed: time.Since(start),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		driverSpan.End("canceled")
		return nil, err
	}

	total := observ.NewTimer()
	for i := range res.Funcs {
		fr := &res.Funcs[i]
		if fr.Skipped {
			continue
		}
		if fr.Err != nil {
			res.Failed++
		} else {
			res.Lowered++
		}
		total.Merge(fr.Name, timers[i])
	}
	res.Timing = total.Report()

	driverSpan.End(fmt.Sprintf("lowered=%d skipped=%d failed=%d",
		res.Lowered, res.Skipped, res.Failed))
	return res, nil
}

func lowerOne(tracer trace.Tracer, parent uint64,
	typesIn *types.Interner, f *mir.Body, bag *diag.Bag, timer *observ.Timer,
	opts LowerOptions) error {

	span := trace.Begin(tracer, trace.ScopeFunc, "func:"+f.Name, parent)
	defer span.End("")

	idx := timer.Begin("validate")
	findings := mir.ValidateBody(f, typesIn)
	timer.End(idx, "")
	if len(findings) > 0 {
		for _, fd := range findings {
			bag.Add(diag.NewError(fd.Code, fd.Span, fd.Msg).InFunc(f.Name))
		}
		return fmt.Errorf("driver: %s: %d structural findings", f.Name, len(findings))
	}

	idx = timer.Begin("transform")
	err := coroutine.Transform(f, typesIn, coroutine.Options{
		Panic:             opts.Panic,
		ValidateConflicts: opts.ValidateConflicts,
	}, funcReporter{name: f.Name, bag: bag})
	timer.End(idx, "")
	if err != nil {
		return err
	}

	trace.Point(tracer, trace.ScopePass, "layout",
		fmt.Sprintf("fields=%d variants=%d",
			f.Coroutine.Layout.FieldCount(), f.Coroutine.Layout.VariantCount()),
		span.ID())
	return nil
}

// funcReporter stamps the function name onto bagged diagnostics.
type funcReporter struct {
	name string
	bag  *diag.Bag
}

func (r funcReporter) Report(d diag.Diagnostic) {
	r.bag.Add(d.InFunc(r.name))
}

func preinternReceiverTypes(m *mir.Module) {
	for _, f := range m.Funcs {
		if !f.IsCoroutine() {
			continue
		}
		envTy := f.Coroutine.SelfTy
		refTy := m.Types.Intern(types.MakeRef(envTy, true))
		m.Types.Intern(types.MakePin(refTy))
		m.Types.Intern(types.MakeRawPtr(envTy, true))
	}
}
