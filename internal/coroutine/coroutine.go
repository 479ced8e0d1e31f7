// Package coroutine lowers coroutine bodies into allocation-free state
// machines.
//
// The input body is an ordinary CFG with yield terminators: local 1 is
// the captured environment by value, local 2 the resume argument, and
// the return slot already has the yielded/completed carrier type.
// Transform rewrites the body in place into the resume function and
// synthesizes the destroy shim:
//
//   - every local live across some yield moves into a field of a
//     per-state variant of the receiver;
//   - yields become "write carrier, set discriminant, return";
//   - a dispatch switch on the discriminant becomes the new entry;
//   - receiver drops are elaborated into per-field ladders;
//   - the destroy shim is a clone of the rewritten body entered through
//     its own dispatch: suspension states with a drop path, plus
//     Unresumed going to a clean drop of the environment.
//
// The discriminant encoding is part of the contract: 0 Unresumed,
// 1 Returned, 2 Poisoned, 3+i for the i-th suspension point in block
// order. Shape violations come back as errors, gaps in the front end's
// witness list as delayed diagnostics, broken internal invariants as
// panics.
package coroutine

import (
	"fmt"

	"coil/internal/dataflow"
	"coil/internal/diag"
	"coil/internal/drops"
	"coil/internal/mir"
	"coil/internal/types"
)

// PanicStrategy selects the unwinding model of the lowered code.
type PanicStrategy uint8

const (
	// PanicUnwind keeps unwind edges and poisons the state on the way out.
	PanicUnwind PanicStrategy = iota
	// PanicAbort assumes panics never unwind; no poison paths are built.
	PanicAbort
)

func (s PanicStrategy) String() string {
	if s == PanicAbort {
		return "abort"
	}
	return "unwind"
}

// ParsePanicStrategy reads the flag/config spelling of a strategy.
func ParsePanicStrategy(s string) (PanicStrategy, error) {
	switch s {
	case "", "unwind":
		return PanicUnwind, nil
	case "abort":
		return PanicAbort, nil
	}
	return PanicUnwind, fmt.Errorf("unknown panic strategy %q (want unwind or abort)", s)
}

// Options tunes one lowering run.
type Options struct {
	Panic PanicStrategy
	// ValidateConflicts re-checks every assignment between saved locals
	// against the conflict relation and panics on a violation.
	ValidateConflicts bool
}

// Transform lowers f in place into its resume function, filling in
// f.Coroutine.Layout and f.Coroutine.DropShim. Witness gaps are
// reported through rep and do not abort the lowering.
func Transform(f *mir.Body, typesIn *types.Interner, opts Options, rep diag.Reporter) error {
	if f == nil {
		return fmt.Errorf("lower: nil body")
	}
	if typesIn == nil {
		return fmt.Errorf("lower %s: nil type interner", f.Name)
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}

	ci := f.Coroutine
	if ci == nil {
		return fmt.Errorf("lower %s: body is not a coroutine", f.Name)
	}
	if ci.Layout != nil || ci.DropShim != nil || ci.YieldTy == types.NoTypeID {
		return fmt.Errorf("lower %s: body is already lowered", f.Name)
	}
	if len(f.Blocks) == 0 {
		return fmt.Errorf("lower %s: body has no blocks", f.Name)
	}
	if f.ArgCount != 2 || len(f.Locals) <= int(mir.ResumeLocal) {
		return fmt.Errorf("lower %s: want exactly receiver and resume argument, have %d args over %d locals",
			f.Name, f.ArgCount, len(f.Locals))
	}
	info, ok := typesIn.CoroInfo(ci.SelfTy)
	if !ok {
		return fmt.Errorf("lower %s: receiver type %s is not a registered coroutine",
			f.Name, typesIn.Format(ci.SelfTy))
	}
	if f.Locals[mir.SelfLocal].Type != ci.SelfTy {
		return fmt.Errorf("lower %s: receiver local has type %s, coroutine info says %s",
			f.Name, typesIn.Format(f.Locals[mir.SelfLocal].Type), typesIn.Format(ci.SelfTy))
	}
	carrierTy := f.Locals[mir.ReturnLocal].Type
	yieldTy, _, ok := typesIn.CoroStatePayloads(carrierTy)
	if !ok || yieldTy != ci.YieldTy {
		return fmt.Errorf("lower %s: return slot must carry the yielded/completed state of %s, has %s",
			f.Name, typesIn.Format(ci.YieldTy), typesIn.Format(carrierTy))
	}
	if f.Locals[mir.ResumeLocal].Type != ci.ResumeTy {
		return fmt.Errorf("lower %s: resume argument has type %s, coroutine info says %s",
			f.Name, typesIn.Format(f.Locals[mir.ResumeLocal].Type), typesIn.Format(ci.ResumeTy))
	}

	// Физический слот резюм-аргумента перезаписывается на каждом
	// включении, поэтому все обращения к нему переезжают на обычный
	// локал, инициализируемый на входе. Дальше он живёт по общим
	// правилам и при необходимости сохраняется в состоянии.
	replaceResumeLocal(f)

	always := dataflow.AlwaysLiveLocals(f)
	li := liveAcrossYields(f, always, info.Movable)

	checkWitness(f, typesIn, info, li.saved, rep)
	if opts.ValidateConflicts {
		checkFieldAliasing(f, li.saved, li.conflicts)
	}

	remap, layout := computeLayout(f, li)
	canRet := canReturnNormally(f, typesIn)

	// Лестницы дропов строятся до переписывания мест: получатель здесь
	// ещё обычный агрегат, а флаги дропов ещё обычные локалы.
	dropClean := drops.InsertCleanDrop(f, mir.SelfLocal)
	mayUnwind := opts.Panic != PanicAbort
	if _, err := drops.ElaborateReceiverDrops(f, typesIn, mir.SelfLocal, mayUnwind); err != nil {
		return fmt.Errorf("lower %s: %w", f.Name, err)
	}

	rw := &rewriter{
		f:         f,
		remap:     remap,
		storageAt: li.storageAt,
		carrierTy: carrierTy,
		resumeTy:  ci.ResumeTy,
	}
	rw.run()

	if len(rw.points) != len(li.liveAt) {
		panic(fmt.Sprintf("lower %s: analyzer saw %d suspension points, rewriter found %d",
			f.Name, len(li.liveAt), len(rw.points)))
	}

	ci.YieldTy = types.NoTypeID
	ci.Layout = layout

	// Шим клонируется до того, как resume-синтез добавит отравление и
	// свой диспетчер.
	ci.DropShim = createDropShim(f, rw, typesIn, always, dropClean)
	createResumeFunction(f, rw, typesIn, always, canRet, mayUnwind)
	return nil
}
