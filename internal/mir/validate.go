package mir

import (
	"errors"
	"fmt"

	"coil/internal/diag"
	"coil/internal/source"
	"coil/internal/types"
)

// Finding is one structural problem in a body. Findings keep their
// diagnostic code so callers can either bag them as delayed diagnostics
// or fold them into an error.
type Finding struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Msg)
}

// Validate checks module invariants. Returns an error joining every
// finding of every body.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		for _, fd := range ValidateBody(f, m.Types) {
			errs = append(errs, fmt.Errorf("function %s: %s", f.Name, fd))
		}
	}
	return errors.Join(errs...)
}

// ValidateBody checks one body and returns its findings. A nil result
// means the body is structurally sound.
func ValidateBody(f *Body, typesIn *types.Interner) []Finding {
	if f == nil {
		return nil
	}

	var out []Finding
	report := func(code diag.Code, format string, args ...any) {
		out = append(out, Finding{Code: code, Span: f.Span, Msg: fmt.Sprintf(format, args...)})
	}

	// 1. Каждый блок закрыт терминатором
	validateTerminated(f, report)

	// 2. Все цели переходов существуют
	validateTargets(f, report)

	// 3. Все места ссылаются на существующие локалы
	validateLocals(f, report)

	// 4. Unwind-рёбра ведут только в cleanup-блоки
	validateUnwind(f, report)

	// 5. Yield только внутри корутин и вне cleanup
	validateYield(f, report)

	// 6. Конвенция возвратов
	validateReturns(f, typesIn, report)

	// 7. switch_int: otherwise обязателен, значения кейсов уникальны
	validateSwitches(f, report)

	// 8. Ресивер корутины типизирован её окружением
	validateReceiver(f, typesIn, report)

	return out
}

type reportFn func(code diag.Code, format string, args ...any)

func validateTerminated(f *Body, report reportFn) {
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			report(diag.MirMissingTerminator, "bb%d: unterminated block", i)
		}
	}
}

func validateTargets(f *Body, report reportFn) {
	exists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	for i := range f.Blocks {
		VisitSuccessors(&f.Blocks[i].Term, func(id *BlockID) {
			if !exists(*id) {
				report(diag.MirTargetOutOfRange, "bb%d: target bb%d does not exist", i, *id)
			}
		})
	}
}

func validateLocals(f *Body, report reportFn) {
	exists := func(id LocalID) bool {
		return id >= 0 && int(id) < len(f.Locals)
	}
	checkPlace := func(p *Place, ctx string) {
		if !exists(p.Local) {
			report(diag.MirLocalOutOfRange, "%s: local L%d does not exist", ctx, p.Local)
		}
		for _, proj := range p.Proj {
			if proj.Kind == ProjIndex && proj.Index != NoLocalID && !exists(proj.Index) {
				report(diag.MirLocalOutOfRange, "%s: index local L%d does not exist", ctx, proj.Index)
			}
		}
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Stmts {
			ctx := fmt.Sprintf("bb%d stmt %d", i, j)
			s := &bb.Stmts[j]
			s.VisitPlaces(func(p *Place) { checkPlace(p, ctx) })
			if (s.Kind == StmtStorageLive || s.Kind == StmtStorageDead) && !exists(s.Storage.Local) {
				report(diag.MirLocalOutOfRange, "%s: storage marker for missing local L%d", ctx, s.Storage.Local)
			}
		}
		ctx := fmt.Sprintf("bb%d terminator", i)
		bb.Term.VisitPlaces(func(p *Place) { checkPlace(p, ctx) })
	}
}

func validateUnwind(f *Body, report reportFn) {
	cleanup := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks) && f.Blocks[id].IsCleanup
	}
	check := func(i int, id BlockID) {
		if id != NoBlockID && !cleanup(id) {
			report(diag.MirUnwindToNonCleanup, "bb%d: unwind edge into non-cleanup bb%d", i, id)
		}
	}
	for i := range f.Blocks {
		t := &f.Blocks[i].Term
		switch t.Kind {
		case TermDrop:
			check(i, t.Drop.Unwind)
		case TermCall:
			check(i, t.Call.Unwind)
		case TermAssert:
			check(i, t.Assert.Unwind)
		case TermUnwindResume:
			if !f.Blocks[i].IsCleanup {
				report(diag.MirUnwindToNonCleanup, "bb%d: unwind_resume outside cleanup block", i)
			}
		}
	}
}

func validateYield(f *Body, report reportFn) {
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind != TermYield {
			continue
		}
		if !f.IsCoroutine() {
			report(diag.MirYieldOutsideCoro, "bb%d: yield outside coroutine body", i)
		}
		if f.Blocks[i].IsCleanup {
			report(diag.MirYieldInCleanup, "bb%d: yield inside cleanup block", i)
		}
	}
}

// validateReturns enforces the convention that coroutine bodies always
// return an explicit value. Plain functions may use a bare return only
// when the return slot is unit.
func validateReturns(f *Body, typesIn *types.Interner, report reportFn) {
	retTy := f.Locals[ReturnLocal].Type
	for i := range f.Blocks {
		t := &f.Blocks[i].Term
		if t.Kind != TermReturn || t.Return.HasValue {
			continue
		}
		if f.IsCoroutine() {
			report(diag.MirReturnWithoutValue, "bb%d: coroutine return must carry a value", i)
			continue
		}
		if f.IsLowered() {
			// Пониженное тело заполняет слот возврата явными
			// присваиваниями перед выходом, голый return здесь норма.
			continue
		}
		if typesIn != nil && retTy != typesIn.Builtins().Unit && retTy != types.NoTypeID {
			report(diag.MirReturnWithoutValue, "bb%d: bare return but return type is %s", i, typesIn.Format(retTy))
		}
	}
}

func validateSwitches(f *Body, report reportFn) {
	for i := range f.Blocks {
		t := &f.Blocks[i].Term
		if t.Kind != TermSwitchInt {
			continue
		}
		if t.Switch.Otherwise == NoBlockID {
			report(diag.MirSwitchMissingOtherw, "bb%d: switch_int without otherwise target", i)
		}
		seen := make(map[uint64]bool, len(t.Switch.Cases))
		for _, c := range t.Switch.Cases {
			if seen[c.Value] {
				report(diag.MirSwitchMissingOtherw, "bb%d: switch_int duplicate case value %d", i, c.Value)
			}
			seen[c.Value] = true
		}
	}
}

func validateReceiver(f *Body, typesIn *types.Interner, report reportFn) {
	if !f.IsCoroutine() || typesIn == nil {
		return
	}
	if f.ArgCount < 2 || int(ResumeLocal) >= len(f.Locals) {
		report(diag.MirBadReceiver, "coroutine body needs receiver and resume argument locals")
		return
	}
	selfTy := f.Locals[SelfLocal].Type
	if !typesIn.IsCoroutine(selfTy) {
		report(diag.MirBadReceiver, "receiver L%d is not typed as a coroutine environment", SelfLocal)
	}
	if f.Coroutine.SelfTy != types.NoTypeID && f.Coroutine.SelfTy != selfTy {
		report(diag.MirBadReceiver, "receiver type disagrees with coroutine info")
	}
}
