package coroutine

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
	"coil/internal/types"
)

// replaceResumeLocal reroutes every use of the physical resume slot to a
// fresh local initialized on entry. The physical slot is rewritten by
// every resume case, so nothing else may read it across a suspension;
// the fresh local is ordinary and gets saved like any other when it
// survives a yield.
func replaceResumeLocal(f *mir.Body) mir.LocalID {
	decl := f.Locals[mir.ResumeLocal]
	repl := f.AddLocal(mir.Local{
		Name: decl.Name,
		Type: decl.Type,
		Kind: mir.LocalTemp,
		Span: decl.Span,
	})
	mir.ReplaceLocal(f, mir.ResumeLocal, repl)

	entry := &f.Blocks[mir.EntryBlock]
	entry.Stmts = append([]mir.Stmt{mir.MakeAssign(
		mir.PlaceOf(repl),
		mir.UseRValue(mir.MoveOperand(mir.PlaceOf(mir.ResumeLocal), decl.Type)),
	)}, entry.Stmts...)
	return repl
}

// canReturnNormally reports whether the body can complete: it has a
// return terminator and the completion payload is inhabited. Evaluated
// before rewriting, while returns still belong to the source body.
func canReturnNormally(f *mir.Body, typesIn *types.Interner) bool {
	_, ret, ok := typesIn.CoroStatePayloads(f.Locals[mir.ReturnLocal].Type)
	if ok && ret == typesIn.Builtins().Never {
		return false
	}
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == mir.TermReturn {
			return true
		}
	}
	return false
}

// hasUnwindSources reports whether the rewritten body still contains a
// terminator that may start unwinding.
func hasUnwindSources(f *mir.Body) bool {
	for i := range f.Blocks {
		switch f.Blocks[i].Term.Kind {
		case mir.TermDrop, mir.TermCall, mir.TermAssert:
			return true
		case mir.TermYield:
			panic("lower " + f.Name + ": yield survived the rewrite")
		}
	}
	return false
}

// insertPoisonBlock gives the body a single poisoning exit: every unwind
// path sets Poisoned exactly once and keeps unwinding. Existing resume
// terminators are redirected into it; terminators with an unset unwind
// slot outside cleanup get it as their unwind successor.
func insertPoisonBlock(f *mir.Body) mir.BlockID {
	poison := mir.NewCleanupTermBlock(f, mir.UnwindResumeTerminator())
	f.Blocks[poison].Stmts = []mir.Stmt{
		mir.MakeSetDiscriminant(mir.PlaceOf(mir.SelfLocal), mir.StatePoisoned),
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.ID == poison {
			continue
		}
		if bb.Term.Kind == mir.TermUnwindResume {
			bb.Term = mir.GotoTerminator(poison)
			continue
		}
		if bb.IsCleanup {
			continue
		}
		if slot := bb.Term.UnwindSlot(); slot != nil && *slot == mir.NoBlockID {
			*slot = poison
		}
	}
	return poison
}

// operation selects which entry point createCases builds arms for.
type operation uint8

const (
	opResume operation = iota
	opDestroy
)

// createCases builds one dispatch arm per suspension point, with targets
// in pre-insertion block ids. A resume arm re-materializes storage for
// the unsaved storage-live locals of its point and moves the physical
// resume argument into the rewritten place; a destroy arm only exists
// for points with a drop path and jumps straight to it.
func createCases(f *mir.Body, rw *rewriter, always bitvec.Set, op operation) []mir.SwitchCase {
	var cases []mir.SwitchCase
	for pi := range rw.points {
		point := &rw.points[pi]
		target := point.resume
		if op == opDestroy {
			if point.drop == mir.NoBlockID {
				continue
			}
			target = point.drop
		}

		var stmts []mir.Stmt
		for l := 0; l < len(f.Locals); l++ {
			id := mir.LocalID(int32(l))
			if id == mir.ResumeLocal {
				// Физический резюм-аргумент живёт с самого входа.
				continue
			}
			if !point.storage.Contains(l) || always.Contains(l) {
				continue
			}
			if _, saved := rw.remap[id]; saved {
				continue
			}
			stmts = append(stmts, mir.MakeStorageLive(id))
		}

		if op == opResume {
			stmts = append(stmts, mir.MakeAssign(
				point.resumeArg,
				mir.UseRValue(mir.MoveOperand(mir.PlaceOf(mir.ResumeLocal), rw.resumeTy)),
			))
		}

		blk := f.AddBlock()
		f.Blocks[blk].Stmts = stmts
		f.Blocks[blk].Term = mir.GotoTerminator(target)
		cases = append(cases, mir.SwitchCase{Value: uint64(point.state), Target: blk})
	}
	return cases
}

// insertSwitch prepends the dispatch: read the discriminant into a fresh
// temporary, then switch over cases with otherwise as the default. Case
// targets are taken in pre-insertion ids; the insertion shifts every
// block, the dispatch's own successors included.
func insertSwitch(f *mir.Body, typesIn *types.Interner, cases []mir.SwitchCase, otherwise mir.Terminator) {
	def := mir.NewTermBlock(f, otherwise)

	u32 := typesIn.Builtins().U32
	disc := f.AddLocal(mir.Local{
		Name:     "state",
		Type:     u32,
		Kind:     mir.LocalTemp,
		Internal: true,
	})

	mir.InsertBlockAtStart(f, mir.Block{
		Stmts: []mir.Stmt{
			mir.MakeAssign(mir.PlaceOf(disc), mir.DiscriminantRVal(mir.PlaceOf(mir.SelfLocal))),
		},
		Term: mir.SwitchTerminator(mir.MoveOperand(mir.PlaceOf(disc), u32), cases, def),
	})
}

// insertFailBlock appends a block that always panics with msg. The
// assert's continuation points back at the block itself: the false
// condition never passes, the edge only keeps the CFG well formed.
func insertFailBlock(f *mir.Body, typesIn *types.Interner, msg mir.AssertMsg) mir.BlockID {
	self := mir.BlockID(int32(len(f.Blocks)))
	return mir.NewTermBlock(f, mir.Terminator{
		Kind: mir.TermAssert,
		Assert: mir.AssertTerm{
			Cond:     mir.ConstOperand(mir.BoolConst(false, typesIn.Builtins().Bool)),
			Expected: true,
			Msg:      msg,
			Target:   self,
			Unwind:   mir.NoBlockID,
		},
	})
}

// makeReceiverIndirect retypes the receiver to a mutable reference and
// threads a deref in front of every receiver-rooted place.
func makeReceiverIndirect(f *mir.Body, typesIn *types.Interner) {
	envTy := f.Locals[mir.SelfLocal].Type
	f.Locals[mir.SelfLocal].Type = typesIn.Intern(types.MakeRef(envTy, true))
	prependToReceiver(f, mir.DerefProj())
}

// makeReceiverPinned wraps the receiver reference in the pin marker;
// places reach the reference through its field 0.
func makeReceiverPinned(f *mir.Body, typesIn *types.Interner) {
	refTy := f.Locals[mir.SelfLocal].Type
	f.Locals[mir.SelfLocal].Type = typesIn.Intern(types.MakePin(refTy))
	prependToReceiver(f, mir.FieldProj(0, refTy))
}

func prependToReceiver(f *mir.Body, elem mir.Projection) {
	mir.VisitBodyPlaces(f, func(p *mir.Place) {
		if p.Local == mir.SelfLocal {
			mir.PrependProjections(p, elem)
		}
		for _, pr := range p.Proj {
			if pr.Kind == mir.ProjIndex && pr.Index == mir.SelfLocal {
				panic("lower " + f.Name + ": receiver used as an index local")
			}
		}
	})
}

// createDropShim clones the rewritten body into the destroy entry point:
// dispatch over the states that own a drop path, Unresumed going to the
// clean drop of the environment, everything else returning immediately.
// The shim takes the receiver as a raw mutable pointer and is not
// pinned: it runs from destructors, where no pinning witness exists.
func createDropShim(f *mir.Body, rw *rewriter, typesIn *types.Interner, always bitvec.Set, dropClean mir.BlockID) *mir.Body {
	shim := mir.CloneBody(f)
	shim.Name = f.Name + "$drop"
	shim.ArgCount = 1

	cases := createCases(shim, rw, always, opDestroy)
	cases = append([]mir.SwitchCase{{Value: uint64(mir.StateUnresumed), Target: dropClean}}, cases...)
	insertSwitch(shim, typesIn, cases, mir.ReturnTerminator())

	// Хвостовые маркеры "значение корутины разрушается" исходного тела:
	// здесь это и происходит, дальше просто выход.
	for i := range shim.Blocks {
		if shim.Blocks[i].Term.Kind == mir.TermCoroutineDrop {
			shim.Blocks[i].Term = mir.ReturnTerminator()
		}
	}

	shim.Locals[mir.ReturnLocal].Type = typesIn.Builtins().Unit

	envTy := shim.Locals[mir.SelfLocal].Type
	makeReceiverIndirect(shim, typesIn)
	shim.Locals[mir.SelfLocal].Type = typesIn.Intern(types.MakeRawPtr(envTy, true))

	mir.SimplifyCFG(shim)
	return shim
}

// createResumeFunction finishes rewriting f in place: poison paths when
// unwinding is possible, the dispatch switch, guard states for Returned
// and Poisoned, and the by-reference pinned receiver.
func createResumeFunction(f *mir.Body, rw *rewriter, typesIn *types.Interner, always bitvec.Set, canRet, mayUnwind bool) {
	unwind := mayUnwind && hasUnwindSources(f)
	if unwind {
		insertPoisonBlock(f)
	}

	cases := createCases(f, rw, always, opResume)

	all := make([]mir.SwitchCase, 0, len(cases)+mir.ReservedVariants)
	all = append(all, mir.SwitchCase{Value: uint64(mir.StateUnresumed), Target: mir.EntryBlock})
	if canRet {
		all = append(all, mir.SwitchCase{
			Value:  uint64(mir.StateReturned),
			Target: insertFailBlock(f, typesIn, mir.AssertResumedAfterReturn),
		})
	}
	if unwind {
		all = append(all, mir.SwitchCase{
			Value:  uint64(mir.StatePoisoned),
			Target: insertFailBlock(f, typesIn, mir.AssertResumedAfterPanic),
		})
	}
	all = append(all, cases...)

	// Остальные значения дискриминанта невозможны по построению.
	insertSwitch(f, typesIn, all, mir.UnreachableTerminator())

	makeReceiverIndirect(f, typesIn)
	makeReceiverPinned(f, typesIn)

	mir.SimplifyCFG(f)
}
