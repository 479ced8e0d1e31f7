package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// Liveness is classic backward may-liveness over whole locals. Partial
// writes (projected destinations, discriminant stores) read the base
// local, storage markers end a value's life, call and yield
// destinations die on the return/resume edge only.
type Liveness struct {
	NoEffects
}

func (*Liveness) Name() string         { return "liveness" }
func (*Liveness) Direction() Direction { return Backward }

func (*Liveness) Boundary(*mir.Body, bitvec.Set) {}

func (*Liveness) Stmt(state bitvec.Set, s *mir.Stmt, _ Location) {
	gen := func(l mir.LocalID) { state.Insert(int(l)) }
	switch s.Kind {
	case mir.StmtAssign:
		if l := wholeLocal(s.Assign.Dst); l != mir.NoLocalID {
			state.Remove(int(l))
		} else {
			placeReads(s.Assign.Dst, gen)
		}
		rvalueReads(&s.Assign.Src, gen)
	case mir.StmtSetDiscriminant:
		// частичная запись: остальное значение должно пережить её
		placeReads(s.SetDisc.Place, gen)
	case mir.StmtStorageLive, mir.StmtStorageDead:
		state.Remove(int(s.Storage.Local))
	}
}

func (*Liveness) Term(state bitvec.Set, t *mir.Terminator, _ Location) {
	gen := func(l mir.LocalID) { state.Insert(int(l)) }
	switch t.Kind {
	case mir.TermReturn:
		if t.Return.HasValue {
			operandReads(&t.Return.Value, gen)
		} else {
			gen(mir.ReturnLocal)
		}
	case mir.TermDrop:
		placeReads(t.Drop.Place, gen)
	default:
		termOperands(t, func(op *mir.Operand) {
			operandReads(op, gen)
		})
	}
}

func (*Liveness) Edge(state bitvec.Set, t *mir.Terminator, _, to mir.BlockID) {
	switch t.Kind {
	case mir.TermCall:
		if t.Call.HasDst && to == t.Call.Target {
			if l := wholeLocal(t.Call.Dst); l != mir.NoLocalID {
				state.Remove(int(l))
			}
		}
	case mir.TermYield:
		if to == t.Yield.Resume {
			if l := wholeLocal(t.Yield.ResumeArg); l != mir.NoLocalID {
				state.Remove(int(l))
			}
		}
	}
}
