package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// RequiresStorage tracks locals that must keep their slot at each point:
// writes, borrows and storage-live gen before the effect, whole-local
// moves release the slot after it. Call and yield destinations acquire
// storage on the non-unwind edge only, the write does not happen when
// the callee unwinds.
type RequiresStorage struct{}

func (*RequiresStorage) Name() string         { return "requires_storage" }
func (*RequiresStorage) Direction() Direction { return Forward }

func (*RequiresStorage) Boundary(f *mir.Body, state bitvec.Set) {
	for _, arg := range f.Args() {
		state.Insert(int(arg))
	}
}

func (*RequiresStorage) BeforeStmt(state bitvec.Set, s *mir.Stmt, _ Location) {
	switch s.Kind {
	case mir.StmtAssign:
		if s.Assign.Dst.Local != mir.NoLocalID {
			state.Insert(int(s.Assign.Dst.Local))
		}
		if l := borrowBase(&s.Assign.Src); l != mir.NoLocalID {
			state.Insert(int(l))
		}
	case mir.StmtSetDiscriminant:
		if s.SetDisc.Place.Local != mir.NoLocalID {
			state.Insert(int(s.SetDisc.Place.Local))
		}
	case mir.StmtStorageLive:
		state.Insert(int(s.Storage.Local))
	case mir.StmtStorageDead:
		state.Remove(int(s.Storage.Local))
	}
}

func (*RequiresStorage) Stmt(state bitvec.Set, s *mir.Stmt, _ Location) {
	if s.Kind != mir.StmtAssign {
		return
	}
	eachRValueOperand(&s.Assign.Src, func(op *mir.Operand) {
		movedWhole(op, func(l mir.LocalID) {
			state.Remove(int(l))
		})
	})
}

func (*RequiresStorage) BeforeTerm(state bitvec.Set, t *mir.Terminator, _ Location) {
	if t.Kind == mir.TermDrop && t.Drop.Place.Local != mir.NoLocalID {
		state.Insert(int(t.Drop.Place.Local))
	}
}

func (*RequiresStorage) Term(state bitvec.Set, t *mir.Terminator, _ Location) {
	termOperands(t, func(op *mir.Operand) {
		movedWhole(op, func(l mir.LocalID) {
			state.Remove(int(l))
		})
	})
}

func (*RequiresStorage) Edge(state bitvec.Set, t *mir.Terminator, _, to mir.BlockID) {
	switch t.Kind {
	case mir.TermCall:
		if t.Call.HasDst && to == t.Call.Target && t.Call.Dst.Local != mir.NoLocalID {
			state.Insert(int(t.Call.Dst.Local))
		}
	case mir.TermYield:
		if to == t.Yield.Resume && t.Yield.ResumeArg.Local != mir.NoLocalID {
			state.Insert(int(t.Yield.ResumeArg.Local))
		}
	}
}

// eachRValueOperand walks the operands of an rvalue.
func eachRValueOperand(r *mir.RValue, fn func(*mir.Operand)) {
	switch r.Kind {
	case mir.RValueUse:
		fn(&r.Use)
	case mir.RValueAggregate:
		for i := range r.Aggregate.Fields {
			fn(&r.Aggregate.Fields[i])
		}
	case mir.RValueBinary:
		fn(&r.Binary.Left)
		fn(&r.Binary.Right)
	case mir.RValueUnary:
		fn(&r.Unary.Operand)
	case mir.RValueCast:
		fn(&r.Cast.Value)
	case mir.RValueRef, mir.RValueAddrOf, mir.RValueDiscriminant:
		// места, а не операнды: перемещений нет
	}
}
