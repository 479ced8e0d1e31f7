package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// BorrowedLocals tracks locals whose address has been taken and may
// still be observed through it. Storage-dead retires the borrow, a drop
// terminator borrows its place for the destructor call.
type BorrowedLocals struct {
	NoEffects
}

func (*BorrowedLocals) Name() string         { return "borrowed_locals" }
func (*BorrowedLocals) Direction() Direction { return Forward }

func (*BorrowedLocals) Boundary(*mir.Body, bitvec.Set) {}

func (*BorrowedLocals) Stmt(state bitvec.Set, s *mir.Stmt, _ Location) {
	switch s.Kind {
	case mir.StmtAssign:
		if l := borrowBase(&s.Assign.Src); l != mir.NoLocalID {
			state.Insert(int(l))
		}
	case mir.StmtStorageDead:
		state.Remove(int(s.Storage.Local))
	}
}

func (*BorrowedLocals) Term(state bitvec.Set, t *mir.Terminator, _ Location) {
	if t.Kind == mir.TermDrop && t.Drop.Place.Local != mir.NoLocalID {
		state.Insert(int(t.Drop.Place.Local))
	}
}
