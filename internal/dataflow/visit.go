package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// Visitor observes the state before each primary effect.
type Visitor interface {
	VisitStmt(state bitvec.Set, s *mir.Stmt, loc Location)
	VisitTerm(state bitvec.Set, t *mir.Terminator, loc Location)
}

// VisitReachable replays forward results over every block reachable
// from the entry, presenting the before-primary state at each statement
// and terminator. Blocks that end in unreachable contribute no
// locations: control never crosses them at runtime, their storage
// pressure must not leak into the conflict relation.
func VisitReachable(res *Results, v Visitor) {
	f := res.Body
	reachable := make([]bool, len(f.Blocks))
	var mark func(id mir.BlockID)
	mark = func(id mir.BlockID) {
		if id < 0 || int(id) >= len(f.Blocks) || reachable[id] {
			return
		}
		reachable[id] = true
		mir.VisitSuccessors(&f.Blocks[id].Term, func(s *mir.BlockID) {
			mark(*s)
		})
	}
	mark(mir.EntryBlock)

	a := res.Analysis
	state := bitvec.New(len(f.Locals))
	for i := range f.Blocks {
		if !reachable[i] {
			continue
		}
		bb := &f.Blocks[i]
		if bb.Term.Kind == mir.TermUnreachable {
			continue
		}
		b := mir.BlockID(int32(i))
		state.CopyFrom(res.Entry[i])
		for j := range bb.Stmts {
			loc := Location{Block: b, Stmt: j}
			a.BeforeStmt(state, &bb.Stmts[j], loc)
			v.VisitStmt(state, &bb.Stmts[j], loc)
			a.Stmt(state, &bb.Stmts[j], loc)
		}
		loc := Location{Block: b, Stmt: len(bb.Stmts)}
		a.BeforeTerm(state, &bb.Term, loc)
		v.VisitTerm(state, &bb.Term, loc)
	}
}
