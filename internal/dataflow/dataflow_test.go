package dataflow_test

import (
	"testing"

	"coil/internal/bitvec"
	"coil/internal/dataflow"
	"coil/internal/mir"
	"coil/internal/types"
)

// TestAlwaysLiveLocals tests that exactly the unmarked locals are
// always live.
func TestAlwaysLiveLocals(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalUser},  // с маркерами
			{Type: b.Bool, Kind: mir.LocalUser}, // без маркеров
		},
		Blocks: []mir.Block{{
			ID: 0,
			Stmts: []mir.Stmt{
				mir.MakeStorageLive(1),
				mir.MakeStorageDead(1),
			},
			Term: mir.ReturnTerminator(),
		}},
	}

	always := dataflow.AlwaysLiveLocals(f)
	if always.Contains(1) {
		t.Errorf("L1 has storage markers, must not be always-live")
	}
	if !always.Contains(0) || !always.Contains(2) {
		t.Errorf("L0 and L2 have no markers, expected always-live, got %s", always)
	}
}

// TestStorageLive tests marker tracking through a straight line.
func TestStorageLive(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	// bb0: live L2; goto bb1. bb1: dead L2; goto bb2. bb2: return.
	f := &mir.Body{
		Name:     "f",
		ArgCount: 1,
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalArg},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Stmts: []mir.Stmt{mir.MakeStorageLive(2)}, Term: mir.GotoTerminator(1)},
			{ID: 1, Stmts: []mir.Stmt{mir.MakeStorageDead(2)}, Term: mir.GotoTerminator(2)},
			{ID: 2, Term: mir.ReturnTerminator()},
		},
	}

	res := dataflow.Run(f, dataflow.NewStorageLive(f))

	if res.Entry[0].Contains(2) {
		t.Errorf("L2 live before its storage_live")
	}
	if !res.Entry[1].Contains(2) {
		t.Errorf("L2 not live after storage_live")
	}
	if res.Entry[2].Contains(2) {
		t.Errorf("L2 still live after storage_dead")
	}
	// Аргумент жив на входе всюду.
	for i := range res.Entry {
		if !res.Entry[i].Contains(1) {
			t.Errorf("argument L1 not live at bb%d", i)
		}
	}
}

// TestLiveness_AcrossBlocks tests backward liveness over a diamond.
func TestLiveness_AcrossBlocks(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	// bb0: switch L1 -> bb1/bb2; bb1: L0 = copy L2; goto bb3;
	// bb2: L0 = const; goto bb3; bb3: return move L0.
	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.I32, Kind: mir.LocalReturn},
			{Type: b.Bool, Kind: mir.LocalUser},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Term: mir.SwitchTerminator(
				mir.CopyOperand(mir.PlaceOf(1), b.Bool),
				[]mir.SwitchCase{{Value: 1, Target: 1}},
				2,
			)},
			{ID: 1, Stmts: []mir.Stmt{
				mir.MakeAssign(mir.PlaceOf(0), mir.UseRValue(mir.CopyOperand(mir.PlaceOf(2), b.I32))),
			}, Term: mir.GotoTerminator(3)},
			{ID: 2, Stmts: []mir.Stmt{
				mir.MakeAssign(mir.PlaceOf(0), mir.UseRValue(mir.ConstOperand(mir.IntConst(1, b.I32)))),
			}, Term: mir.GotoTerminator(3)},
			{ID: 3, Term: mir.ReturnValueTerminator(mir.MoveOperand(mir.PlaceOf(0), b.I32))},
		},
	}

	res := dataflow.Run(f, &dataflow.Liveness{})

	if !res.Entry[0].Contains(1) {
		t.Errorf("switch operand L1 not live at entry")
	}
	if !res.Entry[1].Contains(2) {
		t.Errorf("copied L2 not live at bb1 entry")
	}
	if res.Entry[2].Contains(2) {
		t.Errorf("L2 live on the constant arm")
	}
	if res.Entry[0].Contains(0) {
		t.Errorf("return slot live before any write")
	}
	if !res.Entry[3].Contains(0) {
		t.Errorf("return slot not live at the return block")
	}
}

// TestLiveness_YieldEdges tests that the resume argument dies on the
// resume edge but the yielded value stays live where it is read later.
func TestLiveness_YieldEdges(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	env := in.RegisterCoroutine(types.CoroInfo{Name: "gen"})

	// bb0: yield copy L3 -> resume bb1 (resume arg L2)
	// bb1: L0 = copy L2; return move L0  (uses resume arg after resume)
	f := &mir.Body{
		Name:     "gen",
		ArgCount: 2,
		Locals: []mir.Local{
			{Type: in.CoroStateOf(b.I32, b.Unit), Kind: mir.LocalReturn},
			{Type: env, Kind: mir.LocalArg},
			{Type: b.I32, Kind: mir.LocalArg},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Term: mir.YieldTerminator(
				mir.CopyOperand(mir.PlaceOf(3), b.I32), 1, mir.PlaceOf(2), mir.NoBlockID,
			)},
			{ID: 1, Stmts: []mir.Stmt{
				mir.MakeAssign(mir.PlaceOf(0), mir.UseRValue(mir.CopyOperand(mir.PlaceOf(2), b.I32))),
			}, Term: mir.ReturnValueTerminator(mir.MoveOperand(mir.PlaceOf(0), in.CoroStateOf(b.I32, b.Unit)))},
		},
		Coroutine: &mir.CoroutineInfo{YieldTy: b.I32, ResumeTy: b.I32, SelfTy: env},
	}

	res := dataflow.Run(f, &dataflow.Liveness{})

	if !res.Entry[0].Contains(3) {
		t.Errorf("yield operand L3 not live before the yield")
	}
	// L2 читается в bb1, но на дуге возобновления она перезаписывается,
	// до yield её прежнее значение мертво.
	if res.Entry[0].Contains(2) {
		t.Errorf("resume argument live across the yield")
	}
	if !res.Entry[1].Contains(2) {
		t.Errorf("resume argument not live after resume")
	}
}

// TestRequiresStorage_MoveReleases tests that a whole-local move stops
// requiring storage after the statement while a borrow keeps it.
func TestRequiresStorage_MoveReleases(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ref := in.Intern(types.MakeRef(b.I32, false))

	// bb0: L2 = const; L3 = &L4; L1 = move L2; return
	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalUser},
			{Type: b.I32, Kind: mir.LocalUser},
			{Type: ref, Kind: mir.LocalUser},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Stmts: []mir.Stmt{
				mir.MakeAssign(mir.PlaceOf(2), mir.UseRValue(mir.ConstOperand(mir.IntConst(5, b.I32)))),
				mir.MakeAssign(mir.PlaceOf(3), mir.RefRVal(mir.PlaceOf(4), false)),
				mir.MakeAssign(mir.PlaceOf(1), mir.UseRValue(mir.MoveOperand(mir.PlaceOf(2), b.I32))),
			}, Term: mir.GotoTerminator(1)},
			{ID: 1, Term: mir.ReturnTerminator()},
		},
	}

	res := dataflow.Run(f, &dataflow.RequiresStorage{})

	at := res.Entry[1]
	if at.Contains(2) {
		t.Errorf("moved-from L2 still requires storage after the move")
	}
	if !at.Contains(1) {
		t.Errorf("written L1 does not require storage")
	}
	if !at.Contains(4) {
		t.Errorf("borrowed L4 does not require storage")
	}
}

// TestRequiresStorage_CallEdges tests that the call destination gets
// storage on the return edge and not on the unwind edge.
func TestRequiresStorage_CallEdges(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	fnTy := in.RegisterFn(types.FnInfo{Result: b.I32})

	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Term: mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
				Func:   mir.ConstOperand(mir.FnConst("producer", fnTy)),
				HasDst: true,
				Dst:    mir.PlaceOf(1),
				Target: 1,
				Unwind: 2,
			}}},
			{ID: 1, Term: mir.ReturnTerminator()},
			{ID: 2, IsCleanup: true, Term: mir.UnwindResumeTerminator()},
		},
	}

	res := dataflow.Run(f, &dataflow.RequiresStorage{})

	if !res.Entry[1].Contains(1) {
		t.Errorf("call destination does not require storage on the return edge")
	}
	if res.Entry[2].Contains(1) {
		t.Errorf("call destination requires storage on the unwind edge")
	}
}

// TestBorrowedLocals tests borrow gens and storage-dead kills.
func TestBorrowedLocals(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ref := in.Intern(types.MakeRef(b.I32, true))

	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: ref, Kind: mir.LocalUser},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Stmts: []mir.Stmt{
				mir.MakeAssign(mir.PlaceOf(1), mir.RefRVal(mir.PlaceOf(2), true)),
			}, Term: mir.GotoTerminator(1)},
			{ID: 1, Stmts: []mir.Stmt{
				mir.MakeStorageDead(2),
			}, Term: mir.GotoTerminator(2)},
			{ID: 2, Term: mir.ReturnTerminator()},
		},
	}

	res := dataflow.Run(f, &dataflow.BorrowedLocals{})

	if !res.Entry[1].Contains(2) {
		t.Errorf("borrowed L2 not tracked at bb1")
	}
	if res.Entry[2].Contains(2) {
		t.Errorf("borrow survived storage_dead")
	}
}

// TestCursor_SeekBeforeTerm tests replaying to the pre-terminator state.
func TestCursor_SeekBeforeTerm(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Stmts: []mir.Stmt{
				mir.MakeStorageLive(1),
			}, Term: mir.GotoTerminator(1)},
			{ID: 1, Term: mir.ReturnTerminator()},
		},
	}

	res := dataflow.Run(f, dataflow.NewStorageLive(f))
	cur := dataflow.NewCursor(res)

	cur.SeekStart(0)
	if cur.Get().Contains(1) {
		t.Errorf("L1 live at block start")
	}
	cur.SeekBeforeTerm(0)
	if !cur.Get().Contains(1) {
		t.Errorf("L1 not live before terminator")
	}
}

// storageVisitor records which locals were storage-marked at terminators.
type storageVisitor struct {
	atTerm map[mir.BlockID][]int
}

func (v *storageVisitor) VisitStmt(bitvec.Set, *mir.Stmt, dataflow.Location) {}

func (v *storageVisitor) VisitTerm(state bitvec.Set, _ *mir.Terminator, loc dataflow.Location) {
	var got []int
	state.ForEach(func(i int) { got = append(got, i) })
	v.atTerm[loc.Block] = got
}

// TestVisitReachable_SkipsUnreachable tests that dead blocks and blocks
// ending in unreachable contribute no locations.
func TestVisitReachable_SkipsUnreachable(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := &mir.Body{
		Name: "f",
		Locals: []mir.Local{
			{Type: b.Unit, Kind: mir.LocalReturn},
			{Type: b.I32, Kind: mir.LocalUser},
		},
		Blocks: []mir.Block{
			{ID: 0, Stmts: []mir.Stmt{mir.MakeStorageLive(1)}, Term: mir.GotoTerminator(1)},
			{ID: 1, Term: mir.UnreachableTerminator()},
			{ID: 2, Term: mir.ReturnTerminator()}, // недостижим
		},
	}

	res := dataflow.Run(f, dataflow.NewStorageLive(f))
	v := &storageVisitor{atTerm: make(map[mir.BlockID][]int)}
	dataflow.VisitReachable(res, v)

	if _, ok := v.atTerm[0]; !ok {
		t.Errorf("reachable bb0 not visited")
	}
	if _, ok := v.atTerm[1]; ok {
		t.Errorf("unreachable-terminated bb1 was visited")
	}
	if _, ok := v.atTerm[2]; ok {
		t.Errorf("dead bb2 was visited")
	}
}
