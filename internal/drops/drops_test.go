package drops_test

import (
	"testing"

	"coil/internal/drops"
	"coil/internal/mir"
	"coil/internal/types"
)

// dropEnv builds a coroutine body whose receiver captures the given upvar
// types, with one drop-of-receiver site:
//
//	bb0: drop L1 -> bb1
//	bb1: return
func dropEnv(in *types.Interner, upvars []types.TypeID) *mir.Body {
	b := in.Builtins()
	env := in.RegisterCoroutine(types.CoroInfo{Name: "task", Upvars: upvars})

	return &mir.Body{
		Name:     "task",
		ArgCount: 2,
		Locals: []mir.Local{
			{Type: in.CoroStateOf(b.I32, b.Unit), Kind: mir.LocalReturn, Name: "ret"},
			{Type: env, Kind: mir.LocalArg, Name: "self"},
			{Type: b.Unit, Kind: mir.LocalArg, Name: "resume"},
		},
		Blocks: []mir.Block{
			{ID: 0, Term: mir.DropTerminator(mir.PlaceOf(1), 1, mir.NoBlockID)},
			{ID: 1, Term: mir.ReturnTerminator()},
		},
		Coroutine: &mir.CoroutineInfo{YieldTy: b.I32, ResumeTy: b.Unit, SelfTy: env},
	}
}

func dtorType(in *types.Interner, name string) types.TypeID {
	return in.RegisterAdt(types.AdtInfo{
		Name:     name,
		Variants: []types.VariantInfo{{Name: name}},
		HasDtor:  true,
	})
}

// fieldDrop asserts that block id drops exactly receiver field idx and
// returns its terminator payload.
func fieldDrop(t *testing.T, f *mir.Body, id mir.BlockID, idx uint32) mir.DropTerm {
	t.Helper()
	term := f.Blocks[id].Term
	if term.Kind != mir.TermDrop {
		t.Fatalf("bb%d: expected drop, got kind %d", id, term.Kind)
	}
	p := term.Drop.Place
	if p.Local != 1 || len(p.Proj) != 1 || p.Proj[0].Kind != mir.ProjField || p.Proj[0].Field != idx {
		t.Fatalf("bb%d: expected drop of self field %d, got %+v", id, idx, p)
	}
	return term.Drop
}

func TestElaborate_FieldOrderSkipsTrivial(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res, b.I32, res})

	n, err := drops.ElaborateReceiverDrops(f, in, 1, false)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 site, got %d", n)
	}

	if f.Blocks[0].Term.Kind != mir.TermGoto {
		t.Fatalf("site not rewritten to goto: kind %d", f.Blocks[0].Term.Kind)
	}
	// Поле 0 уничтожается первым, поле 1 пропущено, затем поле 2.
	first := fieldDrop(t, f, f.Blocks[0].Term.Goto.Target, 0)
	second := fieldDrop(t, f, first.Target, 2)
	if second.Target != 1 {
		t.Fatalf("ladder exit: expected bb1, got bb%d", second.Target)
	}
	if first.Unwind != mir.NoBlockID || second.Unwind != mir.NoBlockID {
		t.Fatalf("unwind edges present in a no-unwind context")
	}
}

func TestElaborate_UnwindEntersCleanupPastPanickingField(t *testing.T) {
	in := types.NewInterner()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res, res})

	n, err := drops.ElaborateReceiverDrops(f, in, 1, true)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 site, got %d", n)
	}

	first := fieldDrop(t, f, f.Blocks[0].Term.Goto.Target, 0)
	second := fieldDrop(t, f, first.Target, 1)

	// Паника в деструкторе поля 0: зачистка начинается с поля 1.
	cont := fieldDrop(t, f, first.Unwind, 1)
	if !f.Blocks[first.Unwind].IsCleanup {
		t.Errorf("cleanup step not marked IsCleanup")
	}
	if cont.Unwind != mir.NoBlockID {
		t.Errorf("cleanup step carries its own unwind edge")
	}

	// Паника в последнем поле: добивать нечего, сразу resume.
	if second.Unwind != cont.Target {
		t.Errorf("last-field unwind and cleanup exit diverge: bb%d vs bb%d", second.Unwind, cont.Target)
	}
	exit := f.Blocks[cont.Target]
	if exit.Term.Kind != mir.TermUnwindResume || !exit.IsCleanup {
		t.Errorf("shared exit: expected cleanup unwind_resume, got kind %d", exit.Term.Kind)
	}
}

func TestElaborate_FlagGuardedField(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res})
	flag := f.AddLocal(mir.Local{Type: b.Bool, Kind: mir.LocalTemp, Name: "drop_flag"})
	f.Coroutine.DropFlags = map[uint32]mir.LocalID{0: flag}

	if _, err := drops.ElaborateReceiverDrops(f, in, 1, false); err != nil {
		t.Fatalf("elaborate: %v", err)
	}

	entry := f.Blocks[0].Term.Goto.Target
	test := f.Blocks[entry].Term
	if test.Kind != mir.TermSwitchInt {
		t.Fatalf("guarded field: expected flag test, got kind %d", test.Kind)
	}
	if got := test.Switch.Value.Place.Local; got != flag {
		t.Fatalf("flag test reads L%d, expected L%d", got, flag)
	}
	if len(test.Switch.Cases) != 1 || test.Switch.Cases[0].Value != 0 {
		t.Fatalf("flag test cases: %+v", test.Switch.Cases)
	}
	// Нулевой флаг перепрыгивает деструктор.
	if test.Switch.Cases[0].Target != 1 {
		t.Errorf("cleared flag: expected skip to bb1, got bb%d", test.Switch.Cases[0].Target)
	}
	d := fieldDrop(t, f, test.Switch.Otherwise, 0)
	if d.Target != 1 {
		t.Errorf("guarded drop: expected exit bb1, got bb%d", d.Target)
	}
}

func TestElaborate_CleanupSiteStaysCleanup(t *testing.T) {
	in := types.NewInterner()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res})
	f.Blocks[0].IsCleanup = true
	f.Blocks[1].IsCleanup = true

	before := len(f.Blocks)
	if _, err := drops.ElaborateReceiverDrops(f, in, 1, true); err != nil {
		t.Fatalf("elaborate: %v", err)
	}

	d := fieldDrop(t, f, f.Blocks[0].Term.Goto.Target, 0)
	if d.Unwind != mir.NoBlockID {
		t.Errorf("cleanup site grew an unwind edge")
	}
	if !f.Blocks[f.Blocks[0].Term.Goto.Target].IsCleanup {
		t.Errorf("ladder block of a cleanup site not marked IsCleanup")
	}
	if len(f.Blocks) != before+1 {
		t.Errorf("expected a single ladder block, got %d new", len(f.Blocks)-before)
	}
}

func TestElaborate_NothingDroppable(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	f := dropEnv(in, []types.TypeID{b.I32, b.Bool})

	before := len(f.Blocks)
	if _, err := drops.ElaborateReceiverDrops(f, in, 1, true); err != nil {
		t.Fatalf("elaborate: %v", err)
	}

	if f.Blocks[0].Term.Kind != mir.TermGoto || f.Blocks[0].Term.Goto.Target != 1 {
		t.Fatalf("trivial env: expected goto bb1, got %+v", f.Blocks[0].Term)
	}
	if len(f.Blocks) != before {
		t.Errorf("trivial env grew %d blocks", len(f.Blocks)-before)
	}
}

func TestElaborate_LeavesOtherDropsAlone(t *testing.T) {
	in := types.NewInterner()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res})
	other := f.AddLocal(mir.Local{Type: res, Kind: mir.LocalUser, Name: "tmp"})
	tail := f.AddBlock()
	f.Blocks[1].Term = mir.DropTerminator(mir.PlaceOf(other), tail, mir.NoBlockID)
	f.Blocks[tail].Term = mir.ReturnTerminator()

	n, err := drops.ElaborateReceiverDrops(f, in, 1, false)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 receiver site, got %d", n)
	}
	if f.Blocks[1].Term.Kind != mir.TermDrop {
		t.Errorf("non-receiver drop was rewritten")
	}
}

func TestInsertCleanDrop(t *testing.T) {
	in := types.NewInterner()
	res := dtorType(in, "Res")

	f := dropEnv(in, []types.TypeID{res})
	clean := drops.InsertCleanDrop(f, 1)

	term := f.Blocks[clean].Term
	if term.Kind != mir.TermDrop || term.Drop.Place.Local != 1 || len(term.Drop.Place.Proj) != 0 {
		t.Fatalf("clean drop: expected drop of bare receiver, got %+v", term)
	}
	if f.Blocks[term.Drop.Target].Term.Kind != mir.TermReturn {
		t.Errorf("clean drop does not exit through a return")
	}
	if term.Drop.Unwind != mir.NoBlockID {
		t.Errorf("clean drop carries an unwind edge")
	}
}
