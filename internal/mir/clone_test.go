package mir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"coil/internal/mir"
	"coil/internal/types"
)

// TestCloneBody tests that the copy is structurally equal and fully
// detached from the original.
func TestCloneBody(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	env := in.RegisterCoroutine(types.CoroInfo{Name: "gen", Upvars: []types.TypeID{b.I32}})

	orig := &mir.Body{
		Name:     "gen",
		ArgCount: 2,
		Locals: []mir.Local{
			{Type: in.CoroStateOf(b.I32, b.Unit), Kind: mir.LocalReturn},
			{Type: env, Kind: mir.LocalArg, Name: "self"},
			{Type: b.Unit, Kind: mir.LocalArg, Name: "resume"},
			{Type: b.I32, Kind: mir.LocalUser, Name: "x"},
		},
		Blocks: []mir.Block{
			{
				ID: 0,
				Stmts: []mir.Stmt{
					mir.MakeStorageLive(3),
					mir.MakeAssign(
						mir.PlaceOf(3),
						mir.UseRValue(mir.CopyOperand(mir.PlaceOf(1).WithProj(mir.FieldProj(0, b.I32)), b.I32)),
					),
				},
				Term: mir.YieldTerminator(
					mir.CopyOperand(mir.PlaceOf(3), b.I32), 1, mir.PlaceOf(2), mir.NoBlockID,
				),
			},
			{
				ID: 1,
				Term: mir.SwitchTerminator(
					mir.CopyOperand(mir.PlaceOf(3), b.I32),
					[]mir.SwitchCase{{Value: 0, Target: 0}},
					0,
				),
			},
		},
		Coroutine: &mir.CoroutineInfo{
			YieldTy:   b.I32,
			ResumeTy:  b.Unit,
			SelfTy:    env,
			DropFlags: map[uint32]mir.LocalID{0: 3},
		},
	}

	clone := mir.CloneBody(orig)

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs from original: %s", diff)
	}

	// Мутации копии не должны протекать в оригинал.
	clone.Blocks[0].Stmts[1].Assign.Src.Use.Place.Proj[0].Field = 9
	clone.Blocks[1].Term.Switch.Cases[0].Value = 42
	clone.Locals[3].Name = "renamed"
	clone.Coroutine.DropFlags[0] = 99

	if got := orig.Blocks[0].Stmts[1].Assign.Src.Use.Place.Proj[0].Field; got != 0 {
		t.Errorf("projection mutated through clone: %d", got)
	}
	if got := orig.Blocks[1].Term.Switch.Cases[0].Value; got != 0 {
		t.Errorf("switch case mutated through clone: %d", got)
	}
	if orig.Locals[3].Name != "x" {
		t.Errorf("local name mutated through clone: %q", orig.Locals[3].Name)
	}
	if orig.Coroutine.DropFlags[0] != 3 {
		t.Errorf("drop flags mutated through clone: %d", orig.Coroutine.DropFlags[0])
	}
}
