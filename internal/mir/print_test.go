package mir_test

import (
	"strings"
	"testing"

	"coil/internal/mir"
	"coil/internal/types"
)

// TestDumpModule tests the dump covers locals, statements, terminators
// and sorts functions by name.
func TestDumpModule(t *testing.T) {
	m := mir.NewModule()
	b := m.Types.Builtins()

	zeta := mir.NewBody("zeta", b.Unit)
	x := zeta.AddLocal(mir.Local{Name: "x", Type: b.I32, Kind: mir.LocalUser})
	bb := zeta.AddBlock()
	zeta.Blocks[bb].Stmts = []mir.Stmt{
		mir.MakeStorageLive(x),
		mir.MakeAssign(mir.PlaceOf(x), mir.UseRValue(mir.ConstOperand(mir.IntConst(7, b.I32)))),
		mir.MakeStorageDead(x),
	}
	zeta.Blocks[bb].Term = mir.ReturnTerminator()

	alpha := mir.NewBody("alpha", b.Unit)
	abb := alpha.AddBlock()
	alpha.Blocks[abb].Term = mir.UnreachableTerminator()

	for _, f := range []*mir.Body{zeta, alpha} {
		if _, err := m.AddFunc(f); err != nil {
			t.Fatalf("AddFunc: %v", err)
		}
	}

	var sb strings.Builder
	if err := mir.DumpModule(&sb, m, mir.DumpOptions{}); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"funcs=2",
		"fn alpha:",
		"fn zeta:",
		"L1: i32 name=x",
		"storage_live L1",
		"L1 = const 7",
		"storage_dead L1",
		"return",
		"unreachable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "fn alpha:") > strings.Index(out, "fn zeta:") {
		t.Errorf("functions not sorted by name:\n%s", out)
	}
}

// TestFormatPlace tests projection rendering.
func TestFormatPlace(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	p := mir.PlaceOf(1).WithProj(
		mir.DerefProj(),
		mir.DowncastProj(mir.FirstSuspend),
		mir.FieldProj(2, b.I32),
	)
	got := mir.FormatPlace(p)
	want := "(*L1) as Suspend0.#2"
	if got != want {
		t.Errorf("FormatPlace = %q, want %q", got, want)
	}
}
