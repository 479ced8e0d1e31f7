package mir_test

import (
	"testing"

	"coil/internal/mir"
	"coil/internal/types"
)

// TestExpandAggregateAssign_CoroState tests lowering a carrier build
// into field stores plus a discriminant write.
func TestExpandAggregateAssign_CoroState(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	carrier := in.CoroStateOf(b.I32, b.Unit)

	dst := mir.PlaceOf(mir.ReturnLocal)
	agg := mir.AggregateRValue{
		Agg:     mir.AggCoroState,
		Type:    carrier,
		Variant: mir.CarrierYielded,
		Fields:  []mir.Operand{mir.CopyOperand(mir.PlaceOf(3), b.I32)},
	}

	stmts := mir.ExpandAggregateAssign(dst, agg)

	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	first := stmts[0]
	if first.Kind != mir.StmtAssign {
		t.Fatalf("expected assign, got %v", first.Kind)
	}
	proj := first.Assign.Dst.Proj
	if len(proj) != 2 || proj[0].Kind != mir.ProjDowncast || proj[1].Kind != mir.ProjField {
		t.Errorf("field store should project downcast then field, got %+v", proj)
	}
	if proj[0].Variant != mir.CarrierYielded || proj[1].Field != 0 {
		t.Errorf("wrong variant or field index: %+v", proj)
	}

	last := stmts[1]
	if last.Kind != mir.StmtSetDiscriminant {
		t.Fatalf("expected set_discriminant, got %v", last.Kind)
	}
	if last.SetDisc.Variant != mir.CarrierYielded {
		t.Errorf("wrong discriminant %d", last.SetDisc.Variant)
	}
	if !last.SetDisc.Place.Equal(dst) {
		t.Errorf("discriminant written to %s", mir.FormatPlace(last.SetDisc.Place))
	}
}

// TestExpandAggregateAssign_Tuple tests that tuples get plain field
// stores and no discriminant write.
func TestExpandAggregateAssign_Tuple(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tup := in.RegisterTuple([]types.TypeID{b.I32, b.Bool})

	stmts := mir.ExpandAggregateAssign(mir.PlaceOf(2), mir.AggregateRValue{
		Agg:  mir.AggTuple,
		Type: tup,
		Fields: []mir.Operand{
			mir.CopyOperand(mir.PlaceOf(3), b.I32),
			mir.ConstOperand(mir.BoolConst(true, b.Bool)),
		},
	})

	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	for i, s := range stmts {
		if s.Kind != mir.StmtAssign {
			t.Fatalf("statement %d should be an assign, got %v", i, s.Kind)
		}
		proj := s.Assign.Dst.Proj
		if len(proj) != 1 || proj[0].Kind != mir.ProjField {
			t.Errorf("statement %d should store one field, got %+v", i, proj)
		}
	}
}
