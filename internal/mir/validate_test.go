package mir_test

import (
	"strings"
	"testing"

	"coil/internal/diag"
	"coil/internal/mir"
	"coil/internal/types"
)

func hasCode(findings []mir.Finding, code diag.Code) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// TestValidateBody_Violations checks that each structural violation is
// reported under its own code.
func TestValidateBody_Violations(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	tests := []struct {
		name string
		body func() *mir.Body
		want diag.Code
	}{
		{
			name: "unterminated_block",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.Unit, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{ID: 0}},
				}
			},
			want: diag.MirMissingTerminator,
		},
		{
			name: "goto_target_out_of_range",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.Unit, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{ID: 0, Term: mir.GotoTerminator(5)}},
				}
			},
			want: diag.MirTargetOutOfRange,
		},
		{
			name: "local_out_of_range",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.Unit, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{
						ID: 0,
						Stmts: []mir.Stmt{mir.MakeAssign(
							mir.PlaceOf(3),
							mir.UseRValue(mir.ConstOperand(mir.IntConst(1, b.I32))),
						)},
						Term: mir.ReturnTerminator(),
					}},
				}
			},
			want: diag.MirLocalOutOfRange,
		},
		{
			name: "storage_marker_for_missing_local",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.Unit, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{
						ID:    0,
						Stmts: []mir.Stmt{mir.MakeStorageLive(9)},
						Term:  mir.ReturnTerminator(),
					}},
				}
			},
			want: diag.MirLocalOutOfRange,
		},
		{
			name: "unwind_into_non_cleanup",
			body: func() *mir.Body {
				return &mir.Body{
					Name: "f",
					Locals: []mir.Local{
						{Type: b.Unit, Kind: mir.LocalReturn},
						{Type: b.Str, Kind: mir.LocalUser},
					},
					Blocks: []mir.Block{
						{ID: 0, Term: mir.DropTerminator(mir.PlaceOf(1), 1, 1)},
						{ID: 1, Term: mir.ReturnTerminator()},
					},
				}
			},
			want: diag.MirUnwindToNonCleanup,
		},
		{
			name: "unwind_resume_outside_cleanup",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.Unit, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{ID: 0, Term: mir.Terminator{Kind: mir.TermUnwindResume}}},
				}
			},
			want: diag.MirUnwindToNonCleanup,
		},
		{
			name: "yield_outside_coroutine",
			body: func() *mir.Body {
				return &mir.Body{
					Name: "f",
					Locals: []mir.Local{
						{Type: b.Unit, Kind: mir.LocalReturn},
						{Type: b.I32, Kind: mir.LocalUser},
					},
					Blocks: []mir.Block{
						{ID: 0, Term: mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
							Value:     mir.ConstOperand(mir.IntConst(1, b.I32)),
							Resume:    1,
							ResumeArg: mir.PlaceOf(1),
							Drop:      mir.NoBlockID,
						}}},
						{ID: 1, Term: mir.ReturnTerminator()},
					},
				}
			},
			want: diag.MirYieldOutsideCoro,
		},
		{
			name: "switch_without_otherwise",
			body: func() *mir.Body {
				return &mir.Body{
					Name: "f",
					Locals: []mir.Local{
						{Type: b.Unit, Kind: mir.LocalReturn},
						{Type: b.U32, Kind: mir.LocalUser},
					},
					Blocks: []mir.Block{
						{ID: 0, Term: mir.SwitchTerminator(
							mir.CopyOperand(mir.PlaceOf(1), b.U32),
							[]mir.SwitchCase{{Value: 0, Target: 1}},
							mir.NoBlockID,
						)},
						{ID: 1, Term: mir.ReturnTerminator()},
					},
				}
			},
			want: diag.MirSwitchMissingOtherw,
		},
		{
			name: "bare_return_non_unit",
			body: func() *mir.Body {
				return &mir.Body{
					Name:   "f",
					Locals: []mir.Local{{Type: b.I32, Kind: mir.LocalReturn}},
					Blocks: []mir.Block{{ID: 0, Term: mir.ReturnTerminator()}},
				}
			},
			want: diag.MirReturnWithoutValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := mir.ValidateBody(tt.body(), in)
			if !hasCode(findings, tt.want) {
				t.Fatalf("expected a %s finding, got %v", tt.want, findings)
			}
		})
	}
}

// TestValidateBody_CoroutineConventions covers the coroutine-specific
// checks: explicit return values, receiver typing, yield placement.
func TestValidateBody_CoroutineConventions(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	env := in.RegisterCoroutine(types.CoroInfo{Name: "gen", Movable: true})

	newCoroBody := func() *mir.Body {
		return &mir.Body{
			Name:     "gen",
			ArgCount: 2,
			Locals: []mir.Local{
				{Type: in.CoroStateOf(b.I32, b.Unit), Kind: mir.LocalReturn},
				{Type: env, Kind: mir.LocalArg, Name: "self"},
				{Type: b.Unit, Kind: mir.LocalArg, Name: "resume"},
			},
			Coroutine: &mir.CoroutineInfo{YieldTy: b.I32, ResumeTy: b.Unit, SelfTy: env},
		}
	}

	t.Run("bare_return_in_coroutine", func(t *testing.T) {
		f := newCoroBody()
		f.Blocks = []mir.Block{{ID: 0, Term: mir.ReturnTerminator()}}
		findings := mir.ValidateBody(f, in)
		if !hasCode(findings, diag.MirReturnWithoutValue) {
			t.Fatalf("expected MirReturnWithoutValue, got %v", findings)
		}
	})

	t.Run("receiver_not_coroutine_typed", func(t *testing.T) {
		f := newCoroBody()
		f.Locals[1].Type = b.I32
		f.Blocks = []mir.Block{{ID: 0, Term: mir.ReturnValueTerminator(
			mir.ConstOperand(mir.UnitConst(b.Unit)),
		)}}
		findings := mir.ValidateBody(f, in)
		if !hasCode(findings, diag.MirBadReceiver) {
			t.Fatalf("expected MirBadReceiver, got %v", findings)
		}
	})

	t.Run("yield_in_cleanup_block", func(t *testing.T) {
		f := newCoroBody()
		f.Blocks = []mir.Block{
			{ID: 0, IsCleanup: true, Term: mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
				Value:     mir.ConstOperand(mir.IntConst(0, b.I32)),
				Resume:    1,
				ResumeArg: mir.PlaceOf(2),
				Drop:      mir.NoBlockID,
			}}},
			{ID: 1, Term: mir.ReturnValueTerminator(mir.ConstOperand(mir.UnitConst(b.Unit)))},
		}
		findings := mir.ValidateBody(f, in)
		if !hasCode(findings, diag.MirYieldInCleanup) {
			t.Fatalf("expected MirYieldInCleanup, got %v", findings)
		}
	})

	t.Run("well_formed_coroutine_passes", func(t *testing.T) {
		f := newCoroBody()
		f.Blocks = []mir.Block{
			{ID: 0, Term: mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
				Value:     mir.ConstOperand(mir.IntConst(0, b.I32)),
				Resume:    1,
				ResumeArg: mir.PlaceOf(2),
				Drop:      mir.NoBlockID,
			}}},
			{ID: 1, Term: mir.ReturnValueTerminator(mir.ConstOperand(mir.UnitConst(b.Unit)))},
		}
		if findings := mir.ValidateBody(f, in); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})
}

// TestValidate_JoinsBodyFindings checks the module-level wrapper names
// the offending function.
func TestValidate_JoinsBodyFindings(t *testing.T) {
	m := mir.NewModule()
	if _, err := m.AddFunc(&mir.Body{
		Name:   "broken",
		Locals: []mir.Local{{Type: m.Types.Builtins().Unit, Kind: mir.LocalReturn}},
		Blocks: []mir.Block{{ID: 0}},
	}); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}

	err := mir.Validate(m)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "broken") || !strings.Contains(err.Error(), "unterminated") {
		t.Errorf("error should name function and problem, got %q", err)
	}
}
