package driver

import (
	"coil/internal/mir"
	"coil/internal/types"
)

// DemoModule builds the example module the `coil demo` command ships: a
// two-yield coroutine whose counter survives both suspensions, plus a
// plain function the lowering reports as skipped.
func DemoModule() *mir.Module {
	m := mir.NewModule()
	b := m.Types.Builtins()

	env := m.Types.RegisterCoroutine(types.CoroInfo{
		Name:    "ticker",
		Upvars:  []types.TypeID{b.I32},
		Witness: []types.TypeID{b.I32},
		Movable: true,
	})

	// bb0: live n; n = 0; yield copy n -> bb1
	// bb1: n = n + 1; yield copy n -> bb2
	// bb2: return copy n
	ticker := &mir.Body{
		Name:     "ticker",
		ArgCount: 2,
		Locals: []mir.Local{
			{Type: m.Types.CoroStateOf(b.I32, b.I32), Kind: mir.LocalReturn, Name: "ret"},
			{Type: env, Kind: mir.LocalArg, Name: "self"},
			{Type: b.Unit, Kind: mir.LocalArg, Name: "resume"},
			{Type: b.I32, Kind: mir.LocalUser, Name: "n"},
		},
		Blocks: []mir.Block{
			{
				ID: 0,
				Stmts: []mir.Stmt{
					mir.MakeStorageLive(3),
					mir.MakeAssign(mir.PlaceOf(3), mir.UseRValue(mir.ConstOperand(mir.IntConst(0, b.I32)))),
				},
				Term: mir.YieldTerminator(mir.CopyOperand(mir.PlaceOf(3), b.I32), 1, mir.PlaceOf(mir.ResumeLocal), mir.NoBlockID),
			},
			{
				ID: 1,
				Stmts: []mir.Stmt{
					mir.MakeAssign(mir.PlaceOf(3), mir.RValue{
						Kind: mir.RValueBinary,
						Binary: mir.BinaryRValue{
							Op:    mir.BinAdd,
							Left:  mir.CopyOperand(mir.PlaceOf(3), b.I32),
							Right: mir.ConstOperand(mir.IntConst(1, b.I32)),
						},
					}),
				},
				Term: mir.YieldTerminator(mir.CopyOperand(mir.PlaceOf(3), b.I32), 2, mir.PlaceOf(mir.ResumeLocal), mir.NoBlockID),
			},
			{ID: 2, Term: mir.ReturnValueTerminator(mir.CopyOperand(mir.PlaceOf(3), b.I32))},
		},
		Coroutine: &mir.CoroutineInfo{YieldTy: b.I32, ResumeTy: b.Unit, SelfTy: env},
	}

	// Обычная функция: identity(i32) -> i32, драйвер её пропускает.
	identity := &mir.Body{
		Name:     "identity",
		ArgCount: 1,
		Locals: []mir.Local{
			{Type: b.I32, Kind: mir.LocalReturn, Name: "ret"},
			{Type: b.I32, Kind: mir.LocalArg, Name: "v"},
		},
		Blocks: []mir.Block{
			{
				ID:   0,
				Term: mir.ReturnValueTerminator(mir.CopyOperand(mir.PlaceOf(1), b.I32)),
			},
		},
	}

	for _, f := range []*mir.Body{ticker, identity} {
		if _, err := m.AddFunc(f); err != nil {
			panic(err) // fresh module, duplicate names impossible
		}
	}
	return m
}
