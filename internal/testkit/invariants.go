// Package testkit carries MIR construction and invariant helpers shared
// by the package tests. Production code must not import it.
package testkit

import (
	"errors"
	"fmt"

	"coil/internal/mir"
	"coil/internal/types"
)

// CheckBodyInvariants runs the structural validator plus the layout
// invariants of a lowered body:
// 1) every validator finding is an error
// 2) the conflict matrix is symmetric
// 3) reserved variants hold no fields, suspension variants only valid ids
func CheckBodyInvariants(f *mir.Body, in *types.Interner) error {
	if f == nil {
		return fmt.Errorf("nil body")
	}
	if err := validated(f, in); err != nil {
		return err
	}
	if !f.IsLowered() {
		return nil
	}
	l := f.Coroutine.Layout

	// 2) conflict symmetry
	n := l.FieldCount()
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if l.Conflict(mir.SavedLocal(a), mir.SavedLocal(b)) != l.Conflict(mir.SavedLocal(b), mir.SavedLocal(a)) {
				return fmt.Errorf("%s: conflict(%d,%d) is asymmetric", f.Name, a, b)
			}
		}
	}

	// 3) variant shape
	if len(l.VariantFields) < mir.ReservedVariants {
		return fmt.Errorf("%s: layout has %d variants, reserved alone need %d",
			f.Name, len(l.VariantFields), mir.ReservedVariants)
	}
	for v, fields := range l.VariantFields {
		if v < mir.ReservedVariants && len(fields) != 0 {
			return fmt.Errorf("%s: reserved variant %d holds %d fields", f.Name, v, len(fields))
		}
		for _, s := range fields {
			if s < 0 || int(s) >= n {
				return fmt.Errorf("%s: variant %d references saved local %d of %d", f.Name, v, s, n)
			}
		}
	}
	if len(l.VariantSpans) != len(l.VariantFields) {
		return fmt.Errorf("%s: %d variant spans for %d variants",
			f.Name, len(l.VariantSpans), len(l.VariantFields))
	}

	if shim := f.Coroutine.DropShim; shim != nil {
		if err := validated(shim, in); err != nil {
			return err
		}
	}
	return nil
}

// validated folds every validator finding into one error, mir.Validate
// style.
func validated(f *mir.Body, in *types.Interner) error {
	var errs []error
	for _, fd := range mir.ValidateBody(f, in) {
		errs = append(errs, fmt.Errorf("%s: %s", f.Name, fd))
	}
	return errors.Join(errs...)
}

// YieldChain builds a coroutine with the given number of yields where one
// counter local is live across every suspension:
//
//	bb0:   live n; n = 0; yield copy n -> bb1
//	bb i:  yield copy n -> bb i+1
//	bb N:  return copy n
func YieldChain(in *types.Interner, name string, yields int) *mir.Body {
	b := in.Builtins()
	env := in.RegisterCoroutine(types.CoroInfo{
		Name:    name,
		Witness: []types.TypeID{b.I32},
		Movable: true,
	})
	f := &mir.Body{
		Name:     name,
		ArgCount: 2,
		Locals: []mir.Local{
			{Type: in.CoroStateOf(b.I32, b.I32), Kind: mir.LocalReturn, Name: "ret"},
			{Type: env, Kind: mir.LocalArg, Name: "self"},
			{Type: b.Unit, Kind: mir.LocalArg, Name: "resume"},
			{Type: b.I32, Kind: mir.LocalUser, Name: "n"},
		},
		Coroutine: &mir.CoroutineInfo{YieldTy: b.I32, ResumeTy: b.Unit, SelfTy: env},
	}
	for i := 0; i < yields; i++ {
		blk := mir.Block{
			ID:   mir.BlockID(int32(i)),
			Term: mir.YieldTerminator(mir.CopyOperand(mir.PlaceOf(3), b.I32), mir.BlockID(int32(i+1)), mir.PlaceOf(mir.ResumeLocal), mir.NoBlockID),
		}
		if i == 0 {
			blk.Stmts = []mir.Stmt{
				mir.MakeStorageLive(3),
				mir.MakeAssign(mir.PlaceOf(3), mir.UseRValue(mir.ConstOperand(mir.IntConst(0, b.I32)))),
			}
		}
		f.Blocks = append(f.Blocks, blk)
	}
	f.Blocks = append(f.Blocks, mir.Block{
		ID:   mir.BlockID(int32(yields)),
		Term: mir.ReturnValueTerminator(mir.CopyOperand(mir.PlaceOf(3), b.I32)),
	})
	return f
}
