package dataflow

import "coil/internal/mir"

// placeReads hands fn the base local of p and any index locals inside
// its projections.
func placeReads(p mir.Place, fn func(mir.LocalID)) {
	if p.Local != mir.NoLocalID {
		fn(p.Local)
	}
	for _, proj := range p.Proj {
		if proj.Kind == mir.ProjIndex && proj.Index != mir.NoLocalID {
			fn(proj.Index)
		}
	}
}

func operandReads(op *mir.Operand, fn func(mir.LocalID)) {
	if op.IsPlace() {
		placeReads(op.Place, fn)
	}
}

// rvalueReads walks every local an rvalue observes, borrows included.
func rvalueReads(r *mir.RValue, fn func(mir.LocalID)) {
	switch r.Kind {
	case mir.RValueUse:
		operandReads(&r.Use, fn)
	case mir.RValueRef, mir.RValueAddrOf:
		placeReads(r.Ref.Place, fn)
	case mir.RValueDiscriminant:
		placeReads(r.Disc.Place, fn)
	case mir.RValueAggregate:
		for i := range r.Aggregate.Fields {
			operandReads(&r.Aggregate.Fields[i], fn)
		}
	case mir.RValueBinary:
		operandReads(&r.Binary.Left, fn)
		operandReads(&r.Binary.Right, fn)
	case mir.RValueUnary:
		operandReads(&r.Unary.Operand, fn)
	case mir.RValueCast:
		operandReads(&r.Cast.Value, fn)
	}
}

// borrowBase returns the local whose address an rvalue takes, or
// NoLocalID when the rvalue is not a borrow.
func borrowBase(r *mir.RValue) mir.LocalID {
	if r.Kind == mir.RValueRef || r.Kind == mir.RValueAddrOf {
		return r.Ref.Place.Local
	}
	return mir.NoLocalID
}

// wholeLocal returns the local a place names directly, NoLocalID when
// the place goes through projections.
func wholeLocal(p mir.Place) mir.LocalID {
	if len(p.Proj) == 0 {
		return p.Local
	}
	return mir.NoLocalID
}

// movedWhole hands fn every whole local moved out of by the operand.
func movedWhole(op *mir.Operand, fn func(mir.LocalID)) {
	if op.Kind != mir.OperandMove {
		return
	}
	if l := wholeLocal(op.Place); l != mir.NoLocalID {
		fn(l)
	}
}

// termOperands walks the value operands a terminator consumes.
func termOperands(t *mir.Terminator, fn func(*mir.Operand)) {
	switch t.Kind {
	case mir.TermSwitchInt:
		fn(&t.Switch.Value)
	case mir.TermReturn:
		if t.Return.HasValue {
			fn(&t.Return.Value)
		}
	case mir.TermYield:
		fn(&t.Yield.Value)
	case mir.TermCall:
		fn(&t.Call.Func)
		for i := range t.Call.Args {
			fn(&t.Call.Args[i])
		}
	case mir.TermAssert:
		fn(&t.Assert.Cond)
	}
}
