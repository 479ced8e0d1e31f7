package mir

// VisitSuccessors calls fn with a pointer to every successor id of the
// terminator, unwind edges included. Pointers stay valid for in-place
// redirection.
func VisitSuccessors(t *Terminator, fn func(*BlockID)) {
	switch t.Kind {
	case TermGoto:
		fn(&t.Goto.Target)
	case TermSwitchInt:
		for i := range t.Switch.Cases {
			fn(&t.Switch.Cases[i].Target)
		}
		fn(&t.Switch.Otherwise)
	case TermYield:
		fn(&t.Yield.Resume)
		if t.Yield.Drop != NoBlockID {
			fn(&t.Yield.Drop)
		}
	case TermDrop:
		fn(&t.Drop.Target)
		if t.Drop.Unwind != NoBlockID {
			fn(&t.Drop.Unwind)
		}
	case TermCall:
		if t.Call.Target != NoBlockID {
			fn(&t.Call.Target)
		}
		if t.Call.Unwind != NoBlockID {
			fn(&t.Call.Unwind)
		}
	case TermAssert:
		fn(&t.Assert.Target)
		if t.Assert.Unwind != NoBlockID {
			fn(&t.Assert.Unwind)
		}
	case TermReturn, TermUnreachable, TermUnwindResume, TermCoroutineDrop, TermNone:
		// без преемников
	}
}

// Successors returns the successor ids of a terminator.
func Successors(t *Terminator) []BlockID {
	var out []BlockID
	VisitSuccessors(t, func(id *BlockID) { out = append(out, *id) })
	return out
}

// VisitPlaces calls fn with a pointer to every place read or written by
// the statement, destination first.
func (s *Stmt) VisitPlaces(fn func(*Place)) {
	switch s.Kind {
	case StmtAssign:
		fn(&s.Assign.Dst)
		s.Assign.Src.VisitPlaces(fn)
	case StmtSetDiscriminant:
		fn(&s.SetDisc.Place)
	case StmtStorageLive, StmtStorageDead, StmtNop:
		// операнды-места отсутствуют
	}
}

// VisitPlaces calls fn with a pointer to every place in the rvalue.
func (r *RValue) VisitPlaces(fn func(*Place)) {
	switch r.Kind {
	case RValueUse:
		r.Use.visitPlaces(fn)
	case RValueRef, RValueAddrOf:
		fn(&r.Ref.Place)
	case RValueDiscriminant:
		fn(&r.Disc.Place)
	case RValueAggregate:
		for i := range r.Aggregate.Fields {
			r.Aggregate.Fields[i].visitPlaces(fn)
		}
	case RValueBinary:
		r.Binary.Left.visitPlaces(fn)
		r.Binary.Right.visitPlaces(fn)
	case RValueUnary:
		r.Unary.Operand.visitPlaces(fn)
	case RValueCast:
		r.Cast.Value.visitPlaces(fn)
	}
}

func (o *Operand) visitPlaces(fn func(*Place)) {
	if o.IsPlace() {
		fn(&o.Place)
	}
}

// VisitPlaces calls fn with a pointer to every place in the terminator.
func (t *Terminator) VisitPlaces(fn func(*Place)) {
	switch t.Kind {
	case TermSwitchInt:
		t.Switch.Value.visitPlaces(fn)
	case TermReturn:
		if t.Return.HasValue {
			t.Return.Value.visitPlaces(fn)
		}
	case TermYield:
		t.Yield.Value.visitPlaces(fn)
		fn(&t.Yield.ResumeArg)
	case TermDrop:
		fn(&t.Drop.Place)
	case TermCall:
		t.Call.Func.visitPlaces(fn)
		for i := range t.Call.Args {
			t.Call.Args[i].visitPlaces(fn)
		}
		if t.Call.HasDst {
			fn(&t.Call.Dst)
		}
	case TermAssert:
		t.Assert.Cond.visitPlaces(fn)
	case TermGoto, TermUnreachable, TermUnwindResume, TermCoroutineDrop, TermNone:
		// мест нет
	}
}

// VisitBodyPlaces walks every place of every block, statements before
// terminators.
func VisitBodyPlaces(b *Body, fn func(*Place)) {
	for bi := range b.Blocks {
		blk := &b.Blocks[bi]
		for si := range blk.Stmts {
			blk.Stmts[si].VisitPlaces(fn)
		}
		blk.Term.VisitPlaces(fn)
	}
}
