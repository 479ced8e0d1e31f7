package mir

// CloneBody deep-copies a body. Every nested slice is duplicated, so the
// copy can be rewritten without touching the original. Coroutine info is
// shared by pointer except Layout, which is immutable once built.
func CloneBody(b *Body) *Body {
	if b == nil {
		return nil
	}
	out := &Body{
		Name:     b.Name,
		Span:     b.Span,
		ArgCount: b.ArgCount,
		Locals:   make([]Local, len(b.Locals)),
		Blocks:   make([]Block, len(b.Blocks)),
	}
	copy(out.Locals, b.Locals)
	for i := range b.Blocks {
		out.Blocks[i] = cloneBlock(&b.Blocks[i])
	}
	if b.Coroutine != nil {
		ci := *b.Coroutine
		if b.Coroutine.DropFlags != nil {
			ci.DropFlags = make(map[uint32]LocalID, len(b.Coroutine.DropFlags))
			for k, v := range b.Coroutine.DropFlags {
				ci.DropFlags[k] = v
			}
		}
		ci.DropShim = nil // шим не клонируем вместе с телом
		out.Coroutine = &ci
	}
	return out
}

func cloneBlock(bb *Block) Block {
	out := Block{ID: bb.ID, Span: bb.Span, IsCleanup: bb.IsCleanup, Term: cloneTerm(&bb.Term)}
	if len(bb.Stmts) > 0 {
		out.Stmts = make([]Stmt, len(bb.Stmts))
		for i := range bb.Stmts {
			out.Stmts[i] = cloneStmt(&bb.Stmts[i])
		}
	}
	return out
}

func cloneStmt(s *Stmt) Stmt {
	out := *s
	switch s.Kind {
	case StmtAssign:
		out.Assign.Dst = ClonePlace(s.Assign.Dst)
		out.Assign.Src = cloneRValue(&s.Assign.Src)
	case StmtSetDiscriminant:
		out.SetDisc.Place = ClonePlace(s.SetDisc.Place)
	case StmtStorageLive, StmtStorageDead, StmtNop:
	}
	return out
}

func cloneTerm(t *Terminator) Terminator {
	out := *t
	switch t.Kind {
	case TermSwitchInt:
		out.Switch.Value = cloneOperand(&t.Switch.Value)
		out.Switch.Cases = make([]SwitchCase, len(t.Switch.Cases))
		copy(out.Switch.Cases, t.Switch.Cases)
	case TermReturn:
		if t.Return.HasValue {
			out.Return.Value = cloneOperand(&t.Return.Value)
		}
	case TermYield:
		out.Yield.Value = cloneOperand(&t.Yield.Value)
		out.Yield.ResumeArg = ClonePlace(t.Yield.ResumeArg)
	case TermDrop:
		out.Drop.Place = ClonePlace(t.Drop.Place)
	case TermCall:
		out.Call.Func = cloneOperand(&t.Call.Func)
		if len(t.Call.Args) > 0 {
			out.Call.Args = make([]Operand, len(t.Call.Args))
			for i := range t.Call.Args {
				out.Call.Args[i] = cloneOperand(&t.Call.Args[i])
			}
		}
		if t.Call.HasDst {
			out.Call.Dst = ClonePlace(t.Call.Dst)
		}
	case TermAssert:
		out.Assert.Cond = cloneOperand(&t.Assert.Cond)
	case TermNone, TermGoto, TermUnreachable, TermUnwindResume, TermCoroutineDrop:
	}
	return out
}

func cloneRValue(r *RValue) RValue {
	out := *r
	switch r.Kind {
	case RValueUse:
		out.Use = cloneOperand(&r.Use)
	case RValueRef, RValueAddrOf:
		out.Ref.Place = ClonePlace(r.Ref.Place)
	case RValueDiscriminant:
		out.Disc.Place = ClonePlace(r.Disc.Place)
	case RValueAggregate:
		if len(r.Aggregate.Fields) > 0 {
			out.Aggregate.Fields = make([]Operand, len(r.Aggregate.Fields))
			for i := range r.Aggregate.Fields {
				out.Aggregate.Fields[i] = cloneOperand(&r.Aggregate.Fields[i])
			}
		}
	case RValueBinary:
		out.Binary.Left = cloneOperand(&r.Binary.Left)
		out.Binary.Right = cloneOperand(&r.Binary.Right)
	case RValueUnary:
		out.Unary.Operand = cloneOperand(&r.Unary.Operand)
	case RValueCast:
		out.Cast.Value = cloneOperand(&r.Cast.Value)
	}
	return out
}

func cloneOperand(o *Operand) Operand {
	out := *o
	if o.IsPlace() {
		out.Place = ClonePlace(o.Place)
	}
	return out
}

// ClonePlace duplicates a place including its projection slice.
func ClonePlace(p Place) Place {
	if len(p.Proj) == 0 {
		return p
	}
	proj := make([]Projection, len(p.Proj))
	copy(proj, p.Proj)
	return Place{Local: p.Local, Proj: proj}
}
