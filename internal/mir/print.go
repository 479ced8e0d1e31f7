package mir

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"coil/internal/types"
)

// DumpOptions configures MIR module dumping.
type DumpOptions struct {
	// Layouts adds the state layout section under lowered bodies.
	Layouts bool
}

// DumpModule writes a human-readable representation of a module.
// Functions are sorted by name so dumps diff cleanly.
func DumpModule(w io.Writer, m *Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}

	funcs := make([]*Body, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortStableFunc(funcs, func(a, b *Body) int {
		return strings.Compare(a.Name, b.Name)
	})

	fmt.Fprintf(w, "funcs=%d\n", len(funcs))
	for _, f := range funcs {
		if err := DumpBody(w, f, m.Types, opts); err != nil {
			return err
		}
	}
	return nil
}

// DumpBody writes one function.
func DumpBody(w io.Writer, f *Body, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || f == nil {
		return nil
	}
	head := "fn"
	if f.IsCoroutine() {
		head = "coroutine"
	}
	fmt.Fprintf(w, "\n%s %s:\n", head, f.Name)

	fmt.Fprintf(w, "  locals:\n")
	for i := range f.Locals {
		l := &f.Locals[i]
		name := l.Name
		if name == "" {
			name = "_"
		}
		flags := formatLocalFlags(l)
		if flags != "" {
			fmt.Fprintf(w, "    L%d: %s %s name=%s\n", i, typeStr(typesIn, l.Type), flags, name)
		} else {
			fmt.Fprintf(w, "    L%d: %s name=%s\n", i, typeStr(typesIn, l.Type), name)
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.IsCleanup {
			fmt.Fprintf(w, "  bb%d (cleanup):\n", bb.ID)
		} else {
			fmt.Fprintf(w, "  bb%d:\n", bb.ID)
		}
		for j := range bb.Stmts {
			fmt.Fprintf(w, "    %s\n", formatStmt(typesIn, &bb.Stmts[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}

	if opts.Layouts && f.Coroutine != nil && f.Coroutine.Layout != nil {
		dumpLayout(w, f.Coroutine.Layout, typesIn)
	}
	if f.Coroutine != nil && f.Coroutine.DropShim != nil {
		if err := DumpBody(w, f.Coroutine.DropShim, typesIn, opts); err != nil {
			return err
		}
	}
	return nil
}

func dumpLayout(w io.Writer, l *StateLayout, typesIn *types.Interner) {
	fmt.Fprintf(w, "  layout:\n")
	for i := range l.FieldTys {
		name := l.FieldNames[i]
		if name == "" {
			name = "_"
		}
		fmt.Fprintf(w, "    s%d: %s name=%s\n", i, typeStr(typesIn, l.FieldTys[i]), name)
	}
	for v := range l.VariantFields {
		fields := l.VariantFields[v]
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("s%d", f))
		}
		fmt.Fprintf(w, "    %s: {%s}\n", VariantName(VariantIdx(v)), strings.Join(parts, ", "))
	}
}

func formatLocalFlags(l *Local) string {
	var parts []string
	switch l.Kind {
	case LocalReturn:
		parts = append(parts, "ret")
	case LocalArg:
		parts = append(parts, "arg")
	case LocalTemp:
		parts = append(parts, "tmp")
	case LocalUser:
	}
	if l.Internal {
		parts = append(parts, "internal")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func formatStmt(typesIn *types.Interner, s *Stmt) string {
	if s == nil {
		return "<stmt?>"
	}
	switch s.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", FormatPlace(s.Assign.Dst), formatRValue(typesIn, &s.Assign.Src))
	case StmtStorageLive:
		return fmt.Sprintf("storage_live L%d", s.Storage.Local)
	case StmtStorageDead:
		return fmt.Sprintf("storage_dead L%d", s.Storage.Local)
	case StmtSetDiscriminant:
		return fmt.Sprintf("discriminant(%s) = %d", FormatPlace(s.SetDisc.Place), s.SetDisc.Variant)
	case StmtNop:
		return "nop"
	default:
		return "<stmt?>"
	}
}

func formatTerm(term *Terminator) string {
	if term == nil {
		return "<term?>"
	}
	switch term.Kind {
	case TermNone:
		return "<no terminator>"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", term.Goto.Target)
	case TermSwitchInt:
		out := fmt.Sprintf("switch_int %s {", formatOperand(&term.Switch.Value))
		for _, c := range term.Switch.Cases {
			out += fmt.Sprintf(" %d -> bb%d;", c.Value, c.Target)
		}
		out += fmt.Sprintf(" otherwise -> bb%d; }", term.Switch.Otherwise)
		return out
	case TermReturn:
		if !term.Return.HasValue {
			return "return"
		}
		return fmt.Sprintf("return %s", formatOperand(&term.Return.Value))
	case TermUnreachable:
		return "unreachable"
	case TermYield:
		out := fmt.Sprintf("yield %s resume bb%d resume_arg %s",
			formatOperand(&term.Yield.Value), term.Yield.Resume, FormatPlace(term.Yield.ResumeArg))
		if term.Yield.Drop != NoBlockID {
			out += fmt.Sprintf(" drop bb%d", term.Yield.Drop)
		}
		return out
	case TermDrop:
		out := fmt.Sprintf("drop %s -> bb%d", FormatPlace(term.Drop.Place), term.Drop.Target)
		if term.Drop.Unwind != NoBlockID {
			out += fmt.Sprintf(" unwind bb%d", term.Drop.Unwind)
		}
		return out
	case TermCall:
		dst := ""
		if term.Call.HasDst {
			dst = FormatPlace(term.Call.Dst) + " = "
		}
		out := fmt.Sprintf("%scall %s(%s)", dst, formatOperand(&term.Call.Func), formatOperands(term.Call.Args))
		if term.Call.Target != NoBlockID {
			out += fmt.Sprintf(" -> bb%d", term.Call.Target)
		}
		if term.Call.Unwind != NoBlockID {
			out += fmt.Sprintf(" unwind bb%d", term.Call.Unwind)
		}
		return out
	case TermAssert:
		out := fmt.Sprintf("assert %s == %v, %q -> bb%d",
			formatOperand(&term.Assert.Cond), term.Assert.Expected, term.Assert.Msg.String(), term.Assert.Target)
		if term.Assert.Unwind != NoBlockID {
			out += fmt.Sprintf(" unwind bb%d", term.Assert.Unwind)
		}
		return out
	case TermUnwindResume:
		return "unwind_resume"
	case TermCoroutineDrop:
		return "coroutine_drop"
	default:
		return "<term?>"
	}
}

// FormatPlace renders a place as L<id> plus projections.
func FormatPlace(p Place) string {
	if !p.IsValid() {
		return "L?"
	}
	out := fmt.Sprintf("L%d", p.Local)
	for _, proj := range p.Proj {
		switch proj.Kind {
		case ProjDeref:
			out = fmt.Sprintf("(*%s)", out)
		case ProjField:
			out += fmt.Sprintf(".#%d", proj.Field)
		case ProjDowncast:
			out += fmt.Sprintf(" as %s", VariantName(proj.Variant))
		case ProjIndex:
			if proj.Index != NoLocalID {
				out += fmt.Sprintf("[L%d]", proj.Index)
			} else {
				out += "[?]"
			}
		default:
			out += ".<?>"
		}
	}
	return out
}

func formatOperands(ops []Operand) string {
	parts := make([]string, 0, len(ops))
	for i := range ops {
		parts = append(parts, formatOperand(&ops[i]))
	}
	return strings.Join(parts, ", ")
}

func formatOperand(op *Operand) string {
	if op == nil {
		return "<op?>"
	}
	switch op.Kind {
	case OperandConst:
		return formatConst(&op.Const)
	case OperandCopy:
		return fmt.Sprintf("copy %s", FormatPlace(op.Place))
	case OperandMove:
		return fmt.Sprintf("move %s", FormatPlace(op.Place))
	default:
		return "<op?>"
	}
}

func formatConst(c *Const) string {
	if c == nil {
		return "const ?"
	}
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d", c.IntValue)
	case ConstUint:
		return fmt.Sprintf("const %d:uint", c.UintValue)
	case ConstFloat:
		return fmt.Sprintf("const %g", c.FloatValue)
	case ConstBool:
		if c.BoolValue {
			return "const true"
		}
		return "const false"
	case ConstStr:
		return fmt.Sprintf("const %q", c.StringValue)
	case ConstUnit:
		return "const unit"
	case ConstFn:
		return fmt.Sprintf("const fn %s", c.FnName)
	default:
		return "const ?"
	}
}

func formatRValue(typesIn *types.Interner, rv *RValue) string {
	if rv == nil {
		return "<rvalue?>"
	}
	switch rv.Kind {
	case RValueUse:
		return formatOperand(&rv.Use)
	case RValueRef:
		if rv.Ref.Mutable {
			return fmt.Sprintf("&mut %s", FormatPlace(rv.Ref.Place))
		}
		return fmt.Sprintf("&%s", FormatPlace(rv.Ref.Place))
	case RValueAddrOf:
		if rv.Ref.Mutable {
			return fmt.Sprintf("addr_of_mut %s", FormatPlace(rv.Ref.Place))
		}
		return fmt.Sprintf("addr_of %s", FormatPlace(rv.Ref.Place))
	case RValueDiscriminant:
		return fmt.Sprintf("discriminant(%s)", FormatPlace(rv.Disc.Place))
	case RValueAggregate:
		tag := "aggregate"
		switch rv.Aggregate.Agg {
		case AggTuple:
			tag = "tuple"
		case AggArray:
			tag = "array"
		case AggAdt:
			tag = fmt.Sprintf("adt %s variant %d", typeStr(typesIn, rv.Aggregate.Type), rv.Aggregate.Variant)
		case AggCoroState:
			tag = fmt.Sprintf("coro_state %s", VariantName(rv.Aggregate.Variant))
		}
		return fmt.Sprintf("%s(%s)", tag, formatOperands(rv.Aggregate.Fields))
	case RValueBinary:
		return fmt.Sprintf("(%s %v %s)", formatOperand(&rv.Binary.Left), rv.Binary.Op, formatOperand(&rv.Binary.Right))
	case RValueUnary:
		return fmt.Sprintf("(%v %s)", rv.Unary.Op, formatOperand(&rv.Unary.Operand))
	case RValueCast:
		return fmt.Sprintf("cast %s to %s", formatOperand(&rv.Cast.Value), typeStr(typesIn, rv.Cast.Type))
	default:
		return "<rvalue?>"
	}
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil {
		return fmt.Sprintf("ty#%d", id)
	}
	return typesIn.Format(id)
}
