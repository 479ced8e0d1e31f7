package mir

// TermKind enumerates terminator kinds.
type TermKind uint8

const (
	// TermNone marks an unterminated block (invalid in finished bodies).
	TermNone TermKind = iota
	// TermGoto jumps unconditionally.
	TermGoto
	// TermSwitchInt dispatches on an integer operand.
	TermSwitchInt
	// TermReturn leaves the function.
	TermReturn
	// TermUnreachable marks statically impossible control flow.
	TermUnreachable
	// TermYield suspends a coroutine.
	TermYield
	// TermDrop runs the destructor of a place.
	TermDrop
	// TermCall invokes a function.
	TermCall
	// TermAssert checks a condition and panics with a message on failure.
	TermAssert
	// TermUnwindResume continues unwinding after cleanup.
	TermUnwindResume
	// TermCoroutineDrop marks the point where a dropped-while-suspended
	// coroutine finishes cleanup; the destroy shim turns it into a return.
	TermCoroutineDrop
)

// Terminator closes a block.
type Terminator struct {
	Kind TermKind

	Goto   GotoTerm
	Switch SwitchTerm
	Return ReturnTerm
	Yield  YieldTerm
	Drop   DropTerm
	Call   CallTerm
	Assert AssertTerm
}

// GotoTerm jumps to Target.
type GotoTerm struct {
	Target BlockID
}

// SwitchCase binds one integer value to a target block.
type SwitchCase struct {
	Value  uint64
	Target BlockID
}

// SwitchTerm dispatches on Value. Otherwise is mandatory.
type SwitchTerm struct {
	Value     Operand
	Cases     []SwitchCase
	Otherwise BlockID
}

// ReturnTerm leaves the function. Pre-lowering coroutine bodies always
// carry an explicit value (unit-typed ones return a unit constant);
// synthesized plain returns have HasValue=false.
type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// YieldTerm suspends the coroutine: Value is handed to the caller, Resume
// is where execution continues, ResumeArg receives the next resume
// argument, and Drop (optional) is taken when the suspended coroutine is
// destroyed instead of resumed.
type YieldTerm struct {
	Value     Operand
	Resume    BlockID
	ResumeArg Place
	Drop      BlockID // NoBlockID when absent
}

// DropTerm runs the destructor of Place, then continues at Target.
// Unwind (optional) is the cleanup successor.
type DropTerm struct {
	Place  Place
	Target BlockID
	Unwind BlockID // NoBlockID when absent
}

// CallTerm invokes Func with Args. When HasDst, the result lands in Dst.
// Target NoBlockID means the call diverges.
type CallTerm struct {
	Func   Operand
	Args   []Operand
	HasDst bool
	Dst    Place
	Target BlockID
	Unwind BlockID // NoBlockID when absent
}

// AssertMsg selects the panic message of an assert.
type AssertMsg uint8

const (
	// AssertResumedAfterReturn fires when a completed coroutine is resumed.
	AssertResumedAfterReturn AssertMsg = iota
	// AssertResumedAfterPanic fires when a poisoned coroutine is resumed.
	AssertResumedAfterPanic
	// AssertBoundsCheck is the generic front-end bounds check.
	AssertBoundsCheck
)

func (m AssertMsg) String() string {
	switch m {
	case AssertResumedAfterReturn:
		return "coroutine resumed after completion"
	case AssertResumedAfterPanic:
		return "coroutine resumed after panicking"
	case AssertBoundsCheck:
		return "index out of bounds"
	default:
		return "assertion failed"
	}
}

// AssertTerm panics with Msg when Cond != Expected; otherwise continues
// at Target. Unwind (optional) is the cleanup successor.
type AssertTerm struct {
	Cond     Operand
	Expected bool
	Msg      AssertMsg
	Target   BlockID
	Unwind   BlockID // NoBlockID when absent
}

// GotoTerminator builds a goto.
func GotoTerminator(target BlockID) Terminator {
	return Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}}
}

// ReturnTerminator builds a plain return.
func ReturnTerminator() Terminator {
	return Terminator{Kind: TermReturn}
}

// ReturnValueTerminator builds a value-carrying return.
func ReturnValueTerminator(v Operand) Terminator {
	return Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: v}}
}

// UnreachableTerminator marks dead control flow.
func UnreachableTerminator() Terminator {
	return Terminator{Kind: TermUnreachable}
}

// SwitchTerminator builds an integer switch.
func SwitchTerminator(value Operand, cases []SwitchCase, otherwise BlockID) Terminator {
	return Terminator{Kind: TermSwitchInt, Switch: SwitchTerm{Value: value, Cases: cases, Otherwise: otherwise}}
}

// DropTerminator builds a drop.
func DropTerminator(place Place, target, unwind BlockID) Terminator {
	return Terminator{Kind: TermDrop, Drop: DropTerm{Place: place, Target: target, Unwind: unwind}}
}

// YieldTerminator builds a suspension point. drop may be NoBlockID when
// the suspended coroutine holds nothing that needs dropping.
func YieldTerminator(value Operand, resume BlockID, resumeArg Place, drop BlockID) Terminator {
	return Terminator{Kind: TermYield, Yield: YieldTerm{Value: value, Resume: resume, ResumeArg: resumeArg, Drop: drop}}
}

// UnwindResumeTerminator continues propagating a panic after cleanup.
func UnwindResumeTerminator() Terminator {
	return Terminator{Kind: TermUnwindResume}
}

// CoroutineDropTerminator ends the drop path of a suspended coroutine.
func CoroutineDropTerminator() Terminator {
	return Terminator{Kind: TermCoroutineDrop}
}

// CanUnwind reports whether the terminator kind may start unwinding.
// Storage markers and jumps never unwind; calls, drops and asserts may.
func (t *Terminator) CanUnwind() bool {
	return t.UnwindSlot() != nil
}

// UnwindSlot returns a pointer to the terminator's unwind successor, or
// nil for kinds that cannot unwind. NoBlockID in the slot means the
// unwind edge is not wired yet.
func (t *Terminator) UnwindSlot() *BlockID {
	switch t.Kind {
	case TermDrop:
		return &t.Drop.Unwind
	case TermCall:
		return &t.Call.Unwind
	case TermAssert:
		return &t.Assert.Unwind
	default:
		return nil
	}
}
