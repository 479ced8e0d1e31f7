package mir

// Dense ids into the containing body's tables. -1 marks "none".
type (
	FuncID  int32
	BlockID int32
	LocalID int32
)

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// Well-known local slots. Every body reserves local 0 for the return value;
// coroutine bodies additionally fix local 1 as the receiver (the captured
// environment) and local 2 as the resume argument.
const (
	ReturnLocal LocalID = 0
	SelfLocal   LocalID = 1
	ResumeLocal LocalID = 2
)

// EntryBlock opens every body; block ids equal block indices.
const EntryBlock BlockID = 0

// SavedLocal is the dense renumbering of locals that live across at least
// one suspension point. It indexes StateLayout tables.
type SavedLocal int32

const NoSavedLocal SavedLocal = -1

// VariantIdx numbers the variants of the lowered coroutine state.
type VariantIdx uint32

// State discriminants fixed by the lowering contract. Suspension point i
// gets discriminant FirstSuspend+i.
const (
	StateUnresumed VariantIdx = 0
	StateReturned  VariantIdx = 1
	StatePoisoned  VariantIdx = 2
	FirstSuspend   VariantIdx = 3
)

// ReservedVariants counts the always-present variants before the first
// suspension point.
const ReservedVariants = 3

// Carrier variants of the value a resume call hands back. They mirror
// types.CoroStateYielded / types.CoroStateCompleted.
const (
	CarrierYielded   VariantIdx = 0
	CarrierCompleted VariantIdx = 1
)

// VariantName renders the conventional name of a state variant.
func VariantName(v VariantIdx) string {
	switch v {
	case StateUnresumed:
		return "Unresumed"
	case StateReturned:
		return "Returned"
	case StatePoisoned:
		return "Poisoned"
	default:
		return "Suspend" + itoa(uint32(v)-uint32(FirstSuspend))
	}
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
