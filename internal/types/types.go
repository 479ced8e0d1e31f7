package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindInt
	KindUint
	KindFloat
	KindStr
	KindRef
	KindRawPtr
	KindPin
	KindTuple
	KindArray
	KindAdt
	KindFn
	KindCoroutine
	KindCoroState
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindRef:
		return "ref"
	case KindRawPtr:
		return "rawptr"
	case KindPin:
		return "pin"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindAdt:
		return "adt"
	case KindFn:
		return "fn"
	case KindCoroutine:
		return "coroutine"
	case KindCoroState:
		return "corostate"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthSize Width = 0 // pointer-sized
	Width32   Width = 32
	Width64   Width = 64
)

// Type is a compact descriptor for any supported type. Structured kinds
// (tuple, adt, fn, coroutine) keep their data in side tables addressed by
// Payload; CoroState packs the completed type into Payload directly.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for arrays
	Width   Width  // for numeric primitives
	Mutable bool   // for refs and raw pointers
	Payload uint32
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type (WidthSize for usize).
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes an array of count elements.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeRef describes &T or &mut T depending on the mutable flag.
func MakeRef(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable}
}

// MakeRawPtr describes *const T or *mut T.
func MakeRawPtr(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRawPtr, Elem: elem, Mutable: mutable}
}

// MakePin describes a pinned wrapper around a pointer-like type.
func MakePin(elem TypeID) Type {
	return Type{Kind: KindPin, Elem: elem}
}

// MakeCoroState describes the two-case carrier returned by a resume call:
// Yielded(yield) | Completed(ret).
func MakeCoroState(yield, ret TypeID) Type {
	return Type{Kind: KindCoroState, Elem: yield, Payload: uint32(ret)}
}
