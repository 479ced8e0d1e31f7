package mir

import (
	"coil/internal/types"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtAssign stores an rvalue into a place.
	StmtAssign StmtKind = iota
	// StmtStorageLive opens a local's storage range.
	StmtStorageLive
	// StmtStorageDead closes a local's storage range.
	StmtStorageDead
	// StmtSetDiscriminant writes the active variant of an ADT place.
	StmtSetDiscriminant
	// StmtNop does nothing (left behind by rewrites).
	StmtNop
)

// Stmt is a non-terminating statement inside a block.
type Stmt struct {
	Kind StmtKind

	Assign  AssignStmt
	Storage StorageStmt
	SetDisc SetDiscStmt
}

// AssignStmt stores Src into Dst.
type AssignStmt struct {
	Dst Place
	Src RValue
}

// StorageStmt is the payload of storage-live/storage-dead markers.
type StorageStmt struct {
	Local LocalID
}

// SetDiscStmt writes a variant index into the discriminant of Place.
type SetDiscStmt struct {
	Place   Place
	Variant VariantIdx
}

// MakeAssign builds an assign statement.
func MakeAssign(dst Place, src RValue) Stmt {
	return Stmt{Kind: StmtAssign, Assign: AssignStmt{Dst: dst, Src: src}}
}

// MakeStorageLive builds a storage-live marker.
func MakeStorageLive(l LocalID) Stmt {
	return Stmt{Kind: StmtStorageLive, Storage: StorageStmt{Local: l}}
}

// MakeStorageDead builds a storage-dead marker.
func MakeStorageDead(l LocalID) Stmt {
	return Stmt{Kind: StmtStorageDead, Storage: StorageStmt{Local: l}}
}

// MakeSetDiscriminant builds a discriminant write.
func MakeSetDiscriminant(p Place, v VariantIdx) Stmt {
	return Stmt{Kind: StmtSetDiscriminant, SetDisc: SetDiscStmt{Place: p, Variant: v}}
}

// MakeNop builds a no-op statement.
func MakeNop() Stmt {
	return Stmt{Kind: StmtNop}
}

// OperandKind distinguishes operand flavors.
type OperandKind uint8

const (
	// OperandConst is an inline constant.
	OperandConst OperandKind = iota
	// OperandCopy reads a place without consuming it.
	OperandCopy
	// OperandMove reads and consumes a place.
	OperandMove
)

// Operand is an argument position: a constant or a place read.
type Operand struct {
	Kind  OperandKind
	Type  types.TypeID
	Const Const
	Place Place
}

// CopyOperand builds a copying place read.
func CopyOperand(p Place, ty types.TypeID) Operand {
	return Operand{Kind: OperandCopy, Type: ty, Place: p}
}

// MoveOperand builds a consuming place read.
func MoveOperand(p Place, ty types.TypeID) Operand {
	return Operand{Kind: OperandMove, Type: ty, Place: p}
}

// ConstOperand wraps a constant.
func ConstOperand(c Const) Operand {
	return Operand{Kind: OperandConst, Type: c.Type, Const: c}
}

// IsPlace reports whether the operand reads a place.
func (o Operand) IsPlace() bool {
	return o.Kind == OperandCopy || o.Kind == OperandMove
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstInt is a signed integer constant.
	ConstInt ConstKind = iota
	// ConstUint is an unsigned integer constant.
	ConstUint
	// ConstFloat is a floating-point constant.
	ConstFloat
	// ConstBool is a boolean constant.
	ConstBool
	// ConstStr is a string constant.
	ConstStr
	// ConstUnit is the unit value.
	ConstUnit
	// ConstFn names a function (callees and destructors).
	ConstFn
)

// Const is an immediate value.
type Const struct {
	Kind ConstKind
	Type types.TypeID

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
	FnName      string
}

// IntConst builds a signed integer constant.
func IntConst(v int64, ty types.TypeID) Const {
	return Const{Kind: ConstInt, Type: ty, IntValue: v}
}

// UintConst builds an unsigned integer constant.
func UintConst(v uint64, ty types.TypeID) Const {
	return Const{Kind: ConstUint, Type: ty, UintValue: v}
}

// BoolConst builds a boolean constant.
func BoolConst(v bool, ty types.TypeID) Const {
	return Const{Kind: ConstBool, Type: ty, BoolValue: v}
}

// UnitConst builds the unit value.
func UnitConst(ty types.TypeID) Const {
	return Const{Kind: ConstUnit, Type: ty}
}

// FnConst names a callee.
func FnConst(name string, ty types.TypeID) Const {
	return Const{Kind: ConstFn, Type: ty, FnName: name}
}

// RValueKind distinguishes right-hand sides.
type RValueKind uint8

const (
	// RValueUse forwards an operand.
	RValueUse RValueKind = iota
	// RValueRef takes a reference to a place.
	RValueRef
	// RValueAddrOf takes a raw pointer to a place.
	RValueAddrOf
	// RValueDiscriminant reads the active variant of a place.
	RValueDiscriminant
	// RValueAggregate builds a tuple/adt/state value from fields.
	RValueAggregate
	// RValueBinary applies a binary operator.
	RValueBinary
	// RValueUnary applies a unary operator.
	RValueUnary
	// RValueCast converts an operand to another type.
	RValueCast
)

// RValue is the right-hand side of an assignment.
type RValue struct {
	Kind RValueKind

	Use       Operand
	Ref       RefRValue
	Aggregate AggregateRValue
	Disc      DiscRValue
	Binary    BinaryRValue
	Unary     UnaryRValue
	Cast      CastRValue
}

// RefRValue covers both RValueRef and RValueAddrOf.
type RefRValue struct {
	Place   Place
	Mutable bool
}

// DiscRValue reads a discriminant.
type DiscRValue struct {
	Place Place
}

// AggKind narrows what an aggregate builds.
type AggKind uint8

const (
	// AggTuple builds a tuple.
	AggTuple AggKind = iota
	// AggArray builds a fixed-size array.
	AggArray
	// AggAdt builds an ADT variant.
	AggAdt
	// AggCoroState builds a carrier variant (Yielded/Completed).
	AggCoroState
)

// AggregateRValue builds a composite value.
type AggregateRValue struct {
	Agg     AggKind
	Type    types.TypeID
	Variant VariantIdx // AggAdt / AggCoroState
	Fields  []Operand
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

// BinaryRValue applies Op to Left and Right.
type BinaryRValue struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
)

// UnaryRValue applies Op to Operand.
type UnaryRValue struct {
	Op      UnOp
	Operand Operand
}

// CastRValue converts Value to Type.
type CastRValue struct {
	Value Operand
	Type  types.TypeID
}

// UseRValue wraps an operand.
func UseRValue(op Operand) RValue {
	return RValue{Kind: RValueUse, Use: op}
}

// RefRVal takes &place or &mut place.
func RefRVal(p Place, mutable bool) RValue {
	return RValue{Kind: RValueRef, Ref: RefRValue{Place: p, Mutable: mutable}}
}

// AddrOfRVal takes *const place or *mut place.
func AddrOfRVal(p Place, mutable bool) RValue {
	return RValue{Kind: RValueAddrOf, Ref: RefRValue{Place: p, Mutable: mutable}}
}

// DiscriminantRVal reads the discriminant of p.
func DiscriminantRVal(p Place) RValue {
	return RValue{Kind: RValueDiscriminant, Disc: DiscRValue{Place: p}}
}

// AggregateRVal builds a composite value.
func AggregateRVal(agg AggKind, ty types.TypeID, variant VariantIdx, fields []Operand) RValue {
	return RValue{Kind: RValueAggregate, Aggregate: AggregateRValue{Agg: agg, Type: ty, Variant: variant, Fields: fields}}
}
