package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	Str     TypeID
	I32     TypeID
	I64     TypeID
	U32     TypeID
	USize   TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal kinds (adt, coroutine) get a fresh id per registration.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	tuples   []TupleInfo
	adts     []AdtInfo
	fns      []FnInfo
	coros    []CoroInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// слот 0 в каждой side-таблице зарезервирован под невалидный индекс
	in.tuples = append(in.tuples, TupleInfo{})
	in.adts = append(in.adts, AdtInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.coros = append(in.coros, CoroInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.USize = in.Intern(MakeUint(WidthSize))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len returns the number of interned descriptors, sentinel included.
func (in *Interner) Len() int {
	return len(in.types)
}

// CoroStateOf interns the carrier type for a coroutine's yield/return pair.
func (in *Interner) CoroStateOf(yield, ret TypeID) TypeID {
	return in.Intern(MakeCoroState(yield, ret))
}

// CoroStatePayloads splits a carrier type back into (yield, ret).
func (in *Interner) CoroStatePayloads(id TypeID) (yield, ret TypeID, ok bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindCoroState {
		return NoTypeID, NoTypeID, false
	}
	return tt.Elem, TypeID(tt.Payload), true
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}
