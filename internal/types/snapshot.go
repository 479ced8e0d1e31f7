package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Snapshot is the serializable image of an interner. Module snapshots carry
// it so TypeIDs in the bodies stay meaningful across processes.
type Snapshot struct {
	Types  []Type
	Tuples []TupleInfo
	Adts   []AdtInfo
	Fns    []FnInfo
	Coros  []CoroInfo
}

// Export copies the interner tables into a Snapshot.
func (in *Interner) Export() Snapshot {
	snap := Snapshot{
		Types:  make([]Type, len(in.types)),
		Tuples: make([]TupleInfo, len(in.tuples)),
		Adts:   make([]AdtInfo, len(in.adts)),
		Fns:    make([]FnInfo, len(in.fns)),
		Coros:  make([]CoroInfo, len(in.coros)),
	}
	copy(snap.Types, in.types)
	for i, t := range in.tuples {
		snap.Tuples[i] = TupleInfo{Elems: cloneTypeIDs(t.Elems)}
	}
	for i, a := range in.adts {
		variants := make([]VariantInfo, len(a.Variants))
		for j, v := range a.Variants {
			variants[j] = VariantInfo{Name: v.Name, Fields: cloneTypeIDs(v.Fields)}
		}
		snap.Adts[i] = AdtInfo{Name: a.Name, Variants: variants, HasDtor: a.HasDtor}
	}
	for i, f := range in.fns {
		snap.Fns[i] = FnInfo{Params: cloneTypeIDs(f.Params), Result: f.Result}
	}
	for i, c := range in.coros {
		snap.Coros[i] = CoroInfo{
			Name:    c.Name,
			Upvars:  cloneTypeIDs(c.Upvars),
			Witness: cloneTypeIDs(c.Witness),
			Movable: c.Movable,
		}
	}
	return snap
}

// Restore rebuilds an interner from a Snapshot, re-deriving the dedup index.
func Restore(snap Snapshot) (*Interner, error) {
	if len(snap.Types) == 0 || snap.Types[0].Kind != KindInvalid {
		return nil, fmt.Errorf("types: snapshot slot 0 must be the invalid sentinel")
	}
	if len(snap.Tuples) == 0 || len(snap.Adts) == 0 || len(snap.Fns) == 0 || len(snap.Coros) == 0 {
		return nil, fmt.Errorf("types: snapshot side tables must carry their reserved slot")
	}
	in := &Interner{
		types:  make([]Type, len(snap.Types)),
		index:  make(map[typeKey]TypeID, len(snap.Types)),
		tuples: make([]TupleInfo, len(snap.Tuples)),
		adts:   make([]AdtInfo, len(snap.Adts)),
		fns:    make([]FnInfo, len(snap.Fns)),
		coros:  make([]CoroInfo, len(snap.Coros)),
	}
	copy(in.types, snap.Types)
	copy(in.tuples, snap.Tuples)
	copy(in.adts, snap.Adts)
	copy(in.fns, snap.Fns)
	copy(in.coros, snap.Coros)
	for i, t := range in.types {
		if err := in.checkRestored(t); err != nil {
			return nil, fmt.Errorf("types: snapshot type #%d: %w", i, err)
		}
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("types: snapshot too large: %w", err)
		}
		in.index[typeKey(t)] = TypeID(id)
	}
	in.builtins = Builtins{
		Invalid: in.Intern(Type{Kind: KindInvalid}),
		Unit:    in.Intern(Type{Kind: KindUnit}),
		Never:   in.Intern(Type{Kind: KindNever}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		Str:     in.Intern(Type{Kind: KindStr}),
		I32:     in.Intern(MakeInt(Width32)),
		I64:     in.Intern(MakeInt(Width64)),
		U32:     in.Intern(MakeUint(Width32)),
		USize:   in.Intern(MakeUint(WidthSize)),
		F64:     in.Intern(MakeFloat(Width64)),
	}
	return in, nil
}

func (in *Interner) checkRestored(t Type) error {
	switch t.Kind {
	case KindTuple:
		if int(t.Payload) >= len(in.tuples) {
			return fmt.Errorf("tuple payload %d out of range", t.Payload)
		}
	case KindAdt:
		if int(t.Payload) >= len(in.adts) {
			return fmt.Errorf("adt payload %d out of range", t.Payload)
		}
	case KindFn:
		if int(t.Payload) >= len(in.fns) {
			return fmt.Errorf("fn payload %d out of range", t.Payload)
		}
	case KindCoroutine:
		if int(t.Payload) >= len(in.coros) {
			return fmt.Errorf("coroutine payload %d out of range", t.Payload)
		}
	}
	return nil
}
