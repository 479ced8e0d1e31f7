package types

import (
	"fmt"

	"fortio.org/safecast"
)

// VariantInfo describes one variant of a named ADT.
type VariantInfo struct {
	Name   string
	Fields []TypeID
}

// AdtInfo describes a named algebraic type. Single-variant ADTs model
// structs; multi-variant ones model enums with a discriminant.
type AdtInfo struct {
	Name     string
	Variants []VariantInfo
	HasDtor  bool // объявлен ли пользовательский деструктор
}

// RegisterAdt creates a fresh nominal ADT type. Each registration gets its
// own id even when the shape matches an existing one.
func (in *Interner) RegisterAdt(info AdtInfo) TypeID {
	variants := make([]VariantInfo, len(info.Variants))
	for i, v := range info.Variants {
		variants[i] = VariantInfo{Name: v.Name, Fields: cloneTypeIDs(v.Fields)}
	}
	slot, err := safecast.Conv[uint32](len(in.adts))
	if err != nil {
		panic(fmt.Errorf("adt info overflow: %w", err))
	}
	in.adts = append(in.adts, AdtInfo{Name: info.Name, Variants: variants, HasDtor: info.HasDtor})
	return in.internRaw(Type{Kind: KindAdt, Payload: slot})
}

// AdtInfo returns the descriptor for an ADT TypeID.
func (in *Interner) AdtInfo(id TypeID) (*AdtInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindAdt {
		return nil, false
	}
	if int(tt.Payload) == 0 || int(tt.Payload) >= len(in.adts) {
		return nil, false
	}
	return &in.adts[tt.Payload], true
}

// FnInfo describes a function signature referenced by fn-name constants.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// RegisterFn creates a fresh function type.
func (in *Interner) RegisterFn(info FnInfo) TypeID {
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{Params: cloneTypeIDs(info.Params), Result: info.Result})
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo returns the signature for a function TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn {
		return nil, false
	}
	if int(tt.Payload) == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}
