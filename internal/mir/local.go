package mir

import (
	"coil/internal/source"
	"coil/internal/types"
)

// LocalKind classifies a local slot.
type LocalKind uint8

const (
	// LocalReturn is the return slot (always local 0).
	LocalReturn LocalKind = iota
	// LocalArg is a function argument.
	LocalArg
	// LocalUser is a user-declared variable.
	LocalUser
	// LocalTemp is a front-end temporary.
	LocalTemp
)

func (k LocalKind) String() string {
	switch k {
	case LocalReturn:
		return "ret"
	case LocalArg:
		return "arg"
	case LocalUser:
		return "user"
	case LocalTemp:
		return "temp"
	default:
		return "local"
	}
}

// Local is one slot in a body's frame.
type Local struct {
	Name string
	Type types.TypeID
	Kind LocalKind
	// Internal marks locals introduced by the lowering itself; they are
	// never saved into the state and never reported in witness errors.
	Internal bool
	Span     source.Span
}

// ProjKind enumerates place projection steps.
type ProjKind uint8

const (
	// ProjDeref steps through a pointer-like value.
	ProjDeref ProjKind = iota
	// ProjField selects a field by index.
	ProjField
	// ProjDowncast fixes the active variant before field access.
	ProjDowncast
	// ProjIndex selects an array element by a local's value.
	ProjIndex
)

// Projection is one step in a place path.
type Projection struct {
	Kind ProjKind

	// ProjField
	Field   uint32
	FieldTy types.TypeID

	// ProjDowncast
	Variant VariantIdx

	// ProjIndex
	Index LocalID
}

// FieldProj builds a field projection step.
func FieldProj(field uint32, ty types.TypeID) Projection {
	return Projection{Kind: ProjField, Field: field, FieldTy: ty}
}

// DowncastProj builds a variant downcast step.
func DowncastProj(v VariantIdx) Projection {
	return Projection{Kind: ProjDowncast, Variant: v}
}

// DerefProj builds a deref step.
func DerefProj() Projection {
	return Projection{Kind: ProjDeref}
}

// Place names a memory location: a root local plus projection steps.
type Place struct {
	Local LocalID
	Proj  []Projection
}

// PlaceOf builds a projection-free place for a local.
func PlaceOf(l LocalID) Place {
	return Place{Local: l}
}

// IsLocal reports whether the place is a bare local without projections.
func (p Place) IsLocal() bool {
	return len(p.Proj) == 0
}

// IsValid reports whether the root local is set.
func (p Place) IsValid() bool {
	return p.Local != NoLocalID
}

// WithProj returns a copy of the place with extra trailing projections.
func (p Place) WithProj(steps ...Projection) Place {
	proj := make([]Projection, 0, len(p.Proj)+len(steps))
	proj = append(proj, p.Proj...)
	proj = append(proj, steps...)
	return Place{Local: p.Local, Proj: proj}
}

// Equal reports structural equality of two places.
func (p Place) Equal(other Place) bool {
	if p.Local != other.Local || len(p.Proj) != len(other.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != other.Proj[i] {
			return false
		}
	}
	return true
}
