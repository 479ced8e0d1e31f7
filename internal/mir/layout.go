package mir

import (
	"coil/internal/bitvec"
	"coil/internal/source"
	"coil/internal/types"
)

// StateLayout describes the storage of a lowered coroutine.
//
// Saved locals are renumbered densely: SavedLocal k corresponds to
// FieldTys[k]. VariantFields lists, per state variant, which saved
// locals live in it; the first ReservedVariants entries (Unresumed,
// Returned, Poisoned) are always empty. Conflicts is symmetric:
// Conflicts[a] contains b when saved locals a and b were ever
// storage-live at the same suspension point and thus must not share
// a slot.
type StateLayout struct {
	FieldTys   []types.TypeID
	FieldNames []string
	FieldSpans []source.Span

	VariantFields [][]SavedLocal
	// VariantSpans carries debug locations: function entry for Unresumed,
	// end of body for Returned and Poisoned, the yield terminator for
	// suspension variants.
	VariantSpans []source.Span

	Conflicts *bitvec.Matrix
}

// FieldCount returns the number of saved locals.
func (l *StateLayout) FieldCount() int { return len(l.FieldTys) }

// VariantCount returns the number of state variants, reserved ones included.
func (l *StateLayout) VariantCount() int { return len(l.VariantFields) }

// SuspendCount returns the number of suspension states.
func (l *StateLayout) SuspendCount() int {
	if len(l.VariantFields) < ReservedVariants {
		return 0
	}
	return len(l.VariantFields) - ReservedVariants
}

// Conflict reports whether saved locals a and b overlap at some
// suspension point.
func (l *StateLayout) Conflict(a, b SavedLocal) bool {
	if l.Conflicts == nil {
		return false
	}
	return l.Conflicts.Contains(int(a), int(b))
}
