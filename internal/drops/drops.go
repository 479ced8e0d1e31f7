// Package drops expands aggregate drop terminators into field-by-field
// destructor ladders. The ladder destroys fields in declaration order and
// skips fields whose types run no destructor code; flagged fields are
// tested before being destroyed. When the surrounding context can unwind,
// every normal step carries an unwind edge into a parallel cleanup chain
// that finishes the remaining fields.
package drops

import (
	"coil/internal/mir"
	"coil/internal/types"
)

// Field is one member of the aggregate being dismantled, in declaration
// order. Flag names a local guarding the drop (partial-move tracking);
// NoLocalID destroys the field unconditionally.
type Field struct {
	Index uint32
	Type  types.TypeID
	Flag  mir.LocalID
}

// Ladder describes one drop site to expand.
type Ladder struct {
	Body   *mir.Body
	Types  *types.Interner
	Place  mir.Place // the whole aggregate
	Fields []Field
	Target mir.BlockID // normal exit
	// Unwind is the cleanup exit; NoBlockID disables unwind edges.
	Unwind mir.BlockID
	// InCleanup marks a site that already runs during unwinding:
	// the ladder is then built as pure cleanup.
	InCleanup bool
}

// Build synthesizes the ladder blocks and returns the entry block id.
// A ladder with nothing to destroy collapses to Target.
func (l *Ladder) Build() mir.BlockID {
	kept := make([]Field, 0, len(l.Fields))
	for _, fld := range l.Fields {
		if l.Types.NeedsDrop(fld.Type) {
			kept = append(kept, fld)
		}
	}
	if len(kept) == 0 {
		return l.Target
	}

	// Цепочка зачистки: cleanup[i] добивает поля начиная с kept[i] и
	// продолжает раскрутку. Свои unwind-дуги таким блокам не положены.
	var cleanup []mir.BlockID
	if !l.InCleanup && l.Unwind != mir.NoBlockID {
		cleanup = make([]mir.BlockID, len(kept)+1)
		cleanup[len(kept)] = l.Unwind
		for i := len(kept) - 1; i >= 0; i-- {
			cleanup[i] = l.step(kept[i], cleanup[i+1], mir.NoBlockID, true)
		}
	}

	succ := l.Target
	for i := len(kept) - 1; i >= 0; i-- {
		unwind := mir.NoBlockID
		if cleanup != nil {
			// Деструктор kept[i] запаниковал: поле считается уже
			// разрушенным, зачистка входит со следующего.
			unwind = cleanup[i+1]
		}
		succ = l.step(kept[i], succ, unwind, l.InCleanup)
	}
	return succ
}

// step makes the drop block for fld targeting succ. Guarded fields get a
// test block in front: flag == 0 skips straight to succ.
func (l *Ladder) step(fld Field, succ, unwind mir.BlockID, inCleanup bool) mir.BlockID {
	place := l.Place.WithProj(mir.FieldProj(fld.Index, fld.Type))
	drop := mir.NewTermBlock(l.Body, mir.DropTerminator(place, succ, unwind))
	l.Body.Blocks[drop].IsCleanup = inCleanup
	if fld.Flag == mir.NoLocalID {
		return drop
	}
	test := mir.NewTermBlock(l.Body, mir.SwitchTerminator(
		mir.CopyOperand(mir.PlaceOf(fld.Flag), l.Body.LocalType(fld.Flag)),
		[]mir.SwitchCase{{Value: 0, Target: succ}},
		drop,
	))
	l.Body.Blocks[test].IsCleanup = inCleanup
	return test
}
