package drops

import (
	"fmt"

	"coil/internal/mir"
	"coil/internal/types"
)

// UpvarFields lists the receiver's captured fields in declaration order,
// with drop flags attached where the body tracks partial moves.
func UpvarFields(typesIn *types.Interner, f *mir.Body) ([]Field, error) {
	ci := f.Coroutine
	if ci == nil {
		return nil, fmt.Errorf("drops: %s is not a coroutine", f.Name)
	}
	info, ok := typesIn.CoroInfo(ci.SelfTy)
	if !ok {
		return nil, fmt.Errorf("drops: receiver type of %s is not a coroutine environment", f.Name)
	}
	fields := make([]Field, len(info.Upvars))
	for i, ty := range info.Upvars {
		idx := uint32(i)
		flag := mir.NoLocalID
		if fl, ok := ci.DropFlags[idx]; ok {
			flag = fl
		}
		fields[i] = Field{Index: idx, Type: ty, Flag: flag}
	}
	return fields, nil
}

// InsertCleanDrop appends the destruction path for a value that was
// created but never resumed: drop the whole receiver, then return. Only
// the captured environment exists in that state. Returns the drop block.
func InsertCleanDrop(f *mir.Body, self mir.LocalID) mir.BlockID {
	ret := mir.NewTermBlock(f, mir.ReturnTerminator())
	return mir.NewTermBlock(f, mir.DropTerminator(mir.PlaceOf(self), ret, mir.NoBlockID))
}

// ElaborateReceiverDrops expands every drop of the bare receiver local
// into an upvar ladder. Drops of other places, including receiver field
// projections from earlier expansions, are left alone. Sites without an
// explicit unwind target share one synthesized resume block. Returns the
// number of sites expanded.
//
// Runs before the body is rewritten onto the state machine: after that
// the receiver no longer denotes a plain aggregate.
func ElaborateReceiverDrops(f *mir.Body, typesIn *types.Interner, self mir.LocalID, canUnwind bool) (int, error) {
	fields, err := UpvarFields(typesIn, f)
	if err != nil {
		return 0, err
	}

	anyDrop := false
	for _, fld := range fields {
		if typesIn.NeedsDrop(fld.Type) {
			anyDrop = true
			break
		}
	}

	sites := 0
	shared := mir.NoBlockID
	// Лестницы дописываются в конец, range по снимку их не посетит.
	for b := range f.Blocks {
		term := f.Blocks[b].Term
		if term.Kind != mir.TermDrop {
			continue
		}
		place := term.Drop.Place
		if place.Local != self || len(place.Proj) != 0 {
			continue
		}
		inCleanup := f.Blocks[b].IsCleanup

		lad := Ladder{
			Body:      f,
			Types:     typesIn,
			Place:     place,
			Fields:    fields,
			Target:    term.Drop.Target,
			Unwind:    mir.NoBlockID,
			InCleanup: inCleanup,
		}
		if canUnwind && !inCleanup && anyDrop {
			uw := term.Drop.Unwind
			if uw == mir.NoBlockID {
				if shared == mir.NoBlockID {
					shared = mir.NewCleanupTermBlock(f, mir.UnwindResumeTerminator())
				}
				uw = shared
			}
			lad.Unwind = uw
		}
		f.Blocks[b].Term = mir.GotoTerminator(lad.Build())
		sites++
	}
	return sites, nil
}
