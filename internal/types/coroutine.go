package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Carrier variant order is part of the lowering contract: a resume call
// reports "still running" as Yielded and "finished" as Completed.
const (
	CoroStateYielded   uint32 = 0
	CoroStateCompleted uint32 = 1
)

// CoroInfo describes a coroutine environment type: the captured upvars,
// the front end's witness list (an upper bound on types that may live
// across suspension points), and whether the value may move after it has
// been resumed once.
type CoroInfo struct {
	Name    string
	Upvars  []TypeID
	Witness []TypeID
	Movable bool
}

// RegisterCoroutine creates a fresh coroutine environment type. Every
// coroutine literal gets its own id.
func (in *Interner) RegisterCoroutine(info CoroInfo) TypeID {
	slot, err := safecast.Conv[uint32](len(in.coros))
	if err != nil {
		panic(fmt.Errorf("coroutine info overflow: %w", err))
	}
	in.coros = append(in.coros, CoroInfo{
		Name:    info.Name,
		Upvars:  cloneTypeIDs(info.Upvars),
		Witness: cloneTypeIDs(info.Witness),
		Movable: info.Movable,
	})
	return in.internRaw(Type{Kind: KindCoroutine, Payload: slot})
}

// CoroInfo returns the descriptor for a coroutine TypeID.
func (in *Interner) CoroInfo(id TypeID) (*CoroInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindCoroutine {
		return nil, false
	}
	if int(tt.Payload) == 0 || int(tt.Payload) >= len(in.coros) {
		return nil, false
	}
	return &in.coros[tt.Payload], true
}

// IsCoroutine reports whether id names a coroutine environment type.
func (in *Interner) IsCoroutine(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindCoroutine
}
