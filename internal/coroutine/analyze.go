package coroutine

import (
	"coil/internal/bitvec"
	"coil/internal/dataflow"
	"coil/internal/mir"
	"coil/internal/source"
)

// savedLocals is the dense renumbering of the locals that survive at
// least one suspension point. order is ascending in original ids, so
// saved id k names order[k].
type savedLocals struct {
	set   bitvec.Set
	order []mir.LocalID
	index []mir.SavedLocal // original id -> saved id, NoSavedLocal otherwise
}

func newSavedLocals(set bitvec.Set, nLocals int) *savedLocals {
	s := &savedLocals{set: set, index: make([]mir.SavedLocal, nLocals)}
	for i := range s.index {
		s.index[i] = mir.NoSavedLocal
	}
	set.ForEach(func(i int) {
		s.index[i] = mir.SavedLocal(int32(len(s.order)))
		s.order = append(s.order, mir.LocalID(int32(i)))
	})
	return s
}

func (s *savedLocals) count() int { return len(s.order) }

func (s *savedLocals) lookup(l mir.LocalID) (mir.SavedLocal, bool) {
	if int(l) < 0 || int(l) >= len(s.index) {
		return mir.NoSavedLocal, false
	}
	sv := s.index[l]
	return sv, sv != mir.NoSavedLocal
}

// renumber translates a set over original ids into saved ids, dropping
// locals that are not saved.
func (s *savedLocals) renumber(in bitvec.Set) bitvec.Set {
	out := bitvec.New(len(s.order))
	for i, l := range s.order {
		if in.Contains(int(l)) {
			out.Insert(i)
		}
	}
	return out
}

// livenessInfo is what the analyzer hands to the layout builder and the
// synthesizers.
type livenessInfo struct {
	saved *savedLocals
	// liveAt[i] lists, in saved ids, the locals preserved at suspension
	// point i. Points are numbered in block order of their yields.
	liveAt []bitvec.Set
	// spanAt[i] is the location of yield i, for the variant debug spans.
	spanAt []source.Span
	// conflicts is the symmetric may-overlap relation over saved ids.
	conflicts *bitvec.Matrix
	// storageAt keeps the storage-live snapshot before each yield in
	// original ids: resume cases re-materialize storage for unsaved
	// locals, which a renumbered set could not name.
	storageAt map[mir.BlockID]bitvec.Set
}

// liveAcrossYields runs the four analyses and evaluates them right
// before every yield terminator.
//
// Живым через точку приостановки локал считается, когда он жив по
// использованиям на выходе из блока и при этом удерживает хранилище
// перед самим yield. Для неперемещаемых корутин к живым добавляются все
// одолженные: чужая ссылка переживает приостановку вместе с целью.
func liveAcrossYields(f *mir.Body, always bitvec.Set, movable bool) livenessInfo {
	liveRes := dataflow.Run(f, &dataflow.Liveness{})
	borrowCur := dataflow.NewCursor(dataflow.Run(f, &dataflow.BorrowedLocals{}))
	storageCur := dataflow.NewCursor(dataflow.Run(f, dataflow.NewStorageLive(f)))
	requireRes := dataflow.Run(f, &dataflow.RequiresStorage{})
	requireCur := dataflow.NewCursor(requireRes)

	union := bitvec.New(len(f.Locals))
	var rawLive []bitvec.Set
	var spans []source.Span
	storageAt := make(map[mir.BlockID]bitvec.Set)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.Term.Kind != mir.TermYield {
			continue
		}

		live := liveRes.BlockExit(bb.ID)
		if !movable {
			borrowCur.SeekBeforeTerm(bb.ID)
			live.UnionWith(borrowCur.Get())
		}

		storageCur.SeekBeforeTerm(bb.ID)
		storageAt[bb.ID] = storageCur.Get().Clone()

		requireCur.SeekBeforeTerm(bb.ID)
		live.IntersectWith(requireCur.Get())

		// Получатель и есть состояние, его не сохраняют внутрь себя.
		live.Remove(int(mir.SelfLocal))

		union.UnionWith(live)
		rawLive = append(rawLive, live)
		spans = append(spans, bb.Span)
	}

	saved := newSavedLocals(union, len(f.Locals))

	liveAt := make([]bitvec.Set, len(rawLive))
	for i, l := range rawLive {
		liveAt[i] = saved.renumber(l)
	}

	return livenessInfo{
		saved:     saved,
		liveAt:    liveAt,
		spanAt:    spans,
		conflicts: storageConflicts(f, saved, always, requireRes),
		storageAt: storageAt,
	}
}

// storageConflicts builds the relation "these two saved locals were ever
// storage-live at once" by replaying requires-storage over every
// reachable location. Always-live saved locals never share a slot with
// anything: their rows are filled outright.
func storageConflicts(f *mir.Body, saved *savedLocals, always bitvec.Set, requires *dataflow.Results) *bitvec.Matrix {
	ineligible := always.Clone()
	ineligible.IntersectWith(saved.set)

	local := bitvec.NewMatrix(len(f.Locals))
	for r := 0; r < len(f.Locals); r++ {
		local.UnionRowWith(ineligible, r)
	}

	v := &conflictVisitor{
		saved:     saved,
		conflicts: local,
		scratch:   bitvec.New(len(f.Locals)),
	}
	dataflow.VisitReachable(requires, v)

	// Сжатие к плотным saved-идам.
	out := bitvec.NewMatrix(saved.count())
	for a, la := range saved.order {
		if ineligible.Contains(int(la)) {
			out.InsertAll(a)
			continue
		}
		for b, lb := range saved.order {
			if local.Contains(int(la), int(lb)) {
				out.Insert(a, b)
			}
		}
	}
	return out
}

// conflictVisitor unions the currently storage-live saved locals into
// each other's rows at every visited location.
type conflictVisitor struct {
	saved     *savedLocals
	conflicts *bitvec.Matrix
	scratch   bitvec.Set
}

func (v *conflictVisitor) VisitStmt(state bitvec.Set, _ *mir.Stmt, _ dataflow.Location) {
	v.apply(state)
}

func (v *conflictVisitor) VisitTerm(state bitvec.Set, _ *mir.Terminator, _ dataflow.Location) {
	v.apply(state)
}

func (v *conflictVisitor) apply(state bitvec.Set) {
	v.scratch.CopyFrom(state)
	v.scratch.IntersectWith(v.saved.set)
	v.scratch.ForEach(func(l int) {
		v.conflicts.UnionRowWith(v.scratch, l)
	})
}
