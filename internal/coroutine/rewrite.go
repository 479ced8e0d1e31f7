package coroutine

import (
	"fmt"

	"coil/internal/bitvec"
	"coil/internal/mir"
	"coil/internal/types"
)

// suspensionPoint records one rewritten yield. state is its discriminant
// value; resume and drop are the original successor blocks; resumeArg is
// the already-rewritten place the next resume value lands in; storage is
// the storage-live snapshot at the yield, in original local ids.
type suspensionPoint struct {
	state     mir.VariantIdx
	resume    mir.BlockID
	drop      mir.BlockID
	resumeArg mir.Place
	storage   bitvec.Set
}

// rewriter is the single mutating walk over the body: it reroutes saved
// locals through the state, strips their storage markers, and turns
// returns and yields into carrier writes followed by a plain return.
type rewriter struct {
	f         *mir.Body
	remap     map[mir.LocalID]fieldRef
	storageAt map[mir.BlockID]bitvec.Set
	carrierTy types.TypeID
	resumeTy  types.TypeID
	points    []suspensionPoint
}

func (rw *rewriter) run() {
	for i := range rw.f.Blocks {
		rw.rewriteBlock(&rw.f.Blocks[i])
	}
}

// makeField names the state slot of a saved local: a field of one
// suspension variant of the receiver. The downcast names the variant the
// local was first assigned to; the layout keeps the slot at the same
// position in every variant where the local is live.
func (rw *rewriter) makeField(ref fieldRef) mir.Place {
	return mir.PlaceOf(mir.SelfLocal).WithProj(
		mir.DowncastProj(ref.variant),
		mir.FieldProj(ref.field, ref.ty),
	)
}

// rewritePlace reroutes a place rooted at a saved local through its
// state slot. Existing projections stay behind the new root. Already
// rewritten places root at the receiver, which is never remapped, so a
// second walk leaves them alone.
func (rw *rewriter) rewritePlace(p *mir.Place) {
	ref, ok := rw.remap[p.Local]
	if !ok {
		return
	}
	base := rw.makeField(ref)
	p.Local = base.Local
	mir.PrependProjections(p, base.Proj...)
}

// makeState writes the carrier value into the return slot, field store
// plus discriminant write.
func (rw *rewriter) makeState(variant mir.VariantIdx, val mir.Operand) []mir.Stmt {
	return mir.ExpandAggregateAssign(mir.PlaceOf(mir.ReturnLocal), mir.AggregateRValue{
		Agg:     mir.AggCoroState,
		Type:    rw.carrierTy,
		Variant: variant,
		Fields:  []mir.Operand{val},
	})
}

func (rw *rewriter) setState(v mir.VariantIdx) mir.Stmt {
	return mir.MakeSetDiscriminant(mir.PlaceOf(mir.SelfLocal), v)
}

func (rw *rewriter) rewriteBlock(bb *mir.Block) {
	// Маркеры хранилища сохранённых локалов теряют смысл: слот живёт в
	// состоянии, а не на стеке кадра.
	if len(bb.Stmts) > 0 {
		kept := bb.Stmts[:0]
		for _, s := range bb.Stmts {
			if s.Kind == mir.StmtStorageLive || s.Kind == mir.StmtStorageDead {
				if _, saved := rw.remap[s.Storage.Local]; saved {
					continue
				}
			}
			kept = append(kept, s)
		}
		bb.Stmts = kept
	}

	switch bb.Term.Kind {
	case mir.TermReturn:
		// Возврат со значением принадлежит исходному телу; возвраты без
		// значения синтезированы лестницами дропов и уже в конечной форме.
		if bb.Term.Return.HasValue {
			bb.Stmts = append(bb.Stmts, rw.makeState(mir.CarrierCompleted, bb.Term.Return.Value)...)
			bb.Stmts = append(bb.Stmts, rw.setState(mir.StateReturned))
			bb.Term = mir.ReturnTerminator()
		}

	case mir.TermYield:
		y := bb.Term.Yield
		state := mir.VariantIdx(mir.ReservedVariants + len(rw.points))

		bb.Stmts = append(bb.Stmts, rw.makeState(mir.CarrierYielded, y.Value)...)

		// Терминатор заменяется, общий обход мест его уже не увидит,
		// поэтому resume-arg переписывается здесь.
		resumeArg := mir.ClonePlace(y.ResumeArg)
		rw.rewritePlace(&resumeArg)

		storage, ok := rw.storageAt[bb.ID]
		if !ok {
			panic(fmt.Sprintf("lower %s: no storage snapshot for the yield in bb%d", rw.f.Name, bb.ID))
		}
		rw.points = append(rw.points, suspensionPoint{
			state:     state,
			resume:    y.Resume,
			drop:      y.Drop,
			resumeArg: resumeArg,
			storage:   storage,
		})

		bb.Stmts = append(bb.Stmts, rw.setState(state))
		bb.Term = mir.ReturnTerminator()
	}

	// Общий обход мест: двигаются и только что добавленные записи
	// carrier-значения, их операнды могли читать сохранённые локалы.
	for j := range bb.Stmts {
		bb.Stmts[j].VisitPlaces(rw.rewritePlace)
	}
	bb.Term.VisitPlaces(rw.rewritePlace)

	rw.assertNoBareRefs(bb)
}

// assertNoBareRefs catches references to saved locals that the place
// rewriting cannot reach: index projections and surviving storage
// markers. Their presence means an earlier step broke its contract.
func (rw *rewriter) assertNoBareRefs(bb *mir.Block) {
	check := func(l mir.LocalID, what string) {
		if _, saved := rw.remap[l]; saved {
			panic(fmt.Sprintf("lower %s: saved local L%d survives in bb%d as a bare %s",
				rw.f.Name, l, bb.ID, what))
		}
	}
	places := func(p *mir.Place) {
		for _, pr := range p.Proj {
			if pr.Kind == mir.ProjIndex {
				check(pr.Index, "index local")
			}
		}
	}
	for j := range bb.Stmts {
		s := &bb.Stmts[j]
		if s.Kind == mir.StmtStorageLive || s.Kind == mir.StmtStorageDead {
			check(s.Storage.Local, "storage marker")
		}
		s.VisitPlaces(places)
	}
	bb.Term.VisitPlaces(places)
}
