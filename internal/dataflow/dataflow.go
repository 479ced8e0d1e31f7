// Package dataflow runs gen/kill analyses over the locals of one body.
//
// Состояние анализа — битовый набор по локалам. Эффекты каждой точки
// программы разбиты на две половины (before и primary): часть анализов
// генерит до основного эффекта, а убивает после (перемещения в
// requires-storage). Рёберный эффект различает исходящие дуги одного
// терминатора: назначение call живёт только на дуге возврата,
// resume-аргумент yield — только на дуге возобновления.
package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// Direction orients an analysis.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// Location points at one statement (Stmt < len) or the terminator
// (Stmt == len of the block's statement list).
type Location struct {
	Block mir.BlockID
	Stmt  int
}

// Analysis is one gen/kill dataflow problem.
type Analysis interface {
	Name() string
	Direction() Direction

	// Boundary seeds the state at the analysis entry: the entry block
	// for forward analyses, every exit block for backward ones.
	Boundary(f *mir.Body, state bitvec.Set)

	// BeforeStmt and Stmt are the two halves of a statement's effect,
	// applied in that order along the execution direction.
	BeforeStmt(state bitvec.Set, s *mir.Stmt, loc Location)
	Stmt(state bitvec.Set, s *mir.Stmt, loc Location)

	// BeforeTerm and Term mirror the statement halves for terminators.
	BeforeTerm(state bitvec.Set, t *mir.Terminator, loc Location)
	Term(state bitvec.Set, t *mir.Terminator, loc Location)

	// Edge adjusts the state crossing a specific terminator edge.
	Edge(state bitvec.Set, t *mir.Terminator, from, to mir.BlockID)
}

// NoEffects provides no-op halves for analyses that use only some hooks.
type NoEffects struct{}

func (NoEffects) BeforeStmt(bitvec.Set, *mir.Stmt, Location)                 {}
func (NoEffects) Stmt(bitvec.Set, *mir.Stmt, Location)                       {}
func (NoEffects) BeforeTerm(bitvec.Set, *mir.Terminator, Location)           {}
func (NoEffects) Term(bitvec.Set, *mir.Terminator, Location)                 {}
func (NoEffects) Edge(bitvec.Set, *mir.Terminator, mir.BlockID, mir.BlockID) {}

// Results holds the fixpoint. Entry[b] is the state at the start of
// block b in execution order; for backward analyses that is the live-in
// set.
type Results struct {
	Analysis Analysis
	Body     *mir.Body
	Entry    []bitvec.Set
}

// Run iterates the analysis to a fixpoint with a worklist.
func Run(f *mir.Body, a Analysis) *Results {
	n := len(f.Blocks)
	width := len(f.Locals)
	res := &Results{Analysis: a, Body: f, Entry: make([]bitvec.Set, n)}
	for i := range res.Entry {
		res.Entry[i] = bitvec.New(width)
	}

	if a.Direction() == Forward {
		a.Boundary(f, res.Entry[mir.EntryBlock])
		runForward(f, a, res)
	} else {
		runBackward(f, a, res)
	}
	return res
}

func runForward(f *mir.Body, a Analysis, res *Results) {
	n := len(f.Blocks)
	queue := make([]mir.BlockID, 0, n)
	queued := make([]bool, n)
	for i := 0; i < n; i++ {
		queue = append(queue, mir.BlockID(int32(i)))
		queued[i] = true
	}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		queued[b] = false

		state := res.Entry[b].Clone()
		applyBlockForward(f, a, b, state)

		term := &f.Blocks[b].Term
		mir.VisitSuccessors(term, func(succ *mir.BlockID) {
			es := state.Clone()
			a.Edge(es, term, b, *succ)
			if res.Entry[*succ].UnionWith(es) && !queued[*succ] {
				queue = append(queue, *succ)
				queued[*succ] = true
			}
		})
	}
}

func runBackward(f *mir.Body, a Analysis, res *Results) {
	n := len(f.Blocks)
	preds := predecessors(f)

	queue := make([]mir.BlockID, 0, n)
	queued := make([]bool, n)
	for i := n - 1; i >= 0; i-- {
		queue = append(queue, mir.BlockID(int32(i)))
		queued[i] = true
	}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		queued[b] = false

		state := bitvec.New(len(f.Locals))
		term := &f.Blocks[b].Term
		succs := mir.Successors(term)
		if len(succs) == 0 {
			a.Boundary(f, state)
		}
		for _, succ := range succs {
			es := res.Entry[succ].Clone()
			a.Edge(es, term, b, succ)
			state.UnionWith(es)
		}

		applyBlockBackward(f, a, b, state)

		if !state.Equal(res.Entry[b]) {
			res.Entry[b].CopyFrom(state)
			for _, p := range preds[b] {
				if !queued[p] {
					queue = append(queue, p)
					queued[p] = true
				}
			}
		}
	}
}

func applyBlockForward(f *mir.Body, a Analysis, b mir.BlockID, state bitvec.Set) {
	bb := &f.Blocks[b]
	for i := range bb.Stmts {
		loc := Location{Block: b, Stmt: i}
		a.BeforeStmt(state, &bb.Stmts[i], loc)
		a.Stmt(state, &bb.Stmts[i], loc)
	}
	loc := Location{Block: b, Stmt: len(bb.Stmts)}
	a.BeforeTerm(state, &bb.Term, loc)
	a.Term(state, &bb.Term, loc)
}

func applyBlockBackward(f *mir.Body, a Analysis, b mir.BlockID, state bitvec.Set) {
	bb := &f.Blocks[b]
	loc := Location{Block: b, Stmt: len(bb.Stmts)}
	a.Term(state, &bb.Term, loc)
	a.BeforeTerm(state, &bb.Term, loc)
	for i := len(bb.Stmts) - 1; i >= 0; i-- {
		loc := Location{Block: b, Stmt: i}
		a.Stmt(state, &bb.Stmts[i], loc)
		a.BeforeStmt(state, &bb.Stmts[i], loc)
	}
}

func predecessors(f *mir.Body) [][]mir.BlockID {
	preds := make([][]mir.BlockID, len(f.Blocks))
	for i := range f.Blocks {
		from := mir.BlockID(int32(i))
		mir.VisitSuccessors(&f.Blocks[i].Term, func(succ *mir.BlockID) {
			preds[*succ] = append(preds[*succ], from)
		})
	}
	return preds
}
