package dataflow

import (
	"fmt"

	"coil/internal/bitvec"
	"coil/internal/mir"
)

// Cursor replays a forward analysis inside one block to an arbitrary
// position. Seeks replay from the block entry state, blocks are short
// enough that incremental positioning is not worth the bookkeeping.
type Cursor struct {
	res   *Results
	state bitvec.Set
}

// NewCursor creates a cursor over forward results.
func NewCursor(res *Results) *Cursor {
	if res.Analysis.Direction() != Forward {
		panic(fmt.Sprintf("dataflow: cursor over backward analysis %s", res.Analysis.Name()))
	}
	return &Cursor{res: res, state: bitvec.New(len(res.Body.Locals))}
}

// SeekStart positions at the block entry.
func (c *Cursor) SeekStart(b mir.BlockID) {
	c.state.CopyFrom(c.res.Entry[b])
}

// SeekBeforeStmt positions after the before-half of statement idx: full
// effects of statements 0..idx-1 plus the before-effect of idx.
func (c *Cursor) SeekBeforeStmt(b mir.BlockID, idx int) {
	c.SeekStart(b)
	a := c.res.Analysis
	bb := &c.res.Body.Blocks[b]
	for i := 0; i < idx; i++ {
		loc := Location{Block: b, Stmt: i}
		a.BeforeStmt(c.state, &bb.Stmts[i], loc)
		a.Stmt(c.state, &bb.Stmts[i], loc)
	}
	a.BeforeStmt(c.state, &bb.Stmts[idx], Location{Block: b, Stmt: idx})
}

// SeekBeforeTerm positions after every statement effect plus the
// before-half of the terminator.
func (c *Cursor) SeekBeforeTerm(b mir.BlockID) {
	c.SeekStart(b)
	a := c.res.Analysis
	bb := &c.res.Body.Blocks[b]
	for i := range bb.Stmts {
		loc := Location{Block: b, Stmt: i}
		a.BeforeStmt(c.state, &bb.Stmts[i], loc)
		a.Stmt(c.state, &bb.Stmts[i], loc)
	}
	a.BeforeTerm(c.state, &bb.Term, Location{Block: b, Stmt: len(bb.Stmts)})
}

// SeekEnd positions after the terminator's primary effect, before any
// edge effect.
func (c *Cursor) SeekEnd(b mir.BlockID) {
	c.SeekBeforeTerm(b)
	bb := &c.res.Body.Blocks[b]
	c.res.Analysis.Term(c.state, &bb.Term, Location{Block: b, Stmt: len(bb.Stmts)})
}

// Get exposes the current state. The set stays owned by the cursor and
// is overwritten by the next seek.
func (c *Cursor) Get() bitvec.Set {
	return c.state
}

// BlockExit returns the state at the end of block b in execution order
// for a backward analysis: successor entry states joined over the
// outgoing edges. Exit blocks get the boundary state.
func (r *Results) BlockExit(b mir.BlockID) bitvec.Set {
	if r.Analysis.Direction() != Backward {
		panic(fmt.Sprintf("dataflow: BlockExit over forward analysis %s", r.Analysis.Name()))
	}
	out := bitvec.New(len(r.Body.Locals))
	term := &r.Body.Blocks[b].Term
	succs := mir.Successors(term)
	if len(succs) == 0 {
		r.Analysis.Boundary(r.Body, out)
		return out
	}
	for _, succ := range succs {
		es := r.Entry[succ].Clone()
		r.Analysis.Edge(es, term, b, succ)
		out.UnionWith(es)
	}
	return out
}
