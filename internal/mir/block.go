package mir

import "coil/internal/source"

// Block is one basic block: statements followed by a terminator.
type Block struct {
	ID    BlockID
	Stmts []Stmt
	Term  Terminator
	// Span locates the block in the source when the front end recorded a
	// position; the terminator's location stands in for the whole block.
	Span source.Span
	// IsCleanup marks blocks that run during unwinding. Unwind edges may
	// only enter cleanup blocks.
	IsCleanup bool
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
