package mir

import (
	"fmt"

	"fortio.org/safecast"

	"coil/internal/source"
	"coil/internal/types"
)

// Body is one function's CFG. Locals[0] is the return slot; the first
// ArgCount locals after it are arguments; Blocks[0] is the entry block.
type Body struct {
	Name     string
	Span     source.Span
	ArgCount int
	Locals   []Local
	Blocks   []Block

	// Coroutine is set on coroutine bodies. After lowering, the body is
	// the resume function: Coroutine.YieldTy is cleared, Layout describes
	// the state, DropShim holds the synthesized destroy body.
	Coroutine *CoroutineInfo
}

// CoroutineInfo carries the coroutine-specific pieces of a body.
type CoroutineInfo struct {
	// YieldTy is the type handed to the caller at suspension points.
	// NoTypeID means the body has already been lowered.
	YieldTy types.TypeID
	// ResumeTy is the type received back on resume.
	ResumeTy types.TypeID
	// SelfTy is the coroutine environment type (upvars + movability).
	SelfTy types.TypeID
	// DropFlags maps receiver upvar field index -> boolean flag local
	// guarding its drop (present when the front end tracked a partial
	// move out of the environment).
	DropFlags map[uint32]LocalID
	// Layout is filled in by the lowering.
	Layout *StateLayout
	// DropShim is the synthesized destroy body, named <body>$drop.
	DropShim *Body
}

// IsCoroutine reports whether the body still awaits lowering.
func (b *Body) IsCoroutine() bool {
	return b.Coroutine != nil && b.Coroutine.YieldTy != types.NoTypeID
}

// IsLowered reports whether the body went through the state transform.
func (b *Body) IsLowered() bool {
	return b.Coroutine != nil && b.Coroutine.YieldTy == types.NoTypeID && b.Coroutine.Layout != nil
}

// NewBody creates a body with the return slot in place.
func NewBody(name string, retTy types.TypeID) *Body {
	return &Body{
		Name:   name,
		Locals: []Local{{Name: "ret", Type: retTy, Kind: LocalReturn}},
	}
}

// AddLocal appends a local and returns its id.
func (b *Body) AddLocal(l Local) LocalID {
	n, err := safecast.Conv[int32](len(b.Locals))
	if err != nil {
		panic(fmt.Errorf("locals overflow: %w", err))
	}
	b.Locals = append(b.Locals, l)
	return LocalID(n)
}

// AddBlock appends an empty block and returns its id.
func (b *Body) AddBlock() BlockID {
	n, err := safecast.Conv[int32](len(b.Blocks))
	if err != nil {
		panic(fmt.Errorf("blocks overflow: %w", err))
	}
	id := BlockID(n)
	b.Blocks = append(b.Blocks, Block{ID: id})
	return id
}

// AddCleanupBlock appends an empty cleanup block and returns its id.
func (b *Body) AddCleanupBlock() BlockID {
	id := b.AddBlock()
	b.Blocks[id].IsCleanup = true
	return id
}

// Block returns a pointer to the block with the given id.
func (b *Body) Block(id BlockID) *Block {
	return &b.Blocks[id]
}

// LocalType returns the type of a local.
func (b *Body) LocalType(id LocalID) types.TypeID {
	return b.Locals[id].Type
}

// Args returns the ids of the argument locals (1..=ArgCount).
func (b *Body) Args() []LocalID {
	out := make([]LocalID, 0, b.ArgCount)
	for i := int32(1); i <= int32(b.ArgCount); i++ {
		out = append(out, LocalID(i))
	}
	return out
}
