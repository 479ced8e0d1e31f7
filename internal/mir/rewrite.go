package mir

// InsertBlockAtStart puts blk in front of the CFG so it becomes the new
// entry. Every existing block shifts up by one, and every successor
// reference in the body is bumped to match, including references inside
// blk itself. Callers therefore build blk's targets in pre-insertion ids.
func InsertBlockAtStart(b *Body, blk Block) {
	blk.ID = 0
	b.Blocks = append(b.Blocks, Block{})
	copy(b.Blocks[1:], b.Blocks)
	b.Blocks[0] = blk
	for i := range b.Blocks {
		b.Blocks[i].ID = BlockID(int32(i)) // fits: len was already a valid id
		VisitSuccessors(&b.Blocks[i].Term, func(id *BlockID) {
			*id++
		})
	}
}

// NewTermBlock appends a block holding only the given terminator and
// returns its id.
func NewTermBlock(b *Body, t Terminator) BlockID {
	id := b.AddBlock()
	b.Blocks[id].Term = t
	return id
}

// NewCleanupTermBlock is NewTermBlock for cleanup blocks.
func NewCleanupTermBlock(b *Body, t Terminator) BlockID {
	id := NewTermBlock(b, t)
	b.Blocks[id].IsCleanup = true
	return id
}

// ReplaceLocal rewrites every reference to from so it names to instead:
// place roots, index projections and storage markers. Projections are
// preserved.
func ReplaceLocal(b *Body, from, to LocalID) {
	VisitBodyPlaces(b, func(p *Place) {
		if p.Local == from {
			p.Local = to
		}
		for i := range p.Proj {
			if p.Proj[i].Kind == ProjIndex && p.Proj[i].Index == from {
				p.Proj[i].Index = to
			}
		}
	})
	for bi := range b.Blocks {
		for si := range b.Blocks[bi].Stmts {
			s := &b.Blocks[bi].Stmts[si]
			switch s.Kind {
			case StmtStorageLive, StmtStorageDead:
				if s.Storage.Local == from {
					s.Storage.Local = to
				}
			}
		}
	}
}

// PrependProjections inserts elems before the existing projections of p.
// Used to route a place through a deref of the receiver.
func PrependProjections(p *Place, elems ...Projection) {
	if len(elems) == 0 {
		return
	}
	proj := make([]Projection, 0, len(elems)+len(p.Proj))
	proj = append(proj, elems...)
	proj = append(proj, p.Proj...)
	p.Proj = proj
}
