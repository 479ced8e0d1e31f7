package dataflow

import (
	"coil/internal/bitvec"
	"coil/internal/mir"
)

// AlwaysLiveLocals returns the locals that appear in no storage marker.
// Their storage spans the whole body: the return slot, arguments and
// locals the front end chose not to annotate.
func AlwaysLiveLocals(f *mir.Body) bitvec.Set {
	always := bitvec.New(len(f.Locals))
	for i := range f.Locals {
		always.Insert(i)
	}
	for bi := range f.Blocks {
		for si := range f.Blocks[bi].Stmts {
			s := &f.Blocks[bi].Stmts[si]
			if s.Kind == mir.StmtStorageLive || s.Kind == mir.StmtStorageDead {
				always.Remove(int(s.Storage.Local))
			}
		}
	}
	return always
}

// StorageLive tracks which locals have allocated storage: markers gen
// and kill, always-live locals and arguments are live on entry.
type StorageLive struct {
	NoEffects
	always bitvec.Set
}

// NewStorageLive precomputes the always-live set for f.
func NewStorageLive(f *mir.Body) *StorageLive {
	return &StorageLive{always: AlwaysLiveLocals(f)}
}

func (*StorageLive) Name() string         { return "storage_live" }
func (*StorageLive) Direction() Direction { return Forward }

func (a *StorageLive) Boundary(f *mir.Body, state bitvec.Set) {
	state.UnionWith(a.always)
	for _, arg := range f.Args() {
		state.Insert(int(arg))
	}
}

func (a *StorageLive) Stmt(state bitvec.Set, s *mir.Stmt, _ Location) {
	switch s.Kind {
	case mir.StmtStorageLive:
		state.Insert(int(s.Storage.Local))
	case mir.StmtStorageDead:
		state.Remove(int(s.Storage.Local))
	}
}
