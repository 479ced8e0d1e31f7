package coroutine

import (
	"fmt"

	"coil/internal/bitvec"
	"coil/internal/mir"
)

// checkFieldAliasing verifies that no assignment-like instruction reads
// one saved local while writing another unless the pair is marked as
// conflicting. Non-conflicting saved locals may share a state slot, so
// such an assignment would read its own destination. Violations are
// compiler bugs and panic.
func checkFieldAliasing(f *mir.Body, saved *savedLocals, conflicts *bitvec.Matrix) {
	// Косвенные места ходят через чужую память, а не через слот локала.
	directSaved := func(p mir.Place) (mir.SavedLocal, bool) {
		for _, pr := range p.Proj {
			if pr.Kind == mir.ProjDeref {
				return mir.NoSavedLocal, false
			}
		}
		return saved.lookup(p.Local)
	}

	verify := func(bb *mir.Block, dst mir.Place, reads func(fn func(*mir.Place))) {
		lhs, ok := directSaved(dst)
		if !ok {
			return
		}
		reads(func(p *mir.Place) {
			rhs, ok := directSaved(*p)
			if !ok {
				return
			}
			if !conflicts.Contains(int(lhs), int(rhs)) {
				panic(fmt.Sprintf(
					"lower %s: bb%d assigns between saved locals L%d and L%d whose storage may overlap",
					f.Name, bb.ID, dst.Local, p.Local))
			}
		})
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Stmts {
			s := &bb.Stmts[j]
			if s.Kind != mir.StmtAssign {
				continue
			}
			verify(bb, s.Assign.Dst, s.Assign.Src.VisitPlaces)
		}

		switch bb.Term.Kind {
		case mir.TermCall:
			c := &bb.Term.Call
			if !c.HasDst {
				break
			}
			verify(bb, c.Dst, func(fn func(*mir.Place)) {
				if c.Func.IsPlace() {
					fn(&c.Func.Place)
				}
				for k := range c.Args {
					if c.Args[k].IsPlace() {
						fn(&c.Args[k].Place)
					}
				}
			})
		case mir.TermYield:
			y := &bb.Term.Yield
			verify(bb, y.ResumeArg, func(fn func(*mir.Place)) {
				if y.Value.IsPlace() {
					fn(&y.Value.Place)
				}
			})
		}
	}
}
