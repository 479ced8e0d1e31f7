package coroutine

import (
	"fmt"

	"coil/internal/diag"
	"coil/internal/mir"
	"coil/internal/types"
)

// checkWitness cross-checks the analysis against the front end's witness
// list: every saved, transform-visible local must have its type either
// captured as an upvar or promised by the witness. A gap is reported as
// a delayed diagnostic, not an abort: it is usually the downstream echo
// of an error already charged to the front end.
func checkWitness(f *mir.Body, typesIn *types.Interner, info *types.CoroInfo, saved *savedLocals, rep diag.Reporter) {
	allowed := make(map[types.TypeID]bool, len(info.Witness)+len(info.Upvars))
	for _, ty := range info.Witness {
		allowed[ty] = true
	}
	for _, ty := range info.Upvars {
		allowed[ty] = true
	}

	for _, l := range saved.order {
		decl := &f.Locals[l]
		if decl.Internal || allowed[decl.Type] {
			continue
		}
		rep.Report(diag.NewError(diag.LowerWitnessGap, decl.Span,
			fmt.Sprintf("type %s is saved across a suspension point but missing from the coroutine's witness",
				typesIn.Format(decl.Type))).InFunc(f.Name))
	}
}
