// Package diagfmt renders diagnostic bags for the CLI: a line-per-entry
// text form and a JSON form for tooling. Bags are expected to be sorted
// by the caller.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"coil/internal/diag"
	"coil/internal/source"
)

// PrettyOpts configures text output.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

// Pretty prints one diagnostic per line:
// <func>: <SEV> <CODE>: <message> (<resolved span>)
// Notes follow indented when ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, files *source.FileTable, opts PrettyOpts) {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	for _, d := range bag.Items() {
		sev := d.Severity.String()
		if opts.Color {
			sev = sevColor[d.Severity].Sprint(sev)
		}
		where := ""
		if d.Primary.Valid() && files != nil {
			where = " (" + files.Resolve(d.Primary) + ")"
		}
		fn := d.Func
		if fn == "" {
			fn = "<module>"
		}
		fmt.Fprintf(w, "%s: %s %s: %s%s\n", fn, sev, d.Code.String(), d.Message, where)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "    note: %s\n", n.Msg)
			}
		}
	}
}
