package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"coil/internal/driver"
	"coil/internal/mir"
)

var infoCmd = &cobra.Command{
	Use:   "info <snapshot>",
	Short: "Summarize the contents of a module snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := driver.LoadSnapshot(args[0])
		if err != nil {
			return err
		}

		name := func(s string) string { return s }
		if useColor(cmd) {
			c := color.New(color.FgCyan, color.Bold)
			name = func(s string) string { return c.Sprint(s) }
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "functions: %d\ntypes: %d\nfiles: %d\n",
			len(m.Funcs), m.Types.Len(), m.Files.Len())

		for _, f := range m.Funcs {
			switch {
			case f.IsCoroutine():
				fmt.Fprintf(out, "  %s: coroutine, %d blocks, %d locals (not lowered)\n",
					name(f.Name), len(f.Blocks), len(f.Locals))
			case f.IsLowered():
				l := f.Coroutine.Layout
				fmt.Fprintf(out, "  %s: lowered coroutine, %d states, %d saved locals",
					name(f.Name), l.VariantCount(), l.FieldCount())
				if f.Coroutine.DropShim != nil {
					fmt.Fprintf(out, ", drop shim %s", f.Coroutine.DropShim.Name)
				}
				fmt.Fprintln(out)
				for v := mir.ReservedVariants; v < l.VariantCount(); v++ {
					fmt.Fprintf(out, "    %s: %d fields\n",
						mir.VariantName(mir.VariantIdx(v)), len(l.VariantFields[v]))
				}
			default:
				fmt.Fprintf(out, "  %s: plain function, %d blocks\n",
					name(f.Name), len(f.Blocks))
			}
		}
		return nil
	},
}
