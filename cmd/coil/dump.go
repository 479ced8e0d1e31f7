package main

import (
	"github.com/spf13/cobra"

	"coil/internal/driver"
	"coil/internal/mir"
)

var dumpLayouts bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpLayouts, "layouts", true, "include state layouts of lowered bodies")
}

var dumpCmd = &cobra.Command{
	Use:   "dump <snapshot>",
	Short: "Print the MIR of a module snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := driver.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		return mir.DumpModule(cmd.OutOrStdout(), m, mir.DumpOptions{Layouts: dumpLayouts})
	},
}
