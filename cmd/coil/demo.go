package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"coil/internal/driver"
	"coil/internal/project"
)

var demoWithConfig bool

func init() {
	demoCmd.Flags().BoolVar(&demoWithConfig, "config", false, "also write a default coil.toml next to the snapshot")
}

var demoCmd = &cobra.Command{
	Use:   "demo [path]",
	Short: "Write an example module snapshot to lower",
	Long:  `Writes a small module with one two-yield coroutine and one plain function, ready for "coil lower"`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "demo.mp"
		if len(args) == 1 {
			path = args[0]
		}

		if err := driver.SaveSnapshot(path, driver.DemoModule()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

		if demoWithConfig {
			manifest := filepath.Join(filepath.Dir(path), "coil.toml")
			if err := project.WriteDefault(manifest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", manifest)
		}
		return nil
	},
}
