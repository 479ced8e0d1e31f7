package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"coil/internal/coroutine"
	"coil/internal/diagfmt"
	"coil/internal/driver"
	"coil/internal/mir"
	"coil/internal/project"
	"coil/internal/ui"
)

var (
	lowerOut               string
	lowerConfigPath        string
	lowerJobs              int
	lowerPanic             string
	lowerValidateConflicts bool
	lowerDump              bool
	lowerUI                string
)

func init() {
	lowerCmd.Flags().StringVarP(&lowerOut, "out", "o", "", "write the lowered snapshot here (default <in>.lowered.mp)")
	lowerCmd.Flags().StringVar(&lowerConfigPath, "config", "", "explicit coil.toml path")
	lowerCmd.Flags().IntVarP(&lowerJobs, "jobs", "j", 0, "worker count (0 = CPUs)")
	lowerCmd.Flags().StringVar(&lowerPanic, "panic", "", "panic strategy (unwind|abort)")
	lowerCmd.Flags().BoolVar(&lowerValidateConflicts, "validate-conflicts", false, "re-check saved-local assignments against the conflict relation")
	lowerCmd.Flags().BoolVar(&lowerDump, "dump", false, "print the lowered MIR to stdout")
	lowerCmd.Flags().StringVar(&lowerUI, "ui", "", "progress UI (auto|on|off)")
}

var lowerCmd = &cobra.Command{
	Use:   "lower <snapshot>",
	Short: "Lower every coroutine body in a module snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		cfg, err := resolveConfig(args[0])
		if err != nil {
			return err
		}
		opts, err := lowerOptionsFrom(cmd, cfg)
		if err != nil {
			return err
		}
		mode, err := readUIMode(firstNonEmpty(lowerUI, cfg.UI.Mode))
		if err != nil {
			return err
		}

		m, err := driver.LoadSnapshot(args[0])
		if err != nil {
			return err
		}

		var res *driver.LowerResult
		if shouldRunUI(mode) {
			res, err = lowerWithUI(cmd.Context(), m, opts)
		} else {
			res, err = driver.LowerModule(cmd.Context(), m, opts)
		}
		if err != nil {
			return err
		}

		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		reportResult(cmd, m, res, quiet)

		if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
			printTimings(cmd, res)
		}
		if lowerDump {
			if err := mir.DumpModule(cmd.OutOrStdout(), m, mir.DumpOptions{Layouts: true}); err != nil {
				return err
			}
		}

		if res.HasErrors() {
			return fmt.Errorf("lowering failed for %d of %d coroutines",
				res.Failed, res.Failed+res.Lowered)
		}

		out := lowerOut
		if out == "" {
			out = defaultOutPath(args[0])
		}
		if err := driver.SaveSnapshot(out, m); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		}
		return nil
	},
}

// resolveConfig loads --config, or discovers coil.toml upward from the
// snapshot's directory.
func resolveConfig(snapshotPath string) (project.Config, error) {
	if lowerConfigPath != "" {
		return project.LoadConfig(lowerConfigPath)
	}
	cfg, _, err := project.DiscoverConfig(filepath.Dir(snapshotPath))
	return cfg, err
}

// lowerOptionsFrom merges config with flags; flags win.
func lowerOptionsFrom(cmd *cobra.Command, cfg project.Config) (driver.LowerOptions, error) {
	strategy, err := coroutine.ParsePanicStrategy(firstNonEmpty(lowerPanic, cfg.Lowering.Panic))
	if err != nil {
		return driver.LowerOptions{}, err
	}
	jobs := lowerJobs
	if jobs == 0 {
		jobs = cfg.Lowering.Jobs
	}
	maxDiags, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	return driver.LowerOptions{
		Jobs:              jobs,
		Panic:             strategy,
		ValidateConflicts: lowerValidateConflicts || cfg.Lowering.ValidateConflicts,
		MaxDiagnostics:    maxDiags,
	}, nil
}

func lowerWithUI(ctx context.Context, m *mir.Module, opts driver.LowerOptions) (*driver.LowerResult, error) {
	names := make([]string, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		names = append(names, f.Name)
	}

	events := make(chan driver.Event, 256)
	type outcome struct {
		res *driver.LowerResult
		err error
	}
	outcomeCh := make(chan outcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.LowerModule(ctx, m, optsCopy)
		outcomeCh <- outcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("lowering coroutines", names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil {
		return out.res, uiErr
	}
	return out.res, out.err
}

func reportResult(cmd *cobra.Command, m *mir.Module, res *driver.LowerResult, quiet bool) {
	colored := useColor(cmd)
	for i := range res.Funcs {
		fr := &res.Funcs[i]
		if fr.Bag == nil || fr.Bag.Len() == 0 {
			continue
		}
		fr.Bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), fr.Bag, m.Files, diagfmt.PrettyOpts{
			Color:     colored,
			ShowNotes: true,
		})
	}
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "lowered %d, skipped %d, failed %d\n",
		res.Lowered, res.Skipped, res.Failed)
}

func printTimings(cmd *cobra.Command, res *driver.LowerResult) {
	phases := res.Timing.Phases
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Name < phases[j].Name })
	for _, p := range phases {
		fmt.Fprintf(cmd.OutOrStdout(), "%-32s %8.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-32s %8.2f ms\n", "total", res.Timing.TotalMS)
}

func defaultOutPath(in string) string {
	ext := filepath.Ext(in)
	return in[:len(in)-len(ext)] + ".lowered" + ext
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func shouldRunUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
