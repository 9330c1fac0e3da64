package cmd

import (
	"context"
	"fmt"

	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/restore"
	"github.com/d-kuro/hyprsession/internal/tui"
	"github.com/spf13/cobra"
)

var (
	restoreDryRun   bool
	restoreTUI      bool
	restoreNoSwitch bool
)

// restoreCmd represents the restore command.
var restoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Relaunch a saved session",
	Long: `Relaunch the applications of a saved session.

Ungrouped windows are launched first, then each tab group is rebuilt by
launching its first member, creating the group, launching the remaining
members into it and locking it. Terminals that had swallowed an application
are relaunched together with it.

If no name is provided, shows a fuzzy finder to select the session.`,
	Example: `  # Select a session with the fuzzy finder
  hyprsession restore

  # Restore "work"
  hyprsession restore work

  # Show what would be launched
  hyprsession restore --dry-run work

  # Follow progress in a live view
  hyprsession restore --tui work`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              ExecuteWithArgs(runRestore),
	ValidArgsFunction: getSessionCompletions,
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().BoolVarP(&restoreDryRun, "dry-run", "n", false, "Show the launch plan without launching anything")
	restoreCmd.Flags().BoolVar(&restoreTUI, "tui", false, "Show live progress")
	restoreCmd.Flags().BoolVar(&restoreNoSwitch, "no-switch", false, "Do not switch to the saved active workspace")
}

func runRestore(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	name, err := ctx.SelectSession(args)
	if err != nil {
		return err
	}

	opts := restore.Options{
		DryRun:          restoreDryRun,
		SwitchWorkspace: ctx.Config.Restore.SwitchWorkspace && !restoreNoSwitch,
	}

	runCtx, stop := interruptible(cmd, ctx.Logger)
	defer stop()

	r := ctx.Restorer()
	if !restoreTUI {
		return ctx.Finish(r.Restore(runCtx, name, opts))
	}

	rep, err := tui.RunProgress(runCtx, fmt.Sprintf("Restoring %s", name), func(c context.Context, observer restore.Observer) *report.Report {
		r.SetObserver(observer)
		return r.Restore(c, name, opts)
	})
	if err != nil {
		return err
	}
	return ctx.Finish(rep)
}
