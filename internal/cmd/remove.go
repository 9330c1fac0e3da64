package cmd

import (
	"fmt"

	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/spf13/cobra"
)

var removeDryRun bool

// removeCmd represents the remove command.
var removeCmd = &cobra.Command{
	Use:     "remove [name]",
	Aliases: []string{"rm"},
	Short:   "Delete a saved session",
	Long: `Delete a saved session from active storage. Use 'hyprsession archive' to
keep a copy instead.

If no name is provided, shows a fuzzy finder to select the session.`,
	Example: `  # Select and delete using fuzzy finder
  hyprsession remove

  # Show what would be deleted
  hyprsession remove --dry-run work`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              ExecuteWithArgs(runRemove),
	ValidArgsFunction: getSessionCompletions,
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().BoolVarP(&removeDryRun, "dry-run", "d", false, "Show deletion target only")
}

func runRemove(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	name, err := ctx.SelectSession(args)
	if err != nil {
		return err
	}

	rep := report.New("remove")
	if removeDryRun {
		if err := session.ValidateName(name); err != nil {
			return ctx.Finish(rep.Fail(err))
		}
		if !ctx.Store.Exists(name) {
			return ctx.Finish(rep.Fail(fmt.Errorf("%w: session %q", session.ErrNotFound, name)))
		}
		rep.Info("would remove %s", ctx.Store.Path(name))
		return ctx.Finish(rep)
	}

	if err := ctx.Store.Delete(name); err != nil {
		return ctx.Finish(rep.Fail(err))
	}
	rep.Success("removed session %q", name)
	return ctx.Finish(rep)
}
