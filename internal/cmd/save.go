package cmd

import (
	"errors"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/spf13/cobra"
)

var saveForce bool

// saveCmd represents the save command.
var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Capture the current session",
	Long: `Capture every mapped window of the running Hyprland instance and store it
under the given name.

Terminal windows also record their working directory and foreground program.
Anything that cannot be determined for a single window is reported as a
warning and the rest of the session is still saved.`,
	Example: `  # Save the current desktop as "work"
  hyprsession save work

  # Replace an existing session
  hyprsession save --force work`,
	Args:              cobra.ExactArgs(1),
	RunE:              ExecuteWithArgs(runSave),
	ValidArgsFunction: getSessionCompletions,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().BoolVarP(&saveForce, "force", "f", false, "Overwrite an existing session")
}

func runSave(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := session.ValidateName(name); err != nil {
		return err
	}

	runCtx, stop := interruptible(cmd, ctx.Logger)
	defer stop()

	data, rep, err := ctx.Capturer().Capture(runCtx)
	if err != nil {
		rep.Fail(err)
		return ctx.Finish(rep)
	}

	if err := ctx.Store.Save(name, data, saveForce); err != nil {
		if errors.Is(err, session.ErrAlreadyExists) {
			rep.Error("session %q already exists, use --force to overwrite", name)
		} else {
			rep.Fail(err)
		}
		return ctx.Finish(rep)
	}

	rep.Success("saved %q: %d windows, %d groups", name, len(data.Windows), data.Groups.Len())
	return ctx.Finish(rep)
}
