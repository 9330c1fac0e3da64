package cmd

import (
	"fmt"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/pkg/option"
	"github.com/spf13/cobra"
)

var recoverName string

// recoverCmd represents the recover command.
var recoverCmd = &cobra.Command{
	Use:   "recover [archive]",
	Short: "Move an archived session back",
	Long: `Move an archived session back into active storage.

The session is restored under its original name unless --name is given. A
recovery that is interrupted leaves a marker behind which 'hyprsession doctor'
reports and cleans up.

If no archive is provided, shows a fuzzy finder to select it.`,
	Example: `  # Select an archive with the fuzzy finder
  hyprsession recover

  # Recover under the original name
  hyprsession recover work-20250304-050607

  # Recover under a new name
  hyprsession recover --name work-old work-20250304-050607`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              ExecuteWithArgs(runRecover),
	ValidArgsFunction: getArchiveCompletions,
}

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().StringVar(&recoverName, "name", "", "Name of the recovered session")
}

func runRecover(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	mgr := ctx.ArchiveManager(false)

	archivedName, err := selectArchive(ctx, mgr, args)
	if err != nil {
		return err
	}

	newName := option.None[string]()
	if cmd.Flags().Changed("name") {
		newName = option.Some(recoverName)
	}

	rep := report.New("recover")
	res, err := mgr.Recover(archivedName, newName)
	if err != nil {
		return ctx.Finish(rep.Fail(err))
	}

	rep.Success("recovered %s as %q (%d files)", res.ArchivedName, res.Target.Name, res.FileCount)
	if res.Target.Source == archive.SourceFallback {
		rep.Warning("original name unknown, recovered as %q", res.Target.Name)
	}
	return ctx.Finish(rep)
}

func selectArchive(ctx *CommandContext, mgr *archive.Manager, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	archives, err := mgr.ListArchived()
	if err != nil {
		return "", err
	}
	selected, err := ctx.GetFinder().SelectArchive(archives)
	if err != nil {
		return "", fmt.Errorf("archive selection cancelled: %w", err)
	}
	return selected.Name, nil
}
