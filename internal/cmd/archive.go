package cmd

import (
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/spf13/cobra"
)

var archiveNoCleanup bool

// archiveCmd represents the archive command.
var archiveCmd = &cobra.Command{
	Use:   "archive [name]",
	Short: "Move a session to the archive",
	Long: `Move a saved session into archived storage. The archived directory is
named after the session with a timestamp suffix and keeps a metadata file
recording the original name.

When automatic cleanup is enabled, the oldest archives beyond
archive.max_archives are removed afterwards.

If no name is provided, shows a fuzzy finder to select the session.`,
	Example: `  # Archive "work"
  hyprsession archive work

  # Archive without applying the retention limit
  hyprsession archive --no-cleanup work`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              ExecuteWithArgs(runArchive),
	ValidArgsFunction: getSessionCompletions,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().BoolVar(&archiveNoCleanup, "no-cleanup", false, "Skip removal of old archives")
}

func runArchive(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	name, err := ctx.SelectSession(args)
	if err != nil {
		return err
	}

	rep := report.New("archive")
	res, err := ctx.ArchiveManager(!archiveNoCleanup).Archive(name)
	if err != nil {
		return ctx.Finish(rep.Fail(err))
	}

	rep.Success("archived %q as %s (%d files)", res.OriginalName, res.ArchivedName, res.FileCount)
	for _, evicted := range res.Evicted {
		rep.Info("removed old archive %s", evicted)
	}
	if res.CleanupErr != nil {
		rep.Warning("archive cleanup incomplete: %v", res.CleanupErr)
	}
	return ctx.Finish(rep)
}
