package cmd

import (
	"errors"
	"fmt"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/spf13/cobra"
)

var (
	doctorCleanup bool
	doctorForce   bool
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor [marker...]",
	Short: "Check for interrupted recoveries",
	Long: `Report recovery markers left behind by an interrupted 'hyprsession recover'
and classify each one:

  completed-move  the session reached active storage
  not-moved       the session is still archived
  conflict        both the archive and the target exist
  lost            neither the archive nor the target exists

With --cleanup, markers in the first two states are resolved. Conflicts and
lost sessions need manual repair and are left in place unless --force is
given, which discards their markers without touching any directory.`,
	Example: `  # List interrupted recoveries
  hyprsession doctor

  # Resolve everything that can be resolved
  hyprsession doctor --cleanup

  # Also discard markers of conflicting or lost recoveries
  hyprsession doctor --cleanup --force

  # Resolve one marker
  hyprsession doctor --cleanup .recovery-in-progress-work.tmp`,
	RunE:              ExecuteWithArgs(runDoctor),
	ValidArgsFunction: getMarkerCompletions,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVar(&doctorCleanup, "cleanup", false, "Resolve interrupted recoveries")
	doctorCmd.Flags().BoolVar(&doctorForce, "force", false, "With --cleanup, discard markers that need manual repair")
}

func runDoctor(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	if doctorForce && !doctorCleanup {
		return fmt.Errorf("--force requires --cleanup")
	}

	mgr := ctx.ArchiveManager(false)

	found, err := mgr.CheckInterruptedRecoveries()
	if err != nil {
		return err
	}

	if !doctorCleanup {
		ctx.Printer.PrintInterrupted(found)
		return nil
	}

	targets := args
	if len(targets) == 0 {
		for _, ir := range found {
			targets = append(targets, ir.MarkerName)
		}
	}

	rep := report.New("doctor")
	if len(targets) == 0 {
		rep.Info("no interrupted recoveries")
		return ctx.Finish(rep)
	}

	for _, marker := range targets {
		ir, err := mgr.CleanupInterruptedRecovery(marker)
		if errors.Is(err, archive.ErrNeedsRepair) && doctorForce {
			ir, err = mgr.DiscardInterruptedRecovery(marker)
			if err == nil {
				rep.Warning("discarded %s (%s, session %q)", marker, ir.State, ir.Target)
				continue
			}
		}
		switch {
		case errors.Is(err, archive.ErrNeedsRepair):
			rep.Fail(fmt.Errorf("%s: %s: %w", marker, repairHint(ir), archive.ErrNeedsRepair))
		case err != nil:
			rep.Fail(fmt.Errorf("%s: %w", marker, err))
		default:
			rep.Success("resolved %s (%s, session %q)", marker, ir.State, ir.Target)
		}
	}
	return ctx.Finish(rep)
}

func repairHint(ir *archive.InterruptedRecovery) string {
	if ir == nil {
		return "needs manual repair"
	}
	switch ir.State {
	case archive.StateConflict:
		return "both the archive and session " + ir.Target + " exist; remove one of them, then run doctor --cleanup again, or discard the marker with doctor --cleanup --force"
	case archive.StateLost:
		return "neither the archive nor session " + ir.Target + " exists; discard the marker with doctor --cleanup --force"
	default:
		return "needs manual repair"
	}
}
