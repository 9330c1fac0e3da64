package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listJSON  bool
	listWatch bool
)

// watchDebounce groups bursts of filesystem events into one redraw.
const watchDebounce = 200 * time.Millisecond

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sessions and archives",
	Long: `List saved sessions, archived sessions and any interrupted recovery.

With --watch the listing is redrawn whenever the session or archive
directory changes.`,
	Example: `  # Show everything
  hyprsession list

  # Machine readable output
  hyprsession list --json

  # Keep the listing up to date
  hyprsession list --watch`,
	Args: cobra.NoArgs,
	RunE: ExecuteWithArgs(runList),
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "Redraw when storage changes")
}

// listing is the JSON shape of the list command.
type listing struct {
	Sessions    []session.Summary             `json:"sessions"`
	Archives    []archive.ArchivedSession     `json:"archives"`
	Interrupted []archive.InterruptedRecovery `json:"interrupted"`
}

func collectListing(ctx *CommandContext) (*listing, error) {
	sessions, err := ctx.Store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	mgr := ctx.ArchiveManager(false)
	archives, err := mgr.ListArchived()
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	interrupted, err := mgr.CheckInterruptedRecoveries()
	if err != nil {
		return nil, fmt.Errorf("failed to check interrupted recoveries: %w", err)
	}

	return &listing{Sessions: sessions, Archives: archives, Interrupted: interrupted}, nil
}

func renderListing(ctx *CommandContext) error {
	l, err := collectListing(ctx)
	if err != nil {
		return err
	}

	if listJSON {
		return ctx.Printer.PrintJSON(l)
	}

	ctx.Printer.PrintSessions(l.Sessions)
	ctx.Printer.PrintInfo("")
	ctx.Printer.PrintArchives(l.Archives)
	if len(l.Interrupted) > 0 {
		ctx.Printer.PrintInfo("")
		ctx.Printer.PrintInterrupted(l.Interrupted)
		ctx.Printer.PrintInfo("Run 'hyprsession doctor --cleanup' to resolve interrupted recoveries.")
	}
	return nil
}

func runList(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	if !listWatch {
		return renderListing(ctx)
	}

	runCtx, stop := interruptible(cmd, ctx.Logger)
	defer stop()
	return watchListing(runCtx, ctx)
}

func watchListing(runCtx context.Context, ctx *CommandContext) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range []string{ctx.Config.Storage.SessionsDir, ctx.Config.Storage.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	redraw := func() error {
		if !listJSON {
			fmt.Print("\033[H\033[2J")
		}
		return renderListing(ctx)
	}
	if err := redraw(); err != nil {
		return err
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ctx.Logger.Debug("storage changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ctx.Logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := redraw(); err != nil {
				ctx.Printer.PrintError(err)
			}
		}
	}
}
