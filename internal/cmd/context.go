package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/capture"
	"github.com/d-kuro/hyprsession/internal/config"
	"github.com/d-kuro/hyprsession/internal/finder"
	"github.com/d-kuro/hyprsession/internal/hypr"
	"github.com/d-kuro/hyprsession/internal/logging"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/restore"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/internal/ui"
	"github.com/d-kuro/hyprsession/pkg/command"
	"github.com/d-kuro/hyprsession/pkg/models"
	"github.com/d-kuro/hyprsession/pkg/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CommandContext encapsulates common dependencies used across commands.
type CommandContext struct {
	Config  *models.Config
	Logger  *zap.Logger
	Printer *ui.Printer
	Store   *session.Store
	Hypr    *hypr.HyprCommand
	finder  *finder.Finder // Lazy-loaded
}

// NewCommandContext loads the configuration and wires the shared components.
func NewCommandContext() (*CommandContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	executor := command.NewStandardExecutor()

	return &CommandContext{
		Config:  cfg,
		Logger:  logger,
		Printer: ui.New(&cfg.UI),
		Store:   session.NewStore(cfg.Storage.SessionsDir, logger),
		Hypr:    hypr.NewHyprCommand(cfg.Hypr.Command, executor),
	}, nil
}

// GetFinder returns a finder instance, creating it if needed.
func (ctx *CommandContext) GetFinder() *finder.Finder {
	if ctx.finder == nil {
		ctx.finder = finder.New(&ctx.Config.Finder, &ctx.Config.UI, ctx.Store)
	}
	return ctx.finder
}

// ArchiveManager returns an archive manager over the configured directories.
// autoCleanup is combined with the configured retention switch.
func (ctx *CommandContext) ArchiveManager(autoCleanup bool) *archive.Manager {
	return archive.NewManager(
		ctx.Config.Storage.SessionsDir,
		ctx.Config.Storage.ArchiveDir,
		archive.Options{
			AutoCleanup: ctx.Config.Archive.AutoCleanup && autoCleanup,
			MaxArchives: ctx.Config.Archive.MaxArchives,
		},
		ctx.Logger,
	)
}

// Restorer wires a restorer that launches through the system shell and
// drives Hyprland through hyprctl.
func (ctx *CommandContext) Restorer() *restore.Restorer {
	rc := ctx.Config.Restore
	return restore.NewRestorer(
		ctx.Store,
		ctx.Hypr,
		command.NewStandardExecutor(),
		restore.NewSleepPacer(rc.Delay, rc.SwallowMultiplier),
		restore.NewComposer(rc.Terminal),
		ctx.Logger,
	)
}

// Capturer wires a capturer reading hyprctl and /proc. Terminal state is
// recorded only for the terminal restore can compose commands for.
func (ctx *CommandContext) Capturer() *capture.Capturer {
	terminals := restore.NewComposer(ctx.Config.Restore.Terminal).Terminals()
	return capture.NewCapturer(ctx.Hypr, capture.NewProcFS(""), terminals, ctx.Logger)
}

// SelectSession resolves a session name from args or the fuzzy finder.
func (ctx *CommandContext) SelectSession(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	sessions, err := ctx.Store.List()
	if err != nil {
		return "", err
	}
	selected, err := ctx.GetFinder().SelectSession(sessions)
	if err != nil {
		return "", fmt.Errorf("session selection cancelled: %w", err)
	}
	return selected.Name, nil
}

// Finish prints rep and turns its errors into the command error.
func (ctx *CommandContext) Finish(rep *report.Report) error {
	ctx.Printer.PrintReport(rep)
	if err := rep.Err(); err != nil {
		return reportedError{err}
	}
	return nil
}

// Close flushes the logger.
func (ctx *CommandContext) Close() {
	_ = ctx.Logger.Sync()
}

// reportedError is an error whose details were already printed.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible(cmd *cobra.Command, logger *zap.Logger) (context.Context, context.CancelFunc) {
	return system.WithInterrupt(cmd.Context(), system.NewStandardSystem(), func(sig os.Signal) {
		logger.Info("received signal, stopping", zap.Stringer("signal", sig))
	})
}

// ExecuteWithContext creates a command context and executes the provided function.
func ExecuteWithContext(fn func(*CommandContext) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, err := NewCommandContext()
		if err != nil {
			return err
		}
		defer ctx.Close()

		return fn(ctx)
	}
}

// ExecuteWithArgs is a variant that passes command arguments to the function.
func ExecuteWithArgs(fn func(*CommandContext, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, err := NewCommandContext()
		if err != nil {
			return err
		}
		defer ctx.Close()

		return fn(ctx, cmd, args)
	}
}
