package restore

import (
	"context"
	"fmt"

	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/command"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options controls one restore.
type Options struct {
	// DryRun reports the launch plan without spawning or dispatching anything.
	DryRun bool
	// SwitchWorkspace focuses the captured active workspace before launching.
	SwitchWorkspace bool
}

// Restorer loads a stored session and replays it through the orchestrator.
type Restorer struct {
	store    *session.Store
	wm       WindowManager
	launcher command.Launcher
	pacer    Pacer
	composer *Composer
	logger   *zap.Logger
	observer Observer
}

// NewRestorer wires a Restorer.
func NewRestorer(store *session.Store, wm WindowManager, launcher command.Launcher, pacer Pacer, composer *Composer, logger *zap.Logger) *Restorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Restorer{
		store:    store,
		wm:       wm,
		launcher: launcher,
		pacer:    pacer,
		composer: composer,
		logger:   logger,
	}
}

// SetObserver registers a callback that receives every orchestrator event.
func (r *Restorer) SetObserver(o Observer) {
	r.observer = o
}

// Restore restores the named session. The returned report is never nil.
func (r *Restorer) Restore(ctx context.Context, name string, opts Options) *report.Report {
	rep := report.New("restore")

	if err := session.ValidateName(name); err != nil {
		return rep.Fail(err)
	}
	data, err := r.store.Load(name)
	if err != nil {
		return rep.Fail(err)
	}

	rep.Merge(r.RestoreData(ctx, name, data, opts))
	return rep
}

// RestoreData replays an already loaded session.
func (r *Restorer) RestoreData(ctx context.Context, name string, data *session.SessionData, opts Options) *report.Report {
	rep := report.New("restore")
	logger := r.logger.With(zap.String("run_id", uuid.NewString()), zap.String("session", name))
	logger.Info("restoring session",
		zap.Int("windows", len(data.Windows)),
		zap.Int("groups", data.Groups.Len()),
		zap.Bool("dry_run", opts.DryRun))

	rels, warnings := DetectSwallowing(data.Windows, logger)
	for _, w := range warnings {
		rep.Warning("%s", w)
	}

	if opts.SwitchWorkspace && data.ActiveWorkspace > 0 {
		if opts.DryRun {
			rep.Info("would switch to workspace %d", data.ActiveWorkspace)
		} else if err := r.wm.SwitchWorkspace(ctx, data.ActiveWorkspace); err != nil {
			logger.Warn("workspace switch failed", zap.Int("workspace", data.ActiveWorkspace), zap.Error(err))
			rep.Warning("could not switch to workspace %d: %v", data.ActiveWorkspace, err)
		}
	}

	orch := NewOrchestrator(r.wm, r.launcher, r.pacer, r.composer, logger, r.observer, opts.DryRun)
	if err := orch.Run(ctx, data.Windows, rels, rep); err != nil {
		rep.Error("restore of %q interrupted: %v", name, err)
		return rep
	}

	launched := rep.Count(report.LevelSuccess)
	if opts.DryRun {
		rep.Success("dry run of %q complete", name)
	} else {
		rep.Success("restored %q: %s", name, summarize(launched, len(data.Windows)))
	}
	return rep
}

func summarize(launched, windows int) string {
	return fmt.Sprintf("%d launch(es) for %d window(s)", launched, windows)
}
