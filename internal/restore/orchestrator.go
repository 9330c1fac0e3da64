package restore

import (
	"context"
	"errors"

	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/command"
	"go.uber.org/zap"
)

// WindowManager is the subset of the compositor control interface the
// restore needs.
type WindowManager interface {
	ToggleGroup(ctx context.Context) error
	LockActiveGroup(ctx context.Context) error
	SwitchWorkspace(ctx context.Context, id int) error
}

// Phase is the orchestrator state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseLaunchingUngrouped Phase = "launching-ungrouped"
	PhaseLaunchingGroup     Phase = "launching-group"
	PhaseGroupFormed        Phase = "group-formed"
	PhaseDone               Phase = "done"
)

// EventKind classifies orchestrator events.
type EventKind string

const (
	EventPhase    EventKind = "phase"
	EventLaunch   EventKind = "launch"
	EventSkip     EventKind = "skip"
	EventWait     EventKind = "wait"
	EventDispatch EventKind = "dispatch"
	EventWarning  EventKind = "warning"
)

// Event describes one step of a restore.
type Event struct {
	Kind    EventKind
	Phase   Phase
	GroupID string
	Address string
	Class   string
	Command string
	Detail  string
	Err     error
}

// Observer receives orchestrator events in order.
type Observer func(Event)

// Orchestrator sequences application launches and grouping commands.
type Orchestrator struct {
	wm       WindowManager
	launcher command.Launcher
	pacer    Pacer
	composer *Composer
	logger   *zap.Logger
	observer Observer
	dryRun   bool

	phase   Phase
	groupID string
	rels    Relationships
	eaten   map[string]string
	report  *report.Report
}

// NewOrchestrator creates an orchestrator. With dryRun set, nothing is spawned,
// dispatched or waited on; events still describe every step.
func NewOrchestrator(wm WindowManager, launcher command.Launcher, pacer Pacer, composer *Composer, logger *zap.Logger, observer Observer, dryRun bool) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = func(Event) {}
	}
	return &Orchestrator{
		wm:       wm,
		launcher: launcher,
		pacer:    pacer,
		composer: composer,
		logger:   logger,
		observer: observer,
		dryRun:   dryRun,
		phase:    PhaseIdle,
	}
}

// Phase returns the current state.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Run launches windows: ungrouped windows first in input order, then each
// group in discovery order. Problems with individual windows and failed
// grouping commands are recorded on rep and do not stop the run; only context
// cancellation does.
func (o *Orchestrator) Run(ctx context.Context, windows []session.WindowInfo, rels Relationships, rep *report.Report) error {
	o.rels = rels
	o.eaten = rels.SwallowedBy()
	o.report = rep

	var ungrouped []session.WindowInfo
	var groupOrder []string
	grouped := make(map[string][]session.WindowInfo)
	for _, w := range windows {
		id, ok := w.GroupID.Get()
		if !ok || id == "" {
			ungrouped = append(ungrouped, w)
			continue
		}
		if _, seen := grouped[id]; !seen {
			groupOrder = append(groupOrder, id)
		}
		grouped[id] = append(grouped[id], w)
	}

	o.setPhase(PhaseLaunchingUngrouped, "")
	for _, w := range ungrouped {
		if err := o.launchIndependent(ctx, w); err != nil {
			return err
		}
	}

	for _, id := range groupOrder {
		if err := o.launchGroup(ctx, id, grouped[id]); err != nil {
			return err
		}
	}

	o.setPhase(PhaseDone, "")
	return nil
}

func (o *Orchestrator) launchGroup(ctx context.Context, id string, members []session.WindowInfo) error {
	o.setPhase(PhaseLaunchingGroup, id)

	var effective []session.WindowInfo
	for _, w := range members {
		if swallower, ok := o.eaten[w.Address]; ok {
			o.emit(Event{Kind: EventSkip, Address: w.Address, Class: w.Class,
				Detail: "launched together with swallowing window " + swallower})
			continue
		}
		effective = append(effective, w)
	}

	if len(effective) < 2 {
		o.logger.Debug("group too small after swallowing exclusion, launching ungrouped",
			zap.String("group", id), zap.Int("members", len(effective)))
		for _, w := range effective {
			if err := o.launchIndependent(ctx, w); err != nil {
				return err
			}
		}
		return nil
	}

	leaderIdx := -1
	for i, w := range effective {
		launched, err := o.launchMember(ctx, w)
		if err != nil {
			return err
		}
		if launched {
			leaderIdx = i
			break
		}
	}
	if leaderIdx < 0 {
		o.warn(id, "", "group %s: no member could be launched", id)
		return nil
	}

	o.dispatch(ctx, id, "togglegroup", o.wm.ToggleGroup)

	for _, w := range effective[leaderIdx+1:] {
		if _, err := o.launchMember(ctx, w); err != nil {
			return err
		}
	}

	o.dispatch(ctx, id, "lockactivegroup", o.wm.LockActiveGroup)
	o.setPhase(PhaseGroupFormed, id)
	return ctx.Err()
}

// launchMember launches one effective group member, composing a swallowing
// command when it has a partner. It reports whether a process was started.
func (o *Orchestrator) launchMember(ctx context.Context, w session.WindowInfo) (bool, error) {
	if rel, ok := o.rels[w.Address]; ok {
		return o.launchPair(ctx, rel)
	}
	return o.launchSingle(ctx, w)
}

// launchIndependent applies the ungrouped rules: swallowing windows launch as
// a pair, swallowed windows are left to their partner, others launch alone.
func (o *Orchestrator) launchIndependent(ctx context.Context, w session.WindowInfo) error {
	if rel, ok := o.rels[w.Address]; ok {
		_, err := o.launchPair(ctx, rel)
		return err
	}
	if swallower, ok := o.eaten[w.Address]; ok {
		o.emit(Event{Kind: EventSkip, Address: w.Address, Class: w.Class,
			Detail: "launched together with swallowing window " + swallower})
		return nil
	}
	_, err := o.launchSingle(ctx, w)
	return err
}

func (o *Orchestrator) launchPair(ctx context.Context, rel SwallowingRelationship) (bool, error) {
	composed, err := o.composer.ComposeSwallowingPair(rel.Swallowing, rel.Swallowed).Get()
	if err == nil {
		return o.spawn(ctx, rel.Swallowing, composed, SwallowLaunch)
	}

	o.logger.Info("launching swallowing pair separately",
		zap.String("swallowing", rel.Swallowing.Address),
		zap.String("swallowed", rel.Swallowed.Address),
		zap.Error(err))
	o.warn("", rel.Swallowing.Address, "%s and %s launched separately: %v", rel.Swallowing.Class, rel.Swallowed.Class, err)

	terminalLaunched, err := o.launchSingle(ctx, rel.Swallowed)
	if err != nil {
		return terminalLaunched, err
	}
	appLaunched, err := o.launchSingle(ctx, rel.Swallowing)
	return terminalLaunched || appLaunched, err
}

func (o *Orchestrator) launchSingle(ctx context.Context, w session.WindowInfo) (bool, error) {
	cmd, ok := o.composer.ComposeSingle(w)
	if !ok {
		o.warn(o.groupID, w.Address, "window %s (%s) has no launch command, skipped", w.Address, w.Class)
		return false, nil
	}
	return o.spawn(ctx, w, cmd, PlainLaunch)
}

func (o *Orchestrator) spawn(ctx context.Context, w session.WindowInfo, cmd string, kind LaunchKind) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	o.emit(Event{Kind: EventLaunch, Address: w.Address, Class: w.Class, Command: cmd, Detail: kind.String()})
	if o.dryRun {
		o.report.Info("would launch %s", cmd)
		return true, nil
	}

	pid, err := o.launcher.StartDetached(cmd)
	if err != nil {
		o.logger.Warn("launch failed", zap.String("window", w.Address), zap.String("command", cmd), zap.Error(err))
		o.warn(o.groupID, w.Address, "failed to launch %s: %v", w.Class, err)
		return false, nil
	}
	o.logger.Info("launched window",
		zap.String("window", w.Address),
		zap.String("class", w.Class),
		zap.Int("pid", pid),
		zap.Stringer("kind", kind))
	o.report.Success("launched %s", w.Class)

	o.emit(Event{Kind: EventWait, Address: w.Address, Detail: kind.String()})
	if err := o.pacer.AfterLaunch(ctx, kind); err != nil {
		return true, err
	}
	return true, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, groupID, name string, fn func(context.Context) error) {
	o.emit(Event{Kind: EventDispatch, GroupID: groupID, Command: name})
	if o.dryRun {
		o.report.Info("would dispatch %s", name)
		return
	}
	if err := fn(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		o.logger.Warn("window manager command failed",
			zap.String("group", groupID), zap.String("dispatcher", name), zap.Error(err))
		o.warn(groupID, "", "group %s: %s failed, group may be incomplete: %v", groupID, name, err)
	}
}

func (o *Orchestrator) setPhase(p Phase, groupID string) {
	o.phase = p
	o.groupID = groupID
	o.emit(Event{Kind: EventPhase, Phase: p, GroupID: groupID})
}

func (o *Orchestrator) warn(groupID, address, format string, args ...any) {
	o.report.Warning(format, args...)
	o.emit(Event{Kind: EventWarning, GroupID: groupID, Address: address, Detail: o.report.Messages[len(o.report.Messages)-1].Text})
}

func (o *Orchestrator) emit(e Event) {
	if e.Phase == "" {
		e.Phase = o.phase
	}
	if e.GroupID == "" {
		e.GroupID = o.groupID
	}
	o.observer(e)
}
