package restore

import (
	"context"
	"time"

	"github.com/d-kuro/hyprsession/pkg/clock"
)

// LaunchKind distinguishes plain launches from combined terminal+app launches.
type LaunchKind int

const (
	PlainLaunch LaunchKind = iota
	SwallowLaunch
)

func (k LaunchKind) String() string {
	if k == SwallowLaunch {
		return "swallow"
	}
	return "plain"
}

// Pacer waits after a launch so the compositor can map the new window before
// the next command. Hyprland offers no "window created" acknowledgement for
// dispatch, so the production pacer sleeps.
type Pacer interface {
	AfterLaunch(ctx context.Context, kind LaunchKind) error
}

// SleepPacer sleeps for a fixed delay, scaled by SwallowMultiplier for
// swallowing launches.
type SleepPacer struct {
	Delay             time.Duration
	SwallowMultiplier float64
	Clock             clock.Clock
}

// NewSleepPacer creates a SleepPacer on the real clock.
func NewSleepPacer(delay time.Duration, swallowMultiplier float64) *SleepPacer {
	return &SleepPacer{Delay: delay, SwallowMultiplier: swallowMultiplier, Clock: clock.Real()}
}

// DelayFor returns how long to wait after a launch of kind.
func (p *SleepPacer) DelayFor(kind LaunchKind) time.Duration {
	if kind == SwallowLaunch && p.SwallowMultiplier > 0 {
		return time.Duration(float64(p.Delay) * p.SwallowMultiplier)
	}
	return p.Delay
}

// AfterLaunch sleeps for DelayFor(kind) unless ctx is already done.
func (p *SleepPacer) AfterLaunch(ctx context.Context, kind LaunchKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := p.Clock
	if c == nil {
		c = clock.Real()
	}
	c.Sleep(p.DelayFor(kind))
	return ctx.Err()
}
