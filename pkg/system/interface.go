// Package system wraps process-level signal handling so that long-running
// commands can be cancelled cleanly and tested without real signals.
package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SystemInterface provides an abstraction layer for system calls
// This enables easier testing and mocking of system-level operations
type SystemInterface interface {
	// NotifySignal sets up signal notification for the given signals
	NotifySignal(c chan<- os.Signal, signals ...os.Signal)

	// StopSignal stops delivery to c
	StopSignal(c chan<- os.Signal)
}

// StandardSystem implements SystemInterface using standard Go library functions
type StandardSystem struct{}

// NewStandardSystem creates a new StandardSystem instance
func NewStandardSystem() SystemInterface {
	return &StandardSystem{}
}

// NotifySignal sets up signal notification
func (s *StandardSystem) NotifySignal(c chan<- os.Signal, signals ...os.Signal) {
	signal.Notify(c, signals...)
}

// StopSignal stops signal notification
func (s *StandardSystem) StopSignal(c chan<- os.Signal) {
	signal.Stop(c)
}

// InterruptSignals are the signals that cancel a running command.
var InterruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// WithInterrupt returns a context that is cancelled when the process receives
// an interrupt or termination signal, or when the returned stop function is
// called. onSignal, if non-nil, is invoked with the received signal.
func WithInterrupt(parent context.Context, sys SystemInterface, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	sys.NotifySignal(sigCh, InterruptSignals...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigCh:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		cancel()
		<-done
		sys.StopSignal(sigCh)
	}
	return ctx, stop
}
