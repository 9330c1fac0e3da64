package system

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"
)

type fakeSystem struct {
	mu      sync.Mutex
	ch      chan<- os.Signal
	signals []os.Signal
	stopped bool
}

func (f *fakeSystem) NotifySignal(c chan<- os.Signal, signals ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = c
	f.signals = signals
}

func (f *fakeSystem) StopSignal(c chan<- os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeSystem) send(sig os.Signal) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- sig
}

func TestWithInterrupt_Signal(t *testing.T) {
	sys := &fakeSystem{}
	var got os.Signal
	ctx, stop := WithInterrupt(context.Background(), sys, func(sig os.Signal) { got = sig })
	defer stop()

	if len(sys.signals) != 2 {
		t.Fatalf("registered %d signals, want 2", len(sys.signals))
	}

	sys.send(syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled by signal")
	}

	stop()
	if got != syscall.SIGTERM {
		t.Errorf("onSignal got %v, want SIGTERM", got)
	}
	if !sys.stopped {
		t.Error("stop should unregister the signal channel")
	}
}

func TestWithInterrupt_Stop(t *testing.T) {
	sys := &fakeSystem{}
	ctx, stop := WithInterrupt(context.Background(), sys, nil)

	stop()

	if ctx.Err() == nil {
		t.Error("stop should cancel the context")
	}
	if !sys.stopped {
		t.Error("stop should unregister the signal channel")
	}
}

func TestWithInterrupt_ParentCancelled(t *testing.T) {
	sys := &fakeSystem{}
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithInterrupt(parent, sys, nil)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should follow its parent")
	}
}

func TestStandardSystem_Interface(t *testing.T) {
	var _ SystemInterface = NewStandardSystem()

	sys := NewStandardSystem()
	ch := make(chan os.Signal, 1)
	sys.NotifySignal(ch, syscall.SIGUSR1)
	sys.StopSignal(ch)
}
