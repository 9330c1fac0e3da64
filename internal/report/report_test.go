package report

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestReport_Levels(t *testing.T) {
	r := New("restore")
	r.Success("launched %d windows", 3)
	r.Warning("window %s has no launch command", "0x1")
	r.Info("dry run")

	if r.HasErrors() {
		t.Errorf("HasErrors() = true without errors")
	}
	if !r.HasWarnings() {
		t.Errorf("HasWarnings() = false")
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
	if r.Messages[0].Text != "launched 3 windows" {
		t.Errorf("Messages[0] = %q", r.Messages[0].Text)
	}

	r.Fail(errors.New("boom"))
	r.Error("second %s", "failure")
	if r.Count(LevelError) != 2 {
		t.Errorf("Count(error) = %d, want 2", r.Count(LevelError))
	}
	err := r.Err()
	if err == nil || !strings.Contains(err.Error(), "boom; second failure") {
		t.Errorf("Err() = %v", err)
	}
}

func TestReport_Merge(t *testing.T) {
	a := New("archive")
	a.Success("archived")
	b := New("cleanup")
	b.Warning("could not delete old archive")

	a.Merge(b)
	a.Merge(nil)
	if len(a.Messages) != 2 || a.Messages[1].Level != LevelWarning {
		t.Errorf("Merge() messages = %+v", a.Messages)
	}
}

func TestReport_ErrKeepsCauses(t *testing.T) {
	errMissing := errors.New("missing")

	r := New("recover")
	r.Error("plain message")
	if errors.Is(r.Err(), errMissing) {
		t.Error("Err() should not match an unrecorded cause")
	}

	other := New("cleanup")
	other.Fail(fmt.Errorf("archive x: %w", errMissing))
	r.Merge(other)

	err := r.Err()
	if !errors.Is(err, errMissing) {
		t.Errorf("Err() = %v, should wrap the merged cause", err)
	}
	if err.Error() != "recover failed: plain message; archive x: missing" {
		t.Errorf("Err() text = %q", err.Error())
	}
}
