package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/restore"
)

func update(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	if !ok {
		t.Fatalf("Update() returned %T, want ProgressModel", next)
	}
	return pm, cmd
}

func TestProgressModel_Events(t *testing.T) {
	m := NewProgressModel("Restoring work", nil)

	events := []restore.Event{
		{Kind: restore.EventPhase, Phase: restore.PhaseLaunchingUngrouped},
		{Kind: restore.EventLaunch, Class: "firefox", Command: "firefox"},
		{Kind: restore.EventPhase, Phase: restore.PhaseLaunchingGroup, GroupID: "0x10"},
		{Kind: restore.EventLaunch, Class: "kitty", Command: "kitty --directory /srv"},
		{Kind: restore.EventSkip, Class: "mpv", Detail: "launched together with swallowing window 0x11"},
		{Kind: restore.EventDispatch, Command: "togglegroup"},
		{Kind: restore.EventWarning, Detail: "group 0x10: lockactivegroup failed"},
	}
	for _, e := range events {
		var cmd tea.Cmd
		m, cmd = update(t, m, EventMsg{Event: e})
		if cmd != nil {
			t.Fatalf("event %s should not produce a command", e.Kind)
		}
	}

	if m.launched != 2 {
		t.Errorf("launched = %d, want 2", m.launched)
	}
	if m.warnings != 1 {
		t.Errorf("warnings = %d, want 1", m.warnings)
	}
	if m.phase != restore.PhaseLaunchingGroup || m.group != "0x10" {
		t.Errorf("phase = %s/%s", m.phase, m.group)
	}

	view := m.View()
	for _, want := range []string{"Restoring work", "launching-group (0x10)", "launched: 2", "firefox", "kitty --directory /srv", "togglegroup", "lockactivegroup failed", "q/Esc: cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModel_Done(t *testing.T) {
	m := NewProgressModel("Restoring work", nil)

	rep := report.New("restore")
	rep.Success("restored")
	m, cmd := update(t, m, DoneMsg{Report: rep})

	if cmd == nil {
		t.Fatal("DoneMsg should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("DoneMsg command should be tea.Quit")
	}
	if m.Report() != rep {
		t.Error("Report() should return the final report")
	}
	if !strings.Contains(m.View(), "restore complete") {
		t.Errorf("View() = %q", m.View())
	}

	failed := report.New("restore")
	failed.Error("boom")
	m, _ = update(t, NewProgressModel("x", nil), DoneMsg{Report: failed})
	if !strings.Contains(m.View(), "restore failed") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestProgressModel_QuitCancels(t *testing.T) {
	cancelled := false
	m := NewProgressModel("Restoring work", func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if !cancelled {
		t.Error("quitting before completion should cancel the restore")
	}
	if !m.Aborted() {
		t.Error("Aborted() should be true")
	}
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key command should be tea.Quit")
	}
}

func TestProgressModel_QuitAfterDoneDoesNotCancel(t *testing.T) {
	cancelled := false
	m := NewProgressModel("Restoring work", func() { cancelled = true })
	m, _ = update(t, m, DoneMsg{Report: report.New("restore")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if cancelled || m.Aborted() {
		t.Error("quitting after completion should not cancel")
	}
}

func TestProgressModel_VisibleLines(t *testing.T) {
	m := NewProgressModel("Restoring work", nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	for i := range 20 {
		m, _ = update(t, m, EventMsg{Event: restore.Event{Kind: restore.EventLaunch, Class: fmt.Sprintf("app%02d", i)}})
	}

	lines := m.visibleLines()
	if len(lines) != 3 {
		t.Fatalf("visibleLines() = %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[2], "app19") {
		t.Errorf("last visible line = %q, want newest event", lines[2])
	}
}
