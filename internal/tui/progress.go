// Package tui renders live restore progress with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/restore"
)

var (
	primaryColor = lipgloss.Color("#0EA5E9") // Blue
	successColor = lipgloss.Color("#22C55E") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	warningColor = lipgloss.Color("#F59E0B") // Orange
	mutedColor   = lipgloss.Color("#64748B") // Gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	launchStyle = lipgloss.NewStyle().
			Foreground(successColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	footerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(mutedColor).
			MarginTop(1)
)

// EventMsg carries one orchestrator event into the program.
type EventMsg struct {
	Event restore.Event
}

// DoneMsg signals that the restore finished.
type DoneMsg struct {
	Report *report.Report
}

// ProgressModel is the bubbletea model of a running restore.
type ProgressModel struct {
	title    string
	phase    restore.Phase
	group    string
	lines    []string
	launched int
	warnings int
	done     bool
	aborted  bool
	report   *report.Report
	width    int
	height   int
	cancel   context.CancelFunc
}

// NewProgressModel creates a model. cancel is invoked when the user quits
// before the restore has finished.
func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		title:  title,
		phase:  restore.PhaseIdle,
		cancel: cancel,
	}
}

// Init initializes the model
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles events, completion and key input.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.apply(msg.Event)

	case DoneMsg:
		m.done = true
		m.report = msg.Report
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.done {
				m.aborted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *ProgressModel) apply(e restore.Event) {
	switch e.Kind {
	case restore.EventPhase:
		m.phase = e.Phase
		m.group = e.GroupID
		if e.Phase == restore.PhaseLaunchingGroup {
			m.lines = append(m.lines, phaseStyle.Render("group "+e.GroupID))
		}
	case restore.EventLaunch:
		m.launched++
		m.lines = append(m.lines, launchStyle.Render(fmt.Sprintf("▶ %s", e.Class))+" "+phaseStyle.Render(e.Command))
	case restore.EventSkip:
		m.lines = append(m.lines, phaseStyle.Render(fmt.Sprintf("· %s %s", e.Class, e.Detail)))
	case restore.EventDispatch:
		m.lines = append(m.lines, phaseStyle.Render("⚙ "+e.Command))
	case restore.EventWarning:
		m.warnings++
		m.lines = append(m.lines, warningStyle.Render("! "+e.Detail))
	}
}

// View renders the TUI
func (m ProgressModel) View() string {
	var sections []string

	sections = append(sections, headerStyle.Render(m.title))

	status := fmt.Sprintf("Phase: %s", m.phase)
	if m.group != "" {
		status += fmt.Sprintf(" (%s)", m.group)
	}
	status += fmt.Sprintf(" • launched: %d • warnings: %d", m.launched, m.warnings)
	sections = append(sections, phaseStyle.Render(status))

	sections = append(sections, strings.Join(m.visibleLines(), "\n"))

	switch {
	case m.done && m.report != nil && m.report.HasErrors():
		sections = append(sections, errorStyle.Render("restore failed"))
	case m.done:
		sections = append(sections, launchStyle.Render("restore complete"))
	case m.aborted:
		sections = append(sections, warningStyle.Render("cancelling..."))
	}

	footer := footerStyle
	if m.width > 0 {
		footer = footer.Width(m.width)
	}
	sections = append(sections, footer.Render(helpStyle.Render("q/Esc: cancel")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// visibleLines returns the tail of the step log that fits the window.
func (m ProgressModel) visibleLines() []string {
	if m.height <= 0 {
		return m.lines
	}
	room := max(1, m.height-7)
	if len(m.lines) <= room {
		return m.lines
	}
	return m.lines[len(m.lines)-room:]
}

// Report returns the final report once the restore finished.
func (m ProgressModel) Report() *report.Report {
	return m.report
}

// Aborted reports whether the user quit before completion.
func (m ProgressModel) Aborted() bool {
	return m.aborted
}

// RunProgress runs fn while rendering its events. fn receives a context that
// is cancelled when the user quits and an observer to register with the
// restorer.
func RunProgress(ctx context.Context, title string, fn func(ctx context.Context, observer restore.Observer) *report.Report) (*report.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(title, cancel), tea.WithContext(ctx))

	result := make(chan *report.Report, 1)
	go func() {
		rep := fn(ctx, func(e restore.Event) {
			p.Send(EventMsg{Event: e})
		})
		result <- rep
		p.Send(DoneMsg{Report: rep})
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() == nil {
		cancel()
		<-result
		return nil, fmt.Errorf("progress display failed: %w", err)
	}

	return <-result, nil
}
