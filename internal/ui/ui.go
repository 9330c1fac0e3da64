// Package ui provides user interface utilities for the hyprsession application.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/internal/table"
	"github.com/d-kuro/hyprsession/pkg/models"
	"github.com/d-kuro/hyprsession/pkg/utils"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// titleWidth is the display width window titles are truncated to.
const titleWidth = 40

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
)

// Printer handles output formatting.
type Printer struct {
	useColor     bool
	useIcons     bool
	useTildeHome bool
	out          io.Writer
	errOut       io.Writer
}

// New creates a new Printer instance.
func New(config *models.UIConfig) *Printer {
	return &Printer{
		useColor:     config.Color,
		useIcons:     config.Icons,
		useTildeHome: config.TildeHome,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

// SetOutput redirects regular and error output.
func (p *Printer) SetOutput(out, errOut io.Writer) {
	p.out = out
	p.errOut = errOut
}

// PrintReport prints every message of an operation report. Errors go to the
// error stream.
func (p *Printer) PrintReport(rep *report.Report) {
	for _, m := range rep.Messages {
		line := p.decorate(m.Level, m.Text)
		if m.Level == report.LevelError {
			_, _ = fmt.Fprintln(p.errOut, line)
			continue
		}
		_, _ = fmt.Fprintln(p.out, line)
	}
}

func (p *Printer) decorate(level report.Level, text string) string {
	var icon string
	var style lipgloss.Style
	switch level {
	case report.LevelSuccess:
		icon, style = "✓", successStyle
	case report.LevelWarning:
		icon, style = "!", warningStyle
	case report.LevelError:
		icon, style = "✗", errorStyle
	default:
		icon, style = "·", infoStyle
	}

	if p.useIcons {
		text = icon + " " + text
	}
	if p.useColor {
		return style.Render(text)
	}
	return text
}

// PrintSessions displays active sessions in a table.
func (p *Printer) PrintSessions(sessions []session.Summary) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(p.out, "No sessions found")
		return
	}

	t := p.newTable().
		Headers("NAME", "WINDOWS", "GROUPS", "SAVED")
	for _, s := range sessions {
		if s.Corrupt {
			t.Row(s.Name, "-", "-", "corrupt")
			continue
		}
		t.Row(s.Name, strconv.Itoa(s.WindowCount), strconv.Itoa(s.GroupCount), p.formatTime(s.Timestamp))
	}
	_ = t.Println()
}

// PrintArchives displays archived sessions in a table.
func (p *Printer) PrintArchives(archives []archive.ArchivedSession) {
	if len(archives) == 0 {
		_, _ = fmt.Fprintln(p.out, "No archived sessions found")
		return
	}

	t := p.newTable().
		Headers("ARCHIVE", "ORIGINAL", "FILES", "ARCHIVED")
	for _, a := range archives {
		if a.Corrupt {
			t.Row(a.Name, "-", "-", "no metadata")
			continue
		}
		t.Row(a.Name, a.OriginalName, strconv.Itoa(a.FileCount), p.formatTime(a.ArchiveTimestamp))
	}
	_ = t.Println()
}

// PrintInterrupted displays leftover recovery markers.
func (p *Printer) PrintInterrupted(found []archive.InterruptedRecovery) {
	if len(found) == 0 {
		_, _ = fmt.Fprintln(p.out, "No interrupted recoveries")
		return
	}

	t := p.newTable().
		Headers("MARKER", "TARGET", "STATE", "SOURCE")
	for _, ir := range found {
		source := "unknown"
		if m, ok := ir.Marker.Get(); ok {
			source = p.path(m.ArchivedDir)
		}
		t.Row(ir.MarkerName, ir.Target, string(ir.State), source)
	}
	_ = t.Println()
}

// PrintSessionDetail displays the windows of one session.
func (p *Printer) PrintSessionDetail(name string, data *session.SessionData) {
	_, _ = fmt.Fprintf(p.out, "Session: %s\n", name)
	_, _ = fmt.Fprintf(p.out, "Saved: %s\n", data.Timestamp.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(p.out, "Active workspace: %d\n", data.ActiveWorkspace)
	_, _ = fmt.Fprintf(p.out, "Windows: %d, groups: %d\n\n", len(data.Windows), data.Groups.Len())

	if len(data.Windows) == 0 {
		return
	}

	t := p.newTable().
		Headers("ADDRESS", "CLASS", "TITLE", "WS", "GROUP", "SWALLOWS", "DIRECTORY")
	for _, w := range data.Windows {
		t.Row(
			w.Address,
			w.Class,
			TruncateTitle(w.Title, titleWidth),
			w.Workspace.Name,
			w.GroupID.UnwrapOr("-"),
			w.Swallowing.UnwrapOr("-"),
			p.path(w.WorkingDirectory.UnwrapOr("-")),
		)
	}
	_ = t.Println()
}

// TruncateTitle shortens s to at most width terminal cells.
func TruncateTitle(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// PrintJSON writes v as indented JSON.
func (p *Printer) PrintJSON(v any) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// PrintYAML writes v as YAML.
func (p *Printer) PrintYAML(v any) error {
	encoder := yaml.NewEncoder(p.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// PrintConfig displays configuration in a formatted manner.
func (p *Printer) PrintConfig(settings map[string]any) {
	p.printConfigRecursive("", settings)
}

// PrintError displays an error message.
func (p *Printer) PrintError(err error) {
	_, _ = fmt.Fprintln(p.errOut, p.decorate(report.LevelError, "Error: "+err.Error()))
}

// PrintSuccess displays a success message.
func (p *Printer) PrintSuccess(message string) {
	_, _ = fmt.Fprintln(p.out, p.decorate(report.LevelSuccess, message))
}

// PrintInfo displays an informational message.
func (p *Printer) PrintInfo(message string) {
	_, _ = fmt.Fprintln(p.out, message)
}

func (p *Printer) newTable() *table.Builder {
	style := table.PlainStyle()
	if p.useColor {
		style = table.MinimalStyle()
	}
	return table.NewWithStyle(style).SetOutput(p.out)
}

func (p *Printer) path(path string) string {
	if p.useTildeHome {
		return utils.TildePath(path)
	}
	return path
}

// formatTime formats a time value for display.
func (p *Printer) formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// printConfigRecursive prints configuration values in key order.
func (p *Printer) printConfigRecursive(prefix string, data any) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			newPrefix := key
			if prefix != "" {
				newPrefix = prefix + "." + key
			}
			p.printConfigRecursive(newPrefix, v[key])
		}
	default:
		_, _ = fmt.Fprintf(p.out, "%s = %v\n", prefix, v)
	}
}
