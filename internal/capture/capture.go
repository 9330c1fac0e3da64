// Package capture builds a session record from the live compositor state.
package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/d-kuro/hyprsession/internal/hypr"
	"github.com/d-kuro/hyprsession/internal/report"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/clock"
	"github.com/d-kuro/hyprsession/pkg/option"
	"go.uber.org/zap"
)

// WindowSource lists the compositor's windows.
type WindowSource interface {
	Clients(ctx context.Context) ([]hypr.Client, error)
	ActiveWorkspace(ctx context.Context) (hypr.WorkspaceRef, error)
}

// BrowserCapturer collects the open tabs of a browser window.
type BrowserCapturer interface {
	Supports(class string) bool
	CaptureTabs(ctx context.Context, w session.WindowInfo) (session.BrowserSession, error)
}

// NeovideCapturer asks a Neovide window to write its editor session and
// returns the path of the session file.
type NeovideCapturer interface {
	SaveSession(ctx context.Context, w session.WindowInfo) (string, error)
}

// Capturer turns compositor state into a SessionData.
type Capturer struct {
	source    WindowSource
	proc      ProcessInspector
	terminals map[string]bool
	browser   BrowserCapturer
	neovide   NeovideCapturer
	clock     clock.Clock
	logger    *zap.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithBrowser enables browser tab capture.
func WithBrowser(b BrowserCapturer) Option {
	return func(c *Capturer) { c.browser = b }
}

// WithNeovide enables Neovide session capture.
func WithNeovide(n NeovideCapturer) Option {
	return func(c *Capturer) { c.neovide = n }
}

// WithClock sets the clock used for the capture timestamp.
func WithClock(clk clock.Clock) Option {
	return func(c *Capturer) { c.clock = clk }
}

// NewCapturer creates a Capturer. terminals lists the window classes whose
// working directory and foreground program are recorded.
func NewCapturer(source WindowSource, proc ProcessInspector, terminals []string, logger *zap.Logger, opts ...Option) *Capturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Capturer{
		source:    source,
		proc:      proc,
		terminals: make(map[string]bool, len(terminals)),
		clock:     clock.Real(),
		logger:    logger,
	}
	for _, t := range terminals {
		c.terminals[strings.ToLower(t)] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture reads every mapped window. Only a failure to list windows is an
// error; anything that could not be determined for a single window is
// recorded as a warning on the returned report.
func (c *Capturer) Capture(ctx context.Context) (*session.SessionData, *report.Report, error) {
	rep := report.New("save")

	clients, err := c.source.Clients(ctx)
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %v", session.ErrExternalCommand, err)
	}

	data := &session.SessionData{
		Timestamp: c.clock.Now(),
		Windows:   []session.WindowInfo{},
		Groups:    session.NewGroupMapping(),
	}

	if ws, err := c.source.ActiveWorkspace(ctx); err != nil {
		c.logger.Warn("could not read active workspace", zap.Error(err))
		rep.Warning("could not determine the active workspace: %v", err)
	} else {
		data.ActiveWorkspace = ws.ID
	}

	captured := make(map[string]hypr.Client, len(clients))
	for _, cl := range clients {
		if !cl.Mapped || cl.Address == "" {
			continue
		}
		if _, dup := captured[cl.Address]; dup {
			continue
		}
		captured[cl.Address] = cl
		data.Windows = append(data.Windows, c.window(ctx, cl, rep))
	}

	assignGroups(data, captured)

	if err := data.Validate(); err != nil {
		return nil, rep, err
	}

	c.logger.Info("captured session",
		zap.Int("windows", len(data.Windows)),
		zap.Int("groups", data.Groups.Len()))
	return data, rep, nil
}

func (c *Capturer) window(ctx context.Context, cl hypr.Client, rep *report.Report) session.WindowInfo {
	w := session.WindowInfo{
		Address:    cl.Address,
		Class:      cl.Class,
		Title:      cl.Title,
		PID:        cl.PID,
		Position:   session.Position{X: cl.At[0], Y: cl.At[1]},
		Size:       session.Size{Width: cl.Size[0], Height: cl.Size[1]},
		Floating:   cl.Floating,
		Fullscreen: cl.Fullscreen(),
		Workspace:  session.Workspace{ID: cl.Workspace.ID, Name: cl.Workspace.Name},
		Swallowing: option.Some(cl.Swallowing).Filter(session.IsSwallowingAddress),
	}

	if cl.PID > 0 {
		if argv, err := c.proc.Cmdline(cl.PID); err != nil {
			c.partial(rep, w, "launch command", err)
		} else {
			w.LaunchCommand = shellescape.QuoteCommand(argv)
		}
	} else {
		rep.Warning("%s (%s): no process id, launch command unknown", w.Class, w.Address)
	}

	if c.terminals[strings.ToLower(cl.Class)] && cl.PID > 0 {
		c.terminalState(&w, rep)
	}

	if c.browser != nil && c.browser.Supports(cl.Class) {
		if tabs, err := c.browser.CaptureTabs(ctx, w); err != nil {
			c.partial(rep, w, "browser tabs", err)
		} else {
			w.BrowserSession = option.Some(tabs)
		}
	}

	if c.neovide != nil && strings.EqualFold(cl.Class, "neovide") {
		if path, err := c.neovide.SaveSession(ctx, w); err != nil {
			c.partial(rep, w, "editor session", err)
		} else {
			w.NeovideSession = option.Some(path)
		}
	}

	return w
}

// terminalState records the directory and foreground program of the
// terminal's shell, which is the terminal's first child process.
func (c *Capturer) terminalState(w *session.WindowInfo, rep *report.Report) {
	shell := w.PID
	if children, err := c.proc.Children(w.PID); err == nil && len(children) > 0 {
		shell = children[0]
	}

	if dir, err := c.proc.Cwd(shell); err != nil {
		c.partial(rep, *w, "working directory", err)
	} else {
		w.WorkingDirectory = option.Some(dir)
	}

	if shell == w.PID {
		return
	}
	children, err := c.proc.Children(shell)
	if err != nil || len(children) == 0 {
		return
	}
	argv, err := c.proc.Cmdline(children[len(children)-1])
	if err != nil {
		c.partial(rep, *w, "running program", err)
		return
	}
	w.RunningProgram = option.Some(session.RunningProgram{
		Name:         filepath.Base(argv[0]),
		Args:         argv,
		ShellCommand: option.Some(shellescape.QuoteCommand(argv)),
	})
}

func (c *Capturer) partial(rep *report.Report, w session.WindowInfo, what string, err error) {
	c.logger.Debug("partial capture", zap.String("window", w.Address), zap.String("field", what), zap.Error(err))
	rep.Warning("%s (%s): could not capture %s: %v", w.Class, w.Address, what, err)
}

// assignGroups records tab groups. The group id is the address of the first
// captured member in compositor order.
func assignGroups(data *session.SessionData, captured map[string]hypr.Client) {
	index := make(map[string]int, len(data.Windows))
	for i, w := range data.Windows {
		index[w.Address] = i
	}

	for i := range data.Windows {
		cl := captured[data.Windows[i].Address]
		if len(cl.Grouped) == 0 || data.Windows[i].GroupID.IsSome() {
			continue
		}

		var members []string
		for _, addr := range cl.Grouped {
			if j, ok := index[addr]; ok && data.Windows[j].GroupID.IsNone() {
				members = append(members, addr)
			}
		}
		if len(members) == 0 {
			continue
		}

		id := members[0]
		for _, addr := range members {
			data.Windows[index[addr]].GroupID = option.Some(id)
			data.Groups.Add(id, addr)
		}
	}
}
