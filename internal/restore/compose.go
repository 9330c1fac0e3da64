package restore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/result"
)

// ErrNoComposition means a swallowing pair cannot be merged into one command;
// the caller launches both windows independently.
var ErrNoComposition = errors.New("no combined launch command possible")

// terminalComposers holds the terminals whose command line we know how to
// build. The list is explicit; terminals are never inferred.
var terminalComposers = map[string]func(dir, script string) []string{
	"kitty": func(dir, script string) []string {
		args := []string{"kitty"}
		if dir != "" {
			args = append(args, "--directory", shellescape.Quote(dir))
		}
		return append(args, "sh", "-c", shellescape.Quote(script))
	},
}

// Composer turns captured windows into shell command lines.
type Composer struct {
	terminal string
}

// NewComposer creates a composer for the configured terminal class.
func NewComposer(terminal string) *Composer {
	return &Composer{terminal: strings.ToLower(strings.TrimSpace(terminal))}
}

// Terminals returns the terminal classes whose state is worth capturing: the
// configured terminal when a composer exists for it, otherwise none.
func (c *Composer) Terminals() []string {
	if _, ok := terminalComposers[c.terminal]; !ok {
		return []string{}
	}
	return []string{c.terminal}
}

// ComposeSingle returns the window's launch command; false means the window
// has none and must be skipped.
func (c *Composer) ComposeSingle(w session.WindowInfo) (string, bool) {
	cmd := strings.TrimSpace(w.LaunchCommand)
	return cmd, cmd != ""
}

// ComposeSwallowingPair builds one command that opens the swallowed terminal
// in its captured directory and runs the swallowing application inside a
// shell that stays open after the application exits.
func (c *Composer) ComposeSwallowingPair(swallowing, swallowed session.WindowInfo) result.Result[string] {
	class := strings.ToLower(swallowed.Class)
	build, ok := terminalComposers[class]
	if !ok || class != c.terminal {
		return result.Err[string](fmt.Errorf("%w: terminal %q is not supported", ErrNoComposition, swallowed.Class))
	}

	appCmd := strings.TrimSpace(swallowing.LaunchCommand)
	if appCmd == "" {
		return result.Err[string](fmt.Errorf("%w: window %s has no launch command", ErrNoComposition, swallowing.Address))
	}

	dir := swallowed.WorkingDirectory.UnwrapOr("")
	script := appCmd + `; exec "$SHELL"`
	if dir != "" {
		script = "cd " + shellescape.Quote(dir) + " && " + script
	}

	return result.Ok(strings.Join(build(dir, script), " "))
}
