// Package hypr wraps the hyprctl control interface of the Hyprland compositor.
package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/command"
)

// Client is one window as reported by `hyprctl -j clients`.
type Client struct {
	Address        string          `json:"address"`
	Mapped         bool            `json:"mapped"`
	Hidden         bool            `json:"hidden"`
	At             [2]int          `json:"at"`
	Size           [2]int          `json:"size"`
	Workspace      WorkspaceRef    `json:"workspace"`
	Floating       bool            `json:"floating"`
	Monitor        int             `json:"monitor"`
	Class          string          `json:"class"`
	Title          string          `json:"title"`
	InitialClass   string          `json:"initialClass"`
	InitialTitle   string          `json:"initialTitle"`
	PID            int             `json:"pid"`
	Xwayland       bool            `json:"xwayland"`
	Pinned         bool            `json:"pinned"`
	FullscreenRaw  json.RawMessage `json:"fullscreen"`
	Grouped        []string        `json:"grouped"`
	Swallowing     string          `json:"swallowing"`
	FocusHistoryID int             `json:"focusHistoryID"`
}

// Fullscreen reports whether the client is fullscreen. Older Hyprland
// releases encode the field as a bool, newer ones as a mode number.
func (c Client) Fullscreen() bool {
	raw := strings.TrimSpace(string(c.FullscreenRaw))
	switch raw {
	case "", "null", "false", "0":
		return false
	case "true":
		return true
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n > 0
}

// WorkspaceRef identifies a workspace.
type WorkspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// HyprCommand runs hyprctl through a command executor.
type HyprCommand struct {
	command  string
	executor command.CommandExecutor
}

// NewHyprCommand creates a HyprCommand. An empty command defaults to "hyprctl".
func NewHyprCommand(cmd string, executor command.CommandExecutor) *HyprCommand {
	if cmd == "" {
		cmd = "hyprctl"
	}
	if executor == nil {
		executor = command.NewStandardExecutor()
	}
	return &HyprCommand{command: cmd, executor: executor}
}

// Clients returns every window known to the compositor.
func (h *HyprCommand) Clients(ctx context.Context) ([]Client, error) {
	output, err := h.executor.ExecuteWithOutput(ctx, h.command, "-j", "clients")
	if err != nil {
		return nil, fmt.Errorf("hyprctl clients failed: %w", err)
	}

	var clients []Client
	if err := json.Unmarshal([]byte(output), &clients); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl clients output: %w", err)
	}
	return clients, nil
}

// ActiveWorkspace returns the focused workspace.
func (h *HyprCommand) ActiveWorkspace(ctx context.Context) (WorkspaceRef, error) {
	output, err := h.executor.ExecuteWithOutput(ctx, h.command, "-j", "activeworkspace")
	if err != nil {
		return WorkspaceRef{}, fmt.Errorf("hyprctl activeworkspace failed: %w", err)
	}

	var ws WorkspaceRef
	if err := json.Unmarshal([]byte(output), &ws); err != nil {
		return WorkspaceRef{}, fmt.Errorf("failed to parse hyprctl activeworkspace output: %w", err)
	}
	return ws, nil
}

// Dispatch runs `hyprctl dispatch <args...>`. hyprctl exits zero even when a
// dispatcher is rejected, so anything other than "ok" on stdout is an error.
func (h *HyprCommand) Dispatch(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("dispatch requires a dispatcher name")
	}

	output, err := h.executor.ExecuteWithOutput(ctx, h.command, append([]string{"dispatch"}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: hyprctl dispatch %s: %v", session.ErrExternalCommand, strings.Join(args, " "), err)
	}

	reply := strings.TrimSpace(output)
	if reply != "" && !strings.EqualFold(reply, "ok") {
		return fmt.Errorf("%w: hyprctl dispatch %s: %s", session.ErrExternalCommand, strings.Join(args, " "), reply)
	}
	return nil
}

// ToggleGroup turns the active window into a group, or dissolves its group.
func (h *HyprCommand) ToggleGroup(ctx context.Context) error {
	return h.Dispatch(ctx, "togglegroup")
}

// LockActiveGroup stops other windows from joining the active group.
func (h *HyprCommand) LockActiveGroup(ctx context.Context) error {
	return h.Dispatch(ctx, "lockactivegroup", "lock")
}

// SwitchWorkspace focuses the workspace with the given id.
func (h *HyprCommand) SwitchWorkspace(ctx context.Context, id int) error {
	return h.Dispatch(ctx, "workspace", strconv.Itoa(id))
}
