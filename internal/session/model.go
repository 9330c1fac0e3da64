// Package session defines the captured session records and their on-disk store.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/d-kuro/hyprsession/pkg/option"
)

// NullAddress is the address Hyprland reports when a window swallows nothing.
const NullAddress = "0x0"

// Position is a window's top-left corner in layout coordinates.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a window's extent in layout coordinates.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Workspace identifies the workspace a window was captured on.
type Workspace struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// RunningProgram is the foreground program of a terminal at capture time.
type RunningProgram struct {
	Name         string                `json:"name" yaml:"name"`
	Args         []string              `json:"args" yaml:"args"`
	ShellCommand option.Option[string] `json:"shell_command" yaml:"shell_command,omitempty"`
}

// BrowserSession holds the tabs captured from a browser window.
type BrowserSession struct {
	URLs   []string `json:"urls" yaml:"urls"`
	Method string   `json:"method" yaml:"method"`
}

// WindowInfo is one captured window.
type WindowInfo struct {
	Address          string                        `json:"address" yaml:"address"`
	Class            string                        `json:"class" yaml:"class"`
	Title            string                        `json:"title" yaml:"title"`
	PID              int                           `json:"pid" yaml:"pid"`
	Position         Position                      `json:"position" yaml:"position"`
	Size             Size                          `json:"size" yaml:"size"`
	Floating         bool                          `json:"floating" yaml:"floating"`
	Fullscreen       bool                          `json:"fullscreen" yaml:"fullscreen"`
	Workspace        Workspace                     `json:"workspace" yaml:"workspace"`
	GroupID          option.Option[string]         `json:"group_id" yaml:"group_id,omitempty"`
	Swallowing       option.Option[string]         `json:"swallowing" yaml:"swallowing,omitempty"`
	LaunchCommand    string                        `json:"launch_command" yaml:"launch_command"`
	WorkingDirectory option.Option[string]         `json:"working_directory" yaml:"working_directory,omitempty"`
	RunningProgram   option.Option[RunningProgram] `json:"running_program" yaml:"running_program,omitempty"`
	BrowserSession   option.Option[BrowserSession] `json:"browser_session" yaml:"browser_session,omitempty"`
	NeovideSession   option.Option[string]         `json:"neovide_session" yaml:"neovide_session,omitempty"`
}

// UnmarshalJSON decodes a window, treating the legacy "0x0" swallowing
// sentinel as an absent value.
func (w *WindowInfo) UnmarshalJSON(data []byte) error {
	type plain WindowInfo
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*w = WindowInfo(decoded)
	w.Swallowing = w.Swallowing.Filter(IsSwallowingAddress)
	return nil
}

// IsSwallowingAddress reports whether addr refers to a real window.
func IsSwallowingAddress(addr string) bool {
	return addr != "" && addr != NullAddress
}

// GroupMapping maps a group id to its ordered member addresses. Group ids keep
// the order in which they were first added, and that order survives JSON
// round-trips.
type GroupMapping struct {
	order   []string
	members map[string][]string
}

// NewGroupMapping returns an empty GroupMapping.
func NewGroupMapping() GroupMapping {
	return GroupMapping{members: make(map[string][]string)}
}

// Add appends address to the group id, creating the group if needed.
func (g *GroupMapping) Add(id, address string) {
	if g.members == nil {
		g.members = make(map[string][]string)
	}
	if _, ok := g.members[id]; !ok {
		g.order = append(g.order, id)
	}
	g.members[id] = append(g.members[id], address)
}

// IDs returns group ids in discovery order.
func (g GroupMapping) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Members returns the member addresses of a group.
func (g GroupMapping) Members(id string) []string {
	members := g.members[id]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// Len returns the number of groups.
func (g GroupMapping) Len() int {
	return len(g.order)
}

// MarshalJSON encodes the mapping as an object whose keys follow discovery order.
func (g GroupMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		members, err := json.Marshal(g.members[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(members)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of id → addresses, preserving key order.
func (g *GroupMapping) UnmarshalJSON(data []byte) error {
	*g = NewGroupMapping()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("groups: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("groups: expected string key, got %v", tok)
		}
		var members []string
		if err := dec.Decode(&members); err != nil {
			return fmt.Errorf("groups[%s]: %w", id, err)
		}
		if _, dup := g.members[id]; dup {
			return fmt.Errorf("groups: duplicate group id %s", id)
		}
		g.order = append(g.order, id)
		g.members[id] = members
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the mapping as a list of groups in discovery order.
func (g GroupMapping) MarshalYAML() (any, error) {
	type group struct {
		ID      string   `yaml:"id"`
		Members []string `yaml:"members"`
	}
	out := make([]group, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, group{ID: id, Members: g.members[id]})
	}
	return out, nil
}

// SessionData is a captured session. It is never mutated after capture.
type SessionData struct {
	Timestamp       time.Time    `json:"timestamp" yaml:"timestamp"`
	ActiveWorkspace int          `json:"active_workspace" yaml:"active_workspace"`
	Windows         []WindowInfo `json:"windows" yaml:"windows"`
	Groups          GroupMapping `json:"groups" yaml:"groups"`
}

// WindowsByAddress indexes windows by address. A later duplicate wins.
func WindowsByAddress(windows []WindowInfo) map[string]WindowInfo {
	index := make(map[string]WindowInfo, len(windows))
	for _, w := range windows {
		index[w.Address] = w
	}
	return index
}

// Validate checks the structural invariants of a session: addresses are
// unique, group members exist and declare their group, and every group id is
// the address of one of its members.
func (s *SessionData) Validate() error {
	index := make(map[string]WindowInfo, len(s.Windows))
	for _, w := range s.Windows {
		if strings.TrimSpace(w.Address) == "" {
			return fmt.Errorf("%w: window %q has an empty address", ErrValidation, w.Class)
		}
		if _, dup := index[w.Address]; dup {
			return fmt.Errorf("%w: duplicate window address %s", ErrValidation, w.Address)
		}
		index[w.Address] = w
	}

	for _, id := range s.Groups.IDs() {
		leaderFound := false
		for _, addr := range s.Groups.Members(id) {
			w, ok := index[addr]
			if !ok {
				return fmt.Errorf("%w: group %s references unknown window %s", ErrValidation, id, addr)
			}
			if w.GroupID.UnwrapOr("") != id {
				return fmt.Errorf("%w: window %s is listed in group %s but declares %q", ErrValidation, addr, id, w.GroupID.UnwrapOr(""))
			}
			if addr == id {
				leaderFound = true
			}
		}
		if !leaderFound {
			return fmt.Errorf("%w: group id %s is not the address of any member", ErrValidation, id)
		}
	}

	return nil
}

// Encode serialises a session to its canonical JSON form.
func Encode(s *SessionData) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a session from its canonical JSON form.
func Decode(data []byte) (*SessionData, error) {
	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Windows == nil {
		s.Windows = []WindowInfo{}
	}
	return &s, nil
}
