package capture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ProcessInspector reads the state of running processes.
type ProcessInspector interface {
	Cmdline(pid int) ([]string, error)
	Cwd(pid int) (string, error)
	Children(pid int) ([]int, error)
}

// ProcFS inspects processes through a procfs mount.
type ProcFS struct {
	root string
}

// NewProcFS returns an inspector rooted at root, or /proc when root is empty.
func NewProcFS(root string) *ProcFS {
	if root == "" {
		root = "/proc"
	}
	return &ProcFS{root: root}
}

func (p *ProcFS) path(pid int, elem ...string) string {
	return filepath.Join(append([]string{p.root, strconv.Itoa(pid)}, elem...)...)
}

// Cmdline returns the argument vector of pid.
func (p *ProcFS) Cmdline(pid int) ([]string, error) {
	raw, err := os.ReadFile(p.path(pid, "cmdline"))
	if err != nil {
		return nil, fmt.Errorf("failed to read cmdline of %d: %w", pid, err)
	}
	raw = bytes.TrimRight(raw, "\x00")
	if len(raw) == 0 {
		return nil, fmt.Errorf("process %d has an empty cmdline", pid)
	}
	return strings.Split(string(raw), "\x00"), nil
}

// Cwd returns the working directory of pid.
func (p *ProcFS) Cwd(pid int) (string, error) {
	dir, err := os.Readlink(p.path(pid, "cwd"))
	if err != nil {
		return "", fmt.Errorf("failed to read cwd of %d: %w", pid, err)
	}
	return dir, nil
}

// Children returns the direct children of pid in ascending order. It reads
// the per-task children lists and falls back to scanning every process's
// parent pid when the kernel does not provide them.
func (p *ProcFS) Children(pid int) ([]int, error) {
	tasks, err := os.ReadDir(p.path(pid, "task"))
	if err == nil {
		var children []int
		found := false
		for _, task := range tasks {
			raw, err := os.ReadFile(p.path(pid, "task", task.Name(), "children"))
			if err != nil {
				continue
			}
			found = true
			children = append(children, parsePIDs(string(raw))...)
		}
		if found {
			sort.Ints(children)
			return children, nil
		}
	}

	return p.scanChildren(pid)
}

func (p *ProcFS) scanChildren(pid int) ([]int, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.root, err)
	}

	var children []int
	for _, entry := range entries {
		child, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		stat, err := os.ReadFile(p.path(child, "stat"))
		if err != nil {
			continue
		}
		if ppid, ok := parentFromStat(string(stat)); ok && ppid == pid {
			children = append(children, child)
		}
	}
	sort.Ints(children)
	return children, nil
}

// parentFromStat extracts the ppid field of /proc/<pid>/stat. The command
// name may contain spaces and parentheses, so parsing starts after the last
// closing parenthesis.
func parentFromStat(stat string) (int, bool) {
	end := strings.LastIndexByte(stat, ')')
	if end < 0 {
		return 0, false
	}
	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return 0, false
	}
	ppid, err := strconv.Atoi(fields[1])
	return ppid, err == nil
}

func parsePIDs(s string) []int {
	var pids []int
	for _, f := range strings.Fields(s) {
		if pid, err := strconv.Atoi(f); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids
}
