package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// StandardExecutor implements CommandExecutor and Launcher using os/exec
type StandardExecutor struct {
	shell string
}

// NewStandardExecutor creates a new StandardExecutor
func NewStandardExecutor() *StandardExecutor {
	return &StandardExecutor{shell: "/bin/sh"}
}

// Execute runs a command and returns error only
func (e *StandardExecutor) Execute(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ExecuteWithOutput runs a command and returns output and error
func (e *StandardExecutor) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("command failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// StartDetached starts commandLine with the shell in its own session so it
// outlives this process. Standard streams are detached.
func (e *StandardExecutor) StartDetached(commandLine string) (int, error) {
	if strings.TrimSpace(commandLine) == "" {
		return 0, fmt.Errorf("empty command line")
	}

	cmd := exec.Command(e.shell, "-c", commandLine)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %q: %w", commandLine, err)
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
