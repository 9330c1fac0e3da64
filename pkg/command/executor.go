package command

import (
	"context"
)

// CommandExecutor defines the interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command and returns error only
	Execute(ctx context.Context, name string, args ...string) error

	// ExecuteWithOutput runs a command and returns output and error
	ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error)
}

// Launcher starts shell command lines as detached processes.
type Launcher interface {
	// StartDetached runs commandLine through the shell in a new session and
	// returns as soon as the process has started. The child is never waited on.
	StartDetached(commandLine string) (int, error)
}
