package cli

import (
	"errors"
	"fmt"

	"kokocares/keywords/pkg/keywords"
)

// Exit statuses used by the commands.
const (
	ExitMatched    = 0
	ExitNotMatched = 1
	ExitFailure    = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitError asks the process to exit with Status. A nil Err exits silently.
type ExitError struct {
	Status int
	Err    error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Status)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitStatusFor maps a match result code to a process exit status.
func ExitStatusFor(code keywords.Code) int {
	switch {
	case code == keywords.CodeMatched:
		return ExitMatched
	case code == keywords.CodeNotMatched:
		return ExitNotMatched
	default:
		return ExitFailure
	}
}

// ExitStatus returns the status err asks for: 0 for nil, the ExitError's
// status when err wraps one, and 1 otherwise.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Status
	}
	return 1
}
