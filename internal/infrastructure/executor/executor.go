package executor

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandError reports a command that ran and exited unsuccessfully.
type CommandError struct {
	Stage    string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Stage, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func commandError(stage string, err error, stderr string) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to run %s: %w", stage, err)
	}

	return &CommandError{
		Stage:    stage,
		ExitCode: exitErr.ExitCode(),
		Stderr:   stderr,
		Err:      err,
	}
}
