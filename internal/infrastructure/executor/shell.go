package executor

import (
	"context"
	"os/exec"
	"strings"
)

// Shell runs command-lines through a POSIX shell.
type Shell struct {
	path string
}

func NewShell() *Shell {
	return &Shell{path: "sh"}
}

func (s *Shell) Run(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, s.path, "-c", command)

	var errBuf strings.Builder
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return commandError(s.path, err, errBuf.String())
	}

	return nil
}
