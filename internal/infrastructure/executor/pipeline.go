package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

var ErrEmptyPipeline = errors.New("pipeline has no stages")

// Stage is one process of a pipeline.
type Stage struct {
	Name string
	Path string
	Args []string
	// Stdin is only read by the first stage; later stages read the output of
	// the stage before them.
	Stdin io.Reader
}

// Pipeline connects processes stdout-to-stdin without going through a shell.
type Pipeline struct{}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Run starts every stage, writes the output of the last one to out and waits
// for all of them. The error returned belongs to the earliest failing stage,
// so a failed producer is reported even when the stages after it succeed.
func (p *Pipeline) Run(ctx context.Context, out io.Writer, stages ...Stage) error {
	if len(stages) == 0 {
		return ErrEmptyPipeline
	}

	cmds := make([]*exec.Cmd, len(stages))
	stderrs := make([]*strings.Builder, len(stages))

	for i, stage := range stages {
		cmd := exec.CommandContext(ctx, stage.Path, stage.Args...)
		stderrs[i] = &strings.Builder{}
		cmd.Stderr = stderrs[i]
		cmds[i] = cmd
	}

	cmds[0].Stdin = stages[0].Stdin
	cmds[len(cmds)-1].Stdout = out

	var pipeEnds []*os.File
	closePipes := func() {
		for _, f := range pipeEnds {
			_ = f.Close()
		}
	}

	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes()
			return fmt.Errorf("failed to create pipe: %w", err)
		}

		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		pipeEnds = append(pipeEnds, r, w)
	}

	started := 0
	var startErr error
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			startErr = fmt.Errorf("failed to start %s: %w", stages[i].Name, err)
			break
		}
		started++
	}

	// The children hold their own descriptors; the parent copies must go or
	// readers never see EOF.
	closePipes()

	if startErr != nil {
		for _, cmd := range cmds[:started] {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
		return startErr
	}

	errs := make([]error, len(cmds))
	for i, cmd := range cmds {
		errs[i] = cmd.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return commandError(stages[i].Name, err, stderrs[i].String())
		}
	}

	return nil
}
