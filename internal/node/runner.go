package node

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/execabs"
)

// Command describes a single child-process invocation
type Command struct {
	Path string
	Args []string
	Dir  string   // Working directory; empty means the current one
	Env  []string // Full environment; nil inherits the parent's
}

// String renders the command line for error messages
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner executes a command to completion and returns its standard output
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands as real child processes
type ExecRunner struct{}

// Run blocks until the child exits
func (ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	cmd := execabs.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := lastLine(string(exitErr.Stderr)); msg != "" {
				return string(out), fmt.Errorf("%s: %w: %s", c, err, msg)
			}
		}
		return string(out), fmt.Errorf("%s: %w", c, err)
	}

	return string(out), nil
}

// lastLine returns the last non-blank line of s, which is where npm prints its error summary
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
