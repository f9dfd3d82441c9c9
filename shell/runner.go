package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// ExecRunner runs commands as child processes whose output goes straight
// to the configured writers.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that inherits the console.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// CreateCmd creates an *exec.Cmd with the given directory and command
func (r *ExecRunner) CreateCmd(ctx context.Context, dir string, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd
}

func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := r.CreateCmd(ctx, dir, name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("error executing command '%s %s': %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// Script runs a shell snippet through sh -c.
func Script(ctx context.Context, r Runner, dir, script string) error {
	return r.Run(ctx, dir, "sh", "-c", script)
}
