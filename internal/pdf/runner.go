package pdf

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes an external tool.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs tools as child processes.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Available reports whether tool runs and exits zero for --version.
func Available(ctx context.Context, r Runner, tool string) bool {
	_, _, err := r.Run(ctx, tool, "--version")
	return err == nil
}
