package collector

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes external commands for the adapters that parse tool
// output. The indirection keeps adapter parsing testable against canned
// output without spawning real processes.
type Runner interface {
	// Run executes a command and returns its stdout. A missing binary,
	// non-zero exit, or exceeded context deadline all surface as errors.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// LookPath reports whether the named binary is on PATH.
	LookPath(name string) bool
}

type execRunner struct{}

// NewRunner returns the production Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

func (execRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
