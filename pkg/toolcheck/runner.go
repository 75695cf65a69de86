package toolcheck

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner is the narrow interface checks use to start external processes.
// exitCode is meaningful only when err is nil.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (exitCode int, combined []byte, err error)
}

// CommandRunner runs commands with exec.CommandContext, collecting stdout and stderr
// into a single buffer in the order they were written.
type CommandRunner struct{}

// Run starts name in dir. A non-zero exit is reported through exitCode, not err.
func (CommandRunner) Run(ctx context.Context, dir, name string, args ...string) (int, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err == nil {
		return 0, combined.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, combined.Bytes(), ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), combined.Bytes(), nil
	}
	return -1, combined.Bytes(), err
}

// IsNotFound reports whether err means the command binary does not exist.
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// DefaultRunner returns a CommandRunner.
func DefaultRunner() Runner {
	return CommandRunner{}
}
