// Package toolcheck wraps external tools, such as a type checker or a linter, as checks
// that pass only when the tool exits cleanly. The tool output is kept verbatim for triage;
// the only interpretation applied is a count of lines that look like error records.
package toolcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool run.
const DefaultTimeout = 5 * time.Minute

const ruler = "================================================================================"

// Check describes one external tool invocation.
type Check struct {
	ID          string
	Name        string
	Description string
	Command     string
	Args        []string
	// Dir is the working directory, relative to the project root unless absolute.
	Dir string
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// CommandLine returns the command and its arguments joined by spaces.
func (c Check) CommandLine() string {
	return strings.Join(append([]string{c.Command}, c.Args...), " ")
}

// Result is the outcome of running a Check.
type Result struct {
	Check      Check
	Passed     bool
	ExitCode   int
	Output     string
	ErrorLines []string
	// Message is the failure diagnostic; empty when Passed.
	Message  string
	Duration time.Duration
}

// Run executes check in dir under its timeout. Every failure mode, including a missing
// binary or a timeout, is reported as a failed Result rather than an error; only
// cancellation of ctx itself is returned as an error.
func Run(ctx context.Context, runner Runner, dir string, check Check) (Result, error) {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	exitCode, combined, err := runner.Run(runCtx, dir, check.Command, check.Args...)
	result := Result{
		Check:    check,
		ExitCode: exitCode,
		Output:   string(combined),
		Duration: time.Since(start),
	}

	switch {
	case err == nil && exitCode == 0:
		result.Passed = true
		return result, nil
	case err == nil:
		result.ErrorLines = ErrorLines(result.Output)
		result.Message = FormatFailure(check.Name, len(result.ErrorLines), result.Output)
		return result, nil
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		result.Message = fmt.Sprintf("%s: %q timed out after %s", check.Name, check.CommandLine(), timeout)
		return result, nil
	case IsNotFound(err):
		result.Message = fmt.Sprintf("%s: command %q not found; install it or remove the check", check.Name, check.Command)
		return result, nil
	default:
		result.Message = fmt.Sprintf("%s: failed to run %q: %v", check.Name, check.CommandLine(), err)
		return result, nil
	}
}

// ErrorLines returns the output lines that look like error records: lines starting
// with "error[" or containing "error:" in any case.
func ErrorLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "error[") || strings.Contains(strings.ToLower(line), "error:") {
			lines = append(lines, line)
		}
	}
	return lines
}

// FormatFailure builds the diagnostic for a tool that exited non-zero, embedding its
// raw output between rulers.
func FormatFailure(name string, errorCount int, output string) string {
	lines := []string{
		fmt.Sprintf("%s found %d error(s):", name, errorCount),
		"",
		fmt.Sprintf("Full %s output:", name),
		ruler,
		output,
		ruler,
	}
	return strings.Join(lines, "\n")
}
