package ratchet

import (
	"log/slog"
	"maps"
	"time"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

// RunOptions configures a Runner.
type RunOptions struct {
	// Baselines overrides rule baselines by rule ID. An override can only lower a
	// rule's baseline; the smaller of the two applies.
	Baselines map[string]domain.Baseline

	// Logger receives progress and skipped-file diagnostics.
	Logger *slog.Logger

	// Timeout is the maximum duration for the whole run.
	// Zero or negative values use DefaultTimeout.
	Timeout time.Duration

	// ToolRunner starts external tool checks. Defaults to toolcheck.DefaultRunner().
	ToolRunner toolcheck.Runner

	// Workers specifies the number of rules checked concurrently.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// RunOption is a functional option for configuring a Runner.
type RunOption func(*RunOptions)

// WithWorkers sets the number of rules checked concurrently.
// Negative values are ignored.
func WithWorkers(n int) RunOption {
	return func(o *RunOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the run timeout.
// Negative values are ignored.
func WithTimeout(d time.Duration) RunOption {
	return func(o *RunOptions) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithBaselines sets baseline overrides keyed by rule ID.
func WithBaselines(baselines map[string]domain.Baseline) RunOption {
	return func(o *RunOptions) {
		o.Baselines = maps.Clone(baselines)
	}
}

// WithToolRunner sets the process runner used by tool checks.
func WithToolRunner(runner toolcheck.Runner) RunOption {
	return func(o *RunOptions) {
		if runner != nil {
			o.ToolRunner = runner
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) RunOption {
	return func(o *RunOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func newOptions(opts []RunOption) *RunOptions {
	options := &RunOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.ToolRunner == nil {
		options.ToolRunner = toolcheck.DefaultRunner()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return options
}
