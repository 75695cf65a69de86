package ratchet

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

const (
	// DefaultTimeout bounds a whole run, tool checks included.
	DefaultTimeout = 15 * time.Minute
	// MaxWorkers is the maximum number of rules checked concurrently.
	MaxWorkers = 1024
)

var (
	// ErrRunCancelled is returned when the run context is cancelled.
	ErrRunCancelled = errors.New("ratchet: run cancelled")
	// ErrRunTimeout is returned when the run exceeds its timeout.
	ErrRunTimeout = errors.New("ratchet: run timeout")
)

// RuleResult is the outcome of checking one rule.
type RuleResult struct {
	Rule    Rule
	Verdict Verdict
	// Warnings do not affect the verdict.
	Warnings []string
	// Err is set when the rule could not be checked, for example a missing root.
	Err      error
	Duration time.Duration
}

// Failed reports whether the rule exceeded its baseline or could not be checked.
func (r RuleResult) Failed() bool {
	return r.Err != nil || !r.Verdict.Passed
}

// Report collects every result of a run in rule-table order.
type Report struct {
	Rules    []RuleResult
	Tools    []toolcheck.Result
	Duration time.Duration
}

// Passed reports whether every rule and tool check passed.
func (r *Report) Passed() bool {
	return r.FailedCount() == 0
}

// FailedCount returns the number of failed rules and tool checks.
func (r *Report) FailedCount() int {
	failed := 0
	for _, result := range r.Rules {
		if result.Failed() {
			failed++
		}
	}
	for _, result := range r.Tools {
		if !result.Passed {
			failed++
		}
	}
	return failed
}

// TotalViolations sums the chunks found by all rules.
func (r *Report) TotalViolations() int {
	total := 0
	for _, result := range r.Rules {
		total += result.Verdict.Found
	}
	return total
}

// Runner checks a rule table, in parallel, against one target.
type Runner struct {
	options *RunOptions
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunOption) *Runner {
	return &Runner{options: newOptions(opts)}
}

// Run checks every rule and tool check. Results keep the order of rules and checks
// regardless of completion order. A rule that cannot be checked is recorded as failed
// and the run continues. On timeout or cancellation the partial report is returned
// with ErrRunTimeout or ErrRunCancelled.
func (r *Runner) Run(ctx context.Context, target Target, rules []Rule, checks []toolcheck.Check) (*Report, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()

	if target.Logger == nil {
		target.Logger = r.options.Logger
	}

	report := &Report{
		Rules: make([]RuleResult, len(rules)),
		Tools: make([]toolcheck.Result, len(checks)),
	}

	workers := r.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	for i, rule := range rules {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				report.Rules[i] = RuleResult{Rule: rule, Err: err}
				return nil
			}
			defer sem.Release(1)

			report.Rules[i] = CheckRule(gCtx, target, rule, r.baselineFor(rule))
			return nil
		})
	}

	for i, check := range checks {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				report.Tools[i] = toolcheck.Result{Check: check, Message: check.Name + ": not run: " + err.Error()}
				return nil
			}
			defer sem.Release(1)

			dir := check.Dir
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(target.Root, dir)
			}
			result, _ := toolcheck.Run(gCtx, r.options.ToolRunner, dir, check)
			report.Tools[i] = result
			return nil
		})
	}

	_ = g.Wait()
	report.Duration = time.Since(startTime)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return report, ErrRunTimeout
		}
		return report, ErrRunCancelled
	}

	return report, nil
}

func (r *Runner) baselineFor(rule Rule) domain.Baseline {
	override, ok := r.options.Baselines[rule.ID]
	if ok && override < rule.Baseline {
		return override
	}
	return rule.Baseline
}

// CheckRule runs one rule against target and compares its chunks with baseline.
func CheckRule(ctx context.Context, target Target, rule Rule, baseline domain.Baseline) RuleResult {
	start := time.Now()
	result := RuleResult{Rule: rule}

	findings, err := rule.Matcher.Find(ctx, target)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		result.Verdict = Verdict{Allowed: baseline}
		target.logger().Warn("rule could not be checked", "rule", rule.ID, "error", err)
		return result
	}

	result.Verdict = Compare(findings.Chunks, baseline)
	result.Warnings = findings.Warnings
	for _, warning := range findings.Warnings {
		target.logger().Warn(warning, "rule", rule.ID)
	}
	target.logger().Debug("rule checked",
		"rule", rule.ID,
		"found", result.Verdict.Found,
		"allowed", int(baseline),
		"duration", result.Duration,
	)
	return result
}
