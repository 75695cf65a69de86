// Package report renders a ratchet run for people (colored text) and for machines (JSONL).
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/specvital/ratchet/pkg/ratchet"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

// HumanOptions configures WriteHuman.
type HumanOptions struct {
	Color bool
	// Verbose lists the chunks of passing rules too, not only of failing ones.
	Verbose bool
}

// WriteHuman writes the violation listing, warnings, tool failures and the summary.
// Failing rules are rendered with Verdict.Message, so the chunk list is never truncated
// and context lines appear under their chunk.
func WriteHuman(w io.Writer, report *ratchet.Report, opts HumanOptions) error {
	bw := bufio.NewWriter(w)
	p := painter(opts.Color)

	first := true
	for _, result := range report.Rules {
		if len(result.Verdict.Chunks) == 0 || (!result.Failed() && !opts.Verbose) {
			continue
		}
		if !first {
			fmt.Fprintln(bw)
		}
		first = false

		if result.Failed() {
			fmt.Fprintln(bw, p.paint(styleRed, result.Rule.ID))
			fmt.Fprint(bw, result.Verdict.Message(result.Rule.Name, result.Rule.Description))
			continue
		}
		fmt.Fprintln(bw, p.paint(styleBold, result.Rule.ID))
		fmt.Fprintf(bw, "%s: %s (budget: %d)\n", result.Rule.Name, violations(result.Verdict.Found), result.Verdict.Allowed)
		fmt.Fprint(bw, ratchet.FormatChunks(result.Verdict.Chunks))
	}

	for _, result := range report.Tools {
		if result.Passed {
			continue
		}
		if !first {
			fmt.Fprintln(bw)
		}
		first = false
		fmt.Fprintf(bw, "%s\n", result.Message)
	}

	var warnings []string
	for _, result := range report.Rules {
		for _, warning := range result.Warnings {
			warnings = append(warnings, result.Rule.ID+": "+warning)
		}
	}
	if len(warnings) > 0 {
		if !first {
			fmt.Fprintln(bw)
		}
		first = false
		fmt.Fprintln(bw, p.paint(styleBold, "Warnings:"))
		fmt.Fprintln(bw)
		for _, warning := range warnings {
			fmt.Fprintf(bw, "  %s\n", p.paint(styleDim, warning))
		}
	}

	if len(report.Rules) == 0 && len(report.Tools) == 0 {
		fmt.Fprintln(bw, "No rules checked")
		return bw.Flush()
	}

	if !first {
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, p.paint(styleBold, "Summary:"))
	fmt.Fprintln(bw)
	for _, result := range report.Rules {
		fmt.Fprintf(bw, "  %s %s: %s\n", mark(p, !result.Failed()), result.Rule.ID, ruleStatus(result))
	}
	for _, result := range report.Tools {
		fmt.Fprintf(bw, "  %s %s: %s\n", mark(p, result.Passed), result.Check.ID, toolStatus(result))
	}
	fmt.Fprintln(bw)

	if report.TotalViolations() == 0 {
		fmt.Fprintln(bw, "No violations found")
	}
	if tightenable := countTightenable(report); tightenable > 0 {
		fmt.Fprintf(bw, "%d %s can be tightened; run `ratchet tighten`\n", tightenable, plural(tightenable, "rule", "rules"))
	}

	if report.Passed() {
		fmt.Fprintln(bw, p.paint(styleGreen, "Check PASSED"))
	} else {
		fmt.Fprintln(bw, p.paint(styleRed, "Check FAILED: "+failureSummary(report)))
	}
	return bw.Flush()
}

func mark(p painter, passed bool) string {
	if passed {
		return p.paint(styleGreen, "✓")
	}
	return p.paint(styleRed, "✗")
}

func ruleStatus(result ratchet.RuleResult) string {
	if result.Err != nil {
		return "error: " + result.Err.Error()
	}
	v := result.Verdict
	status := fmt.Sprintf("%d violations (budget: %d)", v.Found, v.Allowed)
	if !v.Passed {
		status += fmt.Sprintf(" exceeded by %d", v.Exceeded())
	}
	return status
}

func toolStatus(result toolcheck.Result) string {
	switch {
	case result.Passed:
		return "passed"
	case result.ExitCode > 0:
		return fmt.Sprintf("failed (exit %d, %d error lines)", result.ExitCode, len(result.ErrorLines))
	default:
		return "failed"
	}
}

func failureSummary(report *ratchet.Report) string {
	exceeded, errored, tools := 0, 0, 0
	for _, result := range report.Rules {
		switch {
		case result.Err != nil:
			errored++
		case !result.Verdict.Passed:
			exceeded++
		}
	}
	for _, result := range report.Tools {
		if !result.Passed {
			tools++
		}
	}

	var parts []string
	if exceeded > 0 {
		parts = append(parts, fmt.Sprintf("%d %s exceeded budget", exceeded, plural(exceeded, "rule", "rules")))
	}
	if errored > 0 {
		parts = append(parts, fmt.Sprintf("%d %s could not be checked", errored, plural(errored, "rule", "rules")))
	}
	if tools > 0 {
		parts = append(parts, fmt.Sprintf("%d tool %s failed", tools, plural(tools, "check", "checks")))
	}
	return strings.Join(parts, ", ")
}

func countTightenable(report *ratchet.Report) int {
	n := 0
	for _, result := range report.Rules {
		if result.Err == nil && result.Verdict.CanTighten() {
			n++
		}
	}
	return n
}

func violations(n int) string {
	if n == 1 {
		return "1 violation"
	}
	return fmt.Sprintf("%d violations", n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
