package ratchet

import (
	"fmt"
	"strings"

	"github.com/specvital/ratchet/pkg/domain"
)

// Verdict is the outcome of comparing a rule's chunks with its baseline.
// Exceeding the baseline is a normal outcome, not an error.
type Verdict struct {
	Passed  bool
	Found   int
	Allowed domain.Baseline
	Chunks  []domain.Chunk
}

// Compare passes iff len(chunks) <= baseline.
func Compare(chunks []domain.Chunk, baseline domain.Baseline) Verdict {
	return Verdict{
		Passed:  baseline.Allows(len(chunks)),
		Found:   len(chunks),
		Allowed: baseline,
		Chunks:  chunks,
	}
}

// Exceeded returns how many chunks are over the baseline, or 0 when passing.
func (v Verdict) Exceeded() int {
	if v.Passed {
		return 0
	}
	return v.Found - int(v.Allowed)
}

// CanTighten reports whether the baseline could be lowered to the current count.
func (v Verdict) CanTighten() bool {
	return v.Found < int(v.Allowed)
}

// Message returns the full failure diagnostic for the rule, headed by the counts.
func (v Verdict) Message(name, description string) string {
	return fmt.Sprintf("found %d, allowed %d\n", v.Found, v.Allowed) + FormatFailure(name, description, v.Chunks)
}

// FormatFailure renders a rule's name, description and every offending chunk in scan order.
func FormatFailure(name, description string, chunks []domain.Chunk) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Ratchet violation: %s\n", name)
	if description != "" {
		fmt.Fprintf(&sb, "%s\n", description)
	}
	fmt.Fprintf(&sb, "\nFound %d %s:\n", len(chunks), plural(len(chunks), "occurrence", "occurrences"))
	sb.WriteString(FormatChunks(chunks))
	return sb.String()
}

// FormatChunks renders one "  path:line: text" line per chunk, each followed by its
// context lines prefixed with "| ".
func FormatChunks(chunks []domain.Chunk) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&sb, "  %s\n", chunk)
		for _, line := range chunk.Context {
			fmt.Fprintf(&sb, "      | %s\n", line)
		}
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
