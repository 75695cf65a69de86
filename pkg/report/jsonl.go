package report

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"

	"github.com/specvital/ratchet/pkg/ratchet"
)

type violationRecord struct {
	Type    string   `json:"type"`
	Rule    string   `json:"rule"`
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Snippet string   `json:"snippet"`
	Context []string `json:"context,omitempty"`
	Message string   `json:"message"`
}

type summaryRecord struct {
	Type       string `json:"type"`
	Rule       string `json:"rule"`
	Violations int    `json:"violations"`
	Budget     int    `json:"budget"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type warningRecord struct {
	Type    string `json:"type"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type toolRecord struct {
	Type       string `json:"type"`
	Tool       string `json:"tool"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	ErrorLines int    `json:"error_lines"`
	Message    string `json:"message,omitempty"`
}

type statusRecord struct {
	Type            string `json:"type"`
	Passed          bool   `json:"passed"`
	RulesChecked    int    `json:"rules_checked"`
	RulesExceeded   int    `json:"rules_exceeded"`
	ToolsFailed     int    `json:"tools_failed"`
	TotalViolations int    `json:"total_violations"`
}

// WriteJSONL streams the report as newline-delimited JSON: violation records (only when
// verbose) sorted by rule, file and line, then one summary record per rule sorted by
// rule, warning and tool records, and a final status record.
func WriteJSONL(w io.Writer, report *ratchet.Report, verbose bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	rules := slices.Clone(report.Rules)
	slices.SortStableFunc(rules, func(a, b ratchet.RuleResult) int {
		return cmp.Compare(a.Rule.ID, b.Rule.ID)
	})

	if verbose {
		var records []violationRecord
		for _, result := range rules {
			for _, chunk := range result.Verdict.Chunks {
				records = append(records, violationRecord{
					Type:    "violation",
					Rule:    result.Rule.ID,
					File:    chunk.File,
					Line:    chunk.Line,
					Snippet: chunk.Text,
					Context: chunk.Context,
					Message: result.Rule.Name,
				})
			}
		}
		slices.SortStableFunc(records, func(a, b violationRecord) int {
			return cmp.Or(cmp.Compare(a.Rule, b.Rule), cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
		})
		for _, record := range records {
			if err := enc.Encode(record); err != nil {
				return err
			}
		}
	}

	status := statusRecord{
		Type:            "status",
		Passed:          report.Passed(),
		RulesChecked:    len(report.Rules),
		TotalViolations: report.TotalViolations(),
	}

	for _, result := range rules {
		record := summaryRecord{
			Type:       "summary",
			Rule:       result.Rule.ID,
			Violations: result.Verdict.Found,
			Budget:     int(result.Verdict.Allowed),
			Status:     "pass",
		}
		switch {
		case result.Err != nil:
			record.Status = "error"
			record.Error = result.Err.Error()
		case !result.Verdict.Passed:
			record.Status = "fail"
			status.RulesExceeded++
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}

	for _, result := range rules {
		for _, warning := range result.Warnings {
			if err := enc.Encode(warningRecord{Type: "warning", Rule: result.Rule.ID, Message: warning}); err != nil {
				return err
			}
		}
	}

	for _, result := range report.Tools {
		record := toolRecord{
			Type:       "tool",
			Tool:       result.Check.ID,
			Status:     "pass",
			ExitCode:   result.ExitCode,
			ErrorLines: len(result.ErrorLines),
		}
		if !result.Passed {
			record.Status = "fail"
			record.Message = result.Message
			status.ToolsFailed++
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}

	return enc.Encode(status)
}
