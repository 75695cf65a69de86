package ratchet

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/match"
	"github.com/specvital/ratchet/pkg/scan"
	"github.com/specvital/ratchet/pkg/structural"
)

// Target is the tree a rule is checked against.
type Target struct {
	// Root is the scan root.
	Root string
	// Self is excluded from every scan. Relative paths resolve against Root.
	Self string
	// ScanOptions apply to every rule, before rule-specific include globs.
	ScanOptions []scan.ScanOption
	// ContextLines fills Chunk.Context for regex matches when positive.
	ContextLines int
	Logger       *slog.Logger
}

func (t Target) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return t.Logger
}

func (t Target) scanOptions(include []string) []scan.ScanOption {
	opts := slices.Clone(t.ScanOptions)
	opts = append(opts, scan.WithSelf(t.Self), scan.WithLogger(t.logger()))
	if len(include) > 0 {
		opts = append(opts, scan.WithIncludeGlobs(include))
	}
	return opts
}

// Findings is what a Matcher reports for one rule.
type Findings struct {
	Chunks []domain.Chunk
	// Warnings are diagnostics that do not affect the verdict, such as skipped files.
	Warnings []string
}

// Matcher produces the chunks a rule counts.
type Matcher interface {
	Find(ctx context.Context, target Target) (*Findings, error)
	// String describes the matcher for listings.
	String() string
}

// RegexMatcher applies a pattern to every file with one extension.
type RegexMatcher struct {
	Ext     domain.FileExtension
	Pattern *match.RegexPattern
	// Include restricts the rule to paths matching these doublestar globs.
	Include []string
}

// Regex returns a RegexMatcher.
func Regex(ext domain.FileExtension, pattern *match.RegexPattern) RegexMatcher {
	return RegexMatcher{Ext: ext, Pattern: pattern}
}

func (m RegexMatcher) Find(ctx context.Context, target Target) (*Findings, error) {
	scanner, err := scan.New(target.Root, m.Ext, target.scanOptions(m.Include)...)
	if err != nil {
		return nil, err
	}

	var findOpts []match.FindOption
	if target.ContextLines > 0 {
		findOpts = append(findOpts, match.WithContextLines(target.ContextLines))
	}

	chunks, err := match.FindInTree(ctx, scanner, m.Pattern, findOpts...)
	if err != nil {
		return nil, err
	}
	return &Findings{Chunks: chunks}, nil
}

func (m RegexMatcher) String() string {
	return fmt.Sprintf("regex %s in *%s", m.Pattern, m.Ext)
}

// StructuralMatcher runs one of the structural evaluators.
type StructuralMatcher struct {
	Name     string
	Evaluate structural.Evaluator
}

// Structural returns a StructuralMatcher described by name.
func Structural(name string, evaluate structural.Evaluator) StructuralMatcher {
	return StructuralMatcher{Name: name, Evaluate: evaluate}
}

func (m StructuralMatcher) Find(ctx context.Context, target Target) (*Findings, error) {
	result, err := m.Evaluate(ctx, target.Root, target.Self,
		structural.WithScanOptions(target.ScanOptions...),
		structural.WithLogger(target.logger()),
	)
	if err != nil {
		return nil, err
	}
	return structuralFindings(result), nil
}

func (m StructuralMatcher) String() string {
	return "structural " + m.Name
}

// QueryMatcher runs a tree-sitter query rule.
type QueryMatcher struct {
	Rule    *structural.QueryRule
	Include []string
}

func (m QueryMatcher) Find(ctx context.Context, target Target) (*Findings, error) {
	scanOpts := slices.Clone(target.ScanOptions)
	if len(m.Include) > 0 {
		scanOpts = append(scanOpts, scan.WithIncludeGlobs(m.Include))
	}

	result, err := m.Rule.Find(ctx, target.Root, target.Self,
		structural.WithScanOptions(scanOpts...),
		structural.WithLogger(target.logger()),
	)
	if err != nil {
		return nil, err
	}
	return structuralFindings(result), nil
}

func (m QueryMatcher) String() string {
	return fmt.Sprintf("%s query %s", m.Rule.Language(), m.Rule.Query())
}

func structuralFindings(result *structural.Result) *Findings {
	findings := &Findings{Chunks: result.Chunks}
	for _, parseErr := range result.ParseErrors {
		findings.Warnings = append(findings.Warnings, "skipped "+parseErr.Error())
	}
	return findings
}
