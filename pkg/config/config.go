package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specvital/ratchet/pkg/baseline"
	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/match"
	"github.com/specvital/ratchet/pkg/ratchet"
	"github.com/specvital/ratchet/pkg/scan"
	"github.com/specvital/ratchet/pkg/structural"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

// Config is a validated configuration with its rules and tool checks built.
type Config struct {
	// Path is the absolute config file path, or "" for defaults.
	Path string
	// Dir anchors relative paths: the config file directory.
	Dir  string
	File File

	rules []ratchet.Rule
	tools []toolcheck.Check
}

// Root returns the absolute scan root.
func (c *Config) Root() string {
	if c.File.Root == nil || *c.File.Root == "" {
		return c.Dir
	}
	return c.resolve(*c.File.Root)
}

// Self returns the path excluded from every scan, relative to the root or absolute.
func (c *Config) Self() string {
	if c.File.Self == nil {
		return ""
	}
	return *c.File.Self
}

// DefaultRules reports whether the built-in catalogue applies.
func (c *Config) DefaultRules() bool {
	return c.File.DefaultRules == nil || *c.File.DefaultRules
}

// DefaultTools reports whether the built-in tool checks apply.
func (c *Config) DefaultTools() bool {
	return c.File.DefaultTools != nil && *c.File.DefaultTools
}

// Disabled reports whether a rule or tool ID is switched off.
func (c *Config) Disabled(id string) bool {
	return slices.Contains(c.File.Disable, id)
}

// CountsPath returns the absolute counts file path.
func (c *Config) CountsPath() string {
	if c.File.CountsFile == nil || *c.File.CountsFile == "" {
		return filepath.Join(c.Root(), baseline.DefaultFilename)
	}
	return c.resolve(*c.File.CountsFile)
}

// Workers returns the configured worker count, 0 meaning automatic.
func (c *Config) Workers() int {
	if c.File.Workers == nil {
		return 0
	}
	return *c.File.Workers
}

// Timeout returns the configured run timeout, 0 meaning the default.
func (c *Config) Timeout() time.Duration {
	if c.File.Timeout == nil {
		return 0
	}
	d, _ := time.ParseDuration(*c.File.Timeout)
	return d
}

// ContextLines returns the number of context lines attached to regex chunks.
func (c *Config) ContextLines() int {
	if c.File.ContextLines == nil {
		return 0
	}
	return *c.File.ContextLines
}

// Baselines returns the configured baseline overrides.
func (c *Config) Baselines() map[string]domain.Baseline {
	out := make(map[string]domain.Baseline, len(c.File.Baselines))
	for id, n := range c.File.Baselines {
		out[id] = domain.Baseline(n)
	}
	return out
}

// Rules returns the rules declared in the file, in file order.
func (c *Config) Rules() []ratchet.Rule {
	return slices.Clone(c.rules)
}

// Tools returns the tool checks declared in the file, in file order.
func (c *Config) Tools() []toolcheck.Check {
	return slices.Clone(c.tools)
}

// ScanOptions returns the scan options every rule shares.
func (c *Config) ScanOptions() []scan.ScanOption {
	var opts []scan.ScanOption
	if c.File.SkipDirs != nil {
		opts = append(opts, scan.WithSkipDirs(*c.File.SkipDirs))
	}
	if len(c.File.ExtraSkipDirs) > 0 {
		opts = append(opts, scan.WithExtraSkipDirs(c.File.ExtraSkipDirs))
	}
	if len(c.File.Exclude) > 0 {
		opts = append(opts, scan.WithExcludeGlobs(c.File.Exclude))
	}
	if c.File.MaxFileSize != nil {
		opts = append(opts, scan.WithMaxFileSize(*c.File.MaxFileSize))
	}
	return opts
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Dir, path)
}

func build(file File, dir string) (*Config, error) {
	cfg := &Config{Dir: dir, File: file}

	var errs []error
	if err := validateSettings(file); err != nil {
		errs = append(errs, err)
	}

	for i, spec := range file.Rules {
		rule, err := buildRule(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("rules[%d]: %w", i, err))
			continue
		}
		cfg.rules = append(cfg.rules, rule)
	}
	if len(errs) == 0 {
		if err := ratchet.ValidateRules(cfg.rules); err != nil {
			errs = append(errs, err)
		}
	}

	seenTools := make(map[string]bool)
	for i, spec := range file.Tools {
		check, err := buildTool(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("tools[%d]: %w", i, err))
			continue
		}
		if seenTools[check.ID] {
			errs = append(errs, fmt.Errorf("tools[%d]: duplicate tool id %q", i, check.ID))
		}
		seenTools[check.ID] = true
		cfg.tools = append(cfg.tools, check)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateSettings(file File) error {
	var errs []error
	if file.Workers != nil && *file.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if file.MaxFileSize != nil && *file.MaxFileSize <= 0 {
		errs = append(errs, errors.New("max_file_size must be positive"))
	}
	if file.ContextLines != nil && *file.ContextLines < 0 {
		errs = append(errs, errors.New("context_lines must not be negative"))
	}
	if file.Timeout != nil {
		if d, err := time.ParseDuration(*file.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("invalid timeout %q", *file.Timeout))
		}
	}
	for _, pattern := range file.Exclude {
		if err := validateGlob(pattern); err != nil {
			errs = append(errs, fmt.Errorf("exclude: %w", err))
		}
	}
	for id, n := range file.Baselines {
		if n < 0 {
			errs = append(errs, fmt.Errorf("baselines.%s: must not be negative", id))
		}
	}
	return errors.Join(errs...)
}

func buildRule(spec RuleSpec) (ratchet.Rule, error) {
	rule := ratchet.Rule{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		Baseline:    domain.Baseline(spec.Baseline),
	}
	if rule.Name == "" {
		rule.Name = spec.ID
	}

	for _, pattern := range spec.Include {
		if err := validateGlob(pattern); err != nil {
			return rule, fmt.Errorf("include: %w", err)
		}
	}

	kind, err := ruleKind(spec)
	if err != nil {
		return rule, err
	}

	switch kind {
	case KindRegex:
		rule.Matcher, err = buildRegexMatcher(spec)
	case KindQuery:
		rule.Matcher, err = buildQueryMatcher(spec)
	case KindStructural:
		rule.Matcher, err = buildStructuralMatcher(spec)
	}
	if err != nil {
		return rule, err
	}

	if err := rule.Validate(); err != nil {
		return rule, err
	}
	return rule, nil
}

func ruleKind(spec RuleSpec) (string, error) {
	if spec.Kind != "" {
		switch spec.Kind {
		case KindRegex, KindQuery, KindStructural:
			return spec.Kind, nil
		default:
			return "", fmt.Errorf("unknown kind %q", spec.Kind)
		}
	}

	var kinds []string
	if spec.Pattern != "" {
		kinds = append(kinds, KindRegex)
	}
	if spec.Query != "" {
		kinds = append(kinds, KindQuery)
	}
	if spec.Evaluator != "" {
		kinds = append(kinds, KindStructural)
	}
	switch len(kinds) {
	case 0:
		return "", errors.New("one of pattern, query or evaluator is required")
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("ambiguous rule: set kind to one of %v", kinds)
	}
}

func buildRegexMatcher(spec RuleSpec) (ratchet.Matcher, error) {
	ext := spec.Extension
	if ext == "" {
		ext = domain.LanguagePython.Extension().String()
	}
	fileExt, err := domain.NewFileExtension(ext)
	if err != nil {
		return nil, err
	}

	var opts []match.PatternOption
	if spec.Multiline {
		opts = append(opts, match.WithMultiline())
	}
	if spec.IgnoreCase {
		opts = append(opts, match.WithIgnoreCase())
	}
	pattern, err := match.NewRegexPattern(spec.Pattern, opts...)
	if err != nil {
		return nil, err
	}

	matcher := ratchet.Regex(fileExt, pattern)
	matcher.Include = spec.Include
	return matcher, nil
}

func buildQueryMatcher(spec RuleSpec) (ratchet.Matcher, error) {
	lang, ok := domain.ParseLanguage(spec.Language)
	if !ok {
		return nil, fmt.Errorf("unknown language %q", spec.Language)
	}
	query, err := structural.NewQueryRule(lang, spec.Query)
	if err != nil {
		return nil, err
	}
	return ratchet.QueryMatcher{Rule: query, Include: spec.Include}, nil
}

func buildStructuralMatcher(spec RuleSpec) (ratchet.Matcher, error) {
	evaluate, ok := structural.Lookup(spec.Evaluator)
	if !ok {
		return nil, fmt.Errorf("unknown evaluator %q (known: %v)", spec.Evaluator, structural.Names())
	}
	if len(spec.Include) > 0 {
		return nil, errors.New("include is not supported for structural rules")
	}
	return ratchet.Structural(spec.Evaluator, evaluate), nil
}

func buildTool(spec ToolSpec) (toolcheck.Check, error) {
	check := toolcheck.Check{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		Command:     spec.Command,
		Args:        spec.Args,
		Dir:         spec.Dir,
	}
	if check.ID == "" {
		return check, errors.New("id is required")
	}
	if check.Command == "" {
		return check, fmt.Errorf("tool %s: command is required", check.ID)
	}
	if check.Name == "" {
		check.Name = check.ID
	}
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil || d <= 0 {
			return check, fmt.Errorf("tool %s: invalid timeout %q", check.ID, spec.Timeout)
		}
		check.Timeout = d
	}
	return check, nil
}

func validateGlob(pattern string) error {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return nil
}
