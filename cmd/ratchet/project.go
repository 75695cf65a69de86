package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specvital/ratchet/pkg/baseline"
	"github.com/specvital/ratchet/pkg/catalog"
	"github.com/specvital/ratchet/pkg/config"
	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/ratchet"
	"github.com/specvital/ratchet/pkg/report"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

// projectFlags are shared by every command that loads a project.
type projectFlags struct {
	configPath string
	root       string
	logLevel   string
}

func (f *projectFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "config file (default: search upward for ratchet.toml or ratchet.yaml, or $"+config.EnvConfig+")")
	fs.StringVar(&f.root, "root", "", "scan root (default: from config, else the config directory)")
	fs.StringVar(&f.logLevel, "log-level", "error", "debug|info|warn|error")
}

// project is a loaded configuration with its rule table and counts file resolved.
type project struct {
	cfg    *config.Config
	rules  []ratchet.Rule
	tools  []toolcheck.Check
	counts *baseline.Counts
	logger *slog.Logger
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func loadProject(f projectFlags, stderr io.Writer, environ []string) (*project, error) {
	logger, err := newLogger(stderr, f.logLevel)
	if err != nil {
		return nil, err
	}

	explicit := f.configPath
	if explicit == "" {
		explicit = report.EnvMap(environ)[config.EnvConfig]
	}
	start := f.root
	if start == "" {
		start = "."
	}
	path, err := config.Find(start, explicit)
	if err != nil {
		return nil, fmt.Errorf("find config: %w", err)
	}

	var cfg *config.Config
	if path == "" {
		cfg, err = config.Default(start)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if f.root != "" {
		root, err := filepath.Abs(f.root)
		if err != nil {
			return nil, err
		}
		cfg.File.Root = &root
	}
	logger.Debug("config loaded", "path", cfg.Path, "root", cfg.Root())

	p := &project{cfg: cfg, logger: logger}

	// A config rule replaces the catalogue rule with the same ID.
	custom := cfg.Rules()
	var rules []ratchet.Rule
	if cfg.DefaultRules() {
		for _, rule := range catalog.Python() {
			if !slices.ContainsFunc(custom, func(c ratchet.Rule) bool { return c.ID == rule.ID }) {
				rules = append(rules, rule)
			}
		}
	}
	rules = append(rules, custom...)
	p.rules = slices.DeleteFunc(rules, func(r ratchet.Rule) bool { return cfg.Disabled(r.ID) })
	if err := ratchet.ValidateRules(p.rules); err != nil {
		return nil, err
	}

	customTools := cfg.Tools()
	var tools []toolcheck.Check
	if cfg.DefaultTools() {
		for _, check := range catalog.Tools() {
			if !slices.ContainsFunc(customTools, func(c toolcheck.Check) bool { return c.ID == check.ID }) {
				tools = append(tools, check)
			}
		}
	}
	tools = append(tools, customTools...)
	p.tools = slices.DeleteFunc(tools, func(c toolcheck.Check) bool { return cfg.Disabled(c.ID) })

	p.counts, err = baseline.Load(cfg.CountsPath())
	if err != nil {
		return nil, err
	}
	return p, nil
}

// baselines merges config overrides with the counts file; the smaller value applies.
func (p *project) baselines() map[string]domain.Baseline {
	out := p.cfg.Baselines()
	for id, b := range p.counts.Map() {
		if existing, ok := out[id]; !ok || b < existing {
			out[id] = b
		}
	}
	return out
}

func (p *project) target(contextLines int) ratchet.Target {
	if contextLines < 0 {
		contextLines = p.cfg.ContextLines()
	}
	return ratchet.Target{
		Root:         p.cfg.Root(),
		Self:         p.cfg.Self(),
		ScanOptions:  p.cfg.ScanOptions(),
		ContextLines: contextLines,
		Logger:       p.logger,
	}
}

func (p *project) runner(workers int, opts ...ratchet.RunOption) *ratchet.Runner {
	if workers <= 0 {
		workers = p.cfg.Workers()
	}
	opts = append([]ratchet.RunOption{
		ratchet.WithWorkers(workers),
		ratchet.WithTimeout(p.cfg.Timeout()),
		ratchet.WithBaselines(p.baselines()),
		ratchet.WithLogger(p.logger),
	}, opts...)
	return ratchet.NewRunner(opts...)
}
