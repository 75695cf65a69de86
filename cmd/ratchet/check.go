package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/specvital/ratchet/pkg/ratchet"
	"github.com/specvital/ratchet/pkg/report"
)

type checkConfig struct {
	project      projectFlags
	format       string
	color        string
	verbose      bool
	workers      int
	timeout      time.Duration
	noTools      bool
	contextLines int
}

func parseCheckArgs(args []string, stderr io.Writer) (*checkConfig, int, bool) {
	cfg := &checkConfig{}
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.project.register(fs)
	fs.StringVar(&cfg.format, "format", "human", "human|jsonl")
	fs.StringVar(&cfg.color, "color", "auto", "auto|always|never")
	fs.BoolVar(&cfg.verbose, "verbose", false, "list the chunks of passing rules too")
	fs.IntVar(&cfg.workers, "workers", 0, "rules checked concurrently (0 = config or GOMAXPROCS)")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "run timeout (0 = config or default)")
	fs.BoolVar(&cfg.noTools, "no-tools", false, "skip external tool checks")
	fs.IntVar(&cfg.contextLines, "context", -1, "context lines around regex matches (-1 = config)")

	code, ok := parseFlags(fs, args)
	if !ok {
		return nil, code, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "check: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return nil, exitUsage, false
	}
	switch cfg.format {
	case "human", "jsonl":
	default:
		fmt.Fprintf(stderr, "check: unknown format %q\n", cfg.format)
		return nil, exitUsage, false
	}
	return cfg, exitOK, true
}

func checkCmd(ctx context.Context, args []string, stdout, stderr io.Writer, environ []string) int {
	cfg, code, ok := parseCheckArgs(args, stderr)
	if !ok {
		return code
	}
	colorMode, err := report.ParseColorMode(cfg.color)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return exitUsage
	}

	p, err := loadProject(cfg.project, stderr, environ)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return exitUsage
	}

	tools := p.tools
	if cfg.noTools {
		tools = nil
	}

	var runOpts []ratchet.RunOption
	if cfg.timeout > 0 {
		runOpts = append(runOpts, ratchet.WithTimeout(cfg.timeout))
	}
	result, runErr := p.runner(cfg.workers, runOpts...).Run(ctx, p.target(cfg.contextLines), p.rules, tools)

	switch cfg.format {
	case "jsonl":
		err = report.WriteJSONL(stdout, result, cfg.verbose)
	default:
		out, _ := stdout.(*os.File)
		err = report.WriteHuman(stdout, result, report.HumanOptions{
			Color:   report.ColorEnabled(colorMode, out, report.EnvMap(environ)),
			Verbose: cfg.verbose,
		})
	}
	if err != nil {
		fmt.Fprintf(stderr, "check: write report: %v\n", err)
		return exitFailed
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "check: %v\n", runErr)
		return exitFailed
	}
	if !result.Passed() {
		return exitFailed
	}
	return exitOK
}
