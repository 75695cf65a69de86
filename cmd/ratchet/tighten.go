package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/specvital/ratchet/pkg/baseline"
)

func tightenCmd(ctx context.Context, args []string, stdout, stderr io.Writer, environ []string) int {
	var (
		pf     projectFlags
		dryRun bool
	)
	fs := flag.NewFlagSet("tighten", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pf.register(fs)
	fs.BoolVar(&dryRun, "dry-run", false, "print the changes without writing the counts file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	p, err := loadProject(pf, stderr, environ)
	if err != nil {
		fmt.Fprintf(stderr, "tighten: %v\n", err)
		return exitUsage
	}

	result, err := p.runner(0).Run(ctx, p.target(0), p.rules, nil)
	if err != nil {
		fmt.Fprintf(stderr, "tighten: %v\n", err)
		return exitFailed
	}

	var changes []baseline.Change
	blocked := 0
	for _, r := range result.Rules {
		switch {
		case r.Err != nil:
			fmt.Fprintf(stderr, "tighten: %s: %v\n", r.Rule.ID, r.Err)
			blocked++
		case !r.Verdict.Passed:
			fmt.Fprintf(stderr, "tighten: %s: found %d, allowed %d\n", r.Rule.ID, r.Verdict.Found, r.Verdict.Allowed)
			blocked++
		default:
			if change, ok := p.counts.Tighten(r.Rule.ID, r.Verdict.Found, r.Verdict.Allowed); ok {
				changes = append(changes, change)
			}
		}
	}

	for _, change := range changes {
		fmt.Fprintln(stdout, change)
	}
	if len(changes) == 0 {
		fmt.Fprintln(stdout, "Counts are already tight")
	} else if !dryRun {
		path := p.cfg.CountsPath()
		if err := p.counts.Save(path); err != nil {
			fmt.Fprintf(stderr, "tighten: %v\n", err)
			return exitFailed
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}

	if blocked > 0 {
		return exitFailed
	}
	return exitOK
}
