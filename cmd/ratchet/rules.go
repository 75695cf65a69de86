package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
)

func rulesCmd(args []string, stdout, stderr io.Writer, environ []string) int {
	var pf projectFlags
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pf.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	p, err := loadProject(pf, stderr, environ)
	if err != nil {
		fmt.Fprintf(stderr, "rules: %v\n", err)
		return exitUsage
	}
	overrides := p.baselines()

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBUDGET\tNAME\tMATCHER")
	for _, rule := range p.rules {
		budget := rule.Baseline
		if b, ok := overrides[rule.ID]; ok && b < budget {
			budget = b
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", rule.ID, budget, rule.Name, rule.Matcher)
	}
	for _, check := range p.tools {
		fmt.Fprintf(tw, "%s\t-\t%s\ttool %s\n", check.ID, check.Name, check.CommandLine())
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "rules: %v\n", err)
		return exitFailed
	}
	return exitOK
}
