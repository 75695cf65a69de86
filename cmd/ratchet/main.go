// Command ratchet enforces style rules whose violation counts may only go down.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const usage = `Usage: ratchet <command> [flags]

Commands:
  check          run every rule and tool check against the tree
  tighten        lower the counts file to the counts found now
  rules          list the rules that apply to the tree
  merge-driver   git merge driver for the counts file: merge-driver <base> <ours> <theirs>

Run 'ratchet <command> -h' for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Environ())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, environ []string) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "check":
		return checkCmd(ctx, rest, stdout, stderr, environ)
	case "tighten":
		return tightenCmd(ctx, rest, stdout, stderr, environ)
	case "rules":
		return rulesCmd(rest, stdout, stderr, environ)
	case "merge-driver":
		return mergeDriverCmd(rest, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}
}

// parseFlags parses args and maps -h to a clean exit.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}
