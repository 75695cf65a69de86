package main

import (
	"fmt"
	"io"

	"github.com/specvital/ratchet/pkg/baseline"
)

// mergeDriverCmd is registered in .git/config as
//
//	[merge "ratchet-counts"]
//		driver = ratchet merge-driver %O %A %B
//
// with "ratchet-counts.toml merge=ratchet-counts" in .gitattributes.
func mergeDriverCmd(args []string, stderr io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(stderr, "usage: ratchet merge-driver <base> <ours> <theirs>")
		return exitUsage
	}
	if err := baseline.MergeFiles(args[0], args[1], args[2]); err != nil {
		fmt.Fprintf(stderr, "merge-driver: %v\n", err)
		return exitFailed
	}
	return exitOK
}
