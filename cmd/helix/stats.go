package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"helix"
)

// printStats renders a run's counters to stderr as an aligned table,
// matching spec.md §1's non-goal of "log formatting": this is deliberately
// a single dump at completion, not a streaming log.
func printStats(s *helix.Stats) {
	tw := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
	defer tw.Flush()
	headers, values := s.Header(), s.ToSlice()
	for i := range headers {
		fmt.Fprintf(tw, "%s\t%s\n", headers[i], values[i])
	}
}
