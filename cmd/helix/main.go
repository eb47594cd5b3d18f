// Command helix compiles arbitrary files into DNA-oligo archives and
// restores them, per the external interface in the specification's
// external-interfaces section: compile, restore, search, simulate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "helix",
		Usage:       "deep-time DNA archival compiler",
		Description: "Compiles arbitrary files into a pool of synthesizable DNA oligonucleotides and restores them from a (mutated, reordered, partially lost) strand pool.",
		Commands: []*cli.Command{
			compileCmd,
			restoreCmd,
			searchCmd,
			simulateCmd,
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, "helix:", err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "helix:", err)
		os.Exit(1)
	}
}

// resolveWorkers implements the HELIX_THREADS override: an unset or
// non-positive value means hardware parallelism.
func resolveWorkers() int {
	if v := os.Getenv("HELIX_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}
