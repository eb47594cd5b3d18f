package main

import (
	"fmt"
	"os"

	"helix"
	"helix/pipeline"

	"github.com/urfave/cli/v2"
)

var restoreCmd = &cli.Command{
	Name:      "restore",
	Usage:     "Decode a DNA-oligo archive back into a file",
	ArgsUsage: "<archive> <out>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "password", Required: true, Usage: "archive passphrase"},
		&cli.IntFlag{Name: "data", Usage: "ignored: the archive's own metadata record is authoritative"},
		&cli.IntFlag{Name: "parity", Usage: "ignored: the archive's own metadata record is authoritative"},
		&cli.BoolFlag{Name: "stats", Usage: "print run counters to stderr on completion"},
	},
	Action: runRestore,
}

func runRestore(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("restore: expected <archive> <out>", helix.ExitCode(helix.ErrStructural))
	}
	archivePath, outPath := c.Args().Get(0), c.Args().Get(1)

	in, err := os.Open(archivePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("restore: open archive: %v", err), helix.ExitCode(helix.ErrIO))
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("restore: create output: %v", err), helix.ExitCode(helix.ErrIO))
	}

	cfg := pipeline.DefaultConfig()
	cfg.Workers = resolveWorkers()

	stats, decErr := pipeline.Decode(c.Context, in, out, c.String("password"), cfg)
	out.Close()
	if c.Bool("stats") && stats != nil {
		printStats(stats)
	}
	if decErr != nil {
		os.Remove(outPath)
		return cli.Exit(fmt.Sprintf("restore: %v", decErr), helix.ExitCode(decErr))
	}
	return nil
}
