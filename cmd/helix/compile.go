package main

import (
	"fmt"
	"os"

	"helix"
	"helix/pipeline"
	"helix/trellis"

	"github.com/urfave/cli/v2"
)

var compileCmd = &cli.Command{
	Name:      "compile",
	Usage:     "Encode a file into a DNA-oligo archive",
	ArgsUsage: "<in>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "archive output path"},
		&cli.StringFlag{Name: "password", Required: true, Usage: "archive passphrase"},
		&cli.IntFlag{Name: "data", Value: pipeline.DefaultConfig().DataShards, Usage: "Reed-Solomon data shard count (N)"},
		&cli.IntFlag{Name: "parity", Value: pipeline.DefaultConfig().ParityShards, Usage: "Reed-Solomon parity shard count (K)"},
		&cli.IntFlag{Name: "block-size", Value: pipeline.DefaultBlockSize, Usage: "plaintext bytes per block"},
		&cli.StringFlag{Name: "primer-fwd", Usage: "forward primer sequence (default: built-in)"},
		&cli.StringFlag{Name: "primer-rev", Usage: "reverse primer sequence (default: built-in)"},
		&cli.BoolFlag{Name: "stats", Usage: "print run counters to stderr on completion"},
	},
	Action: runCompile,
}

func runCompile(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("compile: exactly one input path is required", helix.ExitCode(helix.ErrStructural))
	}
	inPath := c.Args().Get(0)

	in, err := os.Open(inPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("compile: open input: %v", err), helix.ExitCode(helix.ErrIO))
	}
	defer in.Close()

	out, err := os.Create(c.String("output"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("compile: create output: %v", err), helix.ExitCode(helix.ErrOutputIO))
	}

	cfg := pipeline.DefaultConfig()
	cfg.DataShards = c.Int("data")
	cfg.ParityShards = c.Int("parity")
	cfg.BlockSize = c.Int("block-size")
	cfg.Workers = resolveWorkers()
	if s := c.String("primer-fwd"); s != "" {
		seq, err := trellis.ParseSequence(s)
		if err != nil {
			return cli.Exit(fmt.Sprintf("compile: --primer-fwd: %v", err), helix.ExitCode(helix.ErrStructural))
		}
		cfg.FwdPrimer = seq
	}
	if s := c.String("primer-rev"); s != "" {
		seq, err := trellis.ParseSequence(s)
		if err != nil {
			return cli.Exit(fmt.Sprintf("compile: --primer-rev: %v", err), helix.ExitCode(helix.ErrStructural))
		}
		cfg.RevPrimer = seq
	}

	stats, encErr := pipeline.Encode(c.Context, in, out, c.String("password"), cfg)
	out.Close()
	if c.Bool("stats") && stats != nil {
		printStats(stats)
	}
	if encErr != nil {
		os.Remove(c.String("output"))
		return cli.Exit(fmt.Sprintf("compile: %v", encErr), helix.ExitCode(encErr))
	}
	return nil
}
