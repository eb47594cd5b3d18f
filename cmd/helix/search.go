package main

import (
	"fmt"
	"io"
	"os"

	"helix"
	"helix/archive"
	"helix/oligo"
	"helix/trellis"

	"github.com/urfave/cli/v2"
)

var searchCmd = &cli.Command{
	Name:      "search",
	Usage:     "Stream-filter archive strands whose sequence fuzzily matches a query",
	ArgsUsage: "<archive> <query>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "filtered archive output path"},
		&cli.IntFlag{Name: "tau", Value: oligo.DefaultTau, Usage: "Hamming-distance match tolerance"},
	},
	Action: runSearch,
}

func runSearch(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("search: expected <archive> <query>", helix.ExitCode(helix.ErrStructural))
	}
	archivePath, queryStr := c.Args().Get(0), c.Args().Get(1)

	query, err := trellis.ParseSequence(queryStr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("search: query: %v", err), helix.ExitCode(helix.ErrStructural))
	}

	in, err := os.Open(archivePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("search: open archive: %v", err), helix.ExitCode(helix.ErrIO))
	}
	defer in.Close()

	rd, err := archive.NewReader(in)
	if err != nil {
		return cli.Exit(fmt.Sprintf("search: %v", err), helix.ExitCode(helix.ErrStructural))
	}

	out, err := os.Create(c.String("output"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("search: create output: %v", err), helix.ExitCode(helix.ErrIO))
	}
	defer out.Close()

	wr, err := archive.NewWriter(out, rd.DataShards, rd.ParityShards, rd.BlockSize)
	if err != nil {
		return cli.Exit(fmt.Sprintf("search: %v", err), helix.ExitCode(helix.ErrIO))
	}

	tau := c.Int("tau")
	matched := 0
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cli.Exit(fmt.Sprintf("search: %v", err), helix.ExitCode(helix.ErrIO))
		}
		if !oligo.ContainsFuzzy(rec.Bases, query, tau) {
			continue
		}
		matched++
		if err := wr.WriteRecord(rec); err != nil {
			return cli.Exit(fmt.Sprintf("search: %v", err), helix.ExitCode(helix.ErrIO))
		}
	}
	if err := wr.Flush(); err != nil {
		return cli.Exit(fmt.Sprintf("search: %v", err), helix.ExitCode(helix.ErrIO))
	}
	fmt.Fprintf(os.Stderr, "search: %d matching strand(s) written\n", matched)
	return nil
}
