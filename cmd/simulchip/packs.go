package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type packsCmd struct {
	oldest bool
}

func (*packsCmd) Name() string     { return "packs" }
func (*packsCmd) Synopsis() string { return "list catalog packs by release date" }
func (*packsCmd) Usage() string {
	return `simulchip packs [-oldest]

  Lists all packs known to the catalog, newest release first.
`
}

func (c *packsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.oldest, "oldest", false, "list oldest release first")
}

func (c *packsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	packs, err := e.catalog.PacksByReleaseDate(ctx, !c.oldest)
	if err != nil {
		return fail(err)
	}

	for _, p := range packs {
		date := p.DateRelease
		if date == "" {
			date = "unreleased"
		}
		cycle := p.Cycle
		if cycle == "" {
			cycle = p.CycleCode
		}
		fmt.Printf("%-20s %-12s %s (%s)\n", p.Code, date, p.Name, cycle)
	}

	return subcommands.ExitSuccess
}
