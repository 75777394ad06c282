package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dfiru/simulchip/internal/collection"
	"github.com/dfiru/simulchip/internal/comparison"
	"github.com/dfiru/simulchip/internal/netrunnerdb"
	"github.com/google/subcommands"
)

type compareCmd struct {
	detailed bool
	refresh  bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare a decklist against the collection" }
func (*compareCmd) Usage() string {
	return `simulchip compare [-detailed] [-refresh] <decklist-url-or-id>

  Fetches a published decklist and reports which copies the collection
  is missing.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.detailed, "detailed", false, "list every required card, owned or not")
	f.BoolVar(&c.refresh, "refresh", false, "drop the cached decklist before fetching")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one decklist URL or ID")

		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	result, err := compareDecklist(ctx, e, f.Arg(0), c.refresh)
	if err != nil {
		return fail(err)
	}

	fmt.Print(comparison.FormatReport(result))

	if c.detailed {
		fmt.Println("All required cards:")
		for _, entry := range result.SortedEntries() {
			title := entry.Title
			if entry.LookupFailed {
				title = "not in catalog"
			}
			fmt.Printf("  %s %-40s required %d, owned %d, missing %d\n",
				entry.Code, title, entry.Required, entry.Owned, entry.Missing)
		}
	}

	return subcommands.ExitSuccess
}

// compareDecklist runs the full pipeline shared by compare and proxy:
// fetch the decklist, resolve the collection and diff the two.
func compareDecklist(ctx context.Context, e *env, rawURL string, refresh bool) (comparison.Result, error) {
	id, ok := netrunnerdb.ExtractDecklistID(rawURL)
	if !ok {
		return comparison.Result{}, fmt.Errorf("cannot extract a decklist id from %q", rawURL)
	}

	fetch := e.catalog.Decklist
	if refresh {
		fetch = e.catalog.RefreshDecklist
	}
	raw, err := fetch(ctx, id)
	if err != nil {
		return comparison.Result{}, err
	}

	cards, err := e.catalog.AllCards(ctx)
	if err != nil {
		return comparison.Result{}, err
	}

	decl, err := e.loadDeclaration(ctx, false)
	if err != nil {
		return comparison.Result{}, err
	}

	deck := comparison.NewDecklist(raw, cards)
	resolved := collection.Resolve(decl, cards)

	return comparison.Compare(deck, resolved, cards), nil
}
