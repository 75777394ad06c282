package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dfiru/simulchip/internal/collection"
	"github.com/google/subcommands"
)

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create an empty collection file" }
func (*initCmd) Usage() string {
	return `simulchip init

  Creates an empty collection file at the configured path.
`
}
func (*initCmd) SetFlags(*flag.FlagSet) {}

func (c *initCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	if _, statErr := os.Stat(e.cfg.Collection.Path); statErr == nil {
		fmt.Fprintf(os.Stderr, "Collection already exists at %s\n", e.cfg.Collection.Path)

		return subcommands.ExitFailure
	}

	if err := collection.Save(e.cfg.Collection.Path, collection.NewDeclaration()); err != nil {
		return fail(err)
	}

	fmt.Printf("Created empty collection at %s\n", e.cfg.Collection.Path)

	return subcommands.ExitSuccess
}

type addPackCmd struct{}

func (*addPackCmd) Name() string     { return "add-pack" }
func (*addPackCmd) Synopsis() string { return "mark a pack as owned" }
func (*addPackCmd) Usage() string {
	return `simulchip add-pack <pack-code>

  Adds a pack to the owned set; every card of the pack contributes its
  default copy count.
`
}
func (*addPackCmd) SetFlags(*flag.FlagSet) {}

func (c *addPackCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one pack code")

		return subcommands.ExitUsageError
	}
	packCode := f.Arg(0)

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	packs, err := e.catalog.AllPacks(ctx)
	if err != nil {
		return fail(err)
	}
	known := false
	for _, p := range packs {
		if p.Code == packCode {
			known = true

			break
		}
	}
	if !known {
		fmt.Fprintf(os.Stderr, "Unknown pack code %q, see 'simulchip packs'\n", packCode)

		return subcommands.ExitFailure
	}

	decl, err := e.loadDeclaration(ctx, true)
	if err != nil {
		return fail(err)
	}

	if !decl.AddPack(packCode) {
		fmt.Printf("Pack %s already owned\n", packCode)

		return subcommands.ExitSuccess
	}

	if err := collection.Save(e.cfg.Collection.Path, decl); err != nil {
		return fail(err)
	}

	fmt.Printf("Added pack %s\n", packCode)

	return subcommands.ExitSuccess
}

type removePackCmd struct{}

func (*removePackCmd) Name() string     { return "remove-pack" }
func (*removePackCmd) Synopsis() string { return "unmark an owned pack" }
func (*removePackCmd) Usage() string {
	return `simulchip remove-pack <pack-code>

  Removes a pack from the owned set. Card deltas are untouched.
`
}
func (*removePackCmd) SetFlags(*flag.FlagSet) {}

func (c *removePackCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one pack code")

		return subcommands.ExitUsageError
	}
	packCode := f.Arg(0)

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	decl, err := e.loadDeclaration(ctx, false)
	if err != nil {
		return fail(err)
	}

	if !decl.RemovePack(packCode) {
		fmt.Fprintf(os.Stderr, "Pack %s is not owned\n", packCode)

		return subcommands.ExitFailure
	}

	if err := collection.Save(e.cfg.Collection.Path, decl); err != nil {
		return fail(err)
	}

	fmt.Printf("Removed pack %s\n", packCode)

	return subcommands.ExitSuccess
}

type addCardCmd struct {
	count int
}

func (*addCardCmd) Name() string     { return "add" }
func (*addCardCmd) Synopsis() string { return "add individually acquired copies of a card" }
func (*addCardCmd) Usage() string {
	return `simulchip add [-n <count>] <card-code>

  Raises the card's delta, e.g. for promo copies acquired outside a pack.
`
}

func (c *addCardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 1, "number of copies to add")
}

func (c *addCardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return adjustCard(ctx, f, c.count, false)
}

type removeCardCmd struct {
	count int
}

func (*removeCardCmd) Name() string     { return "remove" }
func (*removeCardCmd) Synopsis() string { return "remove copies of a card (lost, traded away)" }
func (*removeCardCmd) Usage() string {
	return `simulchip remove [-n <count>] <card-code>

  Lowers the card's delta. The resolved quantity never drops below zero.
`
}

func (c *removeCardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 1, "number of copies to remove")
}

func (c *removeCardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return adjustCard(ctx, f, c.count, true)
}

func adjustCard(ctx context.Context, f *flag.FlagSet, count int, remove bool) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one card code")

		return subcommands.ExitUsageError
	}
	cardCode := f.Arg(0)

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	decl, err := e.loadDeclaration(ctx, true)
	if err != nil {
		return fail(err)
	}

	if remove {
		decl.RemoveCards(cardCode, count)
	} else {
		decl.AddCards(cardCode, count)
	}

	if err := collection.Save(e.cfg.Collection.Path, decl); err != nil {
		return fail(err)
	}

	fmt.Printf("Card %s delta is now %+d\n", cardCode, decl.Delta(cardCode))

	return subcommands.ExitSuccess
}

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show collection statistics" }
func (*statsCmd) Usage() string {
	return `simulchip stats

  Shows owned packs, card adjustments and the total number of owned
  copies resolved against the catalog.
`
}
func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	decl, err := e.loadDeclaration(ctx, false)
	if err != nil {
		return fail(err)
	}

	cards, err := e.catalog.AllCards(ctx)
	if err != nil {
		return fail(err)
	}

	resolution := collection.Resolve(decl, cards)

	totalCopies := 0
	distinct := 0
	for _, qty := range resolution.Quantities {
		if qty > 0 {
			distinct++
			totalCopies += qty
		}
	}

	fmt.Printf("Collection: %s\n", e.cfg.Collection.Path)
	fmt.Printf("Owned packs: %d\n", len(decl.Packs))
	for _, code := range decl.SortedPacks() {
		fmt.Printf("  %s\n", code)
	}
	fmt.Printf("Card adjustments: %d\n", len(decl.CardDeltas))
	for _, code := range decl.SortedDeltaCodes() {
		fmt.Printf("  %s %+d\n", code, decl.Delta(code))
	}
	fmt.Printf("Distinct cards owned: %d (%d copies)\n", distinct, totalCopies)

	if len(resolution.Unknown) > 0 {
		fmt.Printf("Unknown card codes (kept for future catalog updates): %v\n", resolution.Unknown)
	}

	return subcommands.ExitSuccess
}
