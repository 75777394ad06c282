package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type cacheCmd struct {
	stats bool
	reset bool
}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "inspect or clear the response cache" }
func (*cacheCmd) Usage() string {
	return `simulchip cache -stats | -reset

  Shows cache statistics or removes every cached entry. Cached data has
  no expiry, dropping it is the only way to refresh catalog snapshots.
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.stats, "stats", false, "show entry count and total size")
	f.BoolVar(&c.reset, "reset", false, "remove all cached entries")
}

func (c *cacheCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.stats == c.reset {
		fmt.Fprintln(os.Stderr, "Expected exactly one of -stats or -reset")

		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	if c.reset {
		if err := e.cache.Reset(); err != nil {
			return fail(err)
		}
		fmt.Printf("Cleared cache at %s\n", e.cache.Location())

		return subcommands.ExitSuccess
	}

	stats, err := e.cache.Stats()
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Cache: %s\n", e.cache.Location())
	fmt.Printf("Entries: %d\n", stats.Entries)
	fmt.Printf("Size: %.2f MB\n", stats.SizeMB())

	return subcommands.ExitSuccess
}
