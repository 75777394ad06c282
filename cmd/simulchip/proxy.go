package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfiru/simulchip/internal/aio"
	"github.com/dfiru/simulchip/internal/comparison"
	"github.com/dfiru/simulchip/internal/images"
	"github.com/google/subcommands"
)

type proxyCmd struct {
	all         bool
	batch       bool
	groupByPack bool
	noImages    bool
	refresh     bool
	output      string
}

func (*proxyCmd) Name() string { return "proxy" }
func (*proxyCmd) Synopsis() string {
	return "stage missing cards of a decklist as a proxy manifest"
}
func (*proxyCmd) Usage() string {
	return `simulchip proxy [-all] [-group-by-pack] [-no-images] [-refresh] [-o <file>] <decklist-url-or-id>
simulchip proxy -batch [flags] <url-file>

  Derives the proxy list for a decklist, downloads the card artwork into
  the cache and writes a JSON manifest for the print stage. With -batch
  the argument is a file of decklist URLs, one per line (# comments and
  blank lines skipped); every decklist gets its default manifest path and
  a failed decklist does not stop the rest.
`
}

func (c *proxyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "stage every required copy instead of only missing ones")
	f.BoolVar(&c.batch, "batch", false, "treat the argument as a file of decklist URLs")
	f.BoolVar(&c.groupByPack, "group-by-pack", false, "order proxies by pack code instead of faction")
	f.BoolVar(&c.noImages, "no-images", false, "skip downloading card artwork")
	f.BoolVar(&c.refresh, "refresh", false, "drop the cached decklist before fetching")
	f.StringVar(&c.output, "o", "", "manifest file, defaults to decks/<side>/<id>/<name>.json, ignored with -batch")
}

// manifest is the written proxy file: the staged cards plus the on-disk
// location of their artwork where available.
type manifest struct {
	DecklistID string          `json:"decklist_id"`
	Name       string          `json:"name"`
	Identity   string          `json:"identity,omitempty"`
	Side       string          `json:"side,omitempty"`
	Cards      []manifestEntry `json:"cards"`
}

type manifestEntry struct {
	comparison.ProxyCard
	ImagePath string `json:"image_path,omitempty"`
}

func (c *proxyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one decklist URL, ID or batch file")

		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		return fail(err)
	}

	if c.batch {
		return c.executeBatch(ctx, e, f.Arg(0))
	}

	if err := c.stage(ctx, e, f.Arg(0)); err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

func (c *proxyCmd) executeBatch(ctx context.Context, e *env, path string) subcommands.ExitStatus {
	file, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	urls, err := readDecklistURLs(file)
	aio.Close(file)
	if err != nil {
		return fail(fmt.Errorf("batch file %s, %w", path, err))
	}

	fmt.Printf("Found %d decklists to process\n", len(urls))

	var report batchReport
	for i, url := range urls {
		fmt.Printf("Processing %d/%d: %s\n", i+1, len(urls), url)
		if err := c.stage(ctx, e, url); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			report.Failures = append(report.Failures, batchFailure{URL: url, Err: err})

			continue
		}
		report.Succeeded++
	}

	fmt.Print(report.Summary())

	if report.Succeeded == 0 {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// stage runs the proxy pipeline for a single decklist.
func (c *proxyCmd) stage(ctx context.Context, e *env, rawURL string) error {
	result, err := compareDecklist(ctx, e, rawURL, c.refresh)
	if err != nil {
		return err
	}

	opts := comparison.ProxyOptions{GroupByPack: c.groupByPack}
	if c.all {
		opts.Mode = comparison.ModeAll
	}

	proxies, warnings := comparison.ProxyCards(ctx, result, opts, e.catalog)
	warnings = append(result.Warnings, warnings...)

	if len(proxies) == 0 {
		fmt.Println("Nothing to proxy, all cards owned.")

		return nil
	}

	svc := images.NewService(e.web, e.cache)
	if !c.noImages {
		report, err := svc.Ensure(ctx, proxies)
		if err != nil {
			return err
		}
		fmt.Printf("Images: %d downloaded, %d cached, %d deduplicated, %d missing\n",
			report.Downloaded, report.Cached, report.Deduplicated, report.Missing)
	}

	path := c.output
	if path == "" || c.batch {
		path = defaultManifestPath(result.Decklist)
	}

	if err := writeManifest(path, result.Decklist, proxies, svc); err != nil {
		return err
	}

	fmt.Printf("Staged %d proxies to %s\n", len(proxies), path)
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	return nil
}

func defaultManifestPath(deck comparison.Decklist) string {
	side := string(deck.Side)
	if side == "" {
		side = "unknown"
	}

	name := sanitizeFilename(deck.Name)
	if name == "" {
		name = "decklist"
	}

	return filepath.Join("decks", side, deck.ID, name+".json")
}

// sanitizeFilename keeps letters, digits and dashes; everything else
// collapses to a single dash.
func sanitizeFilename(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

func writeManifest(path string, deck comparison.Decklist, proxies []comparison.ProxyCard, svc *images.Service) error {
	entries := make([]manifestEntry, 0, len(proxies))
	for _, p := range proxies {
		entry := manifestEntry{ProxyCard: p}
		if imagePath, ok := svc.Path(p); ok {
			entry.ImagePath = imagePath
		}
		entries = append(entries, entry)
	}

	m := manifest{
		DecklistID: deck.ID,
		Name:       deck.Name,
		Identity:   deck.IdentityTitle,
		Side:       string(deck.Side),
		Cards:      entries,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest, %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create manifest dir, %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write manifest %s, %w", path, err)
	}

	return nil
}
