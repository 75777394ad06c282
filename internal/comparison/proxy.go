package comparison

import (
	"context"
	"fmt"
	"sort"

	"github.com/dfiru/simulchip/internal/netrunnerdb"
)

type Mode int

const (
	// ModeMissing stages only the copies the collection lacks.
	ModeMissing Mode = iota
	// ModeAll stages every required copy regardless of ownership.
	ModeAll
)

// PrintingSource serves the printings of a card, canonical first.
type PrintingSource interface {
	Printings(ctx context.Context, cardCode string) ([]netrunnerdb.Printing, error)
}

type ProxyOptions struct {
	Mode        Mode
	GroupByPack bool
	// PrintingOverrides selects an alternate printing per card code.
	PrintingOverrides map[string]string
}

// ProxyCard is one staged proxy line for the print layer.
type ProxyCard struct {
	Code     string               `json:"code"`
	Title    string               `json:"title"`
	PackCode string               `json:"pack_code"`
	Faction  string               `json:"faction"`
	Count    int                  `json:"count"`
	Printing netrunnerdb.Printing `json:"printing"`
}

// ProxyCards derives the ordered proxy list from a comparison result.
// The order groups by pack code (or faction when not grouping), then by
// card code, and is independent of map iteration order. An unresolvable
// printing override degrades that single card to its canonical printing
// and is reported in the returned warnings.
func ProxyCards(ctx context.Context, r Result, opts ProxyOptions, printings PrintingSource) ([]ProxyCard, []string) {
	var proxies []ProxyCard
	var warnings []string

	for _, entry := range r.Cards {
		count := entry.Missing
		if opts.Mode == ModeAll {
			count = entry.Required
		}
		if count <= 0 {
			continue
		}

		printing, warn := resolvePrinting(ctx, entry, opts.PrintingOverrides[entry.Code], printings)
		if warn != "" {
			warnings = append(warnings, warn)
		}

		proxies = append(proxies, ProxyCard{
			Code:     entry.Code,
			Title:    entry.Title,
			PackCode: entry.PackCode,
			Faction:  entry.Faction,
			Count:    count,
			Printing: printing,
		})
	}

	groupKey := func(p ProxyCard) string {
		if opts.GroupByPack {
			return p.PackCode
		}

		return p.Faction
	}

	sort.Slice(proxies, func(i, j int) bool {
		gi, gj := groupKey(proxies[i]), groupKey(proxies[j])
		if gi != gj {
			return gi < gj
		}

		return proxies[i].Code < proxies[j].Code
	})

	return proxies, warnings
}

func resolvePrinting(ctx context.Context, entry Entry, overrideID string, printings PrintingSource) (netrunnerdb.Printing, string) {
	canonical := netrunnerdb.Printing{
		CardCode: entry.Code,
		ID:       entry.Code,
		ImageURL: entry.ImageURL,
	}

	if overrideID == "" || printings == nil {
		return canonical, ""
	}

	available, err := printings.Printings(ctx, entry.Code)
	if err != nil {
		return canonical, fmt.Sprintf("printings for card %s unavailable, using canonical printing: %v", entry.Code, err)
	}

	for _, p := range available {
		if p.ID == overrideID {
			return p, ""
		}
	}

	return canonical, fmt.Sprintf("printing %s not found for card %s, using canonical printing", overrideID, entry.Code)
}
