package comparison_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dfiru/simulchip/internal/comparison"
	"github.com/dfiru/simulchip/internal/netrunnerdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrintings struct {
	printings map[string][]netrunnerdb.Printing
	err       error
}

func (f *fakePrintings) Printings(_ context.Context, cardCode string) ([]netrunnerdb.Printing, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.printings[cardCode], nil
}

func compareDeck(t *testing.T, required map[string]int, deltas map[string]int) comparison.Result {
	t.Helper()

	deck := comparison.Decklist{ID: "1", Name: "Test", Required: required}

	return comparison.Compare(deck, ownedCore(deltas), catalog())
}

func TestProxyCards_ModeMissing(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3, "02047": 2}, map[string]int{"01016": -1})

	proxies, warnings := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)

	require.Len(t, proxies, 2)
	assert.Empty(t, warnings)
	for _, p := range proxies {
		switch p.Code {
		case "01016":
			assert.Equal(t, 1, p.Count)
		case "02047":
			assert.Equal(t, 2, p.Count)
		default:
			t.Fatalf("unexpected proxy %s", p.Code)
		}
	}
}

func TestProxyCards_ModeAll(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3}, nil) // fully owned

	missingOnly, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)
	all, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{Mode: comparison.ModeAll}, nil)

	assert.Empty(t, missingOnly, "owned cards are skipped by default")
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].Count)
}

func TestProxyCards_Ordering(t *testing.T) {
	required := map[string]int{"02047": 1, "01016": 1, "99999": 1}
	result := compareDeck(t, required, map[string]int{"01016": -3})

	byFaction, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)
	codes := make([]string, 0, len(byFaction))
	for _, p := range byFaction {
		codes = append(codes, p.Code)
	}
	// empty faction of the unknown card sorts first, then criminal, then neutral
	assert.Equal(t, []string{"99999", "02047", "01016"}, codes)

	byPack, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{GroupByPack: true}, nil)
	codes = codes[:0]
	for _, p := range byPack {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{"99999", "01016", "02047"}, codes)
}

func TestProxyCards_OrderingIsStable(t *testing.T) {
	required := map[string]int{}
	for i := 10; i < 40; i++ {
		required[fmt.Sprintf("03%03d", i)] = 1
	}
	result := compareDeck(t, required, nil)

	first, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)
	second, _ := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)

	assert.Equal(t, first, second, "order must not depend on map iteration")
}

func TestProxyCards_CanonicalPrinting(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3}, map[string]int{"01016": -3})

	proxies, warnings := comparison.ProxyCards(context.Background(), result, comparison.ProxyOptions{}, nil)

	assert.Empty(t, warnings)
	require.Len(t, proxies, 1)
	assert.Equal(t, "01016", proxies[0].Printing.ID)
	assert.Equal(t, "https://example.com/01016.jpg", proxies[0].Printing.ImageURL)
}

func TestProxyCards_PrintingOverride(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3}, map[string]int{"01016": -3})
	source := &fakePrintings{printings: map[string][]netrunnerdb.Printing{
		"01016": {
			{CardCode: "01016", ID: "01016", ImageURL: "https://example.com/01016.jpg"},
			{CardCode: "01016", ID: "31010", ImageURL: "https://example.com/31010.jpg"},
		},
	}}
	opts := comparison.ProxyOptions{
		PrintingOverrides: map[string]string{"01016": "31010"},
	}

	proxies, warnings := comparison.ProxyCards(context.Background(), result, opts, source)

	assert.Empty(t, warnings)
	require.Len(t, proxies, 1)
	assert.Equal(t, "31010", proxies[0].Printing.ID)
	assert.Equal(t, "https://example.com/31010.jpg", proxies[0].Printing.ImageURL)
}

func TestProxyCards_OverrideFallsBackToCanonical(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3}, map[string]int{"01016": -3})
	opts := comparison.ProxyOptions{
		PrintingOverrides: map[string]string{"01016": "31010"},
	}

	cases := []struct {
		name   string
		source comparison.PrintingSource
		warn   string
	}{
		{
			name:   "printing id unknown",
			source: &fakePrintings{},
			warn:   "not found",
		},
		{
			name:   "printings endpoint fails",
			source: &fakePrintings{err: fmt.Errorf("boom")},
			warn:   "unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proxies, warnings := comparison.ProxyCards(context.Background(), result, opts, tc.source)

			require.Len(t, proxies, 1)
			assert.Equal(t, "01016", proxies[0].Printing.ID, "degrades to canonical")
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], tc.warn)
		})
	}
}

func TestFormatReport(t *testing.T) {
	raw := netrunnerdb.DecklistData{
		ID:    7,
		Name:  "Noisy Mess",
		Cards: map[string]int{"01001": 1, "01016": 3, "02047": 2, "99999": 1},
	}
	deck := comparison.NewDecklist(raw, catalog())
	result := comparison.Compare(deck, ownedCore(nil), catalog())

	report := comparison.FormatReport(result)

	assert.Contains(t, report, "Deck: Noisy Mess")
	assert.Contains(t, report, "Identity: Noise (runner)")
	assert.Contains(t, report, "2x Special Order [02047]")
	assert.Contains(t, report, "(unknown)")
	assert.Contains(t, report, "Warning: 1 cards could not be resolved")
	assert.False(t, strings.Contains(report, "Sure Gamble"), "owned cards are not listed")
}

func TestFormatReport_AllOwned(t *testing.T) {
	result := compareDeck(t, map[string]int{"01016": 3}, nil)

	report := comparison.FormatReport(result)

	assert.Contains(t, report, "All cards owned.")
	assert.Contains(t, report, "100.0%")
}
