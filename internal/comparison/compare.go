package comparison

import (
	"fmt"
	"sort"

	"github.com/dfiru/simulchip/internal/collection"
	"github.com/dfiru/simulchip/internal/netrunnerdb"
)

// Entry is the comparison outcome for a single required card.
// LookupFailed marks cards the catalog could not resolve; those degrade
// to owned 0 instead of failing the comparison.
type Entry struct {
	Code         string
	Title        string
	PackCode     string
	Faction      string
	ImageURL     string
	Required     int
	Owned        int
	Missing      int
	LookupFailed bool
}

type Stats struct {
	TotalRequired int
	TotalOwned    int
	TotalMissing  int
}

// Completion returns the owned fraction as an exact percentage in
// [0, 100]. A deck requiring nothing is 0 by definition.
func (s Stats) Completion() float64 {
	if s.TotalRequired == 0 {
		return 0
	}

	return 100 * float64(s.TotalRequired-s.TotalMissing) / float64(s.TotalRequired)
}

// CompletionDisplay renders the completion rounded to one decimal place.
func (s Stats) CompletionDisplay() string {
	return fmt.Sprintf("%.1f%%", s.Completion())
}

// Result is a derived, transient view. It is recomputed on every
// comparison and never persisted.
type Result struct {
	Decklist Decklist
	Cards    map[string]Entry
	Stats    Stats
	Warnings []string
}

// Compare walks every required card of the decklist, looks up its
// resolved availability and derives the missing count. Cards absent from
// the catalog are reported as fully missing and flagged, never fatal.
func Compare(deck Decklist, resolved collection.Resolution, cards map[string]netrunnerdb.Card) Result {
	result := Result{
		Decklist: deck,
		Cards:    make(map[string]Entry, len(deck.Required)),
	}

	failed := 0
	for code, required := range deck.Required {
		entry := Entry{
			Code:     code,
			Required: required,
		}

		card, ok := cards[code]
		if !ok {
			entry.LookupFailed = true
			entry.Missing = required
			failed++
		} else {
			entry.Title = card.Title
			entry.PackCode = card.PackCode
			entry.Faction = card.FactionCode
			entry.ImageURL = card.ImageURL
			entry.Owned = resolved.Available(code)
			entry.Missing = max(0, required-entry.Owned)
		}

		result.Cards[code] = entry

		result.Stats.TotalRequired += required
		result.Stats.TotalMissing += entry.Missing
		result.Stats.TotalOwned += required - entry.Missing
	}

	if failed > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d cards could not be resolved from the catalog", failed))
	}

	return result
}

// SortedEntries returns all entries ordered by card code.
func (r Result) SortedEntries() []Entry {
	entries := make([]Entry, 0, len(r.Cards))
	for _, e := range r.Cards {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })

	return entries
}

// MissingEntries returns the entries with missing copies, ordered by
// card code.
func (r Result) MissingEntries() []Entry {
	var entries []Entry
	for _, e := range r.Cards {
		if e.Missing > 0 {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })

	return entries
}
