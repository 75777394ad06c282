package collection

import (
	"sort"

	"github.com/dfiru/simulchip/internal/netrunnerdb"
)

// Resolution is the concrete per-card availability derived from a
// declaration. Unknown lists card codes that carry a delta but are not
// present in the catalog; those stay in the declaration but are excluded
// from the quantities.
type Resolution struct {
	Quantities map[string]int
	Unknown    []string
}

// Available returns the resolved quantity for a card code, zero for
// codes outside the catalog.
func (r Resolution) Available(cardCode string) int {
	return r.Quantities[cardCode]
}

// Resolve computes the available quantity for every catalog card: the
// pack-default contribution when the card's pack is owned, shifted by
// the card's delta and clamped at zero. Resolve is pure, calling it
// twice with the same inputs yields the same output.
func Resolve(decl *Declaration, cards map[string]netrunnerdb.Card) Resolution {
	quantities := make(map[string]int, len(cards))

	for code, card := range cards {
		base := 0
		if decl.HasPack(card.PackCode) {
			base = card.Quantity
		}

		available := base + decl.Delta(code)
		if available < 0 {
			available = 0
		}
		quantities[code] = available
	}

	var unknown []string
	for code := range decl.CardDeltas {
		if _, ok := cards[code]; !ok {
			unknown = append(unknown, code)
		}
	}
	sort.Strings(unknown)

	return Resolution{
		Quantities: quantities,
		Unknown:    unknown,
	}
}
