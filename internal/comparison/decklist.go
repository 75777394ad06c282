// Package comparison turns a published decklist and the resolved
// collection quantities into per-card missing counts, aggregate stats
// and an ordered proxy list for the print stage.
package comparison

import (
	"strconv"

	"github.com/dfiru/simulchip/internal/netrunnerdb"
)

// Decklist is the typed view of a published decklist: identity split
// out, remaining cards as required quantities.
type Decklist struct {
	ID            string
	Name          string
	IdentityCode  string
	IdentityTitle string
	Side          netrunnerdb.Side
	Required      map[string]int
}

// NewDecklist builds a Decklist from raw catalog data. The identity card
// is recognized by its catalog type and removed from the requirements;
// when no identity can be identified (catalog gap), the side stays empty
// and nothing is removed.
func NewDecklist(raw netrunnerdb.DecklistData, cards map[string]netrunnerdb.Card) Decklist {
	deck := Decklist{
		ID:       strconv.FormatInt(raw.ID, 10),
		Name:     raw.Name,
		Required: make(map[string]int, len(raw.Cards)),
	}

	identityCode := ""
	for code := range raw.Cards {
		card, ok := cards[code]
		if !ok || card.TypeCode != netrunnerdb.TypeIdentity {
			continue
		}
		// deterministic pick if a decklist ever lists two identities
		if identityCode == "" || code < identityCode {
			identityCode = code
		}
	}

	for code, qty := range raw.Cards {
		if code == identityCode {
			continue
		}
		deck.Required[code] = qty
	}

	if identityCode != "" {
		identity := cards[identityCode]
		deck.IdentityCode = identityCode
		deck.IdentityTitle = identity.Title
		if side, ok := netrunnerdb.FactionSide(identity.FactionCode); ok {
			deck.Side = side
		}
	}

	return deck
}
