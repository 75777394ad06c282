package netrunnerdb

// TypeIdentity is the type_code that marks a deck's identity card.
const TypeIdentity = "identity"

type Card struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	FactionCode string `json:"faction_code"`
	PackCode    string `json:"pack_code"`
	Quantity    int    `json:"quantity"`
	DeckLimit   int    `json:"deck_limit"`
	ImageURL    string `json:"image_url"`
}

type Pack struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Position    int    `json:"position"`
	CycleCode   string `json:"cycle_code"`
	Cycle       string `json:"cycle"`
	DateRelease string `json:"date_release"`
}

type Cycle struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DecklistData is the raw decklist as published by the catalog. The card
// map still contains the identity card.
type DecklistData struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Cards map[string]int `json:"cards"`
}

// Printing is one visual variant of a card. The first printing returned
// for a card is the canonical one.
type Printing struct {
	CardCode string `json:"card_code"`
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
}

type Side string

const (
	SideRunner Side = "runner"
	SideCorp   Side = "corp"
)

var corpFactions = map[string]struct{}{
	"haas-bioroid":       {},
	"jinteki":            {},
	"nbn":                {},
	"weyland-consortium": {},
	"neutral-corp":       {},
}

var runnerFactions = map[string]struct{}{
	"anarch":         {},
	"criminal":       {},
	"shaper":         {},
	"adam":           {},
	"apex":           {},
	"sunny-lebeau":   {},
	"neutral-runner": {},
}

// FactionSide maps a faction code to its side. The bool is false for
// unknown factions.
func FactionSide(factionCode string) (Side, bool) {
	if _, ok := corpFactions[factionCode]; ok {
		return SideCorp, true
	}
	if _, ok := runnerFactions[factionCode]; ok {
		return SideRunner, true
	}

	return "", false
}
