// Package collection holds the user's ownership declaration: the set of
// owned packs plus signed per-card adjustments, and the pure resolution
// of both into concrete available quantities.
package collection

import "sort"

// Declaration is the canonical in-memory ownership representation.
// CardDeltas values are differences from the pack-default contribution,
// never absolute counts. A positive delta on a card whose pack is not
// owned represents individually acquired copies.
type Declaration struct {
	Packs      map[string]struct{}
	CardDeltas map[string]int
}

func NewDeclaration() *Declaration {
	return &Declaration{
		Packs:      map[string]struct{}{},
		CardDeltas: map[string]int{},
	}
}

// AddPack marks a pack as owned. Returns false if it already was.
func (d *Declaration) AddPack(packCode string) bool {
	if _, ok := d.Packs[packCode]; ok {
		return false
	}
	d.Packs[packCode] = struct{}{}

	return true
}

// RemovePack unmarks an owned pack. Returns false if it was not owned.
func (d *Declaration) RemovePack(packCode string) bool {
	if _, ok := d.Packs[packCode]; !ok {
		return false
	}
	delete(d.Packs, packCode)

	return true
}

func (d *Declaration) HasPack(packCode string) bool {
	_, ok := d.Packs[packCode]

	return ok
}

func (d *Declaration) SortedPacks() []string {
	packs := make([]string, 0, len(d.Packs))
	for code := range d.Packs {
		packs = append(packs, code)
	}
	sort.Strings(packs)

	return packs
}

func (d *Declaration) Delta(cardCode string) int {
	return d.CardDeltas[cardCode]
}

// SetDelta pins the delta for a card. Zero deltas are dropped from the
// map so the persisted file stays minimal.
func (d *Declaration) SetDelta(cardCode string, delta int) {
	if delta == 0 {
		delete(d.CardDeltas, cardCode)

		return
	}
	d.CardDeltas[cardCode] = delta
}

// ModifyDelta shifts the delta for a card by the given amount.
func (d *Declaration) ModifyDelta(cardCode string, by int) {
	d.SetDelta(cardCode, d.CardDeltas[cardCode]+by)
}

// AddCards records count individually acquired copies of a card.
func (d *Declaration) AddCards(cardCode string, count int) {
	d.ModifyDelta(cardCode, count)
}

// RemoveCards records count copies leaving the collection, e.g. lost or
// traded away.
func (d *Declaration) RemoveCards(cardCode string, count int) {
	d.ModifyDelta(cardCode, -count)
}
