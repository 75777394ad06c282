package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dfiru/simulchip/internal/aio"
	"github.com/dfiru/simulchip/internal/netrunnerdb"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrNotFound signals an absent collection file. Callers decide whether
// absence means "create new".
var ErrNotFound = fmt.Errorf("collection file not found")

// ParseError reports a structurally invalid collection file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed collection file %s, %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// document is the on-disk TOML shape. The canonical form carries packs
// and card_diffs; cards (absolute overrides) and missing are the legacy
// form, accepted on read only.
type document struct {
	Packs     []string       `toml:"packs"`
	CardDiffs map[string]int `toml:"card_diffs,omitempty"`
	Cards     map[string]int `toml:"cards,omitempty"`
	Missing   map[string]int `toml:"missing,omitempty"`
}

// Load reads a declaration from path. Legacy documents are migrated to
// the canonical delta form using the given catalog cards; migration
// happens only at load time, never on save.
func Load(path string, cards map[string]netrunnerdb.Card) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("failed to read collection file %s, %w", path, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	decl := NewDeclaration()
	for _, packCode := range doc.Packs {
		decl.AddPack(packCode)
	}
	for code, delta := range doc.CardDiffs {
		decl.ModifyDelta(code, delta)
	}

	migrateLegacy(decl, doc, cards)

	return decl, nil
}

// migrateLegacy folds the legacy absolute override and missing maps into
// deltas. An absolute override N on a card whose pack is owned becomes
// N - copies_per_pack; for a non-owned (or unknown) pack it becomes N.
// Every missing entry M subtracts M.
func migrateLegacy(decl *Declaration, doc document, cards map[string]netrunnerdb.Card) {
	for code, absolute := range doc.Cards {
		packContribution := 0
		if card, ok := cards[code]; ok && decl.HasPack(card.PackCode) {
			packContribution = card.Quantity
		}
		decl.ModifyDelta(code, absolute-packContribution)
	}

	for code, missing := range doc.Missing {
		decl.ModifyDelta(code, -missing)
	}
}

// Save writes the declaration in its canonical shape, replacing the file
// atomically.
func Save(path string, decl *Declaration) (err error) {
	doc := document{
		Packs:     decl.SortedPacks(),
		CardDiffs: decl.CardDeltas,
	}
	if doc.Packs == nil {
		doc.Packs = []string{}
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode collection, %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create collection dir %s, %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".collection-*")
	if err != nil {
		return fmt.Errorf("failed to create temp collection file, %w", err)
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
				err = errors.Wrap(err, rmErr.Error())
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		aio.Close(tmp)

		return fmt.Errorf("failed to write collection file, %w", err)
	}
	if err = tmp.Sync(); err != nil {
		aio.Close(tmp)

		return fmt.Errorf("failed to sync collection file, %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close collection file, %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace collection file %s, %w", path, err)
	}

	return nil
}

// SortedDeltaCodes returns the card codes carrying a delta, ascending.
func (d *Declaration) SortedDeltaCodes() []string {
	codes := make([]string, 0, len(d.CardDeltas))
	for code := range d.CardDeltas {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}
