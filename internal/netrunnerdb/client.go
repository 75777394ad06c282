// Package netrunnerdb consumes the public NetrunnerDB catalog: cards,
// packs, cycles, decklists and printings. Every response goes through
// the local response cache, so repeated runs never re-fetch static
// reference data.
package netrunnerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/dfiru/simulchip/internal/aio"
	"github.com/dfiru/simulchip/internal/cache"
	"github.com/dfiru/simulchip/internal/config"
	"github.com/dfiru/simulchip/internal/web"
	"github.com/rs/zerolog/log"
)

var ErrDecklistNotFound = fmt.Errorf("decklist not found")

var decklistIDPattern = regexp.MustCompile(`/(?:en/)?decklist/(?:view/)?([A-Za-z0-9_-]+)`)
var plainIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractDecklistID pulls the decklist ID out of a NetrunnerDB URL.
// Bare IDs are accepted as-is. The bool is false for unusable input.
func ExtractDecklistID(rawURL string) (string, bool) {
	if m := decklistIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	if plainIDPattern.MatchString(rawURL) {
		return rawURL, true
	}

	return "", false
}

type Client struct {
	web   web.Client
	cache *cache.Cache
	cfg   config.Netrunnerdb
}

func NewClient(webClient web.Client, c *cache.Cache, cfg config.Netrunnerdb) *Client {
	return &Client{
		web:   webClient,
		cache: c,
		cfg:   cfg,
	}
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

func decodeData[T any](data []byte, url string) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response from %s, %w", url, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("missing 'data' field in catalog response from %s", url)
	}

	return env.Data, nil
}

func (c *Client) fetchCached(ctx context.Context, key cache.Key, url string) ([]byte, error) {
	return c.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		log.Debug().Str("url", url).Msg("fetching catalog data")

		resp, err := c.web.Get(ctx, url, web.NewGetOpts())
		if err != nil {
			return nil, err
		}
		defer aio.Close(resp.Body)

		return io.ReadAll(resp.Body)
	})
}

// AllCards returns every card known to the catalog, keyed by card code.
func (c *Client) AllCards(ctx context.Context) (map[string]Card, error) {
	url := c.cfg.BaseURL + "/cards"
	data, err := c.fetchCached(ctx, cache.NewKey("cards"), url)
	if err != nil {
		return nil, err
	}

	list, err := decodeData[Card](data, url)
	if err != nil {
		return nil, err
	}

	cards := make(map[string]Card, len(list))
	for _, card := range list {
		if card.Code == "" {
			continue
		}
		cards[card.Code] = card
	}

	return cards, nil
}

func (c *Client) AllPacks(ctx context.Context) ([]Pack, error) {
	url := c.cfg.BaseURL + "/packs"
	data, err := c.fetchCached(ctx, cache.NewKey("packs"), url)
	if err != nil {
		return nil, err
	}

	return decodeData[Pack](data, url)
}

// CycleNames returns the cycle code to cycle name mapping.
func (c *Client) CycleNames(ctx context.Context) (map[string]string, error) {
	url := c.cfg.BaseURL + "/cycles"
	data, err := c.fetchCached(ctx, cache.NewKey("cycles"), url)
	if err != nil {
		return nil, err
	}

	list, err := decodeData[Cycle](data, url)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(list))
	for _, cycle := range list {
		if cycle.Code == "" || cycle.Name == "" {
			continue
		}
		names[cycle.Code] = cycle.Name
	}

	return names, nil
}

// PacksByReleaseDate returns all packs ordered by release date, cycle
// names enriched from the cycles endpoint. Packs without a release date
// sort last.
func (c *Client) PacksByReleaseDate(ctx context.Context, newestFirst bool) ([]Pack, error) {
	packs, err := c.AllPacks(ctx)
	if err != nil {
		return nil, err
	}

	names, err := c.CycleNames(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]Pack, 0, len(packs))
	for _, p := range packs {
		if p.Code == "" || p.Name == "" {
			continue
		}
		if name, ok := names[p.CycleCode]; ok {
			p.Cycle = name
		}
		valid = append(valid, p)
	}

	sortKey := func(p Pack) string {
		if p.DateRelease != "" {
			return p.DateRelease
		}
		// undated packs always sort after dated ones
		if newestFirst {
			return "0000"
		}

		return "9999"
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if newestFirst {
			return sortKey(valid[i]) > sortKey(valid[j])
		}

		return sortKey(valid[i]) < sortKey(valid[j])
	})

	return valid, nil
}

// Decklist fetches a published decklist by ID through the cache.
func (c *Client) Decklist(ctx context.Context, id string) (DecklistData, error) {
	if id == "" || !plainIDPattern.MatchString(id) {
		return DecklistData{}, fmt.Errorf("invalid decklist id %q", id)
	}

	url := c.cfg.BaseURL + "/decklist/" + id
	data, err := c.fetchCached(ctx, cache.NewEntryKey("decklist", id), url)
	if err != nil {
		return DecklistData{}, err
	}

	list, err := decodeData[DecklistData](data, url)
	if err != nil {
		return DecklistData{}, err
	}
	if len(list) == 0 {
		return DecklistData{}, fmt.Errorf("%w: %s", ErrDecklistNotFound, id)
	}

	return list[0], nil
}

// RefreshDecklist drops the cached copy before fetching again.
func (c *Client) RefreshDecklist(ctx context.Context, id string) (DecklistData, error) {
	if err := c.cache.Invalidate(cache.NewEntryKey("decklist", id)); err != nil {
		return DecklistData{}, err
	}

	return c.Decklist(ctx, id)
}

// Printings returns the printings of a card, canonical first. The
// canonical printing is derived from the card's own image url; alternate
// printings come from the configured printings endpoint when present.
func (c *Client) Printings(ctx context.Context, cardCode string) ([]Printing, error) {
	cards, err := c.AllCards(ctx)
	if err != nil {
		return nil, err
	}

	card, ok := cards[cardCode]
	if !ok {
		return nil, fmt.Errorf("unknown card code %s", cardCode)
	}

	canonical := Printing{
		CardCode: cardCode,
		ID:       cardCode,
		ImageURL: card.ImageURL,
	}
	if canonical.ImageURL == "" {
		canonical.ImageURL = c.cfg.BuildImageURL(cardCode)
	}

	printings := []Printing{canonical}

	url := c.cfg.BuildPrintingsURL(cardCode)
	if url == "" {
		return printings, nil
	}

	data, err := c.fetchCached(ctx, cache.NewEntryKey("printings", cardCode), url)
	if err != nil {
		return nil, err
	}

	alternates, err := decodeData[Printing](data, url)
	if err != nil {
		return nil, err
	}

	for _, alt := range alternates {
		if alt.ID == "" || alt.ID == canonical.ID || alt.ImageURL == "" {
			continue
		}
		alt.CardCode = cardCode
		printings = append(printings, alt)
	}

	return printings, nil
}
