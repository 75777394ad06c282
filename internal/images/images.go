// Package images stages card artwork for a proxy list. Images are kept
// in the response cache; alternate printings whose art is perceptually
// identical to the canonical printing are not stored twice.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/dfiru/simulchip/internal/aio"
	"github.com/dfiru/simulchip/internal/cache"
	"github.com/dfiru/simulchip/internal/comparison"
	"github.com/dfiru/simulchip/internal/web"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

const imageKind = "images"

type Report struct {
	Total        int
	Downloaded   int
	Cached       int
	Missing      int
	Deduplicated int
}

type Service struct {
	client  web.Client
	cache   *cache.Cache
	workers int
}

func NewService(client web.Client, c *cache.Cache) *Service {
	return &Service{
		client:  client,
		cache:   c,
		workers: defaultWorkers,
	}
}

func entryKey(printingID, ext string) cache.Key {
	return cache.NewEntryKey(imageKind, printingID).WithExt(ext)
}

// findImage checks each supported image extension for a staged printing.
func (s *Service) findImage(printingID string) (cache.Key, bool) {
	for _, ext := range []string{"jpg", "png"} {
		key := entryKey(printingID, ext)
		if s.cache.Contains(key) {
			return key, true
		}
	}

	return cache.Key{}, false
}

// Path returns the on-disk location of a staged printing image and
// whether it is present.
func (s *Service) Path(p comparison.ProxyCard) (string, bool) {
	key, ok := s.findImage(p.Printing.ID)
	if !ok {
		// deduplicated alternates resolve to the canonical image
		key, ok = s.findImage(p.Code)
		if !ok {
			return "", false
		}
	}

	path, err := s.cache.EntryPath(key)

	return path, err == nil
}

// Ensure downloads the artwork for every staged proxy that is not yet
// cached. Missing images degrade to a counter, they never abort the
// batch.
func (s *Service) Ensure(ctx context.Context, proxies []comparison.ProxyCard) (Report, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var mu sync.Mutex
	report := Report{Total: len(proxies)}

	for _, p := range proxies {
		p := p
		g.Go(func() error {
			outcome, err := s.ensureOne(ctx, p)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeDownloaded:
				report.Downloaded++
			case outcomeCached:
				report.Cached++
			case outcomeMissing:
				report.Missing++
			case outcomeDeduplicated:
				report.Deduplicated++
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return report, nil
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeCached
	outcomeMissing
	outcomeDeduplicated
)

func (s *Service) ensureOne(ctx context.Context, p comparison.ProxyCard) (outcome, error) {
	if p.Printing.ImageURL == "" {
		log.Warn().Str("card", p.Code).Msg("card has no image url")

		return outcomeMissing, nil
	}

	if _, ok := s.findImage(p.Printing.ID); ok {
		return outcomeCached, nil
	}

	data, mimeType, err := s.download(ctx, p.Printing.ImageURL)
	if err != nil {
		if web.IsNotFound(err) {
			log.Warn().Str("card", p.Code).Str("printing", p.Printing.ID).Msg("card image not found")

			return outcomeMissing, nil
		}

		return 0, fmt.Errorf("failed to download image for card %s, %w", p.Code, err)
	}

	// alternates identical to the already staged canonical art are dropped
	if p.Printing.ID != p.Code {
		same, err := s.matchesCanonical(p, data)
		if err != nil {
			log.Warn().Err(err).Str("card", p.Code).Msg("failed to compare printing art, storing anyway")
		} else if same {
			log.Debug().Str("card", p.Code).Str("printing", p.Printing.ID).Msg("printing art identical to canonical")

			return outcomeDeduplicated, nil
		}
	}

	ext, err := mimeType.FileExt()
	if err != nil {
		return 0, fmt.Errorf("failed to stage image for card %s, %w", p.Code, err)
	}

	_, err = s.cache.GetOrFetch(ctx, entryKey(p.Printing.ID, ext), func(context.Context) ([]byte, error) {
		return data, nil
	})
	if err != nil {
		return 0, err
	}

	return outcomeDownloaded, nil
}

func (s *Service) download(ctx context.Context, url string) ([]byte, web.MimeType, error) {
	opts := web.NewGetOpts().WithExpectedCodes(http.StatusOK)

	resp, err := s.client.Get(ctx, url, opts)
	if err != nil {
		return nil, web.MimeType{}, err
	}
	defer aio.Close(resp.Body)

	if !resp.MimeType.IsImage() {
		return nil, web.MimeType{}, fmt.Errorf("unsupported image content type %s from %s", resp.MimeType.Raw(), url)
	}

	data, err := io.ReadAll(resp.Body)

	return data, resp.MimeType, err
}

// matchesCanonical reports whether the downloaded alternate art is
// perceptually identical to the cached canonical image of the same card.
func (s *Service) matchesCanonical(p comparison.ProxyCard, data []byte) (bool, error) {
	key, ok := s.findImage(p.Code)
	if !ok {
		return false, nil
	}
	canonicalPath, err := s.cache.EntryPath(key)
	if err != nil {
		return false, err
	}

	canonical, err := decodeFile(canonicalPath)
	if err != nil {
		return false, err
	}
	alternate, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to decode downloaded image, %w", err)
	}

	const hashSize = 16
	canonicalHash, err := goimagehash.ExtPerceptionHash(canonical, hashSize, hashSize)
	if err != nil {
		return false, err
	}
	alternateHash, err := goimagehash.ExtPerceptionHash(alternate, hashSize, hashSize)
	if err != nil {
		return false, err
	}

	distance, err := canonicalHash.Distance(alternateHash)
	if err != nil {
		return false, err
	}

	return distance == 0, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s, %w", path, err)
	}
	defer aio.Close(f)

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s, %w", path, err)
	}

	return img, nil
}
