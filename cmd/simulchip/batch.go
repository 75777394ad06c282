package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// readDecklistURLs reads one decklist URL per line. Blank lines and
// lines starting with # are skipped; a file without any usable line is
// an error.
func readDecklistURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decklist urls, %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no decklist urls found")
	}

	return urls, nil
}

type batchFailure struct {
	URL string
	Err error
}

// batchReport collects the outcome of staging multiple decklists. A
// failed decklist never aborts the batch, it is counted and reported.
type batchReport struct {
	Succeeded int
	Failures  []batchFailure
}

func (r batchReport) Total() int {
	return r.Succeeded + len(r.Failures)
}

// SuccessRate returns the staged fraction as a percentage, zero for an
// empty batch.
func (r batchReport) SuccessRate() float64 {
	if r.Total() == 0 {
		return 0
	}

	return 100 * float64(r.Succeeded) / float64(r.Total())
}

func (r batchReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch complete: %d of %d decklists staged (%.1f%% success)\n",
		r.Succeeded, r.Total(), r.SuccessRate())
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  failed %s: %v\n", f.URL, f.Err)
	}

	return b.String()
}
