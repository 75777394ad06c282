package comparison

import (
	"fmt"
	"sort"
	"strings"
)

// FormatReport renders a comparison as text: identity, completion stats
// and missing cards grouped by pack.
func FormatReport(r Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Deck: %s\n", r.Decklist.Name)
	if r.Decklist.IdentityTitle != "" {
		fmt.Fprintf(&b, "Identity: %s (%s)\n", r.Decklist.IdentityTitle, r.Decklist.Side)
	}
	fmt.Fprintf(&b, "Completion: %s (%d/%d copies owned)\n",
		r.Stats.CompletionDisplay(), r.Stats.TotalOwned, r.Stats.TotalRequired)

	missing := r.MissingEntries()
	if len(missing) == 0 {
		b.WriteString("All cards owned.\n")
	} else {
		fmt.Fprintf(&b, "Missing %d copies across %d cards:\n", r.Stats.TotalMissing, len(missing))

		byPack := map[string][]Entry{}
		for _, e := range missing {
			pack := e.PackCode
			if e.LookupFailed {
				pack = "(unknown)"
			}
			byPack[pack] = append(byPack[pack], e)
		}

		packs := make([]string, 0, len(byPack))
		for pack := range byPack {
			packs = append(packs, pack)
		}
		sort.Strings(packs)

		for _, pack := range packs {
			fmt.Fprintf(&b, "  %s\n", pack)
			for _, e := range byPack[pack] {
				title := e.Title
				if e.LookupFailed {
					title = "not in catalog"
				}
				fmt.Fprintf(&b, "    %dx %s [%s]\n", e.Missing, title, e.Code)
			}
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	return b.String()
}
