package layout

import (
	"math/rand/v2"

	"github.com/aretw0/folio/pkg/domain"
)

// ShuffleMinPages is the number of content pages below which Shuffle is a no-op.
const ShuffleMinPages = 3

// Shuffle randomly reorders the nodes of a laid-out book while keeping each node's
// chunks together and in order. The front matter stays first and the start node's
// group (pages flagged Start, else the first content group) stays immediately after
// the back cover.
// Remaining groups are permuted with Fisher-Yates using rng; a nil rng uses the global
// source. Cross references are recomputed for the new positions.
func Shuffle(pages []domain.Page, rng *rand.Rand) []domain.Page {
	content := 0
	for _, p := range pages {
		if p.Kind == domain.PageContent {
			content++
		}
	}
	if content < ShuffleMinPages {
		return pages
	}

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	var front []domain.Page
	groups := make(map[string][]domain.Page)
	var order []string
	start := ""
	for _, p := range pages {
		if p.Kind != domain.PageContent {
			front = append(front, p)
			continue
		}
		if _, ok := groups[p.NodeID]; !ok {
			order = append(order, p.NodeID)
		}
		groups[p.NodeID] = append(groups[p.NodeID], p)
		if p.Start && start == "" {
			start = p.NodeID
		}
	}
	if start == "" {
		start = order[0]
	}

	rest := make([]string, 0, len(order)-1)
	for _, id := range order {
		if id != start {
			rest = append(rest, id)
		}
	}
	for i := len(rest) - 1; i > 0; i-- {
		j := intN(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}

	out := make([]domain.Page, 0, len(pages))
	out = append(out, front...)
	out = append(out, groups[start]...)
	for _, id := range rest {
		out = append(out, groups[id]...)
	}
	return Renumber(out)
}
