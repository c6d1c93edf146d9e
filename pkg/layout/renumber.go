package layout

import "github.com/aretw0/folio/pkg/domain"

type chunkKey struct {
	nodeID string
	chunk  int
}

// Renumber assigns physical page numbers by position and recomputes every cross
// reference from them: each choice points at the first chunk of its target, and each
// split node gets continuation markers pointing at its neighbouring chunks. It returns a
// new slice; the input is not modified.
func Renumber(pages []domain.Page) []domain.Page {
	out := make([]domain.Page, len(pages))
	positions := make(map[chunkKey]int, len(pages))

	for i, p := range pages {
		p.Number = i + 1
		if p.Choices != nil {
			p.Choices = append([]domain.PageChoice(nil), p.Choices...)
		}
		if p.Kind == domain.PageContent {
			positions[chunkKey{p.NodeID, p.Chunk}] = p.Number
		}
		out[i] = p
	}

	for i := range out {
		p := &out[i]
		if p.Kind != domain.PageContent {
			continue
		}

		p.ContinuedFrom, p.ContinuedOn = 0, 0
		if p.Chunk > 0 {
			p.ContinuedFrom = positions[chunkKey{p.NodeID, p.Chunk - 1}]
		}
		if p.Chunk < p.Chunks-1 {
			p.ContinuedOn = positions[chunkKey{p.NodeID, p.Chunk + 1}]
		}

		for j := range p.Choices {
			c := &p.Choices[j]
			c.Page = 0
			if c.NextNodeID != "" {
				c.Page = positions[chunkKey{c.NextNodeID, 0}]
			}
		}
	}

	return out
}
