package layout

import (
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/graph"
)

// Layout builds the physical page sequence of a story: cover, back cover, then every
// node in ascending logical page order, one page per text chunk. The illustration goes
// on a node's first chunk; choices and the ending marker go on its last. A nil pageMap is
// computed with graph.AssignPageNumbers. A story without a valid start yields no pages.
func Layout(story *domain.Story, pageMap map[string]int, cfg Config) []domain.Page {
	if story == nil || !story.HasStart() {
		return nil
	}
	if pageMap == nil {
		pageMap = graph.AssignPageNumbers(story.Nodes, story.StartNodeID)
	}
	cfg = cfg.withDefaults()

	pages := []domain.Page{
		{Kind: domain.PageCover, Title: story.Title, CoverURL: story.CoverURL},
		{Kind: domain.PageBackCover, Title: story.Title, Summary: story.Prompt},
	}

	for _, id := range graph.OrderByPage(pageMap) {
		node := story.Node(id)
		if node == nil {
			continue
		}

		chunks := Split(node.Text, cfg.limitFor(node.IllustrationURL != ""), cfg.MinSplitRatio)
		for i, chunk := range chunks {
			p := domain.Page{
				Kind:   domain.PageContent,
				NodeID: id,
				Start:  id == story.StartNodeID,
				Chunk:  i,
				Chunks: len(chunks),
				Text:   chunk,
			}
			if p.First() {
				p.IllustrationURL = node.IllustrationURL
			}
			if p.Last() {
				p.Choices = printedChoices(story, node)
				p.Ending = story.IsEnding(id)
			}
			pages = append(pages, p)
		}
	}

	return Renumber(pages)
}

func printedChoices(story *domain.Story, node *domain.Node) []domain.PageChoice {
	if len(node.Choices) == 0 {
		return nil
	}
	out := make([]domain.PageChoice, 0, len(node.Choices))
	for _, c := range node.Choices {
		pc := domain.PageChoice{Text: c.Text}
		if story.Node(c.NextNodeID) != nil {
			pc.NextNodeID = c.NextNodeID
		}
		out = append(out, pc)
	}
	return out
}
