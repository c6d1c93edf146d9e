package graph

import (
	"sort"

	"github.com/aretw0/folio/pkg/domain"
)

// Inspect crawls the story from its start node and reports dangling references,
// orphans and open stubs.
func Inspect(story *domain.Story) domain.Report {
	var report domain.Report
	if story == nil {
		report.StartMissing = true
		return report
	}
	report.Nodes = len(story.Nodes)
	report.StartMissing = !story.HasStart()

	ids := make([]string, 0, len(story.Nodes))
	for id := range story.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := story.Nodes[id]
		if node == nil {
			continue
		}
		for _, c := range node.Choices {
			switch {
			case c.NextNodeID == "":
				report.OpenStubs++
			case story.Node(c.NextNodeID) == nil:
				report.Dangling = append(report.Dangling, domain.DanglingRef{
					NodeID:   id,
					ChoiceID: c.ID,
					Target:   c.NextNodeID,
				})
			}
		}
	}

	for _, id := range story.EndNodeIDs {
		if story.Node(id) != nil {
			report.Endings++
		}
	}

	if report.StartMissing {
		return report
	}

	reachable := Reachable(story, story.StartNodeID, nil)
	report.Reachable = len(reachable)
	for _, id := range ids {
		if !reachable[id] {
			report.Orphans = append(report.Orphans, id)
		}
	}
	return report
}
