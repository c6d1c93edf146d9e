package graph

import (
	"sort"

	"github.com/aretw0/folio/pkg/domain"
)

// Reachable returns every node reachable from fromID through resolved choices,
// fromID included. Nodes in barrier are never collected nor expanded.
func Reachable(story *domain.Story, fromID string, barrier map[string]bool) map[string]bool {
	set := make(map[string]bool)
	if story.Node(fromID) == nil || barrier[fromID] {
		return set
	}

	queue := []string{fromID}
	set[fromID] = true
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		node := story.Node(currentID)
		if node == nil {
			continue
		}
		for _, c := range node.Choices {
			target := c.NextNodeID
			if target == "" || set[target] || barrier[target] {
				continue
			}
			if story.Node(target) == nil {
				continue
			}
			set[target] = true
			queue = append(queue, target)
		}
	}
	return set
}

// DeleteNode removes nodeID and every node reachable from it through resolved choices.
// Reachable descendants are deleted even when another surviving branch also leads to
// them. The start node is never deleted and the traversal does not pass through it, so
// when a cycle leads from nodeID back to the start, the pages only reachable beyond the
// start survive although they are reachable from nodeID.
//
// Surviving choices that pointed into the deleted set become unexplored stubs, and
// deleted ids leave the ending set. It returns the updated story and the sorted ids that
// were removed. On error the input story is returned unchanged.
func DeleteNode(story *domain.Story, nodeID string) (*domain.Story, []string, error) {
	if story == nil {
		return nil, nil, domain.ErrInvalidStory
	}
	if nodeID == story.StartNodeID {
		return story, nil, domain.ErrStartNodeProtected
	}
	if story.Node(nodeID) == nil {
		return story, nil, domain.ErrNodeNotFound
	}

	doomed := Reachable(story, nodeID, map[string]bool{story.StartNodeID: true})

	out := story.Clone()
	removed := make([]string, 0, len(doomed))
	for id := range doomed {
		delete(out.Nodes, id)
		out.UnmarkEnding(id)
		removed = append(removed, id)
	}
	sort.Strings(removed)

	for _, node := range out.Nodes {
		if node == nil {
			continue
		}
		for i := range node.Choices {
			if doomed[node.Choices[i].NextNodeID] {
				node.Choices[i].NextNodeID = ""
				node.Choices[i].Chosen = false
			}
		}
	}

	return out, removed, nil
}
