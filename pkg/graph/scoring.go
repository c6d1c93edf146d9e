package graph

import (
	"sort"

	"github.com/aretw0/folio/pkg/domain"
)

// ParentMap maps a node id to the single predecessor used for scoring.
type ParentMap map[string]string

// BuildParentMap records, for every resolved choice, parent[target] = node.
// When a node has several incoming edges the last writer wins. Nodes are visited in
// ascending id order and choices in stored order, so the surviving predecessor is
// deterministic for a given graph.
func BuildParentMap(story *domain.Story) ParentMap {
	parents := make(ParentMap)
	if story == nil {
		return parents
	}

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
			if c.NextNodeID == "" || story.Node(c.NextNodeID) == nil {
				continue
			}
			parents[c.NextNodeID] = id
		}
	}
	return parents
}

// Path reconstructs the root-to-target path through parents. It returns nil when the
// chain does not reach the start node.
func Path(story *domain.Story, targetID string, parents ParentMap) []string {
	if story == nil || !story.HasStart() || story.Node(targetID) == nil {
		return nil
	}

	path := []string{targetID}
	visited := map[string]bool{targetID: true}
	current := targetID
	for current != story.StartNodeID {
		parent, ok := parents[current]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		path = append(path, parent)
		current = parent
	}

	if path[len(path)-1] != story.StartNodeID {
		return nil
	}

	// Collected backwards; flip to root-first.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ScorePath sums the outcome categories of the edges along the recorded path from the
// root to targetID. A target with no parent chain back to the root scores zero.
func ScorePath(story *domain.Story, targetID string, parents ParentMap) domain.Scores {
	var scores domain.Scores

	path := Path(story, targetID, parents)
	for i := 0; i+1 < len(path); i++ {
		parent := story.Node(path[i])
		if parent == nil {
			continue
		}
		for _, c := range parent.Choices {
			if c.NextNodeID == path[i+1] {
				scores.Add(c.Outcome)
				break
			}
		}
	}
	return scores
}

// MustEnd reports whether the path to nodeID has reached any of the story's ending
// thresholds.
func MustEnd(story *domain.Story, nodeID string) bool {
	scores := ScorePath(story, nodeID, BuildParentMap(story))
	return scores.Reached(story.EffectiveThresholds())
}
