package graph

import (
	"sort"

	"github.com/aretw0/folio/pkg/domain"
)

// AssignPageNumbers numbers nodes by breadth-first traversal from startID, visiting
// choices in their stored order. The start node is page 1. Nodes unreachable from the
// root are appended afterwards in ascending id order. If startID is not in nodes the
// result is empty.
func AssignPageNumbers(nodes map[string]*domain.Node, startID string) map[string]int {
	pages := make(map[string]int, len(nodes))
	if _, ok := nodes[startID]; !ok {
		return pages
	}

	next := 1
	queue := []string{startID}
	pages[startID] = next
	next++

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		node := nodes[currentID]
		if node == nil {
			continue
		}
		for _, c := range node.Choices {
			target := c.NextNodeID
			if target == "" {
				continue // Stub
			}
			if _, exists := nodes[target]; !exists {
				continue // Dangling
			}
			if _, seen := pages[target]; seen {
				continue
			}
			pages[target] = next
			next++
			queue = append(queue, target)
		}
	}

	orphans := make([]string, 0, len(nodes)-len(pages))
	for id := range nodes {
		if _, ok := pages[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		pages[id] = next
		next++
	}

	return pages
}

// OrderByPage returns the ids of pageMap sorted by ascending page number.
func OrderByPage(pageMap map[string]int) []string {
	ids := make([]string, 0, len(pageMap))
	for id := range pageMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return pageMap[ids[i]] < pageMap[ids[j]]
	})
	return ids
}
