package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/folio/pkg/domain"
	storygraph "github.com/aretw0/folio/pkg/graph"
)

// GraphOverlay highlights a path (typically the canonical path of a scored node).
type GraphOverlay struct {
	Path        []string
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart of a story.
// Nodes are listed in page order, so orphans come last. Shapes:
// - Start: ((Circle))
// - Ending: ([Stadium])
// - Default: [Rectangle]
// Labels carry the page number. Unexplored stubs are drawn as dotted edges to a "?" node
// and nodes unreachable from the start get the "orphan" class.
func GenerateMermaid(story *domain.Story, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if story == nil {
		return sb.String()
	}

	pages := storygraph.AssignPageNumbers(story.Nodes, story.StartNodeID)
	order := storygraph.OrderByPage(pages)
	if len(order) == 0 {
		// Without a valid start nothing is numbered.
		for id := range story.Nodes {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	reachable := storygraph.Reachable(story, story.StartNodeID, nil)
	var orphans []string
	for _, id := range order {
		if !reachable[id] {
			orphans = append(orphans, id)
		}
	}

	for _, id := range order {
		node := story.Nodes[id]
		if node == nil {
			continue
		}
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == story.StartNodeID:
			opener, closer = "((", "))"
		case story.IsEnding(id):
			opener, closer = "([", "])"
		}

		label := id
		if n, ok := pages[id]; ok {
			label = fmt.Sprintf("p.%d <br/> %s", n, id)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		for _, c := range node.Choices {
			text := escapeLabel(c.Text)
			if o := c.Outcome.Normalize(); o != domain.OutcomeNone {
				text = fmt.Sprintf("%s (%s)", text, o)
			}
			if !c.Resolved() {
				stub := safeID + "__" + sanitizeMermaidID(c.ID)
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s((\"?\"))\n", safeID, text, stub)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, text, sanitizeMermaidID(c.NextNodeID))
		}
	}

	if len(orphans) > 0 {
		sb.WriteString("\n    classDef orphan stroke-dasharray: 5 5,color:#888;\n")
		for _, id := range orphans {
			fmt.Fprintf(&sb, "    class %s orphan;\n", sanitizeMermaidID(id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on the light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Path {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || id == overlay.CurrentNode {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
