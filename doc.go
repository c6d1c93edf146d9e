/*
Package folio is a story graph engine for branching interactive fiction that is printed as a
"choose your path" book.

An author grows a Story one page at a time: every Node is a page of text with outgoing
Choices, and unexplored choices are stubs that a content producer (a language model, a
script, a human) later turns into new pages. Folio owns the graph algorithms that keep
such a story printable.

# Concept

  - Page numbering: a breadth-first walk from the start node gives every reachable node a
    logical page number, so early decisions land on early pages.
  - Path scoring: a deterministic parent map picks one canonical path to each node, and the
    outcome labels along it (favorable, unfavorable, mixed) are tallied against the story's
    ending thresholds.
  - Pagination: node text is split into physical pages, cross references ("turn to page N")
    are rewritten to physical positions, and the result can be shuffled while keeping each
    node's pages together.
  - Cascading deletion: removing a node removes every descendant that can no longer be
    reached, and the start node is protected.

The algorithms live in pkg/graph and pkg/layout as pure functions over snapshots. The
Engine in this package runs them against a ports.StoryStore, serializing every load,
mutate, save cycle per story.

# Usage

	eng := folio.New(
		folio.WithStore(file.New("./stories")),
		folio.WithProducer(process.New("./write-page.sh", nil)),
	)

	story, err := eng.Create(ctx, "The Cave", "A short descent.", firstPage)
	if err != nil {
		log.Fatal(err)
	}

	// Follow the first open choice of the start page.
	start := story.Nodes[story.StartNodeID]
	story, nodeID, err := eng.Expand(ctx, story.ID, start.ID, start.Choices[0].ID)

	pages, err := eng.Layout(ctx, story.ID, folio.LayoutOptions{Shuffle: true})
	fmt.Print(layout.RenderBook(pages))
*/
package folio
