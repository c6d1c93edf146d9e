package domain

// PageKind distinguishes the physical pages of a printed book.
type PageKind string

const (
	PageCover     PageKind = "cover"
	PageBackCover PageKind = "back_cover"
	PageContent   PageKind = "content"
)

// PageChoice is a choice as printed on the last chunk of a node.
type PageChoice struct {
	Text       string `json:"text"`
	NextNodeID string `json:"next_node_id,omitempty"`

	// Page is the physical page of the target's first chunk. Zero means unresolved.
	Page int `json:"page"`
}

// Page is one rendered/printed page.
type Page struct {
	Kind PageKind `json:"kind"`

	// Number is the 1-based physical position in the book (cover is page 1).
	Number int `json:"number"`

	// Cover and back cover fields.
	Title    string `json:"title,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	Summary  string `json:"summary,omitempty"`

	// Content fields.
	NodeID string `json:"node_id,omitempty"`
	Start  bool   `json:"start,omitempty"` // the page belongs to the story's start node
	Chunk  int    `json:"chunk,omitempty"`  // 0-based index of this chunk within the node
	Chunks int    `json:"chunks,omitempty"` // total chunks of the node
	Text   string `json:"text,omitempty"`

	IllustrationURL string       `json:"illustration_url,omitempty"`
	Choices         []PageChoice `json:"choices,omitempty"`
	Ending          bool         `json:"ending,omitempty"`

	// ContinuedFrom and ContinuedOn are physical page numbers of the neighbouring chunks
	// of the same node, zero when the node does not continue in that direction.
	ContinuedFrom int `json:"continued_from,omitempty"`
	ContinuedOn   int `json:"continued_on,omitempty"`
}

// First reports whether the page holds the first chunk of its node.
func (p Page) First() bool { return p.Kind == PageContent && p.Chunk == 0 }

// Last reports whether the page holds the last chunk of its node.
func (p Page) Last() bool { return p.Kind == PageContent && p.Chunk == p.Chunks-1 }
