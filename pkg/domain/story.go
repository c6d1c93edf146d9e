package domain

// Outcome predicts the narrative trajectory a choice leads toward.
type Outcome string

const (
	OutcomeFavorable   Outcome = "favorable"
	OutcomeUnfavorable Outcome = "unfavorable"
	OutcomeMixed       Outcome = "mixed"
	OutcomeNone        Outcome = "none"
)

// Normalize maps unknown or empty labels to OutcomeNone.
func (o Outcome) Normalize() Outcome {
	switch o {
	case OutcomeFavorable, OutcomeUnfavorable, OutcomeMixed:
		return o
	default:
		return OutcomeNone
	}
}

// Choice is one outgoing decision edge from a node.
type Choice struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`

	// NextNodeID is empty while the choice is an unexplored stub.
	NextNodeID string `json:"next_node_id,omitempty" yaml:"next_node_id,omitempty"`

	// Chosen marks an edge the author has followed at least once.
	Chosen bool `json:"is_chosen" yaml:"is_chosen"`

	Outcome   Outcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Rationale string  `json:"outcome_rationale,omitempty" yaml:"outcome_rationale,omitempty"`
}

// Resolved reports whether the choice points at a node.
func (c Choice) Resolved() bool {
	return c.NextNodeID != ""
}

// Node represents one authored page of the narrative.
type Node struct {
	ID              string   `json:"id" yaml:"id"`
	Text            string   `json:"text" yaml:"text"`
	IllustrationURL string   `json:"illustration_url,omitempty" yaml:"illustration_url,omitempty"`
	Choices         []Choice `json:"choices" yaml:"choices"`
}

// Choice returns the index of the choice with the given id, or -1.
func (n *Node) Choice(choiceID string) int {
	for i := range n.Choices {
		if n.Choices[i].ID == choiceID {
			return i
		}
	}
	return -1
}

// Thresholds hold, per outcome category, how many edges of that category may accumulate
// along a path before the narrative must conclude.
type Thresholds struct {
	Favorable   int `json:"favorable" yaml:"favorable" validate:"min=1"`
	Unfavorable int `json:"unfavorable" yaml:"unfavorable" validate:"min=1"`
	Mixed       int `json:"mixed" yaml:"mixed" validate:"min=1"`
}

// DefaultThresholds returns the thresholds used when a story does not carry its own.
func DefaultThresholds() Thresholds {
	return Thresholds{Favorable: 3, Unfavorable: 3, Mixed: 3}
}

// Scores counts categorized edges accumulated along a path.
type Scores struct {
	Favorable   int `json:"favorable"`
	Unfavorable int `json:"unfavorable"`
	Mixed       int `json:"mixed"`
}

// Add increments the counter for o. OutcomeNone is ignored.
func (s *Scores) Add(o Outcome) {
	switch o.Normalize() {
	case OutcomeFavorable:
		s.Favorable++
	case OutcomeUnfavorable:
		s.Unfavorable++
	case OutcomeMixed:
		s.Mixed++
	}
}

// Reached reports whether any category has hit its threshold.
// A zero threshold disables its category.
func (s Scores) Reached(t Thresholds) bool {
	hit := func(count, limit int) bool { return limit > 0 && count >= limit }
	return hit(s.Favorable, t.Favorable) || hit(s.Unfavorable, t.Unfavorable) || hit(s.Mixed, t.Mixed)
}

// Story is the whole narrative graph.
type Story struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Prompt   string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	CoverURL string `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`

	Nodes       map[string]*Node `json:"nodes" yaml:"nodes"`
	StartNodeID string           `json:"start_node_id" yaml:"start_node_id"`

	// EndNodeIDs is a set; use MarkEnding/UnmarkEnding to keep it deduplicated.
	EndNodeIDs []string `json:"end_node_ids,omitempty" yaml:"end_node_ids,omitempty"`

	Thresholds Thresholds `json:"ending_thresholds" yaml:"ending_thresholds"`
}

// Node returns the node with the given id, or nil.
func (s *Story) Node(id string) *Node {
	if s == nil || s.Nodes == nil || id == "" {
		return nil
	}
	return s.Nodes[id]
}

// HasStart reports whether the story has a root that exists in Nodes.
func (s *Story) HasStart() bool {
	return s.Node(s.StartNodeID) != nil
}

// IsEnding reports whether id is flagged as terminal.
func (s *Story) IsEnding(id string) bool {
	for _, e := range s.EndNodeIDs {
		if e == id {
			return true
		}
	}
	return false
}

// MarkEnding adds id to the ending set.
func (s *Story) MarkEnding(id string) {
	if !s.IsEnding(id) {
		s.EndNodeIDs = append(s.EndNodeIDs, id)
	}
}

// UnmarkEnding removes id from the ending set.
func (s *Story) UnmarkEnding(id string) {
	kept := s.EndNodeIDs[:0]
	for _, e := range s.EndNodeIDs {
		if e != id {
			kept = append(kept, e)
		}
	}
	s.EndNodeIDs = kept
}

// EffectiveThresholds returns the story's thresholds, falling back to defaults
// when none were configured.
func (s *Story) EffectiveThresholds() Thresholds {
	if s.Thresholds == (Thresholds{}) {
		return DefaultThresholds()
	}
	return s.Thresholds
}

// Validate performs the shallow checks the engine relies on: a story must name a start
// node that is present in its node map. Deeper defects (dangling references) are
// tolerated by the algorithms.
func (s *Story) Validate() error {
	if s == nil || len(s.Nodes) == 0 {
		return ErrInvalidStory
	}
	if !s.HasStart() {
		return ErrInvalidStory
	}
	return nil
}
