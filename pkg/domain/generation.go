package domain

// GeneratedChoice is a candidate choice returned by a content producer.
type GeneratedChoice struct {
	Text      string  `json:"text" yaml:"text" mapstructure:"text"`
	Outcome   Outcome `json:"outcome" yaml:"outcome" mapstructure:"outcome"`
	Rationale string  `json:"outcome_rationale" yaml:"outcome_rationale" mapstructure:"outcome_rationale"`
}

// Generated is the content producer's result: new node text and candidate choices.
type Generated struct {
	Text    string            `json:"text" yaml:"text" mapstructure:"text"`
	Choices []GeneratedChoice `json:"choices" yaml:"choices" mapstructure:"choices"`

	// Ending forces the new node into the ending set. A result without choices is an
	// ending regardless.
	Ending bool `json:"ending,omitempty" yaml:"ending,omitempty" mapstructure:"ending"`

	IllustrationURL string `json:"illustration_url,omitempty" yaml:"illustration_url,omitempty" mapstructure:"illustration_url"`
}

// GenerationRequest is what the host sends to a content producer when an open stub is
// followed. It is a snapshot; the producer never sees the live graph.
type GenerationRequest struct {
	StoryID  string `json:"story_id"`
	Title    string `json:"title,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	NodeID   string `json:"node_id"`
	NodeText string `json:"node_text"`
	ChoiceID string `json:"choice_id"`
	Choice   string `json:"choice"`

	// Scores are the counts accumulated on the path to the node that will be created,
	// including the followed choice.
	Scores Scores `json:"scores"`

	// MustEnd asks the producer for a concluding page instead of further branching.
	MustEnd bool `json:"must_end"`
}
