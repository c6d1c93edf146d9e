package loam

// PageMetadata is the frontmatter of one page document.
// It uses "mapstructure" tags to match the Frontmatter/YAML keys.
type PageMetadata struct {
	ID           string           `json:"id" mapstructure:"id"`
	Illustration string           `json:"illustration" mapstructure:"illustration"`
	Ending       bool             `json:"ending" mapstructure:"ending"`
	Choices      []ChoiceMetadata `json:"choices" mapstructure:"choices"`

	// Start marks the root page. Story-level fields are read from it.
	Start      bool            `json:"start" mapstructure:"start"`
	Title      string          `json:"title" mapstructure:"title"`
	Prompt     string          `json:"prompt" mapstructure:"prompt"`
	Cover      string          `json:"cover" mapstructure:"cover"`
	Thresholds *ThresholdsMeta `json:"thresholds" mapstructure:"thresholds"`
}

// ChoiceMetadata describes one outgoing choice. "to" and "next_node_id" are aliases.
type ChoiceMetadata struct {
	ID         string `json:"id" mapstructure:"id"`
	Text       string `json:"text" mapstructure:"text"`
	To         string `json:"to" mapstructure:"to"`
	NextNodeID string `json:"next_node_id" mapstructure:"next_node_id"`
	Outcome    string `json:"outcome" mapstructure:"outcome"`
	Rationale  string `json:"rationale" mapstructure:"rationale"`
	Chosen     *bool  `json:"chosen" mapstructure:"chosen"`
}

type ThresholdsMeta struct {
	Favorable   int `json:"favorable" mapstructure:"favorable"`
	Unfavorable int `json:"unfavorable" mapstructure:"unfavorable"`
	Mixed       int `json:"mixed" mapstructure:"mixed"`
}
