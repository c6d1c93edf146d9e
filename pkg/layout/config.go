package layout

// Config bounds how much text fits on one physical page.
type Config struct {
	// TextLimit is the chunk size, in runes, for nodes without artwork.
	TextLimit int `json:"text_limit" yaml:"text_limit" validate:"min=1"`
	// IllustratedLimit is the chunk size for nodes that carry an illustration.
	IllustratedLimit int `json:"illustrated_limit" yaml:"illustrated_limit" validate:"min=1"`
	// MinSplitRatio is how far back from the limit, as a fraction of it, the splitter
	// looks for whitespace before falling back to a hard cut.
	MinSplitRatio float64 `json:"min_split_ratio" yaml:"min_split_ratio" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the page budget used for a standard trim size.
func DefaultConfig() Config {
	return Config{
		TextLimit:        1400,
		IllustratedLimit: 600,
		MinSplitRatio:    0.5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TextLimit <= 0 {
		c.TextLimit = d.TextLimit
	}
	if c.IllustratedLimit <= 0 {
		c.IllustratedLimit = d.IllustratedLimit
	}
	if c.MinSplitRatio <= 0 || c.MinSplitRatio > 1 {
		c.MinSplitRatio = d.MinSplitRatio
	}
	return c
}

func (c Config) limitFor(illustrated bool) int {
	if illustrated {
		return c.IllustratedLimit
	}
	return c.TextLimit
}
