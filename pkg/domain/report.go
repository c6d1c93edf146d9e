package domain

import (
	"fmt"
	"strings"
)

// DanglingRef is a resolved choice whose target node does not exist.
type DanglingRef struct {
	NodeID   string `json:"node_id"`
	ChoiceID string `json:"choice_id"`
	Target   string `json:"target"`
}

// Report summarizes the structural health of a story.
type Report struct {
	StartMissing bool          `json:"start_missing,omitempty"`
	Nodes        int           `json:"nodes"`
	Reachable    int           `json:"reachable"`
	Orphans      []string      `json:"orphans,omitempty"`
	Dangling     []DanglingRef `json:"dangling,omitempty"`
	OpenStubs    int           `json:"open_stubs"`
	Endings      int           `json:"endings"`
}

// Err returns a non-nil error for defects the engine must not be left in.
// Orphans and open stubs are normal while a story grows.
func (r Report) Err() error {
	if r.StartMissing {
		return ErrInvalidStory
	}
	if len(r.Dangling) == 0 {
		return nil
	}
	lines := make([]string, 0, len(r.Dangling))
	for _, d := range r.Dangling {
		lines = append(lines, fmt.Sprintf("choice '%s' on '%s' points to missing node '%s'", d.ChoiceID, d.NodeID, d.Target))
	}
	return fmt.Errorf("found %d dangling references:\n- %s", len(r.Dangling), strings.Join(lines, "\n- "))
}
