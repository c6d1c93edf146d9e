package graph

import "github.com/google/uuid"

// IDGenerator mints opaque unique ids for new nodes and choices.
type IDGenerator func() string

// NewID is the default IDGenerator.
func NewID() string {
	return uuid.NewString()
}

func (g IDGenerator) mint() string {
	if g == nil {
		return NewID()
	}
	return g()
}
