package domain

import "errors"

// ErrStoryNotFound is returned when a story ID cannot be found in the store.
var ErrStoryNotFound = errors.New("story not found")

// ErrInvalidStory is returned when a story has no nodes or its start node is missing.
var ErrInvalidStory = errors.New("invalid story: start node missing")

// ErrNodeNotFound is returned when an operation names a node that is not in the story.
var ErrNodeNotFound = errors.New("node not found")

// ErrChoiceNotFound is returned when an operation names a choice the node does not carry.
var ErrChoiceNotFound = errors.New("choice not found")

// ErrChoiceResolved is returned when new content is attached to a choice that already
// points at a node.
var ErrChoiceResolved = errors.New("choice already resolved")

// ErrStartNodeProtected is returned when deleting the start node is attempted.
// The story is left unchanged.
var ErrStartNodeProtected = errors.New("start node cannot be deleted")
