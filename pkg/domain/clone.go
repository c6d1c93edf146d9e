package domain

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Choices != nil {
		c.Choices = make([]Choice, len(n.Choices))
		copy(c.Choices, n.Choices)
	}
	return &c
}

// Clone returns a deep copy of the story. Engine operations that return an updated story
// work on a clone so the caller's snapshot is never mutated.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	c := *s
	c.Nodes = make(map[string]*Node, len(s.Nodes))
	for id, n := range s.Nodes {
		c.Nodes[id] = n.Clone()
	}
	if s.EndNodeIDs != nil {
		c.EndNodeIDs = make([]string, len(s.EndNodeIDs))
		copy(c.EndNodeIDs, s.EndNodeIDs)
	}
	return &c
}
