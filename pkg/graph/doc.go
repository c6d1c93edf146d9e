/*
Package graph implements the Folio story graph engine: the algorithms that keep a mutable,
cyclic, partially connected story graph numbered, scoreable and safely prunable.

Every function is synchronous and works on a snapshot. Functions that produce an updated
story return a clone; the input is never mutated. Every traversal is guarded by a visited
set, so cycles and convergent choices are safe, and a resolved choice whose target is not
in the node map is treated as unresolved.

# Operations

  - AssignPageNumbers: breadth-first page numbering with orphans appended by id.
  - BuildParentMap / ScorePath: outcome counts along the recorded root-to-node path.
  - DeleteNode: cascading deletion of everything reachable from a node.
  - Attach / NewStory: folding a content producer's result into the graph.
  - Inspect: dangling references, orphans and open stubs.
*/
package graph
