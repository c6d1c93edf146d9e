/*
Package domain contains the core domain models of the Folio story graph engine.

A Story is an arena of Nodes keyed by id. Edges are Choices that reference their target
node by id only, so cycles and convergent paths need no special ownership handling: the
Nodes map owns every node and choices are non-owning references. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Story: the whole graph (nodes, root, ending set, ending thresholds).
  - Node: one authored page of prose with optional artwork and ordered choices.
  - Choice: a labeled edge, either resolved (points at a node) or an open stub.
  - Page: one physical, printable page produced by the layout package.
  - Generated: the shape a content producer hands back to be folded into the graph.
*/
package domain
