/*
Package ports defines the driven ports (interfaces) around the Folio story graph engine.

These interfaces decouple the engine from external implementations, allowing hosts to
plug in various storage backends and content producers.

# Key Interfaces

  - StoryStore: Persists and loads whole Story snapshots.
  - DistributedLocker: Coordinates exclusive story edits across replicas.
  - Producer: Generates new node content when an open choice is followed.
*/
package ports
