/*
Package dsl provides a fluent builder for constructing Folio stories in Go code.

It is handy for seeding stories, writing tests and generating fixtures without going
through JSON or YAML files.

Example usage:

	b := dsl.New("cave").Title("The Cave")

	b.Add("entrance").
		Text("You stand before a dark cave.").
		Go("enter", "Step inside", "hall", domain.OutcomeMixed).
		Stub("leave", "Walk away", domain.OutcomeNone)

	b.Add("hall").
		Text("Water drips somewhere ahead.").
		Go("back", "Return to the light", "entrance", domain.OutcomeNone)

	story, err := b.Build()
*/
package dsl
