package graph_test

import (
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/dsl"
)

// exampleStory is the root R with a stub C1 and C2 -> N2, and N2 looping back to R.
func exampleStory() *domain.Story {
	b := dsl.New("example")
	b.Add("R").
		Text("Root").
		Stub("C1", "Wait", domain.OutcomeNone).
		Go("C2", "Open the door", "N2", domain.OutcomeFavorable)
	b.Add("N2").
		Text("Behind the door").
		Go("C3", "Go back", "R", domain.OutcomeNone)
	return b.MustBuild()
}

// branchingStory:
//
//	root -> a (favorable), root -> b (unfavorable)
//	a -> c (mixed), b -> c (favorable)   convergence on c
//	c -> d (unfavorable), d -> a          cycle a -> c -> d -> a
//	orphans: z, y
func branchingStory() *domain.Story {
	b := dsl.New("branching")
	b.Add("root").
		Go("r-a", "left", "a", domain.OutcomeFavorable).
		Go("r-b", "right", "b", domain.OutcomeUnfavorable)
	b.Add("a").Go("a-c", "on", "c", domain.OutcomeMixed)
	b.Add("b").Go("b-c", "on", "c", domain.OutcomeFavorable)
	b.Add("c").
		Go("c-d", "down", "d", domain.OutcomeUnfavorable).
		Stub("c-x", "wait", domain.OutcomeNone)
	b.Add("d").Go("d-a", "loop", "a", domain.OutcomeNone).Ending()
	b.Add("z").Text("orphan z")
	b.Add("y").Go("y-z", "to z", "z", domain.OutcomeMixed)
	return b.MustBuild()
}
