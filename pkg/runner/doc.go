/*
Package runner plays a stored story interactively, one page at a time.

It is the reader's side of the engine: the runner shows a page and its numbered choices,
reads the reader's pick and follows it. Picking an unwritten choice asks the engine to
expand it, so a story can be grown simply by reading it.

# Usage

	r := runner.New(engine,
		runner.WithIO(os.Stdin, os.Stdout),
		runner.WithRenderer(tui.NewRenderer(80)),
	)

	if err := r.Run(ctx, "my-story"); err != nil {
		log.Fatal(err)
	}
*/
package runner
