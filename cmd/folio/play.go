package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/aretw0/folio/internal/presentation/tui"
	"github.com/aretw0/folio/pkg/runner"
	"github.com/spf13/cobra"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var (
		from     string
		noExpand bool
	)
	cmd := &cobra.Command{
		Use:   "play <story>",
		Short: "Read a story interactively",
		Long: `Shows one page at a time and asks which choice to follow. Picking an unwritten
choice asks the configured producer to write it, so reading grows the story.
Type 'q' to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			runOpts := []runner.Option{
				runner.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
				runner.WithLogger(a.logger),
				runner.WithExpand(!noExpand),
			}
			if from != "" {
				runOpts = append(runOpts, runner.WithStartNode(from))
			}
			if f, ok := cmd.OutOrStdout().(*os.File); ok && tui.IsTerminal(f) {
				runOpts = append(runOpts, runner.WithRenderer(tui.NewRenderer(tui.Width(f))))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			last, err := runner.New(a.engine, runOpts...).Run(ctx, args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("reading stopped", "story_id", args[0], "node_id", last)
			fmt.Fprintln(cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start reading at this page instead of the beginning")
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "Never ask the producer to write unwritten choices")
	return cmd
}
