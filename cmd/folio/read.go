package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/presentation/graph"
	"github.com/aretw0/folio/internal/presentation/tui"
	"github.com/aretw0/folio/pkg/layout"
	"github.com/spf13/cobra"

	storygraph "github.com/aretw0/folio/pkg/graph"
)

func newPagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <story>",
		Short: "Print the logical page number of every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			pages, err := a.engine.Pages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range storygraph.OrderByPage(pages) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", pages[id], id)
			}
			return nil
		},
	}
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <story> <page>",
		Short: "Tally the outcomes on the path to a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.engine.Score(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path: %s\n", strings.Join(res.Path, " -> "))
			fmt.Fprintf(out, "Favorable: %d  Unfavorable: %d  Mixed: %d\n",
				res.Scores.Favorable, res.Scores.Unfavorable, res.Scores.Mixed)
			if res.MustEnd {
				fmt.Fprintln(out, "The story must end here.")
			}
			return nil
		},
	}
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	var (
		shuffle bool
		seed    uint64
		asJSON  bool
		plain   bool
	)
	cmd := &cobra.Command{
		Use:   "layout <story>",
		Short: "Lay a story out as a printable book",
		Long: `Splits every page's text to fit the physical page budget, numbers the pages and
resolves every "turn to page" reference. With --shuffle, page groups after the first
are reordered so readers cannot follow the story by flipping forward.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			lo := folio.LayoutOptions{Shuffle: shuffle}
			if cmd.Flags().Changed("seed") {
				lo.Seed = &seed
			}
			pages, err := a.engine.Layout(cmd.Context(), args[0], lo)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(pages)
			}

			// Glamour only when writing to a real terminal; pipes get plain Markdown.
			if f, ok := out.(*os.File); ok && !plain && tui.IsTerminal(f) {
				fmt.Fprint(out, tui.RenderBook(pages, tui.NewRenderer(tui.Width(f))))
				return nil
			}
			fmt.Fprint(out, layout.RenderBook(pages))
			return nil
		},
	}
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Shuffle page groups after the first page")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible shuffle")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the pages as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "Never style the output")
	return cmd
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var focus string
	cmd := &cobra.Command{
		Use:   "graph <story>",
		Short: "Export the story graph visualization",
		Long:  `Outputs a Mermaid diagram (graph TD) of the story with page numbers. --node highlights the path to that page.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			story, err := a.engine.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var overlay *graph.GraphOverlay
			if focus != "" {
				res, err := a.engine.Score(cmd.Context(), args[0], focus)
				if err != nil {
					return err
				}
				overlay = &graph.GraphOverlay{Path: res.Path, CurrentNode: focus}
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(story, overlay))
			return nil
		},
	}
	cmd.Flags().StringVar(&focus, "node", "", "Highlight the path to this page")
	return cmd
}
