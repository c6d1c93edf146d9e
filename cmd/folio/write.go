package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <story> <page>",
		Short: "Delete a page and every page reachable from it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := a.engine.Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d pages: %s\n", len(removed), strings.Join(removed, ", "))
			return nil
		},
	}
}

func newExpandCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <story> <page> <choice>",
		Short: "Write the page behind an unwritten choice",
		Long: `Asks the configured producer for the page that follows a choice and attaches it
to the story. When the path has reached an ending threshold the producer is told to
end the story.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			story, newID, err := a.engine.Expand(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			node := story.Node(newID)
			fmt.Fprintf(out, "New page %s\n\n%s\n", newID, node.Text)
			for _, c := range node.Choices {
				fmt.Fprintf(out, "  [%s] %s\n", c.ID, c.Text)
			}
			if story.IsEnding(newID) {
				fmt.Fprintln(out, "  (ending)")
			}
			return nil
		},
	}
}
