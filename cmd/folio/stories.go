package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/folio/pkg/adapters/file"
	"github.com/aretw0/folio/pkg/adapters/loam"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/graph"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ids, err := a.engine.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

// readStory loads a story from a JSON/YAML file, or from a directory of page documents.
// A non-empty id replaces the story ID.
func readStory(cmd *cobra.Command, path, id string) (*domain.Story, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		if id == "" {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, err
			}
			id = filepath.Base(abs)
		}
		importer, err := loam.Open(path)
		if err != nil {
			return nil, err
		}
		return importer.Import(cmd.Context(), id)
	}

	story, err := file.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if id != "" {
		story.ID = id
	}
	if story.ID == "" {
		story.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return story, nil
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Import a story file or a folder of pages into the store",
		Long: `Reads a story from a JSON or YAML file, or from a directory of Markdown pages
with frontmatter (one page per file), and saves it to the configured store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := readStory(cmd, args[0], id)
			if err != nil {
				return fmt.Errorf("failed to read story: %w", err)
			}

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.Put(cmd.Context(), story); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%d pages)\n", story.ID, len(story.Nodes))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Story ID to store under (default: from the file or directory name)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <story>",
		Short: "Print a stored story as JSON or YAML",
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
			data, err := file.Encode(story, file.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <story|file|dir>",
		Short: "Check a story for structural defects",
		Long: `Reports dangling choice targets, pages unreachable from the start and choices
that are still unwritten. Dangling references or a missing start fail validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var report domain.Report
			if _, statErr := os.Stat(args[0]); statErr == nil {
				story, err := readStory(cmd, args[0], "")
				if err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
				report = graph.Inspect(story)
			} else {
				a, err := opts.newApp()
				if err != nil {
					return err
				}
				defer a.close()

				report, err = a.engine.Inspect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			printReport(cmd, report)
			if err := report.Err(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Story is valid! ✅")
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, r domain.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pages: %d (%d reachable), endings: %d, unwritten choices: %d\n",
		r.Nodes, r.Reachable, r.Endings, r.OpenStubs)
	for _, id := range r.Orphans {
		fmt.Fprintf(out, "  orphan: %s\n", id)
	}
	for _, d := range r.Dangling {
		fmt.Fprintf(out, "  dangling: %s/%s -> %s\n", d.NodeID, d.ChoiceID, d.Target)
	}
}
