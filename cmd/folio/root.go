package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	dir        string
	driver     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Folio turns branching stories into printable gamebooks",
		Long: `Folio keeps interactive stories as graphs of pages and choices.
It numbers pages, scores the path to any page, lays stories out as physical books
and grows them one choice at a time through an external producer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "folio.yaml", "Path to the configuration file")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "Story directory (implies the file store)")
	cmd.PersistentFlags().StringVar(&opts.driver, "store", "", "Store driver: memory, file or redis")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newVersionCmd(),
		newListCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newValidateCmd(opts),
		newPagesCmd(opts),
		newScoreCmd(opts),
		newLayoutCmd(opts),
		newDeleteCmd(opts),
		newGraphCmd(opts),
		newExpandCmd(opts),
		newPlayCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return cmd
}

// Execute builds the command tree and runs it against os.Args.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
