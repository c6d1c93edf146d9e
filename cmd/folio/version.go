package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of folio",
		Run: func(cmd *cobra.Command, args []string) {
			if !short {
				tui.PrintBanner(cmd.OutOrStdout(), folio.Version)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folio version %s\n", strings.TrimSpace(folio.Version))
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version line")
	return cmd
}
