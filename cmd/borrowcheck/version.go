// version.go implements the 'borrowcheck version' command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/borrowcheck/borrow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show runtime library version and active verification backend",
	Run: func(cmd *cobra.Command, _ []string) {
		info := borrow.GetInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "borrowcheck %s\n", info.Version)
		fmt.Fprintf(out, "  discipline: %s\n", info.Discipline)
		fmt.Fprintf(out, "  backend:    %s\n", info.Backend)
	},
}
