// list.go implements the 'borrowcheck list' command.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the scenario corpus from the manifest",
	RunE: func(cmd *cobra.Command, _ []string) error {
		manifestPath, _ := cmd.Flags().GetString("manifest")

		root, _, err := findModuleRoot()
		if err != nil {
			return err
		}
		manifest, err := loadManifest(filepath.Join(root, manifestPath))
		if err != nil {
			return err
		}

		for _, sc := range manifest.Scenario {
			fmt.Printf("%-24s %-9s %s\n", sc.Name, sc.Expect, sc.Description)
			fmt.Printf("%-24s %-9s %s\n", "", "", dimColor.Sprint(sc.Dir))
		}
		fmt.Printf("%d scenarios\n", len(manifest.Scenario))
		return nil
	},
}
