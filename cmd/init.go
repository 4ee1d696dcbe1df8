package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nramenta/deco/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the skeleton of a new site in the current directory",
	Long: `The init command creates the files, layouts, cache and site directories,
a data.yml with sample author data, two layouts, a stylesheet, a welcome page
and a Makefile. Existing files with the same names are overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := scaffold.Init(appFs, ".")
		if err != nil {
			return fmt.Errorf("failed to initialize site: %w", err)
		}
		for _, path := range written {
			logger.Debug("created", "path", path)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "type 'make' to build the site.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
