package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forceBuild bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the whole site from the files directory",
	Long: `The build command copies every non-hidden file from './files/' into
'./site/' and renders every Markdown file into an .html page. An .html file
overrides the Markdown file with the same base name. Pages whose source,
data file and layouts are unchanged since the last build are skipped unless
--force is given. A page that fails to render is reported and the rest of
the site is still built.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(forceBuild)
	},
}

func runBuild(force bool) error {
	report, err := newBuilder().Build(force)
	if err != nil {
		return err
	}
	logger.Info("build finished",
		"rendered", len(report.Rendered),
		"copied", len(report.Copied),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d file(s) failed to build", n)
	}
	return nil
}

func init() {
	buildCmd.Flags().BoolVar(&forceBuild, "force", false, "render every page even if its inputs are unchanged")
	rootCmd.AddCommand(buildCmd)
}
