package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nramenta/deco/internal/render"
)

var writeTarget bool

var makeCmd = &cobra.Command{
	Use:   "make <FILE>",
	Short: "Renders one Markdown file to standard output",
	Long: `The make command renders a single Markdown file through its layout and
prints the HTML to standard output. With --write the page is written to
the output directory as <name>.html instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		out, err := newRenderer().RenderPage(source)
		if err != nil {
			return err
		}

		if writeTarget {
			target := render.TargetPath(appConfig.OutputDir, source)
			if err := render.WriteOutput(appFs, target, out); err != nil {
				return err
			}
			logger.Info("rendered", "source", source, "target", target)
			return nil
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	makeCmd.Flags().BoolVarP(&writeTarget, "write", "w", false, "write to the output directory instead of standard output")
	rootCmd.AddCommand(makeCmd)
}
