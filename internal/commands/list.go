package mdextract

import (
	"github.com/mwiater/mdextract/internal/report"
	"github.com/spf13/cobra"
)

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing blocks and commands",
	Long:  `The 'list' command groups subcommands that list the blocks mdextract would write and the commands it offers.`,
}

// listBlocksCmd prints the extraction plan without touching the output directory.
var listBlocksCmd = &cobra.Command{
	Use:   "blocks [PATH...]",
	Short: "List the code blocks that would be extracted",
	Long:  `The 'blocks' subcommand scans markdown files like 'extract' does and prints, for every block, its source lines, language and target path. Nothing is written.`,
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ex, err := newExtractor(cfg)
		if err != nil {
			return err
		}
		plan, err := ex.Plan(inputPaths(args))
		if err != nil {
			return err
		}
		dumpPlan(cmd.ErrOrStderr(), cfg, plan)
		report.PrintPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listBlocksCmd)
}
