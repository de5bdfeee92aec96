package mdextract

import (
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying configuration",
	Long:  `The 'show' command groups subcommands that display the merged configuration and routing table used by mdextract.`,
}

func init() {
	rootCmd.AddCommand(showCmd)
}
