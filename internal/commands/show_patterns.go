package mdextract

import (
	"github.com/mwiater/mdextract/internal/appconfig"
	"github.com/spf13/cobra"
)

// showPatternsCmd prints the language routing table after the patterns file is applied.
var showPatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show the language routing patterns",
	Long:  `Show the patterns that route extracted files into directories, built-in entries first, overridden or extended by the configured patterns file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := GetConfig().Patterns()
		if err != nil {
			return err
		}
		appconfig.ShowPatterns(cmd.OutOrStdout(), patterns)
		return nil
	},
}

func init() {
	showCmd.AddCommand(showPatternsCmd)
}
