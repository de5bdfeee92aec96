package mdextract

import (
	"github.com/mwiater/mdextract/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by environment variables and flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Debug:        viper.GetBool("debug"),
			Output:       viper.GetString("output"),
			Flat:         viper.GetBool("flat"),
			Exclude:      viper.GetStringSlice("exclude"),
			PatternsFile: viper.GetString("patternsFile"),
			LogFile:      viper.GetString("logFile"),
			LogLevel:     viper.GetString("logLevel"),
			DryRun:       viper.GetBool("dryRun"),
			Force:        viper.GetBool("force"),
		}
		file := ""
		if cfg := GetConfig(); cfg != nil {
			file = cfg.ConfigPath
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), file, GetConfig(), fallback)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
