// internal/commands/root.go
package mdextract

import (
	"errors"
	"fmt"
	"os"

	"github.com/mwiater/mdextract/internal/appconfig"
	"github.com/mwiater/mdextract/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"

	// appFs is the filesystem extraction reads from and writes to.
	appFs = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "mdextract",
	Short:         "mdextract — write fenced code blocks from markdown files to disk",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := ensureConfigLoaded(cmd)
		if err != nil {
			return err
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		if loaded {
			cfg.ConfigPath = viper.ConfigFileUsed()
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath(), currentConfig.Level()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.SetOutput(cmd.OutOrStdout())

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	err := executeRoot()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

// executeRoot runs rootCmd and reports a failure through the logger so that
// it also reaches the log file.
func executeRoot() error {
	_, err := rootCmd.ExecuteC()
	if err != nil {
		logging.Errorf("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (YAML, JSON or TOML)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("output", "o", appconfig.DefaultOutputDir, "directory extracted files are written to")
	rootCmd.PersistentFlags().Bool("flat", false, "write files directly under the output directory without language routing")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "glob patterns of markdown paths to skip")
	rootCmd.PersistentFlags().String("patterns", "", "JSON file with custom language routing patterns")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("logLevel", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("dryRun", false, "print the extraction plan without writing files")
	rootCmd.PersistentFlags().Bool("force", false, "rewrite files even when their content is unchanged")

	bindConfig()
}

// bindConfig binds flags to Viper keys (flags override config) and enables
// MDEXTRACT_* environment overrides.
func bindConfig() {
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("flat", rootCmd.PersistentFlags().Lookup("flat"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("patternsFile", rootCmd.PersistentFlags().Lookup("patterns"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("logLevel"))
	_ = viper.BindPFlag("dryRun", rootCmd.PersistentFlags().Lookup("dryRun"))
	_ = viper.BindPFlag("force", rootCmd.PersistentFlags().Lookup("force"))

	viper.SetEnvPrefix("MDEXTRACT")
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file is only an error
// when --config was given explicitly.
func ensureConfigLoaded(cmd *cobra.Command) (bool, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
