package mdextract

import (
	"io"

	"github.com/k0kubun/pp"
	"github.com/mwiater/mdextract/internal/appconfig"
	"github.com/mwiater/mdextract/internal/extract"
	"github.com/mwiater/mdextract/internal/layout"
	"github.com/mwiater/mdextract/internal/logging"
	"github.com/mwiater/mdextract/internal/report"
	"github.com/spf13/cobra"
)

// extractCmd represents the 'extract' command, which writes every fenced code
// block found in the given markdown files or directories to the output directory.
var extractCmd = &cobra.Command{
	Use:   "extract [PATH...]",
	Short: "Extract fenced code blocks from markdown files",
	Long: `The 'extract' command scans markdown files (directories are searched recursively for
*.md and *.markdown) and writes every closed fenced code block to its own file under the
output directory. A heading naming a file (e.g. "# backend/app.py") directly above a block
sets its file name. Files whose content is already up to date are left untouched.`,
	Args: cobra.ArbitraryArgs,
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

		if cfg.DryRun {
			report.PrintPlan(cmd.OutOrStdout(), plan)
			return nil
		}

		rep, err := ex.Apply(plan)
		if err != nil {
			return err
		}
		report.PrintSummary(cmd.OutOrStdout(), plan, rep)
		logging.Infof("Extraction process completed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

// newExtractor wires the routing table and filesystem for cfg.
func newExtractor(cfg *appconfig.Config) (*extract.Extractor, error) {
	patterns, err := cfg.Patterns()
	if err != nil {
		return nil, err
	}
	router, err := layout.NewRouter(patterns, cfg.Flat)
	if err != nil {
		return nil, err
	}
	return extract.New(appFs, router, extract.Options{
		OutputDir: cfg.OutputDir(),
		Exclude:   cfg.Exclude,
		Force:     cfg.Force,
	}), nil
}

func inputPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// dumpPlan pretty-prints the resolved targets when debug logging is on.
func dumpPlan(w io.Writer, cfg *appconfig.Config, plan *extract.Plan) {
	if !DebugEnabled() {
		return
	}
	targets := make([]layout.Target, 0, len(plan.Items))
	for _, item := range plan.Items {
		targets = append(targets, item.Target)
	}
	pp.Fprintln(w, *cfg)
	pp.Fprintln(w, targets)
}
