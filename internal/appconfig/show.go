package appconfig

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/mdextract/internal/layout"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &fallback
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Output:          %s\n", cfg.OutputDir())
	fmt.Fprintf(out, "  Flat:            %v\n", cfg.Flat)
	fmt.Fprintf(out, "  Dry Run:         %v\n", cfg.DryRun)
	fmt.Fprintf(out, "  Force:           %v\n", cfg.Force)
	fmt.Fprintf(out, "  Log Level:       %s\n", cfg.Level())
	fmt.Fprintf(out, "  Log File:        %s\n", orNone(cfg.LogFilePath()))
	fmt.Fprintf(out, "  Patterns File:   %s\n", orNone(cfg.PatternsFile))
	fmt.Fprintf(out, "  Exclude:         %v\n", cfg.Exclude)
}

// ShowPatterns prints the routing table in evaluation order.
func ShowPatterns(out io.Writer, patterns []layout.Pattern) {
	fmt.Fprintln(out, "Routing patterns (first match wins):")
	for _, p := range patterns {
		dir := strings.Join(p.Dirs, "/")
		if dir == "" {
			dir = "."
		}
		fmt.Fprintf(out, "  %-12s %-16s %s\n", p.Language, dir, p.Match)
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
