// internal/layout/patterns.go
package layout

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern routes files whose name matches Match into Dirs.
type Pattern struct {
	Language string   `json:"language"`
	Dirs     []string `json:"dirs"`
	Match    string   `json:"match"`

	re *regexp.Regexp
}

// DefaultPatterns returns the built-in routing table in evaluation order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Language: "python", Dirs: []string{"backend"}, Match: `\.py$`},
		{Language: "go", Dirs: []string{"backend"}, Match: `\.go$`},
		{Language: "javascript", Dirs: []string{"frontend"}, Match: `\.js$`},
		{Language: "jsx", Dirs: []string{"frontend"}, Match: `\.jsx$`},
		{Language: "typescript", Dirs: []string{"frontend"}, Match: `\.tsx?$`},
		{Language: "html", Dirs: []string{"templates"}, Match: `\.html?$`},
		{Language: "css", Dirs: []string{"static", "css"}, Match: `\.css$`},
		{Language: "json", Dirs: []string{"static", "data"}, Match: `\.json$`},
		{Language: "yaml", Dirs: []string{"config"}, Match: `\.(yaml|yml)$`},
		{Language: "toml", Dirs: []string{"config"}, Match: `\.toml$`},
		{Language: "shell", Dirs: []string{"scripts"}, Match: `\.(sh|bash)$`},
		{Language: "sql", Dirs: []string{"db"}, Match: `\.sql$`},
		{Language: "markdown", Dirs: []string{"docs"}, Match: `\.md$`},
		{Language: "text", Dirs: []string{"misc"}, Match: `\.txt$`},
	}
}

// Merge overlays custom on base. A custom pattern replaces the base entry
// for the same language in place; new languages are appended in the order
// given.
func Merge(base, custom []Pattern) []Pattern {
	out := append([]Pattern(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Language] = i
	}
	for _, p := range custom {
		if i, ok := index[p.Language]; ok {
			out[i] = p
			continue
		}
		index[p.Language] = len(out)
		out = append(out, p)
	}
	return out
}

func compile(patterns []Pattern) ([]Pattern, error) {
	out := make([]Pattern, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Match)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Language, err)
		}
		for _, dir := range p.Dirs {
			if !safeSegment(dir) {
				return nil, fmt.Errorf("pattern %q dir %q: %w", p.Language, dir, ErrUnsafePath)
			}
		}
		p.Dirs = append([]string(nil), p.Dirs...)
		p.re = re
		out[i] = p
	}
	return out, nil
}

// safeSegment reports whether dir is a single plain path element.
func safeSegment(dir string) bool {
	if dir == "" || dir == "." || dir == ".." {
		return false
	}
	return !strings.ContainsAny(dir, `/\:`)
}
