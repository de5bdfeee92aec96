// internal/layout/router.go
// Package layout decides where an extracted code block is written.
package layout

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mwiater/mdextract/internal/fence"
)

// ErrUnsafePath is returned for names that would escape the output root.
var ErrUnsafePath = errors.New("path escapes output directory")

// fallbackDir receives files nothing else claims.
const fallbackDir = "misc"

var fileNameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-/]+\.[A-Za-z][A-Za-z0-9]*$`)

var langExt = map[string]string{
	"go":         ".go",
	"golang":     ".go",
	"python":     ".py",
	"py":         ".py",
	"javascript": ".js",
	"js":         ".js",
	"jsx":        ".jsx",
	"typescript": ".ts",
	"ts":         ".ts",
	"tsx":        ".tsx",
	"html":       ".html",
	"css":        ".css",
	"json":       ".json",
	"yaml":       ".yaml",
	"yml":        ".yaml",
	"toml":       ".toml",
	"sh":         ".sh",
	"bash":       ".sh",
	"shell":      ".sh",
	"sql":        ".sql",
	"markdown":   ".md",
	"md":         ".md",
	"xml":        ".xml",
	"ini":        ".ini",
	"dockerfile": ".dockerfile",
	"rust":       ".rs",
	"java":       ".java",
	"ruby":       ".rb",
	"c":          ".c",
	"cpp":        ".cpp",
	"text":       ".txt",
	"txt":        ".txt",
	"plaintext":  ".txt",
}

// Target is the routed location of one block, relative to the output root.
type Target struct {
	// Path uses forward slashes.
	Path string
	// Category is the matched pattern language, a MIME type, or "txt".
	Category string
	// FromHeading is true when the file name came from a heading.
	FromHeading bool
	// Rejected holds a heading name refused by SafeName, if any.
	Rejected string
}

// Router maps blocks to targets.
type Router struct {
	patterns []Pattern
	flat     bool
}

// NewRouter compiles patterns. When flat is true no directory is prepended.
func NewRouter(patterns []Pattern, flat bool) (*Router, error) {
	compiled, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	return &Router{patterns: compiled, flat: flat}, nil
}

// Patterns returns a copy of the active routing table.
func (r *Router) Patterns() []Pattern {
	return append([]Pattern(nil), r.patterns...)
}

// Route picks a target for block. heading is the nearest preceding heading
// text, index is the 1-based ordinal of the block in its document and stem
// names the document.
func (r *Router) Route(block *fence.Block, heading string, index int, stem string) Target {
	var t Target

	name := ""
	if candidate, ok := FileNameFromHeading(heading); ok {
		safe, err := SafeName(candidate)
		if err != nil {
			t.Rejected = candidate
		} else {
			name = safe
			t.FromHeading = true
		}
	}
	if name == "" {
		name = fmt.Sprintf("%s-%03d%s", stem, index, Extension(block.Lang))
	}

	category, dirs := r.classify(path.Base(name))
	t.Category = category
	if r.flat {
		t.Path = name
		return t
	}
	joined, err := SafeName(path.Join(append(append([]string(nil), dirs...), name)...))
	if err != nil {
		joined = path.Join(fallbackDir, name)
	}
	t.Path = joined
	return t
}

// classify mirrors the routing table, then MIME, then the misc bucket.
func (r *Router) classify(base string) (string, []string) {
	for _, p := range r.patterns {
		if p.re.MatchString(base) {
			return p.Language, p.Dirs
		}
	}
	if mt := mime.TypeByExtension(path.Ext(base)); mt != "" {
		major := strings.SplitN(mt, "/", 2)[0]
		return strings.SplitN(mt, ";", 2)[0], []string{major}
	}
	return "txt", []string{fallbackDir}
}

// FileNameFromHeading accepts headings such as "backend/app.py" or
// "`main.go`" and returns the file name they denote.
func FileNameFromHeading(heading string) (string, bool) {
	h := strings.TrimSpace(heading)
	h = strings.Trim(h, "`")
	h = strings.TrimSpace(h)
	if h == "" || !fileNameRe.MatchString(h) {
		return "", false
	}
	return h, true
}

// SafeName cleans a relative slash path and refuses anything that would
// land outside the output root.
func SafeName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	return cleaned, nil
}

// Extension returns the file extension for a fence language.
func Extension(lang string) string {
	if ext, ok := langExt[strings.ToLower(lang)]; ok {
		return ext
	}
	return ".txt"
}

// Stem derives a document stem from its path, e.g. "docs/Read Me.md" -> "read-me".
func Stem(p string) string {
	base := filepath.Base(p)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "block"
	}
	return s
}
