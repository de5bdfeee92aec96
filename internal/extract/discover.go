package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var markdownExts = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// Discover expands paths into the list of markdown files to process.
// Directories are walked in lexical order; hidden directories, excluded
// paths and the output directory are skipped. Files named explicitly are
// always included. A path that does not exist is an error.
func (e *Extractor) Discover(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	outAbs := absPath(e.opts.OutputDir)

	for _, root := range paths {
		info, err := e.fs.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("input does not exist: %s", root)
			}
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = afero.Walk(e.fs, root, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if path == root {
					return nil
				}
				if strings.HasPrefix(fi.Name(), ".") || absPath(path) == outAbs || shouldExclude(path, e.opts.Exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			if shouldExclude(path, e.opts.Exclude) {
				return nil
			}
			if _, ok := markdownExts[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return files, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func shouldExclude(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)
		if strings.Contains(pattern, "**") {
			trimmed := strings.ReplaceAll(pattern, "**", "")
			if trimmed != "" && strings.Contains(normalized, trimmed) {
				return true
			}
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
