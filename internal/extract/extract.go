// internal/extract/extract.go
// Package extract turns fenced code blocks in markdown files into files on disk.
package extract

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mwiater/mdextract/internal/fence"
	"github.com/mwiater/mdextract/internal/layout"
	"github.com/mwiater/mdextract/internal/logging"
	"github.com/mwiater/mdextract/internal/markdown"
	"github.com/spf13/afero"
)

// Options controls an extraction run.
type Options struct {
	OutputDir string
	Exclude   []string
	// Force rewrites files whose content is already up to date.
	Force bool
}

// Item is one block scheduled for writing.
type Item struct {
	Source  string
	Block   *fence.Block
	Heading string
	Target  layout.Target
	// Path is the destination on disk, OutputDir included.
	Path string
}

// MalformedBlock is a fence that was skipped.
type MalformedBlock struct {
	Source string
	Line   int
	Reason string
}

// SkippedDocument is a document that opted out of extraction.
type SkippedDocument struct {
	Source string
	Reason string
}

// Plan is the ordered set of writes for a run.
type Plan struct {
	Documents int
	Items     []Item
	Malformed []MalformedBlock
	Skipped   []SkippedDocument
}

// Report summarizes what Apply did.
type Report struct {
	Written   []string
	Unchanged []string
	Malformed int
	Skipped   int
}

// Extractor plans and writes extracted blocks through an afero filesystem.
type Extractor struct {
	fs     afero.Fs
	router *layout.Router
	opts   Options
}

// New constructs an Extractor. A nil fs means the OS filesystem.
func New(fs afero.Fs, router *layout.Router, opts Options) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		opts.OutputDir = "scraper"
	}
	return &Extractor{fs: fs, router: router, opts: opts}
}

// Plan discovers, parses and routes every block under paths without writing.
func (e *Extractor) Plan(paths []string) (*Plan, error) {
	files, err := e.Discover(paths)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	used := newPlannedPaths()

	for _, file := range files {
		logging.Infof("Processing file: %s", file)
		src, err := afero.ReadFile(e.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", file, err)
		}
		doc, err := markdown.Parse(file, src)
		if err != nil {
			return nil, err
		}
		plan.Documents++

		if doc.Front.Skip() {
			logging.Infof("Skipping %s (extract: false)", file)
			plan.Skipped = append(plan.Skipped, SkippedDocument{Source: file, Reason: "extract: false"})
			continue
		}

		subdir := ""
		if out := strings.TrimSpace(doc.Front.Output); out != "" {
			safe, err := layout.SafeName(out)
			if err != nil {
				logging.Warnf("%s: ignoring front matter output: %v", file, err)
			} else {
				subdir = safe
			}
		}

		blocks, malformed := fence.Scan(doc.Body)
		for _, m := range malformed {
			line := m.Line + doc.BodyLine
			logging.Warnf("%s:%d: skipping block: %s", file, line, m.Reason)
			plan.Malformed = append(plan.Malformed, MalformedBlock{Source: file, Line: line, Reason: m.Reason})
		}
		if len(blocks) == 0 {
			logging.Infof("No fenced code blocks in %s", file)
			continue
		}
		logging.Infof("Found %d block(s) in %s", len(blocks), file)

		stem := layout.Stem(file)
		prevEnd := doc.BodyLine
		for i, b := range blocks {
			b.StartLine += doc.BodyLine
			b.EndLine += doc.BodyLine

			heading := ""
			if h, ok := doc.HeadingBefore(prevEnd, b.StartLine); ok {
				heading = h.Text
			}
			prevEnd = b.EndLine

			target := e.router.Route(b, heading, i+1, stem)
			if target.Rejected != "" {
				logging.Warnf("%s:%d: unsafe file name %q, using %s", file, b.StartLine, target.Rejected, target.Path)
			}
			rel := target.Path
			if subdir != "" {
				rel = path.Join(subdir, rel)
			}
			rel = used.reserve(rel)
			target.Path = rel

			logging.Debugf("Extracting %s:%d-%d (lang %q) -> %s", file, b.StartLine, b.EndLine, b.Lang, rel)
			plan.Items = append(plan.Items, Item{
				Source:  file,
				Block:   b,
				Heading: heading,
				Target:  target,
				Path:    filepath.Join(e.opts.OutputDir, filepath.FromSlash(rel)),
			})
		}
	}
	return plan, nil
}

// Apply writes every planned item. Files whose bytes already match are left
// untouched unless Force is set.
func (e *Extractor) Apply(plan *Plan) (Report, error) {
	report := Report{Malformed: len(plan.Malformed), Skipped: len(plan.Skipped)}
	for _, item := range plan.Items {
		changed, err := e.write(item.Path, item.Block.Code)
		if err != nil {
			return report, fmt.Errorf("failed to save %s: %w", item.Path, err)
		}
		if changed {
			logging.Infof("Saved: %s", item.Path)
			report.Written = append(report.Written, item.Path)
		} else {
			logging.Debugf("Unchanged: %s", item.Path)
			report.Unchanged = append(report.Unchanged, item.Path)
		}
	}
	return report, nil
}

// Run plans and applies in one step.
func (e *Extractor) Run(paths []string) (*Plan, Report, error) {
	plan, err := e.Plan(paths)
	if err != nil {
		return nil, Report{}, err
	}
	report, err := e.Apply(plan)
	return plan, report, err
}

func (e *Extractor) write(dest string, code []byte) (bool, error) {
	if !e.opts.Force {
		if existing, err := afero.ReadFile(e.fs, dest); err == nil && bytes.Equal(existing, code) {
			return false, nil
		}
	}
	if err := e.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	if err := afero.WriteFile(e.fs, dest, code, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// plannedPaths tracks the files a plan writes and the directories they
// imply. Keys are lowercased so that case-folding filesystems still get
// distinct files.
type plannedPaths struct {
	files map[string]struct{}
	dirs  map[string]struct{}
}

func newPlannedPaths() *plannedPaths {
	return &plannedPaths{files: make(map[string]struct{}), dirs: make(map[string]struct{})}
}

// reserve returns rel, or a variant of it with a -2, -3, ... suffix on the
// first segment that clashes with an earlier file or directory.
func (p *plannedPaths) reserve(rel string) string {
	segs := strings.Split(rel, "/")
	for {
		i := p.conflict(segs)
		if i < 0 {
			break
		}
		orig := segs[i]
		for n := 2; p.conflict(segs) == i; n++ {
			segs[i] = suffixed(orig, n)
		}
	}
	for i := 1; i < len(segs); i++ {
		p.dirs[strings.ToLower(strings.Join(segs[:i], "/"))] = struct{}{}
	}
	out := strings.Join(segs, "/")
	p.files[strings.ToLower(out)] = struct{}{}
	return out
}

// conflict returns the index of the first segment whose prefix is already
// taken, or -1. A directory may not reuse a file path, and a file may reuse
// neither.
func (p *plannedPaths) conflict(segs []string) int {
	for i := range segs {
		key := strings.ToLower(strings.Join(segs[:i+1], "/"))
		if _, ok := p.files[key]; ok {
			return i
		}
		if i == len(segs)-1 {
			if _, ok := p.dirs[key]; ok {
				return i
			}
		}
	}
	return -1
}

func suffixed(name string, n int) string {
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
