// internal/markdown/document.go
// Package markdown loads markdown sources: front matter, body, and the
// heading outline used to name extracted code blocks.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/mwiater/mdextract/internal/logging"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ErrInvalidUTF8 is returned when a source is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("markdown source is not valid UTF-8")

// FrontMatter holds the per-document extraction options.
type FrontMatter struct {
	Title   string `yaml:"title" toml:"title"`
	Extract *bool  `yaml:"extract" toml:"extract"`
	Output  string `yaml:"output" toml:"output"`
}

// Skip reports whether the document opted out of extraction.
func (f FrontMatter) Skip() bool {
	return f.Extract != nil && !*f.Extract
}

// Heading is a section heading outside any code block.
type Heading struct {
	Level int
	Text  string
	// Line is 1-based and relative to the full source, front matter included.
	Line int
}

// Document is a parsed markdown file.
type Document struct {
	Path   string
	Source []byte
	// Body is Source without its front matter block.
	Body []byte
	// BodyLine is the number of source lines preceding Body.
	BodyLine int
	Front    FrontMatter
	Headings []Heading
}

var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse builds a Document from raw bytes. path is informational.
func Parse(path string, src []byte) (*Document, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}

	var front FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &front)
	if err != nil {
		// A leading "---" thematic break looks like front matter; treat the
		// whole file as body instead of failing the run.
		logging.Warnf("%s: ignoring front matter: %v", path, err)
		front, body = FrontMatter{}, src
	}

	offset := 0
	if len(body) < len(src) && bytes.HasSuffix(src, body) {
		offset = bytes.Count(src[:len(src)-len(body)], []byte("\n"))
	}

	doc := &Document{
		Path:     path,
		Source:   src,
		Body:     body,
		BodyLine: offset,
		Front:    front,
	}
	doc.Headings = collectHeadings(body, offset)
	return doc, nil
}

// collectHeadings walks the goldmark AST so that lines such as "# comment"
// inside code blocks are not taken for headings.
func collectHeadings(body []byte, offset int) []Heading {
	root := engine.Parser().Parse(text.NewReader(body))

	var headings []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		start := lines.At(0).Start
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(plainText(h, body)),
			Line:  offset + bytes.Count(body[:start], []byte("\n")) + 1,
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func plainText(n ast.Node, src []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		default:
			buf.WriteString(plainText(c, src))
		}
	}
	return buf.String()
}

// HeadingBefore returns the closest heading located strictly between the
// lines after and before, or false when there is none.
//
// Headings come from goldmark, which runs an unclosed fence to the end of
// the file. Headings after an unclosed opener are therefore missing, and
// blocks there get generated names.
func (d *Document) HeadingBefore(after, before int) (Heading, bool) {
	var found Heading
	ok := false
	for _, h := range d.Headings {
		if h.Line <= after {
			continue
		}
		if h.Line >= before {
			break
		}
		found, ok = h, true
	}
	return found, ok
}
