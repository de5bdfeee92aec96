// internal/fence/fence.go
// Package fence locates fenced code blocks in markdown source.
package fence

import (
	"bytes"
)

// Block is a single fenced code block found in a markdown source.
type Block struct {
	// Lang is the first word of the info string, if any.
	Lang string
	// Info is the full info string following the opening fence.
	Info string
	// Fence is the literal opening run, e.g. "```" or "~~~~".
	Fence string
	// Code is the exact content between the opening and closing fence lines.
	Code []byte
	// StartLine and EndLine are the 1-based lines of the opening and closing fences.
	StartLine int
	EndLine   int
}

// Blocks is an ordered list of blocks.
type Blocks []*Block

// Malformed records a fence that could not be captured.
type Malformed struct {
	Line   int
	Reason string
}

const maxFenceIndent = 3

type opener struct {
	char   byte
	length int
	indent int
	info   string
}

// Scan walks src line by line and returns every closed fenced block in
// document order. Unclosed fences are reported as Malformed and skipped;
// scanning resumes on the line following the unclosed opener.
func Scan(src []byte) (Blocks, []Malformed) {
	lines := splitLines(src)
	var (
		blocks    Blocks
		malformed []Malformed
	)

	for i := 0; i < len(lines); i++ {
		open, ok := parseOpener(lines[i])
		if !ok {
			continue
		}

		closeAt := -1
		for j := i + 1; j < len(lines); j++ {
			if isCloser(lines[j], open) {
				closeAt = j
				break
			}
		}
		if closeAt < 0 {
			malformed = append(malformed, Malformed{Line: i + 1, Reason: "unclosed fence"})
			continue
		}

		var code bytes.Buffer
		for _, line := range lines[i+1 : closeAt] {
			code.Write(stripIndent(line, open.indent))
		}

		blocks = append(blocks, &Block{
			Lang:      language(open.info),
			Info:      open.info,
			Fence:     string(bytes.Repeat([]byte{open.char}, open.length)),
			Code:      code.Bytes(),
			StartLine: i + 1,
			EndLine:   closeAt + 1,
		})
		i = closeAt
	}

	return blocks, malformed
}

// splitLines splits src after each '\n', keeping the terminator so that
// content can be reassembled byte for byte.
func splitLines(src []byte) [][]byte {
	var lines [][]byte
	for len(src) > 0 {
		idx := bytes.IndexByte(src, '\n')
		if idx < 0 {
			lines = append(lines, src)
			break
		}
		lines = append(lines, src[:idx+1])
		src = src[idx+1:]
	}
	return lines
}

func leadingSpaces(line []byte) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func runLength(line []byte, c byte) int {
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	return n
}

func parseOpener(line []byte) (opener, bool) {
	indent := leadingSpaces(line)
	if indent > maxFenceIndent || indent >= len(line) {
		return opener{}, false
	}
	rest := line[indent:]
	c := rest[0]
	if c != '`' && c != '~' {
		return opener{}, false
	}
	n := runLength(rest, c)
	if n < 3 {
		return opener{}, false
	}
	info := bytes.TrimSpace(rest[n:])
	if c == '`' && bytes.IndexByte(info, '`') >= 0 {
		return opener{}, false
	}
	return opener{char: c, length: n, indent: indent, info: string(info)}, true
}

func isCloser(line []byte, open opener) bool {
	indent := leadingSpaces(line)
	if indent > maxFenceIndent || indent >= len(line) {
		return false
	}
	rest := line[indent:]
	n := runLength(rest, open.char)
	if n < open.length {
		return false
	}
	return len(bytes.TrimSpace(rest[n:])) == 0
}

// stripIndent removes up to width leading spaces from line.
func stripIndent(line []byte, width int) []byte {
	n := leadingSpaces(line)
	if n > width {
		n = width
	}
	return line[n:]
}

func language(info string) string {
	fields := bytes.Fields([]byte(info))
	if len(fields) == 0 {
		return ""
	}
	lang := string(fields[0])
	// Some authors write ```{.python} or ```python{1,3}.
	if i := bytes.IndexAny([]byte(lang), "{,"); i > 0 {
		lang = lang[:i]
	}
	return trimBraces(lang)
}

func trimBraces(lang string) string {
	for len(lang) > 0 && (lang[0] == '{' || lang[0] == '.') {
		lang = lang[1:]
	}
	for len(lang) > 0 && lang[len(lang)-1] == '}' {
		lang = lang[:len(lang)-1]
	}
	return lang
}
