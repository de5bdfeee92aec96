// internal/report/report.go
// Package report renders extraction plans and results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/mdextract/internal/extract"
	"github.com/mwiater/mdextract/internal/util"
)

const previewWidth = 40

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	targetStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	summaryStyle   = lipgloss.NewStyle().Bold(true)
	columnGapStyle = lipgloss.NewStyle().PaddingRight(2)
)

type row struct {
	source, lines, lang, heading, target, preview string
}

// PrintPlan writes one row per planned block followed by malformed fences
// and skipped documents.
func PrintPlan(out io.Writer, plan *extract.Plan) {
	if len(plan.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("No fenced code blocks found in %d document(s).", plan.Documents)))
	} else {
		rows := make([]row, 0, len(plan.Items))
		for _, item := range plan.Items {
			lang := item.Block.Lang
			if lang == "" {
				lang = "-"
			}
			heading := item.Heading
			if heading == "" {
				heading = "-"
			}
			rows = append(rows, row{
				source:  item.Source,
				lines:   fmt.Sprintf("%d-%d", item.Block.StartLine, item.Block.EndLine),
				lang:    lang,
				heading: util.TruncateRunes(heading, previewWidth),
				target:  item.Path,
				preview: firstLine(item.Block.Code),
			})
		}
		printRows(out, rows)
	}

	for _, m := range plan.Malformed {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("skipped %s:%d: %s", m.Source, m.Line, m.Reason)))
	}
	for _, s := range plan.Skipped {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("skipped %s (%s)", s.Source, s.Reason)))
	}
}

func printRows(out io.Writer, rows []row) {
	header := row{source: "SOURCE", lines: "LINES", lang: "LANG", heading: "HEADING", target: "TARGET", preview: "FIRST LINE"}
	widths := [5]int{}
	for _, r := range append([]row{header}, rows...) {
		widths[0] = util.Max(widths[0], len(r.source))
		widths[1] = util.Max(widths[1], len(r.lines))
		widths[2] = util.Max(widths[2], len(r.lang))
		widths[3] = util.Max(widths[3], len([]rune(r.heading)))
		widths[4] = util.Max(widths[4], len(r.target))
	}

	cell := func(style lipgloss.Style, text string, width int) string {
		return columnGapStyle.Render(style.Width(width).Render(text))
	}

	fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
		cell(headerStyle, header.source, widths[0]),
		cell(headerStyle, header.lines, widths[1]),
		cell(headerStyle, header.lang, widths[2]),
		cell(headerStyle, header.heading, widths[3]),
		cell(headerStyle, header.target, widths[4]),
		headerStyle.Render(header.preview),
	))
	for _, r := range rows {
		fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
			cell(sourceStyle, r.source, widths[0]),
			cell(lipgloss.NewStyle(), r.lines, widths[1]),
			cell(lipgloss.NewStyle(), r.lang, widths[2]),
			cell(mutedStyle, r.heading, widths[3]),
			cell(targetStyle, r.target, widths[4]),
			mutedStyle.Render(r.preview),
		))
	}
}

// PrintSummary writes the one-line result of an extract run.
func PrintSummary(out io.Writer, plan *extract.Plan, rep extract.Report) {
	line := fmt.Sprintf("%d document(s), %d block(s): %d written, %d unchanged, %d malformed, %d skipped document(s)",
		plan.Documents, len(plan.Items), len(rep.Written), len(rep.Unchanged), rep.Malformed, rep.Skipped)
	fmt.Fprintln(out, summaryStyle.Render(line))
}

func firstLine(code []byte) string {
	text := strings.TrimSpace(string(code))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return util.TruncateRunes(strings.TrimSpace(text), previewWidth)
}
