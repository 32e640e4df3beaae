// Package observability provides formatted console output for the score command.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/headline-scorer/internal/scoring"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// labelWidth is the column reserved for a label in result rows
	labelWidth = 16
)

// Printer writes boxed result tables
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// marker is the row prefix for a sentiment bucket
func marker(s scoring.Sentiment) string {
	switch s {
	case scoring.SentimentPositive:
		return "+"
	case scoring.SentimentNegative:
		return "-"
	case scoring.SentimentNeutral:
		return "="
	default:
		return " "
	}
}

// PrintResult outputs one row per scored headline in submission order.
func (p *Printer) PrintResult(result *scoring.Result) {
	if result == nil || len(result.Rows) == 0 {
		p.printBox("SCORED HEADLINES", "No headlines scored.")
		return
	}

	headlineWidth := boxWidth - 4 - labelWidth - 4
	var sb strings.Builder
	for i, row := range result.Rows {
		fmt.Fprintf(&sb, "%s %-*s %s", marker(row.Sentiment), headlineWidth, truncate(row.Headline, headlineWidth), truncate(row.Label, labelWidth))
		if i < len(result.Rows)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("SCORED HEADLINES (%d)", len(result.Rows)), sb.String())
}

// PrintSummary outputs the per-label counts, most frequent first.
func (p *Printer) PrintSummary(result *scoring.Result) {
	summary := result.Summary()
	if len(summary) == 0 {
		return
	}

	var sb strings.Builder
	for i, row := range summary {
		fmt.Fprintf(&sb, "%-*s %5d", boxWidth-4-6, truncate(row.Label, boxWidth-4-6), row.Count)
		if i < len(summary)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SUMMARY", sb.String())
}
