package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type painter struct {
	styled bool
}

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// RenderText writes the per-load lines followed by the row count summary.
func RenderText(w io.Writer, r *pgbulk.BatchReport, opts Options) error {
	p := painter{styled: opts.Styled}
	var b strings.Builder

	for _, res := range r.Results {
		writeLoad(&b, p, res)
	}
	if r.Cancelled {
		fmt.Fprintln(&b, p.paint(warnStyle, "Run cancelled before every file was loaded."))
	}

	b.WriteString("\n")
	if opts.Styled {
		b.WriteString(countsTable(r))
		b.WriteString("\n")
	} else {
		writeCounts(&b, r)
	}

	errs := r.ErrorCount()
	switch {
	case errs > 0:
		fmt.Fprintln(&b, p.paint(failStyle, fmt.Sprintf("%d of %d loads failed.", errs, len(r.Results))))
	case r.Cancelled:
	default:
		fmt.Fprintln(&b, p.paint(okStyle, fmt.Sprintf("All %d loads succeeded.", len(r.Results))))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLoad(b *strings.Builder, p painter, res pgbulk.LoadResult) {
	fmt.Fprintf(b, "Loading %s from %s\n", res.Table, filepath.Base(res.File))

	d := res.Diagnostic
	if !res.Failed() {
		fmt.Fprintf(b, "  %s %d rows loaded into %s %s\n",
			p.paint(okStyle, "✓"), res.RowsCopied, res.Table,
			p.paint(mutedStyle, "("+res.Duration.Round(time.Millisecond).String()+")"))
		if d != nil {
			fmt.Fprintf(b, "  %s %s\n", p.paint(warnStyle, "!"), d.Message)
		}
		return
	}

	fmt.Fprintf(b, "  %s Load of %s failed\n", p.paint(failStyle, "✗"), res.Table)
	if d == nil {
		return
	}
	if d.Code != "" {
		fmt.Fprintf(b, "    Code:     %s\n", d.Code)
	}
	fmt.Fprintf(b, "    Kind:     %s\n", d.Kind)
	fmt.Fprintf(b, "    Severity: %s\n", d.Severity)
	if d.Line > 0 {
		fmt.Fprintf(b, "    Line:     %d\n", d.Line)
	}
	if d.Column != "" {
		fmt.Fprintf(b, "    Column:   %s\n", d.Column)
	}
	fmt.Fprintf(b, "    Message:  %s\n", d.Message)
	if d.Detail != "" {
		fmt.Fprintf(b, "    Detail:   %s\n", d.Detail)
	}
}

func countCell(c pgbulk.TableCount) string {
	if c.Error != "" {
		return "n/a (" + c.Error + ")"
	}
	return strconv.FormatInt(c.Rows, 10)
}

func writeCounts(b *strings.Builder, r *pgbulk.BatchReport) {
	width := len("Total")
	for _, c := range r.Counts {
		width = max(width, len(c.Table))
	}

	fmt.Fprintln(b, "Row counts:")
	for _, c := range r.Counts {
		fmt.Fprintf(b, "  %-*s  %s\n", width, c.Table, countCell(c))
	}
	fmt.Fprintf(b, "  %-*s  %d\n", width, "Total", r.TotalRows)
}

func countsTable(r *pgbulk.BatchReport) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Table", "Rows").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	for _, c := range r.Counts {
		t.Row(c.Table, countCell(c))
	}
	t.Row("Total", strconv.FormatInt(r.TotalRows, 10))
	return t.Render()
}
