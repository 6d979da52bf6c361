package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" (also "") and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use text or json): %w", s, pgbulk.ErrInvalidConfig)
}

// Options tune the text renderer.
type Options struct {
	// Styled enables lipgloss colors and the bordered summary table.
	Styled bool
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *pgbulk.BatchReport, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatText, "":
		return RenderText(w, r, opts)
	}
	return fmt.Errorf("unsupported output format %q: %w", format, pgbulk.ErrInvalidConfig)
}

// jsonReport adds the derived fields consumers otherwise recompute.
type jsonReport struct {
	*pgbulk.BatchReport
	ErrorCount int  `json:"error_count"`
	Success    bool `json:"success"`
}

// RenderJSON writes r as one indented JSON document.
func RenderJSON(w io.Writer, r *pgbulk.BatchReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		BatchReport: r,
		ErrorCount:  r.ErrorCount(),
		Success:     r.Err() == nil,
	})
}
