package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Format selects how a report is written.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatMarkdown:
		return Format(s), nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q: use text, json or markdown", s)
}

// Writer renders reports. Text output sends violations to Err and the
// success line to Out; json and markdown go entirely to Out.
type Writer struct {
	Out    io.Writer
	Err    io.Writer
	Format Format
	Color  bool // style text output with lipgloss
	Render bool // render markdown through glamour
}

var (
	fileStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	phaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// Write renders r in the configured format.
func (w *Writer) Write(r *Report) error {
	switch w.Format {
	case FormatJSON:
		return w.writeJSON(r)
	case FormatMarkdown:
		return w.writeMarkdown(r)
	default:
		return w.writeText(r)
	}
}

func (w *Writer) writeText(r *Report) error {
	if r.OK() {
		line := fmt.Sprintf("OK: validated %d files under %s", r.Files, r.Root)
		if w.Color {
			line = okStyle.Render(line)
		}
		_, err := fmt.Fprintln(w.Out, line)
		return err
	}
	for _, v := range r.Violations {
		if _, err := fmt.Fprintln(w.Err, w.textLine(v)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) textLine(v Violation) string {
	if !w.Color {
		return v.String()
	}
	return fileStyle.Render(v.File+":") + " " + v.Message + " " + phaseStyle.Render("["+string(v.Phase)+"]")
}

func (w *Writer) writeJSON(r *Report) error {
	out := struct {
		*Report
		OK bool `json:"ok"`
	}{r, r.OK()}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w.Out, string(data))
	return err
}

func (w *Writer) writeMarkdown(r *Report) error {
	md := Markdown(r)
	if w.Render {
		md = renderMarkdown(md)
	}
	_, err := io.WriteString(w.Out, md)
	return err
}

// Markdown renders r as a markdown summary with one table row per violation.
func Markdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Schema check: `%s`\n\n", r.Root)
	if r.OK() {
		fmt.Fprintf(&b, "**OK**: validated %d files.\n", r.Files)
		return b.String()
	}
	fmt.Fprintf(&b, "**FAILED**: %d violation(s) in %d files (phase: %s).\n\n", len(r.Violations), r.Files, r.Phase)
	b.WriteString("| File | Phase | Message |\n")
	b.WriteString("|------|-------|---------|\n")
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", v.File, v.Phase, escapeCell(v.Message))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// renderMarkdown falls back to the raw input if glamour fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
