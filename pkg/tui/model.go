package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// FileStatus is the outcome of one enumerated file.
type FileStatus string

const (
	StatusPassed FileStatus = "passed"
	StatusFailed FileStatus = "failed"
	// StatusUnchecked marks a file with no shape defects whose references
	// were never checked because the shape phase failed elsewhere.
	StatusUnchecked FileStatus = "unchecked"
)

// FileEntry is one row of the file list.
type FileEntry struct {
	File       string
	Status     FileStatus
	Violations []report.Violation
}

// Model is the Bubble Tea model for the report browser.
type Model struct {
	report      *report.Report
	entries     []FileEntry
	visible     []int // indexes into entries
	selected    int   // index into visible
	failingOnly bool
	detail      detailPanel
	width       int
	height      int
}

// NewModel builds the browser state from a validation result.
func NewModel(res *validate.Result) Model {
	rep := res.Report
	var files []string
	if res.Workspace != nil {
		files = res.Workspace.Files
	}
	m := Model{report: rep, entries: Entries(rep, files)}
	m.refilter()
	return m
}

// Entries lists files in enumeration order with their violations. Files
// only named by violations are appended.
func Entries(rep *report.Report, files []string) []FileEntry {
	idx := make(map[string]int, len(files))
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		idx[f] = len(entries)
		entries = append(entries, FileEntry{File: f})
	}
	for _, v := range rep.Violations {
		i, ok := idx[v.File]
		if !ok {
			i = len(entries)
			idx[v.File] = i
			entries = append(entries, FileEntry{File: v.File})
		}
		entries[i].Violations = append(entries[i].Violations, v)
	}

	shapeFailed := !rep.OK() && rep.Phase == report.PhaseShape
	for i := range entries {
		switch {
		case len(entries[i].Violations) > 0:
			entries[i].Status = StatusFailed
		case shapeFailed:
			entries[i].Status = StatusUnchecked
		default:
			entries[i].Status = StatusPassed
		}
	}
	return entries
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
				m.syncDetail()
			}
		case key.Matches(msg, keys.Down):
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.syncDetail()
			}
		case key.Matches(msg, keys.PgUp):
			m.detail.PageUp()
		case key.Matches(msg, keys.PgDown):
			m.detail.PageDown()
		case key.Matches(msg, keys.Filter):
			m.failingOnly = !m.failingOnly
			m.refilter()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.SetSize(m.detailWidth(), m.bodyHeight())
		m.syncDetail()

	default:
		m.detail.Update(msg)
	}
	return m, nil
}

// refilter recomputes the visible rows, keeping the selection in range.
func (m *Model) refilter() {
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if m.failingOnly && e.Status != StatusFailed {
			continue
		}
		m.visible = append(m.visible, i)
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.syncDetail()
}

// Selected returns the highlighted entry, if any.
func (m Model) Selected() (FileEntry, bool) {
	if len(m.visible) == 0 {
		return FileEntry{}, false
	}
	return m.entries[m.visible[m.selected]], true
}

func (m *Model) syncDetail() {
	e, ok := m.Selected()
	if !ok {
		m.detail.SetContent("")
		return
	}
	md := detailMarkdown(e)
	if m.width > 0 {
		md = renderMarkdownWidth(md, m.detailWidth()-4)
	}
	m.detail.SetContent(md)
}

// detailMarkdown describes one file's result.
func detailMarkdown(e FileEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", e.File)
	switch e.Status {
	case StatusPassed:
		b.WriteString("No violations.\n")
	case StatusUnchecked:
		b.WriteString("Shape is fine; references were not checked because the shape phase failed.\n")
	default:
		for _, v := range e.Violations {
			fmt.Fprintf(&b, "- **%s**: %s\n", v.Phase, v.Message)
		}
	}
	return b.String()
}

func (m Model) listWidth() int {
	w := m.width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

func (m Model) detailWidth() int {
	w := m.width - m.listWidth()
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) bodyHeight() int {
	h := m.height - 4 // header + key bar
	if h < 3 {
		h = 3
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("schemacheck: " + m.report.Root))
	if !m.report.OK() {
		b.WriteString(" " + phaseBadgeStyle.Render(string(m.report.Phase)))
	}
	b.WriteString("  " + m.summary())
	b.WriteString("\n\n")

	list := m.listView()
	if m.width > 0 {
		list = lipgloss.NewStyle().Width(m.listWidth()).Render(list)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, m.detail.View()))
	} else {
		b.WriteString(list)
	}

	b.WriteString("\n")
	b.WriteString(keyBarStyle.Render(keyBarText(m.failingOnly)))
	return b.String()
}

func (m Model) summary() string {
	if m.report.OK() {
		return statusPassedStyle.Render(fmt.Sprintf("%s %d files OK", GlyphPassed, m.report.Files))
	}
	return statusFailedStyle.Render(fmt.Sprintf("%s %d violations", GlyphFailed, len(m.report.Violations))) +
		countStyle.Render(fmt.Sprintf(" in %d files", m.report.Files))
}

func (m Model) listView() string {
	if len(m.visible) == 0 {
		return fileNormal.Render("  no files")
	}
	var b strings.Builder
	for row, i := range m.visible {
		e := m.entries[i]
		line := fmt.Sprintf("%s %s", statusGlyph(e.Status), e.File)
		if n := len(e.Violations); n > 0 {
			line += fmt.Sprintf(" (%d)", n)
		}
		if row == m.selected {
			b.WriteString(fileCurrent.Render(GlyphCurrent + " " + line))
		} else {
			b.WriteString("  " + statusStyle(e.Status).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusGlyph(s FileStatus) string {
	switch s {
	case StatusPassed:
		return GlyphPassed
	case StatusFailed:
		return GlyphFailed
	default:
		return GlyphUnchecked
	}
}

func statusStyle(s FileStatus) lipgloss.Style {
	switch s {
	case StatusPassed:
		return filePassed
	case StatusFailed:
		return fileFailed
	default:
		return fileUnchecked
	}
}

// Run shows the browser until the user quits.
func Run(res *validate.Result) error {
	p := tea.NewProgram(NewModel(res), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
