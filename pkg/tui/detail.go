package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// detailPanel renders the scrollable violation list of the selected file.
type detailPanel struct {
	viewport viewport.Model
	content  string
	width    int
	height   int
	ready    bool
}

// SetSize updates the viewport dimensions.
func (p *detailPanel) SetSize(width, height int) {
	p.width = width
	p.height = height

	contentW := width - 4  // border padding
	contentH := height - 3 // title + border
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}

	if !p.ready {
		p.viewport = viewport.New(contentW, contentH)
		p.ready = true
	} else {
		p.viewport.Width = contentW
		p.viewport.Height = contentH
	}
	p.viewport.SetContent(p.content)
}

// SetContent replaces the displayed text and scrolls to the top.
func (p *detailPanel) SetContent(s string) {
	p.content = s
	if p.ready {
		p.viewport.SetContent(s)
		p.viewport.GotoTop()
	}
}

// Update handles viewport-specific messages (mouse scroll, etc.).
func (p *detailPanel) Update(msg tea.Msg) {
	if p.ready {
		p.viewport, _ = p.viewport.Update(msg)
	}
}

// PageUp scrolls the viewport up.
func (p *detailPanel) PageUp() {
	if p.ready {
		p.viewport.HalfViewUp()
	}
}

// PageDown scrolls the viewport down.
func (p *detailPanel) PageDown() {
	if p.ready {
		p.viewport.HalfViewDown()
	}
}

// View renders the detail panel.
func (p *detailPanel) View() string {
	title := panelTitle.Render("Violations")

	content := p.content
	if p.ready {
		content = p.viewport.View()
	}

	header := title
	if p.ready && p.viewport.TotalLineCount() > p.viewport.VisibleLineCount() {
		scrollInfo := fmt.Sprintf(" %3.0f%%", p.viewport.ScrollPercent()*100)
		padding := p.width - 4 - len("Violations") - len(scrollInfo)
		if padding < 0 {
			padding = 0
		}
		header = title + strings.Repeat(" ", padding) + keyDescStyle.Render(scrollInfo)
	}

	return panelBorder.Width(p.width).Height(p.height).Render(
		header + "\n" + content,
	)
}
