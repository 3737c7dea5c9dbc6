// Package diagram renders the reference graph of a schema set.
// Supports Mermaid flowchart and ASCII formats.
package diagram

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/schemacheck/pkg/graph"
	"github.com/ormasoftchile/schemacheck/pkg/store"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// Format represents the output diagram format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatASCII   Format = "ascii"
)

// Graph is the renderable form of a schema set's cross-file references.
type Graph struct {
	Name  string
	Nodes []Node
	Links []Link
}

// Node is one document.
type Node struct {
	Path    string // canonical path; empty for targets that never canonicalized
	Label   string
	Lazy    bool // loaded only as a reference target
	Missing bool // referenced but not loadable
}

// Link is a reference from one node to another, by index into Nodes.
type Link struct {
	From, To int
	Ref      string
	Resolved bool
}

// Build assembles a Graph from the store's documents and the resolver's
// edges. Labels are paths relative to root where possible.
func Build(root string, docs []*store.Document, edges []graph.Edge) *Graph {
	g := &Graph{Name: root}
	index := make(map[string]int)
	absRoot, _ := store.Canonicalize("", root)

	add := func(path, label string, lazy, missing bool) int {
		if i, ok := index[path]; ok && path != "" {
			return i
		}
		g.Nodes = append(g.Nodes, Node{Path: path, Label: label, Lazy: lazy, Missing: missing})
		i := len(g.Nodes) - 1
		if path != "" {
			index[path] = i
		}
		return i
	}
	labelFor := func(path string) string {
		if absRoot != "" {
			if rel, err := filepath.Rel(absRoot, path); err == nil {
				return filepath.ToSlash(rel)
			}
		}
		return filepath.Base(path)
	}

	for _, d := range docs {
		add(d.Path, labelFor(d.Path), d.Lazy, false)
	}

	seen := make(map[Link]bool)
	for _, e := range edges {
		from := add(e.From, labelFor(e.From), false, false)
		var to int
		if i, ok := index[e.To]; ok && e.To != "" {
			to = i
		} else {
			label := labelFor(e.To)
			if e.To == "" {
				label, _, _ = strings.Cut(e.Ref, "#")
			}
			to = add(e.To, label, false, true)
		}
		l := Link{From: from, To: to, Ref: e.Ref, Resolved: e.Resolved}
		if seen[l] {
			continue
		}
		seen[l] = true
		g.Links = append(g.Links, l)
	}
	return g
}

// Generate produces a diagram string from a reference graph.
func Generate(g *Graph, format Format) (string, error) {
	if g == nil {
		return "", fmt.Errorf("nil graph")
	}
	switch format {
	case FormatMermaid:
		return generateMermaid(g), nil
	case FormatASCII:
		return generateASCII(g), nil
	default:
		return "", fmt.Errorf("unsupported diagram format: %s", format)
	}
}

// --- Mermaid flowchart ---

func generateMermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	for i, n := range g.Nodes {
		b.WriteString("    " + nodeDefinition(i, n) + "\n")
	}
	for _, l := range g.Links {
		arrow := "-->"
		if !l.Resolved {
			arrow = "-.->"
		}
		b.WriteString(fmt.Sprintf("    %s %s|%q| %s\n",
			nodeID(l.From), arrow, escMermaid(truncate(fragmentOf(l.Ref), 30)), nodeID(l.To)))
	}

	for i, n := range g.Nodes {
		if style := nodeStyle(n); style != "" {
			b.WriteString(fmt.Sprintf("    style %s %s\n", nodeID(i), style))
		}
	}
	return b.String()
}

func nodeDefinition(i int, n Node) string {
	id := nodeID(i)
	label := escMermaid(n.Label)
	switch {
	case n.Missing:
		return fmt.Sprintf(`%s[/"✗ %s"/]`, id, label)
	case n.Lazy:
		return fmt.Sprintf(`%s(["%s"])`, id, label)
	default:
		return fmt.Sprintf(`%s["%s"]`, id, label)
	}
}

func nodeStyle(n Node) string {
	switch {
	case n.Missing:
		return "fill:#e60,stroke:#c40,color:#fff"
	case n.Lazy:
		return "fill:#07a,stroke:#058,color:#fff"
	default:
		return ""
	}
}

// --- ASCII ---

func generateASCII(g *Graph) string {
	var b strings.Builder

	name := g.Name
	if name == "" {
		name = "Schemas"
	}
	if len(g.Nodes) == 0 {
		b.WriteString(name + " (empty)\n")
		return b.String()
	}

	out := make([][]Link, len(g.Nodes))
	for _, l := range g.Links {
		out[l.From] = append(out[l.From], l)
	}

	// Compute uniform box width so every box aligns under the header.
	const indent = 4
	boxWidth := computeUniformBoxWidth(g, out, name)
	pad := strings.Repeat(" ", indent)

	headerText := centerPad(name, boxWidth)
	b.WriteString(pad + "╔" + strings.Repeat("═", boxWidth) + "╗\n")
	b.WriteString(pad + "║" + headerText + "║\n")
	b.WriteString(pad + "╚" + strings.Repeat("═", boxWidth) + "╝\n")

	for i, n := range g.Nodes {
		writeASCIINode(&b, g, n, out[i], indent, boxWidth)
	}
	return b.String()
}

// computeUniformBoxWidth returns the widest interior width needed
// across all nodes and the header name.
func computeUniformBoxWidth(g *Graph, out [][]Link, name string) int {
	w := 22
	if nw := runewidth.StringWidth(name) + 4; nw > w {
		w = nw
	}
	for i, n := range g.Nodes {
		if nw := runewidth.StringWidth(nodeLine(n)); nw > w {
			w = nw
		}
		for _, l := range out[i] {
			if lw := runewidth.StringWidth(linkLine(g, l)); lw > w {
				w = lw
			}
		}
	}
	return w
}

// centerPad centers s within width using spaces, based on display width.
func centerPad(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	total := width - sw
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func writeASCIINode(b *strings.Builder, g *Graph, n Node, links []Link, indent, boxWidth int) {
	pad := strings.Repeat(" ", indent)
	row := func(s string) {
		b.WriteString(pad + "│" + s + strings.Repeat(" ", boxWidth-runewidth.StringWidth(s)) + "│\n")
	}
	b.WriteString(pad + "┌" + strings.Repeat("─", boxWidth) + "┐\n")
	row(nodeLine(n))
	for _, l := range links {
		row(linkLine(g, l))
	}
	b.WriteString(pad + "└" + strings.Repeat("─", boxWidth) + "┘\n")
}

func nodeLine(n Node) string {
	return fmt.Sprintf(" %s %s ", nodeIcon(n), n.Label)
}

func linkLine(g *Graph, l Link) string {
	mark := "→"
	if !l.Resolved {
		mark = "✗"
	}
	return fmt.Sprintf("   %s %s%s ", mark, g.Nodes[l.To].Label, fragmentOf(l.Ref))
}

func nodeIcon(n Node) string {
	switch {
	case n.Missing:
		return "✗"
	case n.Lazy:
		return "◇"
	default:
		return "○"
	}
}

// --- string helpers ---

func nodeID(i int) string {
	return fmt.Sprintf("n%d", i)
}

// fragmentOf returns the '#...' part of a reference, or "#" when absent.
func fragmentOf(ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[i:]
	}
	return "#"
}

func escMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, `'`, "#apos;")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// ForWorkspace resolves every reference of ws's initial documents,
// whatever their shape, and builds the resulting graph.
func ForWorkspace(ws *validate.Workspace) *Graph {
	ws.Resolver.ResolveAll(ws.Documents)
	return Build(ws.Root, ws.Store.Documents(), ws.Resolver.Edges())
}
