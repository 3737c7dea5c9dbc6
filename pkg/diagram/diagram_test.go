package diagram

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ormasoftchile/schemacheck/pkg/graph"
	"github.com/ormasoftchile/schemacheck/pkg/store"
)

func testGraph(t *testing.T) *Graph {
	t.Helper()
	root, _ := store.Canonicalize("", t.TempDir())
	a := filepath.Join(root, "a.json")
	b := filepath.Join(root, "b.schema")
	gone := filepath.Join(root, "gone.json")
	docs := []*store.Document{
		{Path: a, Display: a},
		{Path: b, Display: b, Lazy: true},
	}
	edges := []graph.Edge{
		{From: a, To: b, Ref: "b.schema#/definitions/x", Resolved: true},
		{From: a, To: b, Ref: "b.schema#/definitions/x", Resolved: true},
		{From: a, To: gone, Ref: "gone.json", Resolved: false},
		{From: b, To: a, Ref: "a.json#/nope", Resolved: false},
	}
	return Build(root, docs, edges)
}

func TestBuild(t *testing.T) {
	g := testGraph(t)
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if g.Nodes[0].Label != "a.json" || !g.Nodes[1].Lazy || !g.Nodes[2].Missing {
		t.Errorf("nodes = %+v", g.Nodes)
	}
	if len(g.Links) != 3 {
		t.Fatalf("duplicate edge not collapsed: %+v", g.Links)
	}
	if g.Links[2].From != 1 || g.Links[2].To != 0 || g.Links[2].Resolved {
		t.Errorf("back link = %+v", g.Links[2])
	}
}

func TestBuild_UncanonicalTarget(t *testing.T) {
	root, _ := store.Canonicalize("", t.TempDir())
	a := filepath.Join(root, "a.json")
	g := Build(root, []*store.Document{{Path: a}}, []graph.Edge{
		{From: a, Ref: "bad\x00name.json#/x"},
	})
	if len(g.Nodes) != 2 || !g.Nodes[1].Missing {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if g.Nodes[1].Label != "bad\x00name.json" {
		t.Errorf("label = %q", g.Nodes[1].Label)
	}
}

func TestGenerateMermaid(t *testing.T) {
	out, err := Generate(testGraph(t), FormatMermaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "flowchart LR\n") {
		t.Error("missing flowchart header")
	}
	if !strings.Contains(out, `n0 -->|"#/definitions/x"| n1`) {
		t.Errorf("missing resolved edge, got:\n%s", out)
	}
	if !strings.Contains(out, `n0 -.->|"#"| n2`) {
		t.Errorf("missing unresolved edge, got:\n%s", out)
	}
	if !strings.Contains(out, `n1(["b.schema"])`) {
		t.Errorf("lazy node not drawn as stadium, got:\n%s", out)
	}
	if !strings.Contains(out, "style n2 fill:#e60") {
		t.Error("missing style for unloadable target")
	}
}

func TestGenerateASCII(t *testing.T) {
	g := testGraph(t)
	g.Name = "schemas"
	out, err := Generate(g, FormatASCII)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"schemas", "○ a.json", "◇ b.schema", "→ b.schema#/definitions/x", "✗ gone.json#"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// every box row has the same display width
	var width int
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		w := len([]rune(line))
		if width == 0 {
			width = w
		} else if w != width {
			t.Errorf("ragged line %q", line)
		}
	}
}

func TestGenerateASCII_Empty(t *testing.T) {
	out, _ := Generate(&Graph{Name: "x"}, FormatASCII)
	if out != "x (empty)\n" {
		t.Errorf("got %q", out)
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	_, err := Generate(&Graph{}, "svg")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_NilGraph(t *testing.T) {
	if _, err := Generate(nil, FormatMermaid); err == nil {
		t.Fatal("expected error for nil graph")
	}
}
