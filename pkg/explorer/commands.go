package explorer

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/pointer"
	"github.com/ormasoftchile/schemacheck/pkg/refs"
)

// handleDocs lists every loaded document; lazily loaded ones are marked.
func (e *Explorer) handleDocs() {
	docs := e.ws.Store.Documents()
	if len(docs) == 0 {
		fmt.Fprintf(e.output, "No documents loaded.\n")
		return
	}
	for _, d := range docs {
		mark := " "
		if d == e.current {
			mark = "*"
		}
		suffix := ""
		if d.Lazy {
			suffix = "  (lazy)"
		}
		fmt.Fprintf(e.output, " %s %s%s\n", mark, e.label(d), suffix)
	}
	for _, f := range e.ws.Failures {
		fmt.Fprintf(e.output, " ✗ %s: %s\n", f.File, f.Message)
	}
}

// handleOpen makes a document current. Names are relative to the
// workspace root; unknown files are loaded lazily.
func (e *Explorer) handleOpen(name string) {
	if name == "" {
		fmt.Fprintf(e.output, "Usage: open <file>\n")
		return
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.ws.Root, name)
	}
	doc, ok := e.ws.Store.Lookup(path)
	if !ok {
		var err error
		doc, err = e.ws.Store.TryLoad(path)
		if err != nil {
			fmt.Fprintf(e.output, "Error: %v\n", err)
			return
		}
	}
	e.current = doc
	fmt.Fprintf(e.output, "Opened %s\n", e.label(doc))
}

// handleRefs lists the current document's references and whether each resolves.
func (e *Explorer) handleRefs() {
	if !e.requireCurrent() {
		return
	}
	found := refs.Scan(e.current.Root)
	if len(found) == 0 {
		fmt.Fprintf(e.output, "No references.\n")
		return
	}
	for _, r := range found {
		if _, _, err := e.ws.Resolver.Resolve(e.current, r.Raw); err != nil {
			fmt.Fprintf(e.output, "  ✗ %s  %s\n       %v\n", r.Location, r.Raw, err)
			continue
		}
		fmt.Fprintf(e.output, "  ✓ %s  %s\n", r.Location, r.Raw)
	}
}

// handleResolve resolves a reference as if written in the current document.
func (e *Explorer) handleResolve(ref string) {
	if ref == "" {
		fmt.Fprintf(e.output, "Usage: resolve <ref>\n")
		return
	}
	if !e.requireCurrent() {
		return
	}
	n, target, err := e.ws.Resolver.Resolve(e.current, ref)
	if err != nil {
		fmt.Fprintf(e.output, "Error: %v\n", err)
		return
	}
	if target != e.current {
		fmt.Fprintf(e.output, "in %s:\n", e.label(target))
	}
	e.printNode(n)
}

// handlePtr evaluates a JSON Pointer against the current document.
func (e *Explorer) handlePtr(p string) {
	if !e.requireCurrent() {
		return
	}
	n, err := pointer.Resolve(e.current.Root, p)
	if err != nil {
		fmt.Fprintf(e.output, "Error: %v\n", err)
		return
	}
	e.printNode(n)
}

func (e *Explorer) handleShow() {
	if !e.requireCurrent() {
		return
	}
	e.printNode(e.current.Root)
}

// handleHelp displays available commands.
func (e *Explorer) handleHelp() {
	fmt.Fprintln(e.output, "Available commands:")
	fmt.Fprintln(e.output, "  docs (d)          List loaded documents")
	fmt.Fprintln(e.output, "  open (o) <file>   Make a document current")
	fmt.Fprintln(e.output, "  refs (r)          List the current document's references")
	fmt.Fprintln(e.output, "  resolve <ref>     Resolve a reference from the current document")
	fmt.Fprintln(e.output, "  ptr (p) <pointer> Evaluate a JSON Pointer in the current document")
	fmt.Fprintln(e.output, "  show (s)          Print the current document")
	fmt.Fprintln(e.output, "  help (?)          Show this help")
	fmt.Fprintln(e.output, "  quit (q)          Exit explorer")
}

func (e *Explorer) requireCurrent() bool {
	if e.current == nil {
		fmt.Fprintf(e.output, "No document open. Use 'open <file>'.\n")
		return false
	}
	return true
}

func (e *Explorer) printNode(n *document.Node) {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		fmt.Fprintf(e.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(e.output, "%s\n", data)
}
