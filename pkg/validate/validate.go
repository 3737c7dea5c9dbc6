// Package validate runs the two-phase schema set check:
// parse + shape, then (only if that phase is clean) reference resolution.
package validate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/graph"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/shape"
	"github.com/ormasoftchile/schemacheck/pkg/store"
)

// DefaultInclude selects the initially enumerated files.
const DefaultInclude = "*.json"

// Options controls a validation run.
type Options struct {
	Root       string
	Include    string   // glob matched against file names; default "*.json"
	Exclude    []string // globs matched against file names
	ExpectType string
	Rules      []shape.Rule
	MetaSchema bool
	Logger     *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// FatalKind names a condition that stops the run before any phase.
type FatalKind string

const (
	RootNotFound   FatalKind = "schema root not found"
	RootNotDir     FatalKind = "schema root is not a directory"
	NoSchemaFiles  FatalKind = "no schema files found"
	RootUnreadable FatalKind = "schema root unreadable"
)

// FatalError is returned when the run cannot start.
type FatalError struct {
	Kind FatalKind
	Root string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Root, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Root, e.Kind)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Workspace is a schema set with its initial documents loaded.
type Workspace struct {
	Root      string
	Files     []string // initially enumerated files, as displayed
	Store     *store.Store
	Documents []*store.Document  // initial documents that parsed, one per canonical path
	Failures  []report.Violation // parse violations, in enumeration order
	Resolver  *graph.Resolver

	// entries parallels Files: the document each name loaded as, shown
	// under that name, or nil when it failed to parse.
	entries []*store.Document
}

// Open enumerates the schema root and loads every matching file into a
// fresh store. Files that fail to parse become violations, not errors.
func Open(opts Options) (*Workspace, error) {
	log := opts.logger()
	files, err := Discover(opts.Root, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	log.Debug("enumerated schema files", "root", opts.Root, "count", len(files))

	st := store.New(log)
	ws := &Workspace{
		Root:     opts.Root,
		Files:    files,
		Store:    st,
		Resolver: graph.NewResolver(st, log),
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		doc, err := st.Get(f, f)
		if err != nil {
			ws.entries = append(ws.entries, nil)
			ws.Failures = append(ws.Failures, report.Violation{
				File:    f,
				Phase:   report.PhaseParse,
				Message: loadMessage(err),
			})
			continue
		}
		if doc.Display != f {
			// Another enumerated name (a symlink) already loaded this path.
			log.Debug("enumerated file aliases a loaded document", "file", f, "document", doc.Display)
			alias := *doc
			alias.Display = f
			ws.entries = append(ws.entries, &alias)
		} else {
			ws.entries = append(ws.entries, doc)
		}
		if !seen[doc.Path] {
			seen[doc.Path] = true
			ws.Documents = append(ws.Documents, doc)
		}
	}
	return ws, nil
}

func loadMessage(err error) string {
	var se *document.SyntaxError
	if errors.As(err, &se) {
		return se.Error()
	}
	var le *store.LoadError
	if errors.As(err, &le) {
		return fmt.Sprintf("cannot read file: %v", le.Err)
	}
	return err.Error()
}

// Discover lists the files directly under root whose names match include
// and none of exclude, sorted by name.
func Discover(root, include string, exclude []string) ([]string, error) {
	if include == "" {
		include = DefaultInclude
	}
	for _, p := range append([]string{include}, exclude...) {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FatalError{Kind: RootNotFound, Root: root}
		}
		return nil, &FatalError{Kind: RootUnreadable, Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &FatalError{Kind: RootNotDir, Root: root}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &FatalError{Kind: RootUnreadable, Root: root, Err: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ok, _ := filepath.Match(include, name); !ok {
			continue
		}
		if excluded(name, exclude) {
			continue
		}
		files = append(files, filepath.Join(root, name))
	}
	if len(files) == 0 {
		return nil, &FatalError{Kind: NoSchemaFiles, Root: root}
	}
	return files, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Result is the outcome of Run.
type Result struct {
	Report    *report.Report
	Workspace *Workspace
	Edges     []graph.Edge
}

// OK reports whether both phases found nothing.
func (r *Result) OK() bool {
	return r.Report.OK()
}

// Run validates the schema set under opts.Root. A non-nil error means the
// run could not start (see FatalError) or the options are invalid;
// defects in the schemas are reported in Result.Report.
func Run(opts Options) (*Result, error) {
	log := opts.logger()

	var shapeOpts []shape.Option
	shapeOpts = append(shapeOpts, shape.WithExpectedType(opts.ExpectType))
	for _, r := range opts.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if len(opts.Rules) > 0 {
		shapeOpts = append(shapeOpts, shape.WithRules(opts.Rules...))
	}
	if opts.MetaSchema {
		shapeOpts = append(shapeOpts, shape.WithMetaSchema(shape.NewMetaChecker()))
	}

	ws, err := Open(opts)
	if err != nil {
		return nil, err
	}
	rep := report.New(opts.Root)
	rep.Files = len(ws.Files)
	res := &Result{Report: rep, Workspace: ws}

	rep.Phase = report.PhaseShape
	phase1 := checkShapes(ws, shape.NewChecker(shapeOpts...))

	switch gate := shape.Gate(phase1).(type) {
	case shape.Violations:
		log.Debug("shape phase failed, skipping reference resolution", "violations", len(gate))
		rep.Add(gate...)
		return res, nil
	case shape.Clean:
		log.Debug("shape phase clean", "documents", len(ws.Documents))
	}

	rep.Phase = report.PhaseReference
	rep.Add(ws.Resolver.ResolveAll(ws.Documents)...)
	res.Edges = ws.Resolver.Edges()
	log.Debug("reference phase done", "violations", len(rep.Violations), "documents", ws.Store.Len())
	return res, nil
}

// checkShapes merges parse failures and shape violations in enumeration
// order, so a file's diagnostics stay together. Every enumerated name is
// checked, including names that alias the same file.
func checkShapes(ws *Workspace, c *shape.Checker) []report.Violation {
	failed := make(map[string]report.Violation, len(ws.Failures))
	for _, f := range ws.Failures {
		failed[f.File] = f
	}

	var out []report.Violation
	for i, f := range ws.Files {
		if v, ok := failed[f]; ok {
			out = append(out, v)
			continue
		}
		if d := ws.entries[i]; d != nil {
			out = append(out, c.Check(d)...)
		}
	}
	return out
}
