// Package graph resolves every $ref in a schema set to a concrete node,
// loading cross-file targets into the store on demand.
//
// Resolution walks one reference to its target document and applies the
// fragment inside it. Targets' own references are not followed, so
// documents that reference each other resolve without cycle detection.
package graph

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/pointer"
	"github.com/ormasoftchile/schemacheck/pkg/refs"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/store"
)

// ErrorKind classifies a failed reference.
type ErrorKind string

const (
	Remote         ErrorKind = "remote"
	BadSelf        ErrorKind = "bad self ref"
	FileNotFound   ErrorKind = "file not found"
	FileUnreadable ErrorKind = "file unreadable"
	BadPointer     ErrorKind = "bad pointer"
)

// RefError explains why a reference did not resolve.
type RefError struct {
	Kind ErrorKind
	Ref  string // raw reference
	File string // file part of Ref, or the canonical target path
	Err  error
}

func (e *RefError) Error() string {
	switch e.Kind {
	case Remote:
		return fmt.Sprintf("external $ref not allowed: %s", e.Ref)
	case BadSelf:
		return fmt.Sprintf("bad self $ref %s: %v", e.Ref, e.Err)
	case FileNotFound:
		return fmt.Sprintf("$ref file not found: %s (from %s)", e.File, e.Ref)
	case FileUnreadable:
		return fmt.Sprintf("$ref file unreadable: %s (from %s): %v", e.File, e.Ref, unwrapLoad(e.Err))
	case BadPointer:
		return fmt.Sprintf("bad $ref pointer %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("$ref %s: %v", e.Ref, e.Err)
}

func (e *RefError) Unwrap() error { return e.Err }

// unwrapLoad drops the store's path prefix; the message names the file already.
func unwrapLoad(err error) error {
	var le *store.LoadError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}

// Edge is one cross-file reference.
type Edge struct {
	From     string // canonical path of the referencing document
	To       string // canonical path of the target; empty when it could not be canonicalized
	Ref      string
	Resolved bool
}

// Resolver resolves references against a store.
type Resolver struct {
	store *store.Store
	log   *slog.Logger
	edges []Edge
}

// NewResolver returns a Resolver that loads missing targets into st.
func NewResolver(st *store.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: st, log: logger}
}

// ResolveAll checks every reference of every document in docs, in order,
// and returns one violation per reference that fails. Documents loaded
// lazily along the way are not scanned themselves.
func (r *Resolver) ResolveAll(docs []*store.Document) []report.Violation {
	var out []report.Violation
	for _, doc := range docs {
		raws := refs.Collect(doc.Root)
		r.log.Debug("resolving references", "file", doc.Display, "count", len(raws))
		for _, raw := range raws {
			if _, _, err := r.Resolve(doc, raw); err != nil {
				out = append(out, report.Violation{
					File:    doc.Display,
					Phase:   report.PhaseReference,
					Message: err.Error(),
					Ref:     raw,
				})
			}
		}
	}
	return out
}

// Resolve returns the node raw points at, and the document containing it.
func (r *Resolver) Resolve(from *store.Document, raw string) (*document.Node, *store.Document, error) {
	if refs.IsRemote(raw) {
		return nil, nil, &RefError{Kind: Remote, Ref: raw}
	}

	file, fragment := refs.Split(raw)
	if file == "" {
		n, err := pointer.Resolve(from.Root, fragment)
		if err != nil {
			return nil, nil, &RefError{Kind: BadSelf, Ref: raw, Err: err}
		}
		return n, from, nil
	}

	target, err := r.loadTarget(from, file, raw)
	if err != nil {
		return nil, nil, err
	}
	n, err := pointer.Resolve(target.Root, fragment)
	if err != nil {
		r.record(from.Path, target.Path, raw, false)
		return nil, nil, &RefError{Kind: BadPointer, Ref: raw, File: file, Err: err}
	}
	r.record(from.Path, target.Path, raw, true)
	return n, target, nil
}

func (r *Resolver) loadTarget(from *store.Document, file, raw string) (*store.Document, error) {
	path, err := store.Canonicalize(from.Dir(), file)
	if err != nil {
		r.record(from.Path, "", raw, false)
		return nil, &RefError{Kind: FileUnreadable, Ref: raw, File: file, Err: err}
	}
	target, err := r.store.TryLoad(path)
	if err != nil {
		r.record(from.Path, path, raw, false)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &RefError{Kind: FileNotFound, Ref: raw, File: file, Err: err}
		}
		return nil, &RefError{Kind: FileUnreadable, Ref: raw, File: path, Err: err}
	}
	if target.Lazy {
		r.log.Debug("lazy target", "from", from.Display, "target", target.Path)
	}
	return target, nil
}

func (r *Resolver) record(from, to, raw string, ok bool) {
	r.edges = append(r.edges, Edge{From: from, To: to, Ref: raw, Resolved: ok})
}

// Edges returns the cross-file references seen so far, in resolution order.
func (r *Resolver) Edges() []Edge {
	return append([]Edge(nil), r.edges...)
}

// ResolveFile loads file into a fresh store and resolves ref as if it
// were written inside it.
func ResolveFile(file, ref string, logger *slog.Logger) (*document.Node, *store.Document, error) {
	st := store.New(logger)
	doc, err := st.Get(file, file)
	if err != nil {
		return nil, nil, err
	}
	return NewResolver(st, logger).Resolve(doc, ref)
}
