// Package store keeps parsed documents keyed by canonical path.
//
// Documents enter the store either through the initial directory scan
// (Get) or because another document referenced them (TryLoad). Each
// canonical path maps to exactly one entry for the life of the store;
// entries are never replaced. Failed loads are remembered too, so every
// later request for the same path sees the same error.
package store

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ormasoftchile/schemacheck/pkg/document"
)

// Document is a loaded file.
type Document struct {
	Path    string         // canonical path, the store key
	Display string         // path as the user should see it
	Root    *document.Node // parsed tree
	Lazy    bool           // loaded only because a reference pointed at it
}

// Dir returns the directory relative references in the document resolve against.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// LoadError reports a file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store maps canonical paths to documents. It is safe for concurrent use;
// the get-or-load path is an atomic insert-if-absent.
type Store struct {
	mu     sync.Mutex
	docs   map[string]*Document
	failed map[string]error
	order  []string
	log    *slog.Logger
}

// New returns an empty store. A nil logger discards.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		docs:   make(map[string]*Document),
		failed: make(map[string]error),
		log:    logger,
	}
}

// Canonicalize resolves rel against baseDir and returns the absolute,
// cleaned path with symbolic links evaluated. Links are only evaluated
// when the target exists, so missing files still get a stable key.
func Canonicalize(baseDir, rel string) (string, error) {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", rel, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// Get returns the document at path, loading it on first access. display
// is how the path is shown in diagnostics; it defaults to path.
func (s *Store) Get(path, display string) (*Document, error) {
	return s.getOrLoad(path, display, false)
}

// TryLoad returns the document at path, loading it if no earlier scan or
// reference did. Documents first seen here are marked Lazy. Shape checks
// are not applied to them.
func (s *Store) TryLoad(path string) (*Document, error) {
	return s.getOrLoad(path, "", true)
}

func (s *Store) getOrLoad(path, display string, lazy bool) (*Document, error) {
	key, err := Canonicalize("", path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if display == "" {
		display = path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[key]; ok {
		return doc, nil
	}
	if err, ok := s.failed[key]; ok {
		return nil, err
	}

	root, err := document.LoadFile(key)
	if err != nil {
		lerr := &LoadError{Path: display, Err: err}
		s.failed[key] = lerr
		s.log.Debug("load failed", "path", key, "lazy", lazy, "error", err)
		return nil, lerr
	}
	doc := &Document{Path: key, Display: display, Root: root, Lazy: lazy}
	s.docs[key] = doc
	s.order = append(s.order, key)
	s.log.Debug("loaded document", "path", key, "lazy", lazy)
	return doc, nil
}

// Lookup returns an already loaded document without touching the disk.
func (s *Store) Lookup(path string) (*Document, bool) {
	key, err := Canonicalize("", path)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[key]
	return doc, ok
}

// Documents returns the loaded documents in load order.
func (s *Store) Documents() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Document, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.docs[k])
	}
	return out
}

// Len returns the number of loaded documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
