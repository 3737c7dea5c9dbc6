package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/schemacheck/pkg/document"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCanonicalize_CollapsesSpellings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "defs", "common.json"), `{}`)

	a, err := Canonicalize(dir, "defs/common.json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonicalize(filepath.Join(dir, "defs"), "../defs/./common.json")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("spellings differ: %q vs %q", a, b)
	}
	if !filepath.IsAbs(a) {
		t.Errorf("not absolute: %q", a)
	}
}

func TestCanonicalize_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.json")
	writeFile(t, target, `{}`)
	link := filepath.Join(dir, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	a, _ := Canonicalize(dir, "link.json")
	b, _ := Canonicalize(dir, "real.json")
	if a != b {
		t.Errorf("symlink not resolved: %q vs %q", a, b)
	}
}

func TestGet_LoadsOnce(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.json")
	writeFile(t, p, `{"$id": "a"}`)

	s := New(nil)
	d1, err := s.Get(p, "a.json")
	if err != nil {
		t.Fatal(err)
	}
	// A later rewrite must not replace the cached entry.
	writeFile(t, p, `{"$id": "changed"}`)
	d2, err := s.TryLoad(filepath.Join(dir, ".", "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatal("expected the same document instance")
	}
	if d2.Lazy {
		t.Error("document loaded by Get must not be marked lazy")
	}
	if d1.Display != "a.json" {
		t.Errorf("display = %q", d1.Display)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestTryLoad_MarksLazy(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "b.yaml")
	writeFile(t, p, "$defs:\n  x: {type: string}\n")

	s := New(nil)
	d, err := s.TryLoad(p)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Lazy {
		t.Error("expected lazy document")
	}
	if _, ok := d.Root.Get("$defs"); !ok {
		t.Error("yaml content not decoded")
	}
	if got, ok := s.Lookup(p); !ok || got != d {
		t.Error("Lookup did not return the loaded document")
	}
}

func TestTryLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"a":`)

	s := New(nil)
	_, err := s.TryLoad(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	_, err = s.TryLoad(bad)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	var se *document.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("expected wrapped *document.SyntaxError, got %v", err)
	}

	// The failure is remembered.
	writeFile(t, bad, `{}`)
	if _, err2 := s.TryLoad(bad); err2 == nil || err2.Error() != err.Error() {
		t.Errorf("failure not cached: %v", err2)
	}
	if s.Len() != 0 {
		t.Errorf("failed loads must not be stored, len = %d", s.Len())
	}
}

func TestDocuments_LoadOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"c.json", "a.json", "b.json"} {
		writeFile(t, filepath.Join(dir, n), `{}`)
	}
	s := New(nil)
	for _, n := range []string{"c.json", "a.json", "b.json"} {
		if _, err := s.Get(filepath.Join(dir, n), n); err != nil {
			t.Fatal(err)
		}
	}
	docs := s.Documents()
	if len(docs) != 3 || docs[0].Display != "c.json" || docs[2].Display != "b.json" {
		t.Errorf("unexpected order: %v, %v, %v", docs[0].Display, docs[1].Display, docs[2].Display)
	}
}
