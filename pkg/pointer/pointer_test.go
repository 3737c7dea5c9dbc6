package pointer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ormasoftchile/schemacheck/pkg/document"
)

func mustDoc(t *testing.T, src string) *document.Node {
	t.Helper()
	n, err := document.DecodeJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return n
}

const sample = `{
  "$defs": {
    "iso": {"type": "string"},
    "a/b": {"const": "slash"},
    "a~b": {"const": "tilde"},
    "a~1": {"const": "literal"},
    "": {"const": "empty"}
  },
  "items": [{"x": 1}, {"x": 2}],
  "title": "t"
}`

func TestResolve_Root(t *testing.T) {
	root := mustDoc(t, sample)
	for _, p := range []string{"", "#"} {
		got, err := Resolve(root, p)
		if err != nil {
			t.Fatalf("%q: %v", p, err)
		}
		if got != root {
			t.Errorf("%q did not resolve to root", p)
		}
	}
}

func TestResolve_Paths(t *testing.T) {
	root := mustDoc(t, sample)
	defs, _ := root.Get("$defs")
	iso, _ := defs.Get("iso")
	items, _ := root.Get("items")

	tests := []struct {
		ptr  string
		want *document.Node
	}{
		{"#/$defs/iso", iso},
		{"/$defs/iso", iso},
		{"#/$defs", defs},
		{"#/items/1", items.Items[1]},
	}
	for _, tt := range tests {
		got, err := Resolve(root, tt.ptr)
		if err != nil {
			t.Fatalf("%s: %v", tt.ptr, err)
		}
		if got != tt.want {
			t.Errorf("%s resolved to the wrong node", tt.ptr)
		}
	}
}

func TestResolve_EscapedTokens(t *testing.T) {
	root := mustDoc(t, sample)
	tests := []struct {
		ptr  string
		want string
	}{
		{"#/$defs/a~1b", "slash"},
		{"#/$defs/a~0b", "tilde"},
		{"#/$defs/a~01", "literal"},
		{"#/$defs/", "empty"},
	}
	for _, tt := range tests {
		got, err := Resolve(root, tt.ptr+"/const")
		if err != nil {
			t.Fatalf("%s: %v", tt.ptr, err)
		}
		if s, _ := got.Str(); s != tt.want {
			t.Errorf("%s -> %q, want %q", tt.ptr, s, tt.want)
		}
	}
}

func TestResolve_Failures(t *testing.T) {
	root := mustDoc(t, sample)
	tests := []struct {
		ptr  string
		kind ErrorKind
	}{
		{"#defs", Malformed},
		{"$defs/iso", Malformed},
		{"#/$defs/missing", MissingKey},
		{"#/items/x", BadIndex},
		{"#/items/-1", BadIndex},
		{"#/items/+1", BadIndex},
		{"#/items/-", BadIndex},
		{"#/items/2", OutOfRange},
		{"#/title/x", NotContainer},
		{"#/items/0/x/y", NotContainer},
	}
	for _, tt := range tests {
		_, err := Resolve(root, tt.ptr)
		var pe *Error
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected *Error, got %v", tt.ptr, err)
		}
		if pe.Kind != tt.kind {
			t.Errorf("%s: kind = %s, want %s (%v)", tt.ptr, pe.Kind, tt.kind, err)
		}
		if pe.Pointer != tt.ptr {
			t.Errorf("%s: error pointer = %q", tt.ptr, pe.Pointer)
		}
	}
}

func TestUnescape_Order(t *testing.T) {
	tests := map[string]string{
		"a~1b":  "a/b",
		"a~0b":  "a~b",
		"a~01":  "a~1",
		"~0~1":  "~/",
		"plain": "plain",
	}
	for in, want := range tests {
		if got := Unescape(in); got != want {
			t.Errorf("Unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	keys := []string{"a/b~c", "~1", "/~/", "~01", "", "plain"}
	for _, k := range keys {
		if got := Unescape(Escape(k)); got != k {
			t.Errorf("round trip %q -> %q -> %q", k, Escape(k), got)
		}
	}
}

func TestFormatParse(t *testing.T) {
	tokens := []string{"$defs", "a/b", "c~d"}
	p := Format(tokens)
	if p != "/$defs/a~1b/c~0d" {
		t.Fatalf("Format = %q", p)
	}
	got, err := Parse("#" + p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, "|") != strings.Join(tokens, "|") {
		t.Errorf("Parse = %v, want %v", got, tokens)
	}
}
