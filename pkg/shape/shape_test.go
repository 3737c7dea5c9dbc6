package shape

import (
	"strings"
	"testing"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/store"
)

func doc(t *testing.T, name, src string) *store.Document {
	t.Helper()
	root, err := document.DecodeJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return &store.Document{Path: "/abs/" + name, Display: name, Root: root}
}

func messages(vs []report.Violation) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}

const validDoc = `{"$schema": "https://json-schema.org/draft/2020-12/schema", "$id": "urn:a", "type": "object"}`

func TestCheck_Valid(t *testing.T) {
	c := NewChecker()
	if vs := c.Check(doc(t, "a.json", validDoc)); len(vs) != 0 {
		t.Errorf("expected no violations, got %v", messages(vs))
	}
}

func TestCheck_AllChecksRun(t *testing.T) {
	c := NewChecker()
	vs := c.Check(doc(t, "bad.json", `{"type": "array"}`))
	got := messages(vs)
	want := []string{
		"missing required key '$schema'",
		"missing required key '$id'",
		`expected type='object', got "array"`,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("got:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	for _, v := range vs {
		if v.File != "bad.json" || v.Phase != report.PhaseShape {
			t.Errorf("violation = %+v", v)
		}
	}
}

func TestCheck_MissingType(t *testing.T) {
	c := NewChecker()
	got := messages(c.Check(doc(t, "a.json", `{"$schema": "s", "$id": "x"}`)))
	if len(got) != 1 || got[0] != "missing required key 'type'" {
		t.Errorf("got %v", got)
	}
}

func TestCheck_NonStringKeys(t *testing.T) {
	c := NewChecker()
	got := messages(c.Check(doc(t, "a.json", `{"$schema": 7, "$id": ["x"], "type": "object"}`)))
	want := []string{"key '$schema' must be a string, got number", "key '$id' must be a string, got array"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %v", got)
	}
}

func TestCheck_NonObjectRoot(t *testing.T) {
	c := NewChecker()
	got := messages(c.Check(doc(t, "a.json", `[1, 2]`)))
	if len(got) != 1 || got[0] != "top-level value must be an object, got array" {
		t.Errorf("got %v", got)
	}
}

func TestCheck_DuplicateID(t *testing.T) {
	c := NewChecker()
	first := c.Check(doc(t, "a.json", `{"$schema": "s", "$id": "X", "type": "object"}`))
	second := c.Check(doc(t, "b.json", `{"$schema": "s", "$id": "X", "type": "object"}`))
	if len(first) != 0 {
		t.Fatalf("first document flagged: %v", messages(first))
	}
	if len(second) != 1 {
		t.Fatalf("expected exactly one violation, got %v", messages(second))
	}
	if second[0].File != "b.json" || second[0].Message != `duplicate $id "X" also in a.json` {
		t.Errorf("violation = %+v", second[0])
	}
}

func TestCheck_DistinctIDs(t *testing.T) {
	c := NewChecker()
	vs := append(
		c.Check(doc(t, "a.json", `{"$schema": "s", "$id": "X", "type": "object"}`)),
		c.Check(doc(t, "b.json", `{"$schema": "s", "$id": "Y", "type": "object"}`))...,
	)
	if len(vs) != 0 {
		t.Errorf("got %v", messages(vs))
	}
}

func TestCheck_ExpectedType(t *testing.T) {
	c := NewChecker(WithExpectedType("array"))
	got := messages(c.Check(doc(t, "a.json", validDoc)))
	if len(got) != 1 || got[0] != `expected type='array', got "object"` {
		t.Errorf("got %v", got)
	}
}

func TestGate(t *testing.T) {
	if _, ok := Gate(nil).(Clean); !ok {
		t.Error("no violations must gate to Clean")
	}
	res := Gate([]report.Violation{{File: "a.json", Message: "m"}})
	vs, ok := res.(Violations)
	if !ok || len(vs) != 1 {
		t.Errorf("got %#v", res)
	}
}
