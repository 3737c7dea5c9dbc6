package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleReport() *Report {
	r := New("schemas")
	r.Files = 2
	r.Phase = PhaseReference
	r.Add(
		Violation{File: "schemas/b.json", Phase: PhaseReference, Message: "bad self $ref #/x: key \"x\" not found", Ref: "#/x"},
		Violation{File: "schemas/a.json", Phase: PhaseReference, Message: "external $ref not allowed: https://e/x", Ref: "https://e/x"},
		Violation{File: "schemas/b.json", Phase: PhaseReference, Message: "second"},
	)
	return r
}

func TestWriteText_Violations(t *testing.T) {
	var out, errOut bytes.Buffer
	w := &Writer{Out: &out, Err: &errOut, Format: FormatText}
	if err := w.Write(sampleReport()); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty on failure, got %q", out.String())
	}
	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), errOut.String())
	}
	if lines[0] != `schemas/b.json: bad self $ref #/x: key "x" not found` {
		t.Errorf("line 0 = %q", lines[0])
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "schemas/") {
			t.Errorf("line not prefixed with file: %q", l)
		}
	}
}

func TestWriteText_OK(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New("schemas")
	r.Files = 4
	w := &Writer{Out: &out, Err: &errOut, Format: FormatText}
	if err := w.Write(r); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "OK: validated 4 files under schemas\n" {
		t.Errorf("stdout = %q", got)
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var out bytes.Buffer
	w := &Writer{Out: &out, Format: FormatJSON}
	if err := w.Write(sampleReport()); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Root       string      `json:"root"`
		OK         bool        `json:"ok"`
		Violations []Violation `json:"violations"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if decoded.OK || decoded.Root != "schemas" || len(decoded.Violations) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Violations[1].Ref != "https://e/x" {
		t.Errorf("ref lost: %+v", decoded.Violations[1])
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())
	if !strings.Contains(md, "**FAILED**: 3 violation(s)") {
		t.Errorf("missing summary:\n%s", md)
	}
	if !strings.Contains(md, "| `schemas/a.json` | reference |") {
		t.Errorf("missing row:\n%s", md)
	}
}

func TestByFile(t *testing.T) {
	groups := sampleReport().ByFile()
	if len(groups) != 2 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0].File != "schemas/a.json" {
		t.Errorf("first group = %s", groups[0].File)
	}
	b := groups[1]
	if len(b.Violations) != 2 || b.Violations[1].Message != "second" {
		t.Errorf("order within file lost: %+v", b.Violations)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "text", "json", "markdown"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("%q: %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
