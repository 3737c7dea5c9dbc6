package document

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeJSON_KeepsKeyOrder(t *testing.T) {
	n, err := DecodeJSON(strings.NewReader(`{"z": 1, "a": {"y": true, "b": null}, "m": [1, "x"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != Object {
		t.Fatalf("kind = %s, want object", n.Kind)
	}
	var keys []string
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	if got := strings.Join(keys, ","); got != "z,a,m" {
		t.Errorf("keys = %s, want z,a,m", got)
	}
	a, _ := n.Get("a")
	if a.Fields[0].Key != "y" || a.Fields[1].Key != "b" {
		t.Errorf("nested order lost: %+v", a.Fields)
	}
	m, _ := n.Get("m")
	if len(m.Items) != 2 || m.Items[1].Kind != String {
		t.Errorf("array = %+v", m.Items)
	}
}

func TestDecodeJSON_NumbersStayExact(t *testing.T) {
	n, err := DecodeJSON(strings.NewReader(`{"big": 12345678901234567890}`))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := n.Get("big")
	if v.Value != json.Number("12345678901234567890") {
		t.Errorf("value = %v", v.Value)
	}
}

func TestDecodeJSON_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	n, err := DecodeJSON(strings.NewReader(`{"a": 1, "b": 2, "a": 3}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Fields) != 2 || n.Fields[0].Key != "a" {
		t.Fatalf("fields = %+v", n.Fields)
	}
	if n.Fields[0].Value.Value != json.Number("3") {
		t.Errorf("a = %v, want 3", n.Fields[0].Value.Value)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated", `{"a": `},
		{"trailing", `{"a": 1} {"b": 2}`},
		{"bad token", `{"a": nope}`},
		{"missing colon", `{"a" 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if !strings.HasPrefix(err.Error(), "JSON parse error: ") {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `
$id: urn:x
count: 3
ratio: 0.5
ok: true
nothing: ~
list:
  - one
  - 2
`
	n, err := DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		key  string
		kind Kind
	}{
		{"$id", String}, {"count", Number}, {"ratio", Number}, {"ok", Bool}, {"nothing", Null}, {"list", Array},
	}
	if len(n.Fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(n.Fields), len(want))
	}
	for i, w := range want {
		if n.Fields[i].Key != w.key || n.Fields[i].Value.Kind != w.kind {
			t.Errorf("field %d = %s:%s, want %s:%s", i, n.Fields[i].Key, n.Fields[i].Value.Kind, w.key, w.kind)
		}
	}
}

func TestDecodeYAML_Alias(t *testing.T) {
	src := "base: &b {x: 1}\ncopy: *b\n"
	n, err := DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := n.Get("copy")
	if x, ok := c.Get("x"); !ok || x.Value != json.Number("1") {
		t.Errorf("alias not expanded: %+v", c)
	}
}

func TestLoadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "defs.yaml")
	os.WriteFile(yml, []byte("a: 1\n"), 0644)
	js := filepath.Join(dir, "defs.schema")
	os.WriteFile(js, []byte(`{"a": 1}`), 0644)

	for _, p := range []string{yml, js} {
		n, err := LoadFile(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if _, ok := n.Get("a"); !ok {
			t.Errorf("%s: missing key a", p)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMarshalJSON_PreservesOrder(t *testing.T) {
	n, err := DecodeJSON(strings.NewReader(`{"b": [1, {"d": "x", "c": null}], "a": false}`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"b":[1,{"d":"x","c":null}],"a":false}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "<missing>" {
		t.Errorf("nil = %q", got)
	}
	if got := Describe(&Node{Kind: String, Value: "array"}); got != `"array"` {
		t.Errorf("string = %q", got)
	}
	if got := Describe(&Node{Kind: Array}); got != "array" {
		t.Errorf("array = %q", got)
	}
}
