package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SyntaxError reports content that is not well-formed structured data.
type SyntaxError struct {
	Format string // JSON or YAML
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s parse error: %v", e.Format, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsYAML reports whether path names a YAML document by its extension.
// Everything else is decoded as JSON.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if IsYAML(path) {
		return DecodeYAML(f)
	}
	return DecodeJSON(f)
}

// DecodeJSON parses a single JSON value from r. Trailing data after the
// top-level value is an error.
func DecodeJSON(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, &SyntaxError{Format: "JSON", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, &SyntaxError{Format: "JSON", Err: err}
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{Kind: Object}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: Array, Items: []*Node{}}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return &Node{Kind: String, Value: t}, nil
	case json.Number:
		return &Node{Kind: Number, Value: t}, nil
	case bool:
		return &Node{Kind: Bool, Value: t}, nil
	case nil:
		return &Node{Kind: Null}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// DecodeYAML parses the first YAML document from r.
func DecodeYAML(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			err = errors.New("empty document")
		}
		return nil, &SyntaxError{Format: "YAML", Err: err}
	}
	n, err := fromYAML(&doc, 0)
	if err != nil {
		return nil, &SyntaxError{Format: "YAML", Err: err}
	}
	return n, nil
}

// maxAliasDepth bounds alias expansion so self-referencing anchors fail
// instead of recursing forever.
const maxAliasDepth = 64

func fromYAML(y *yaml.Node, aliases int) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &Node{Kind: Null}, nil
		}
		return fromYAML(y.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxAliasDepth {
			return nil, fmt.Errorf("line %d: alias nesting too deep", y.Line)
		}
		return fromYAML(y.Alias, aliases+1)
	case yaml.MappingNode:
		n := &Node{Kind: Object}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			v, err := fromYAML(y.Content[i+1], aliases)
			if err != nil {
				return nil, err
			}
			n.set(k.Value, v)
		}
		return n, nil
	case yaml.SequenceNode:
		n := &Node{Kind: Array, Items: make([]*Node, 0, len(y.Content))}
		for _, c := range y.Content {
			v, err := fromYAML(c, aliases)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, v)
		}
		return n, nil
	case yaml.ScalarNode:
		return yamlScalar(y)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", y.Line, y.Kind)
}

func yamlScalar(y *yaml.Node) (*Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return &Node{Kind: Null}, nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return &Node{Kind: Bool, Value: b}, nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err != nil {
			// out of int64 range: keep the literal digits
			return &Node{Kind: Number, Value: json.Number(y.Value)}, nil
		}
		return &Node{Kind: Number, Value: json.Number(strconv.FormatInt(i, 10))}, nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return &Node{Kind: String, Value: y.Value}, nil
		}
		return &Node{Kind: Number, Value: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}, nil
	}
	return &Node{Kind: String, Value: y.Value}, nil
}
