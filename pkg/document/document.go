// Package document holds the parsed form of a schema file: a tree of
// mappings, sequences and scalars that keeps mapping keys in source order.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one value in a document tree. Scalars carry Value (bool,
// json.Number or string); objects carry Fields in source order; arrays
// carry Items.
type Node struct {
	Kind   Kind
	Value  any
	Fields []Field
	Items  []*Node
}

// Field is a single key/value pair of an object node.
type Field struct {
	Key   string
	Value *Node
}

// IsContainer reports whether the node is an object or an array.
func (n *Node) IsContainer() bool {
	return n != nil && (n.Kind == Object || n.Kind == Array)
}

// Get returns the value stored under key in an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Str returns the string value of a string node.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != String {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// set stores key in an object node. A repeated key keeps its first
// position and takes the latest value.
func (n *Node) set(key string, v *Node) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = v
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: v})
}

// Interface converts the tree into plain Go values: map[string]any,
// []any, string, bool, json.Number and nil.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Object:
		m := make(map[string]any, len(n.Fields))
		for _, f := range n.Fields {
			m[f.Key] = f.Value.Interface()
		}
		return m
	case Array:
		out := make([]any, len(n.Items))
		for i, it := range n.Items {
			out[i] = it.Interface()
		}
		return out
	case Null:
		return nil
	default:
		return n.Value
	}
}

// MarshalJSON writes the node with object keys in source order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	if err := n.writeJSON(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (n *Node) writeJSON(b *strings.Builder) error {
	if n == nil {
		b.WriteString("null")
		return nil
	}
	switch n.Kind {
	case Object:
		b.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteByte(':')
			if err := f.Value.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case Array:
		b.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := it.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case Null:
		b.WriteString("null")
	default:
		data, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return nil
}

// Describe renders a short human-readable form of a node for diagnostics:
// the quoted value for scalars, the kind for containers.
func Describe(n *Node) string {
	if n == nil {
		return "<missing>"
	}
	switch n.Kind {
	case String:
		return fmt.Sprintf("%q", n.Value)
	case Number, Bool:
		return fmt.Sprint(n.Value)
	default:
		return n.Kind.String()
	}
}
