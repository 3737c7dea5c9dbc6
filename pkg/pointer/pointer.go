// Package pointer evaluates JSON Pointers (RFC 6901) against document trees.
//
// A pointer may carry a leading '#' (URI fragment form); it is stripped
// before tokenizing. The empty pointer addresses the root.
package pointer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/schemacheck/pkg/document"
)

// ErrorKind classifies a pointer evaluation failure.
type ErrorKind string

const (
	Malformed    ErrorKind = "malformed"
	MissingKey   ErrorKind = "missing key"
	BadIndex     ErrorKind = "bad index"
	OutOfRange   ErrorKind = "index out of range"
	NotContainer ErrorKind = "not a container"
)

// Error describes why a pointer could not be resolved.
type Error struct {
	Kind    ErrorKind
	Pointer string // pointer as given
	Token   string // decoded token that failed; empty for Malformed
	Detail  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case Malformed:
		return fmt.Sprintf("pointer must start with '/': %q", e.Pointer)
	case MissingKey:
		return fmt.Sprintf("key %q not found", e.Token)
	case BadIndex:
		return fmt.Sprintf("array index %q is not a non-negative integer", e.Token)
	case OutOfRange:
		return fmt.Sprintf("array index %s out of range%s", e.Token, e.Detail)
	case NotContainer:
		return fmt.Sprintf("pointer segment %q not resolvable on %s", e.Token, e.Detail)
	}
	return fmt.Sprintf("pointer %q: %s", e.Pointer, e.Kind)
}

// Parse splits a pointer into decoded reference tokens. A nil slice
// denotes the root.
func Parse(p string) ([]string, error) {
	s := strings.TrimPrefix(p, "#")
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, &Error{Kind: Malformed, Pointer: p}
	}
	raw := strings.Split(s[1:], "/")
	tokens := make([]string, len(raw))
	for i, r := range raw {
		tokens[i] = Unescape(r)
	}
	return tokens, nil
}

// Unescape decodes a raw reference token: "~1" becomes "/" and then "~0"
// becomes "~". The order matters; "~01" must decode to "~1".
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// Escape encodes a key as a reference token. It is the inverse of Unescape.
func Escape(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}

// Format builds a pointer string from decoded tokens.
func Format(tokens []string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// Resolve returns the node addressed by p within root.
func Resolve(root *document.Node, p string) (*document.Node, error) {
	tokens, err := Parse(p)
	if err != nil {
		return nil, err
	}
	cur := root
	for _, tok := range tokens {
		next, err := step(cur, tok)
		if err != nil {
			err.Pointer = p
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func step(cur *document.Node, tok string) (*document.Node, *Error) {
	switch {
	case cur != nil && cur.Kind == document.Array:
		idx, ok := parseIndex(tok)
		if !ok {
			return nil, &Error{Kind: BadIndex, Token: tok}
		}
		if idx >= len(cur.Items) {
			return nil, &Error{Kind: OutOfRange, Token: tok, Detail: fmt.Sprintf(" (length %d)", len(cur.Items))}
		}
		return cur.Items[idx], nil
	case cur != nil && cur.Kind == document.Object:
		v, ok := cur.Get(tok)
		if !ok {
			return nil, &Error{Kind: MissingKey, Token: tok}
		}
		return v, nil
	default:
		kind := "null"
		if cur != nil {
			kind = cur.Kind.String()
		}
		return nil, &Error{Kind: NotContainer, Token: tok, Detail: kind}
	}
}

// parseIndex accepts only plain decimal digits; signs and the "-"
// end-of-array marker are rejected.
func parseIndex(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return idx, true
}
