// Package shape checks the minimal structural contract of each schema
// document: required top-level keys, the declared kind and unique $id
// values across the set.
package shape

import (
	"fmt"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/store"
)

// DefaultType is the only declared kind accepted unless configured otherwise.
const DefaultType = "object"

// Checker runs the shape checks. It remembers every $id it has seen, so
// one Checker must be used for a whole schema set.
type Checker struct {
	expectType string
	rules      []compiledRule
	meta       *MetaChecker
	ids        map[string]string // $id -> file that declared it first
}

// Option configures a Checker.
type Option func(*Checker)

// WithExpectedType overrides the accepted value of "type".
func WithExpectedType(t string) Option {
	return func(c *Checker) {
		if t != "" {
			c.expectType = t
		}
	}
}

// WithRules adds custom boolean rules evaluated per document. Each rule
// is compiled once, when the Checker is built.
func WithRules(rules ...Rule) Option {
	return func(c *Checker) {
		for _, r := range rules {
			c.rules = append(c.rules, compileRule(r))
		}
	}
}

// WithMetaSchema enables checking each document against the meta-schema
// named by its $schema.
func WithMetaSchema(m *MetaChecker) Option {
	return func(c *Checker) { c.meta = m }
}

// NewChecker returns a Checker with an empty $id registry.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		expectType: DefaultType,
		ids:        make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check returns the shape violations of doc. All checks run even when an
// earlier one fails.
func (c *Checker) Check(doc *store.Document) []report.Violation {
	var out []report.Violation
	add := func(format string, args ...any) {
		out = append(out, report.Violation{
			File:    doc.Display,
			Phase:   report.PhaseShape,
			Message: fmt.Sprintf(format, args...),
		})
	}

	root := doc.Root
	if root == nil || root.Kind != document.Object {
		kind := "null"
		if root != nil {
			kind = root.Kind.String()
		}
		add("top-level value must be an object, got %s", kind)
		return out
	}

	for _, key := range []string{"$schema", "$id"} {
		v, ok := root.Get(key)
		if !ok {
			add("missing required key '%s'", key)
			continue
		}
		if v.Kind != document.String {
			add("key '%s' must be a string, got %s", key, v.Kind)
		}
	}

	if t, ok := root.Get("type"); !ok {
		add("missing required key 'type'")
	} else if s, _ := t.Str(); s != c.expectType {
		add("expected type='%s', got %s", c.expectType, document.Describe(t))
	}

	if idNode, ok := root.Get("$id"); ok {
		if id, ok := idNode.Str(); ok {
			if first, dup := c.ids[id]; dup {
				add("duplicate $id %q also in %s", id, first)
			} else {
				c.ids[id] = doc.Display
			}
		}
	}

	for _, r := range c.rules {
		if msg, failed := r.check(doc); failed {
			add("%s", msg)
		}
	}

	if c.meta != nil {
		for _, msg := range c.meta.Check(root) {
			add("%s", msg)
		}
	}
	return out
}

// Result is the outcome of the shape phase: either Clean or Violations.
// Reference resolution only runs on Clean.
type Result interface {
	isResult()
}

// Clean means every initially enumerated document parsed and passed.
type Clean struct{}

// Violations lists the parse and shape defects that stop the pipeline.
type Violations []report.Violation

func (Clean) isResult()      {}
func (Violations) isResult() {}

// Gate turns the accumulated phase-one violations into a Result.
func Gate(vs []report.Violation) Result {
	if len(vs) == 0 {
		return Clean{}
	}
	return Violations(vs)
}
