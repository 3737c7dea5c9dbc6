package shape

import (
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/pointer"
)

// metaSchemas maps accepted $schema values (without a trailing '#') to
// the meta-schema URL compiled for them. All of them ship with the
// compiler, so no network access happens.
var metaSchemas = map[string]string{
	"http://json-schema.org/draft-04/schema":       "http://json-schema.org/draft-04/schema",
	"http://json-schema.org/draft-06/schema":       "http://json-schema.org/draft-06/schema",
	"http://json-schema.org/draft-07/schema":       "http://json-schema.org/draft-07/schema",
	"https://json-schema.org/draft/2019-09/schema": "https://json-schema.org/draft/2019-09/schema",
	"https://json-schema.org/draft/2020-12/schema": "https://json-schema.org/draft/2020-12/schema",
}

// MetaChecker validates documents against the JSON Schema meta-schema
// their $schema names. Compiled meta-schemas are cached.
type MetaChecker struct {
	compiler *sjsonschema.Compiler
	compiled map[string]*sjsonschema.Schema
}

// NewMetaChecker returns a MetaChecker with an empty cache.
func NewMetaChecker() *MetaChecker {
	return &MetaChecker{
		compiler: sjsonschema.NewCompiler(),
		compiled: make(map[string]*sjsonschema.Schema),
	}
}

// Check returns one message per meta-schema violation of root. A missing
// $schema yields nothing; the required-key check already reports it.
func (m *MetaChecker) Check(root *document.Node) []string {
	sv, ok := root.Get("$schema")
	if !ok {
		return nil
	}
	s, ok := sv.Str()
	if !ok {
		return nil
	}
	url, known := metaSchemas[strings.TrimSuffix(s, "#")]
	if !known {
		return []string{fmt.Sprintf("unsupported $schema %q for meta-schema check", s)}
	}

	sch, err := m.schema(url)
	if err != nil {
		return []string{fmt.Sprintf("cannot compile meta-schema %s: %v", url, err)}
	}

	err = sch.Validate(root.Interface())
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("does not conform to %s: %v", url, err)}
	}
	var msgs []string
	for _, cause := range flattenValidationErrors(ve) {
		msgs = append(msgs, fmt.Sprintf("does not conform to %s at #%s: %v",
			url, pointer.Format(cause.InstanceLocation), cause.ErrorKind))
	}
	return msgs
}

func (m *MetaChecker) schema(url string) (*sjsonschema.Schema, error) {
	if sch, ok := m.compiled[url]; ok {
		return sch, nil
	}
	sch, err := m.compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	m.compiled[url] = sch
	return sch, nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
