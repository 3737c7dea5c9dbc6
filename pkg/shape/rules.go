package shape

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/schemacheck/pkg/store"
)

// Rule is a project-specific shape check: a boolean expr-lang expression
// evaluated against each document. The document passes when it is true.
//
// The expression sees:
//
//	doc     the document as map[string]any
//	file    the document path as displayed
//	id      the $id value (nil when absent)
//	schema  the $schema value
//	type    the type value
type Rule struct {
	Name    string
	Expr    string
	Message string
}

// Validate compiles the expression so syntax and type errors surface
// before any document is checked.
func (r Rule) Validate() error {
	_, err := r.compile()
	return err
}

// compile builds the program against an empty-document environment. The
// environment's shape is the same for every document.
func (r Rule) compile() (*vm.Program, error) {
	if strings.TrimSpace(r.Expr) == "" {
		return nil, fmt.Errorf("rule %q: expr is required", r.Name)
	}
	program, err := expr.Compile(r.Expr, expr.Env(ruleEnv(nil, "")), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return program, nil
}

// compiledRule is a Rule with its program built once per Checker.
type compiledRule struct {
	Rule
	program *vm.Program
	err     error
}

func compileRule(r Rule) compiledRule {
	program, err := r.compile()
	return compiledRule{Rule: r, program: program, err: err}
}

// check evaluates r and returns the violation message when it fails.
func (r compiledRule) check(doc *store.Document) (string, bool) {
	if r.err != nil {
		return fmt.Sprintf("rule %q could not be compiled: %v", r.Name, r.err), true
	}
	m, _ := doc.Root.Interface().(map[string]any)
	output, err := expr.Run(r.program, ruleEnv(m, doc.Display))
	if err != nil {
		return fmt.Sprintf("rule %q could not be evaluated: %v", r.Name, err), true
	}
	ok, isBool := output.(bool)
	if !isBool {
		return fmt.Sprintf("rule %q did not return bool (got %T)", r.Name, output), true
	}
	if ok {
		return "", false
	}
	if r.Message != "" {
		return fmt.Sprintf("rule %q failed: %s", r.Name, r.Message), true
	}
	return fmt.Sprintf("rule %q failed", r.Name), true
}

func ruleEnv(doc map[string]any, file string) map[string]any {
	if doc == nil {
		doc = map[string]any{}
	}
	return map[string]any{
		"doc":    doc,
		"file":   file,
		"id":     doc["$id"],
		"schema": doc["$schema"],
		"type":   doc["type"],
	}
}
