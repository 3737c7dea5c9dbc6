// Package config loads the optional .schemacheck.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/schemacheck/pkg/shape"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = ".schemacheck.yaml"

// DefaultRoot is the schema directory used when neither the command line
// nor the config file names one.
const DefaultRoot = "schemas"

// Config is the .schemacheck.yaml document.
type Config struct {
	Root       string   `yaml:"root,omitempty"        json:"root,omitempty"        jsonschema:"description=Schema directory validated when no directory argument is given"`
	Include    string   `yaml:"include,omitempty"     json:"include,omitempty"     jsonschema:"description=Glob selecting the initially enumerated files (default *.json)"`
	Exclude    []string `yaml:"exclude,omitempty"     json:"exclude,omitempty"     jsonschema:"description=Globs removing files from the initial enumeration"`
	ExpectType string   `yaml:"expect_type,omitempty" json:"expect_type,omitempty" jsonschema:"description=Required value of each document's top-level type (default object)"`
	MetaSchema bool     `yaml:"metaschema,omitempty"  json:"metaschema,omitempty"  jsonschema:"description=Also validate documents against the meta-schema named by $schema"`
	Rules      []Rule   `yaml:"rules,omitempty"       json:"rules,omitempty"`
	Format     string   `yaml:"format,omitempty"      json:"format,omitempty"      jsonschema:"enum=text,enum=json,enum=markdown"`
	Color      string   `yaml:"color,omitempty"       json:"color,omitempty"       jsonschema:"enum=auto,enum=always,enum=never"`

	// Dir is the absolute directory containing the config file.
	// Set after loading, not from YAML.
	Dir string `yaml:"-" json:"-"`
}

// Rule is a custom shape rule, see shape.Rule.
type Rule struct {
	Name    string `yaml:"name"              json:"name"              jsonschema:"required"`
	Expr    string `yaml:"expr"              json:"expr"              jsonschema:"required,description=expr-lang boolean over doc, file, id, schema and type"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// ShapeRules converts the configured rules.
func (c *Config) ShapeRules() []shape.Rule {
	if c == nil {
		return nil
	}
	out := make([]shape.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, shape.Rule{Name: r.Name, Expr: r.Expr, Message: r.Message})
	}
	return out
}

// RootDir returns the schema directory. A relative root is taken relative
// to the config file; the result is made relative to cwd when possible.
func (c *Config) RootDir(cwd string) string {
	if c == nil || c.Root == "" {
		return DefaultRoot
	}
	if filepath.IsAbs(c.Root) || c.Dir == "" {
		return c.Root
	}
	abs := filepath.Join(c.Dir, c.Root)
	if rel, err := filepath.Rel(cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return abs
}

// Load decodes a config from r. Unknown fields are rejected.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i, rule := range cfg.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rules[%d]: name is required", i)
		}
	}
	return &cfg, nil
}

// LoadFile reads the config at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(abs)
	return cfg, nil
}

// Discover walks from start up to the filesystem root looking for
// FileName. It returns nil, nil when there is none.
func Discover(start string) (*Config, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
