// Package mcp exposes the schema checker as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with schemacheck tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"schemacheck",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("schemacheck/validate",
			mcp.WithDescription("Validate a directory of JSON Schema documents: shape checks, then every internal and cross-file $ref"),
			mcp.WithString("dir", mcp.Required(), mcp.Description("Schema directory to validate")),
			mcp.WithString("include", mcp.Description("Glob selecting the files to validate (default *.json)")),
			mcp.WithBoolean("metaschema", mcp.Description("Also check each document against the meta-schema named by its $schema")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("schemacheck/resolve",
			mcp.WithDescription("Resolve one $ref as written in a schema file and return the target as JSON"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Schema file the reference is written in")),
			mcp.WithString("ref", mcp.Required(), mcp.Description("Reference, e.g. '#/$defs/x' or 'other.json#/properties/y'")),
		),
		HandleResolve,
	)

	s.AddTool(
		mcp.NewTool("schemacheck/graph",
			mcp.WithDescription("Render the cross-file reference graph of a schema directory"),
			mcp.WithString("dir", mcp.Required(), mcp.Description("Schema directory")),
			mcp.WithString("format", mcp.Description("Diagram format: mermaid (default) or ascii")),
		),
		HandleGraph,
	)

	return s
}
