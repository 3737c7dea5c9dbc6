package mcp

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/schemacheck/pkg/diagram"
	"github.com/ormasoftchile/schemacheck/pkg/graph"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// HandleValidate implements the schemacheck/validate MCP tool. The JSON
// report is returned either way; IsError is set when it has violations.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	dir, _ := args["dir"].(string)
	if dir == "" {
		return errorResult("dir argument is required"), nil
	}
	include, _ := args["include"].(string)
	meta, _ := args["metaschema"].(bool)

	res, err := validate.Run(validate.Options{Root: dir, Include: include, MetaSchema: meta})
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var buf bytes.Buffer
	w := &report.Writer{Out: &buf, Err: &buf, Format: report.FormatJSON}
	if err := w.Write(res.Report); err != nil {
		return errorResult(err.Error()), nil
	}
	if !res.OK() {
		return errorResult(buf.String()), nil
	}
	return textResult(buf.String()), nil
}

// HandleResolve implements the schemacheck/resolve MCP tool.
func HandleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	file, _ := args["file"].(string)
	ref, _ := args["ref"].(string)
	if file == "" || ref == "" {
		return errorResult("file and ref arguments are required"), nil
	}

	n, _, err := graph.ResolveFile(file, ref, nil)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleGraph implements the schemacheck/graph MCP tool.
func HandleGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	dir, _ := args["dir"].(string)
	if dir == "" {
		return errorResult("dir argument is required"), nil
	}
	format, _ := args["format"].(string)
	if format == "" {
		format = string(diagram.FormatMermaid)
	}

	ws, err := validate.Open(validate.Options{Root: dir})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	out, err := diagram.Generate(diagram.ForWorkspace(ws), diagram.Format(format))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(out), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
