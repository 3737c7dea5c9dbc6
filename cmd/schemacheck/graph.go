package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/schemacheck/pkg/diagram"
	"github.com/ormasoftchile/schemacheck/pkg/graph"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// --- graph ---

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Render the cross-file reference graph as Mermaid or ASCII",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd, args)
	if err != nil {
		return err
	}
	out, err := diagram.Generate(diagram.ForWorkspace(ws), diagram.Format(graphFormat))
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// openWorkspace loads the initial documents of the selected schema root.
func openWorkspace(cmd *cobra.Command, args []string) (*validate.Workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, &exitError{code: exitInternal, err: err}
	}
	s, err := mergeSettings(cmd, cfg, args)
	if err != nil {
		return nil, &exitError{code: exitInternal, err: err}
	}
	s.opts.Logger = newLogger(cmd.ErrOrStderr())
	ws, err := validate.Open(s.opts)
	if err != nil {
		var fe *validate.FatalError
		if errors.As(err, &fe) {
			return nil, &exitError{code: exitFailed, err: fe}
		}
		return nil, &exitError{code: exitInternal, err: err}
	}
	return ws, nil
}

// --- resolve ---

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <ref>",
	Short: "Resolve one $ref as written in file and print the target as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	n, target, err := graph.ResolveFile(args[0], args[1], newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return &exitError{code: exitFailed, err: err}
	}
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "resolved in %s\n", target.Path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
