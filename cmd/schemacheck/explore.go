package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/schemacheck/pkg/config"
	"github.com/ormasoftchile/schemacheck/pkg/explorer"
)

// --- explore ---

var exploreCmd = &cobra.Command{
	Use:   "explore [dir]",
	Short: "Interactively browse documents, references and pointers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd, args)
		if err != nil {
			return err
		}
		e := explorer.New(ws)
		e.SetOutput(cmd.OutOrStdout())
		if err := e.Run(cmd.Context()); err != nil {
			return &exitError{code: exitInternal, err: err}
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file operations",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of .schemacheck.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.GenerateJSONSchema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
