// Package main provides the schemacheck binary: a validator for local
// JSON Schema reference graphs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitInternal = 1 // usage errors and unexpected failures
	exitFailed   = 2 // fatal root conditions and violations
)

// exitError carries a process exit code through cobra. A nil err means
// the diagnostics were already written.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := exitCode(rootCmd.ExecuteContext(ctx), os.Stderr)
	stop()
	os.Exit(code)
}

// exitCode maps an Execute error to the process exit code, printing it
// when it has not been printed yet.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitInternal
}

var verbose bool

// newLogger returns the diagnostic logger: silent unless --verbose.
func newLogger(w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var rootCmd = &cobra.Command{
	Use:   "schemacheck [dir]",
	Short: "Validate a directory of JSON Schema documents and their $refs",
	Long: "schemacheck treats a directory of JSON Schema documents as a graph: it checks each " +
		"document's shape, then resolves every internal and cross-file $ref with JSON Pointer semantics.",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runValidate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemacheck %s (build: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log enumeration, lazy loads and phase transitions to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .schemacheck.yaml (default: discovered from the working directory up)")

	addValidateFlags(rootCmd)
	addValidateFlags(validateCmd)

	graphCmd.Flags().StringVar(&graphFormat, "format", "mermaid", "Diagram format: mermaid or ascii")

	configCmd.AddCommand(configSchemaCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
