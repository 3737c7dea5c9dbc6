package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
	"github.com/ormasoftchile/schemacheck/pkg/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Validate the schema set again whenever one of its files changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	s, err := mergeSettings(cmd, cfg, args)
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	log := newLogger(cmd.ErrOrStderr())
	s.opts.Logger = log

	w, err := watch.New(watchDebounce, log)
	if err != nil {
		return &exitError{code: exitInternal, err: fmt.Errorf("start watcher: %w", err)}
	}
	defer w.Close()

	writer := &report.Writer{
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
		Format: report.FormatText,
		Color:  useColor(s.color, os.Stderr),
	}

	// run validates once and extends the watch set to every loaded
	// document's directory, so lazily loaded targets are watched too.
	run := func() error {
		res, err := watchPass(cmd.OutOrStdout(), cmd.ErrOrStderr(), writer, s.opts)
		if err != nil {
			return err
		}
		return w.Add(watchDirs(res.Workspace)...)
	}

	if err := run(); err != nil {
		var fe *validate.FatalError
		if errors.As(err, &fe) {
			return &exitError{code: exitFailed}
		}
		return &exitError{code: exitInternal, err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", s.opts.Root)

	return w.Run(cmd.Context(), func(paths []string) {
		log.Debug("change detected", "paths", paths)
		if err := run(); err != nil {
			log.Debug("validation pass failed", "error", err)
		}
	})
}

// watchPass runs one validation and prints a timestamped summary line.
// The report and fatal conditions go to errOut.
func watchPass(out, errOut io.Writer, writer *report.Writer, opts validate.Options) (*validate.Result, error) {
	ts := time.Now().Format("15:04:05")
	res, err := validate.Run(opts)
	if err != nil {
		fmt.Fprintf(errOut, "%s  %s %v\n", ts, glyphFailed, err)
		return nil, err
	}
	if res.OK() {
		fmt.Fprintf(out, "%s  %s %d files OK\n", ts, glyphPassed, res.Report.Files)
		return res, nil
	}
	fmt.Fprintf(out, "%s  %s %d violation(s)\n", ts, glyphFailed, len(res.Report.Violations))
	if err := writer.Write(res.Report); err != nil && opts.Logger != nil {
		opts.Logger.Warn("writing report failed", "error", err)
	}
	return res, nil
}

const (
	glyphPassed = "✓"
	glyphFailed = "✗"
)

// watchDirs lists the schema root and the directory of every loaded document.
func watchDirs(ws *validate.Workspace) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if abs, err := filepath.Abs(d); err == nil && !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}
	add(ws.Root)
	for _, d := range ws.Store.Documents() {
		add(d.Dir())
	}
	return dirs
}

func init() {
	watchCmd.Flags().StringVar(&valInclude, "include", "", "Glob selecting the files to validate (default *.json)")
	watchCmd.Flags().StringArrayVar(&valExclude, "exclude", nil, "Glob of file names to skip, repeatable")
	watchCmd.Flags().BoolVar(&valMeta, "metaschema", false, "Also check each document against the meta-schema named by its $schema")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Wait this long for changes to settle before validating")
	rootCmd.AddCommand(watchCmd)
}
