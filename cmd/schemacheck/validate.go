package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/schemacheck/pkg/config"
	"github.com/ormasoftchile/schemacheck/pkg/report"
	"github.com/ormasoftchile/schemacheck/pkg/tui"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// --- validate ---

var (
	configPath    string
	valInclude    string
	valExclude    []string
	valMeta       bool
	valFormat     string
	valColor      string
	valTUI        bool
	valExpectType string
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate the schema set under dir (default: config root, else ./schemas)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func addValidateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&valInclude, "include", "", "Glob selecting the files to validate (default *.json)")
	cmd.Flags().StringArrayVar(&valExclude, "exclude", nil, "Glob of file names to skip, repeatable")
	cmd.Flags().BoolVar(&valMeta, "metaschema", false, "Also check each document against the meta-schema named by its $schema")
	cmd.Flags().StringVar(&valFormat, "format", "", "Report format: text, json or markdown (default text)")
	cmd.Flags().StringVar(&valColor, "color", "", "Color text output: auto, always or never (default auto)")
	cmd.Flags().BoolVar(&valTUI, "tui", false, "Browse the report in an interactive terminal UI")
	cmd.Flags().StringVar(&valExpectType, "expect-type", "", "Required top-level type of every document (default object)")
}

// settings is the merged view of flags and the config file.
type settings struct {
	opts   validate.Options
	format report.Format
	color  string
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	s, err := mergeSettings(cmd, cfg, args)
	if err != nil {
		return &exitError{code: exitInternal, err: err}
	}
	s.opts.Logger = newLogger(cmd.ErrOrStderr())

	res, err := validate.Run(s.opts)
	if err != nil {
		var fe *validate.FatalError
		if errors.As(err, &fe) {
			return &exitError{code: exitFailed, err: fe}
		}
		return &exitError{code: exitInternal, err: err}
	}

	if valTUI {
		if err := tui.Run(res); err != nil {
			return &exitError{code: exitInternal, err: err}
		}
	} else {
		w := &report.Writer{
			Out:    cmd.OutOrStdout(),
			Err:    cmd.ErrOrStderr(),
			Format: s.format,
			Color:  useColor(s.color, os.Stderr),
			Render: s.format == report.FormatMarkdown && isTerminal(os.Stdout),
		}
		if w.Color && s.color == "always" {
			lipgloss.SetColorProfile(termenv.ANSI256)
		}
		if err := w.Write(res.Report); err != nil {
			return &exitError{code: exitInternal, err: err}
		}
	}
	if !res.OK() {
		return &exitError{code: exitFailed}
	}
	return nil
}

// loadConfig reads --config, or discovers .schemacheck.yaml from the
// working directory up. A missing discovered file is not an error.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Discover(cwd)
}

// mergeSettings applies flags over config values over defaults.
func mergeSettings(cmd *cobra.Command, cfg *config.Config, args []string) (*settings, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	cwd, _ := os.Getwd()

	s := &settings{
		opts: validate.Options{
			Root:       cfg.RootDir(cwd),
			Include:    cfg.Include,
			Exclude:    cfg.Exclude,
			ExpectType: cfg.ExpectType,
			MetaSchema: cfg.MetaSchema,
			Rules:      cfg.ShapeRules(),
		},
		color: cfg.Color,
	}
	if len(args) > 0 {
		s.opts.Root = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		s.opts.Include = valInclude
	}
	if flags.Changed("exclude") {
		s.opts.Exclude = valExclude
	}
	if flags.Changed("metaschema") {
		s.opts.MetaSchema = valMeta
	}
	if flags.Changed("expect-type") {
		s.opts.ExpectType = valExpectType
	}
	if flags.Changed("color") {
		s.color = valColor
	}
	format := cfg.Format
	if flags.Changed("format") {
		format = valFormat
	}

	var err error
	if s.format, err = report.ParseFormat(format); err != nil {
		return nil, err
	}
	switch s.color {
	case "":
		s.color = "auto"
	case "auto", "always", "never":
	default:
		return nil, fmt.Errorf("unknown color mode %q: use auto, always or never", s.color)
	}
	return s, nil
}

func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
