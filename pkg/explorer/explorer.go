// Package explorer implements an interactive REPL over a loaded schema set.
package explorer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/schemacheck/pkg/store"
	"github.com/ormasoftchile/schemacheck/pkg/validate"
)

// Explorer lets a user walk documents, their references and pointers.
type Explorer struct {
	ws      *validate.Workspace
	current *store.Document
	output  io.Writer
	rl      *readline.Instance
}

// New creates an explorer over ws. The first document, if any, is opened.
func New(ws *validate.Workspace) *Explorer {
	e := &Explorer{ws: ws, output: os.Stdout}
	if len(ws.Documents) > 0 {
		e.current = ws.Documents[0]
	}
	return e
}

// SetOutput redirects command output.
func (e *Explorer) SetOutput(w io.Writer) {
	e.output = w
}

// Run starts the interactive REPL loop. It returns when the user quits,
// input ends, or ctx is cancelled.
func (e *Explorer) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("docs"),
		readline.PcItem("open", readline.PcItemDynamic(e.fileNames)),
		readline.PcItem("refs"),
		readline.PcItem("resolve"),
		readline.PcItem("ptr"),
		readline.PcItem("show"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          e.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	e.rl = rl
	defer rl.Close()

	fmt.Fprintf(e.output, "schemacheck explorer: %d documents under %s\n", len(e.ws.Documents), e.ws.Root)
	fmt.Fprintf(e.output, "Type 'help' for available commands.\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		rl.SetPrompt(e.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if !e.Exec(line) {
			return nil
		}
	}
}

// Exec runs one command line. It returns false when the line asks to quit.
func (e *Explorer) Exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "docs", "d":
		e.handleDocs()
	case "open", "o":
		e.handleOpen(arg)
	case "refs", "r":
		e.handleRefs()
	case "resolve":
		e.handleResolve(arg)
	case "ptr", "p":
		e.handlePtr(arg)
	case "show", "s":
		e.handleShow()
	case "help", "?":
		e.handleHelp()
	case "quit", "q", "exit":
		fmt.Fprintf(e.output, "Bye.\n")
		return false
	default:
		fmt.Fprintf(e.output, "Unknown command: %q. Type 'help' for available commands.\n", cmd)
	}
	return true
}

// buildPrompt creates the prompt string: schemacheck[file]>
func (e *Explorer) buildPrompt() string {
	if e.current == nil {
		return "schemacheck> "
	}
	return fmt.Sprintf("schemacheck[%s]> ", e.label(e.current))
}

// label names a document relative to the workspace root when it lives there.
func (e *Explorer) label(d *store.Document) string {
	if root, err := store.Canonicalize("", e.ws.Root); err == nil {
		if rel, err := filepath.Rel(root, d.Path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return d.Display
}

func (e *Explorer) fileNames(string) []string {
	var names []string
	for _, d := range e.ws.Store.Documents() {
		names = append(names, e.label(d))
	}
	return names
}
