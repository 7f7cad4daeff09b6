// csspp compiles extended CSS with nested rules, variables, mixins and
// conditional at-rules into plain CSS.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/WebWorksCollection/csspp/internal/assembler"
	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/compiler"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/lexer"
	"github.com/WebWorksCollection/csspp/internal/log"
	"github.com/WebWorksCollection/csspp/internal/parser"
	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/WebWorksCollection/csspp/internal/resolver"
	"github.com/WebWorksCollection/csspp/internal/version"
)

func main() {
	// Action failures come back as cli.Exit errors, which Run prints and
	// exits on itself. Anything surfacing here is a usage problem that
	// urfave already reported.
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "csspp",
		Usage:           "compile extended CSS into plain CSS",
		ArgsUsage:       "[file|glob ...]",
		Version:         version.GetFullVersion(),
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the result to `FILE` instead of stdout",
			},
			&cli.StringFlag{
				Name:  "style",
				Value: "expanded",
				Usage: "output `STYLE`, expanded or compressed",
			},
			&cli.BoolFlag{
				Name:  "bare",
				Usage: "omit the @charset line and the generator banner",
			},
			&cli.StringSliceFlag{
				Name:    "include",
				Aliases: []string{"I"},
				Usage:   "add `DIR` to the @import search path",
			},
			&cli.BoolFlag{
				Name:  "empty-on-undefined",
				Usage: "expand undefined variables to nothing instead of reporting an error",
			},
			&cli.StringFlag{
				Name:  "validate",
				Usage: "check every rule against the validation `PROGRAM`",
			},
			&cli.BoolFlag{
				Name:  "fatal-validation",
				Usage: "report validation failures as errors",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "fix the $_csspp_* date and time variables to an RFC 3339 `TIME`",
			},
			&cli.IntFlag{
				Name:  "max-errors",
				Usage: "suppress further messages after `N` errors",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored messages",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log `LEVEL`: debug, info, warn or error",
			},
		},
		Action: run,
	}
}

func run(ctx *cli.Context) error {
	level, err := log.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	log.SetLevel(level)

	style, err := assembler.ParseStyle(ctx.String("style"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	now := time.Now()
	if v := ctx.String("date"); v != "" {
		now, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid --date %q: want RFC 3339, like 2026-08-25T14:03:05Z", v), 2)
		}
	}

	files, err := resolver.Expand(ctx.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if len(files) == 0 {
		return cli.Exit("no input files (pass - to read stdin)", 2)
	}

	rep := errs.NewReporter()
	rep.SetOutput(os.Stderr)
	rep.SetColor(useColor(ctx.Bool("no-color")))
	if n := ctx.Int("max-errors"); n > 0 {
		rep.SetLimit(n)
	}

	root, err := parseInputs(files, rep)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	c := compiler.New(rep)
	c.SetRoot(root)
	for _, file := range files {
		if file == "-" {
			c.AddPath(".")
			continue
		}
		c.AddPath(filepath.Dir(file))
	}
	for _, dir := range ctx.StringSlice("include") {
		c.AddPath(dir)
	}
	c.SetEmptyOnUndefinedVariable(ctx.Bool("empty-on-undefined"))
	if program := ctx.String("validate"); program != "" {
		c.SetValidating(program)
	}
	c.SetFatalValidation(ctx.Bool("fatal-validation"))
	c.SetDateTimeVariables(now)

	c.Compile(ctx.Bool("bare"))
	if rep.HasErrors() {
		// the reporter already streamed every message to stderr
		return cli.Exit("", 1)
	}
	log.Debug("compiled %d file(s), %d warning(s)", len(files), rep.WarningCount())

	if err := writeOutput(ctx.String("output"), root, style); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

// parseInputs lexes and parses every input into one stylesheet list, in
// argument order. The name - reads standard input.
func parseInputs(files []string, rep *errs.Reporter) (*ast.Node, error) {
	root := ast.New(ast.KindList, position.New(""))
	for _, file := range files {
		name := file
		var src string
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("cannot read stdin: %w", err)
			}
			name, src = "stdin", string(data)
		} else {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("cannot read %s: %v", file, err)
			}
			src = string(data)
		}
		sheet := parser.New(lexer.New(src, name, rep), rep).Stylesheet()
		root.Splice(root.Len(), sheet.TakeChildren())
	}
	return root, nil
}

func writeOutput(path string, root *ast.Node, style assembler.Style) error {
	out := io.Writer(os.Stdout)
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create %s: %v", path, err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := assembler.New(w).Output(root, style); err != nil {
		return fmt.Errorf("cannot write output: %w", err)
	}
	return w.Flush()
}

// useColor enables ANSI colors only on a terminal, honoring the NO_COLOR
// convention and the --no-color flag.
func useColor(noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
