// Command woven is the Woven language CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woven-lang/woven/pkg/algebra"
	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/config"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/evaluator"
	"github.com/woven-lang/woven/pkg/formatter"
	"github.com/woven-lang/woven/pkg/help"
	"github.com/woven-lang/woven/pkg/lexer"
	"github.com/woven-lang/woven/pkg/parser"
	"github.com/woven-lang/woven/pkg/plot"
)

// Exit codes.
const (
	exitOK       = 0
	exitUsage    = 1
	exitFrontEnd = 2 // lexical, syntax or semantic error
	exitRuntime  = 4
)

const usage = `usage: woven <command> [options]
commands: run, check, tokens, tree, fmt, simplify, plot, trace, config, repl, help`

// app carries the process streams so commands can be driven from tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

func main() {
	cwd, _ := os.Getwd()
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, cfg: config.Load(cwd)}
	os.Exit(a.main(os.Args[1:]))
}

func (a *app) main(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(a.stderr, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return a.cmdRun(rest)
	case "check":
		return a.cmdCheck(rest)
	case "tokens":
		return a.cmdTokens(rest)
	case "tree":
		return a.cmdTree(rest)
	case "fmt":
		return a.cmdFmt(rest)
	case "simplify":
		return a.cmdSimplify(rest)
	case "plot":
		return a.cmdPlot(rest)
	case "trace":
		return a.cmdTrace(rest)
	case "config":
		return a.cmdConfig(rest)
	case "repl":
		return a.cmdRepl(rest)
	case "help", "--help", "-h":
		return a.cmdHelp(rest)
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n%s\n", cmd, usage)
		return exitUsage
	}
}

// newCompiler builds a compiler from the loaded configuration.
func (a *app) newCompiler(opts ...compiler.Option) *compiler.Compiler {
	base := []compiler.Option{
		compiler.WithOutput(a.stdout),
		compiler.WithErrorOutput(a.stderr),
	}
	return compiler.New(a.cfg.Settings(), append(base, opts...)...)
}

func (a *app) cmdRun(args []string) int {
	var file string
	jsonOut := false
	traceEnabled := a.cfg.Trace

	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOut = true
		case "--trace":
			traceEnabled = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven run <file|-> [--json] [--trace]")
		return exitUsage
	}

	source, exitCode := a.readSource(file)
	if exitCode != exitOK {
		return exitCode
	}

	var opts []compiler.Option
	if traceEnabled {
		enc := json.NewEncoder(a.stderr)
		opts = append(opts, compiler.WithRunID(file), compiler.WithTrace(func(ev evaluator.TraceEvent) {
			_ = enc.Encode(ev)
		}))
	}
	c := a.newCompiler(opts...)

	value, err := c.Execute(context.Background(), source)
	if err != nil {
		return exitCodeFor(compiler.AsDiagnostic(err))
	}

	if jsonOut {
		b, err := evaluator.ValueToJSON(value)
		if err != nil {
			fmt.Fprintf(a.stderr, "error serializing result: %s\n", err)
			return exitRuntime
		}
		fmt.Fprintln(a.stdout, string(b))
		return exitOK
	}
	if _, isNil := value.(evaluator.Nil); value != nil && !isNil {
		fmt.Fprintln(a.stdout, evaluator.FormatValue(value))
	}
	return exitOK
}

func (a *app) cmdCheck(args []string) int {
	var file string
	jsonOut := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOut = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven check <file> [--json]")
		return exitUsage
	}

	source, exitCode := a.readSource(file)
	if exitCode != exitOK {
		return exitCode
	}

	if err := a.newCompiler().Check(source); err != nil {
		d := compiler.AsDiagnostic(err)
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostic(d, !jsonOut))
		return exitCodeFor(d)
	}

	if jsonOut {
		fmt.Fprintln(a.stdout, "[]")
	} else {
		fmt.Fprintln(a.stdout, "No errors found.")
	}
	return exitOK
}

func (a *app) cmdTokens(args []string) int {
	file := firstPositional(args)
	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven tokens <file>")
		return exitUsage
	}
	source, exitCode := a.readSource(file)
	if exitCode != exitOK {
		return exitCode
	}
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return a.report(err)
	}
	for _, tok := range tokens {
		fmt.Fprintln(a.stdout, tok)
	}
	return exitOK
}

func (a *app) cmdTree(args []string) int {
	file := firstPositional(args)
	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven tree <file>")
		return exitUsage
	}
	source, exitCode := a.readSource(file)
	if exitCode != exitOK {
		return exitCode
	}
	program, err := parser.Parse(source)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprint(a.stdout, formatter.Tree(program))
	return exitOK
}

func (a *app) cmdFmt(args []string) int {
	var file string
	write := false

	for _, arg := range args {
		switch arg {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven fmt <file> [--write]")
		return exitUsage
	}

	source, exitCode := a.readSource(file)
	if exitCode != exitOK {
		return exitCode
	}

	program, err := parser.Parse(source)
	if err != nil {
		return a.report(err)
	}
	formatted := formatter.Format(program)

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(a.stderr, "error writing file: %s\n", err)
			return exitUsage
		}
		return exitOK
	}
	fmt.Fprint(a.stdout, formatted)
	return exitOK
}

func (a *app) cmdSimplify(args []string) int {
	fold := false
	var parts []string
	for _, arg := range args {
		if arg == "--fold" {
			fold = true
			continue
		}
		parts = append(parts, arg)
	}
	if len(parts) == 0 {
		fmt.Fprintln(a.stderr, `usage: woven simplify "<expression>" [--fold]`)
		return exitUsage
	}

	u, err := algebra.Parse(strings.Join(parts, " "))
	if err != nil {
		return a.report(err)
	}
	if fold {
		fmt.Fprintln(a.stdout, algebra.String(algebra.FoldRNE(u)))
		return exitOK
	}
	v, err := algebra.SimplifyRNE(u)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.stdout, algebra.String(v))
	return exitOK
}

func (a *app) cmdPlot(args []string) int {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	from := fs.Float64("from", -10, "first sample")
	to := fs.Float64("to", 10, "last sample")
	samples := fs.Int("samples", 21, "number of samples")

	var def string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		def, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if def == "" {
		def = fs.Arg(0)
	}
	if def == "" || *samples < 1 {
		fmt.Fprintln(a.stderr, `usage: woven plot "f(x) = expr" [--from a] [--to b] [--samples n]`)
		return exitUsage
	}

	c := a.newCompiler(compiler.WithErrorOutput(io.Discard))
	points, err := plot.Sample(context.Background(), c, def, plot.Linspace(*from, *to, *samples))
	exitCode := exitOK
	if err != nil {
		fmt.Fprintln(a.stderr, compiler.Report(err))
		exitCode = exitCodeFor(compiler.AsDiagnostic(err))
	}
	for _, p := range points {
		y := "-"
		if p.Valid {
			y = evaluator.FormatNumber(p.Y)
		}
		fmt.Fprintf(a.stdout, "%s\t%s\n", evaluator.FormatNumber(p.X), y)
	}
	return exitCode
}

func (a *app) cmdConfig(_ []string) int {
	b, _ := json.MarshalIndent(a.cfg, "", "  ")
	fmt.Fprintln(a.stdout, string(b))
	if a.cfg.Path != "" {
		fmt.Fprintf(a.stderr, "loaded from %s\n", a.cfg.Path)
	}
	return exitOK
}

func (a *app) cmdHelp(args []string) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		if topic != "stdlib" {
			fmt.Fprintln(a.stderr, "error: --index is only supported for the stdlib topic (woven help stdlib --index)")
			return exitUsage
		}
		fmt.Fprint(a.stdout, help.StdlibIndex())
		return exitOK
	}

	if topic == "" {
		fmt.Fprint(a.stdout, help.QUICKREF)
		return exitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return exitUsage
	}
	fmt.Fprint(a.stdout, content)
	return exitOK
}

// report prints err as a report line and returns its exit code.
func (a *app) report(err error) int {
	d := compiler.AsDiagnostic(err)
	fmt.Fprintln(a.stderr, d.Report())
	return exitCodeFor(d)
}

func (a *app) readSource(file string) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			fmt.Fprintf(a.stderr, "error reading stdin: %s\n", err)
			return "", exitUsage
		}
		return string(data), exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(a.stderr, "cannot read file: %s\n", file)
		return "", exitUsage
	}
	return string(source), exitOK
}

func firstPositional(args []string) string {
	for _, arg := range args {
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}

func exitCodeFor(d *diagnostics.Diagnostic) int {
	switch d.Kind {
	case diagnostics.RuntimeError:
		return exitRuntime
	default:
		return exitFrontEnd
	}
}
