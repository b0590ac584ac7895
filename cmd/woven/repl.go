package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/evaluator"
	"github.com/woven-lang/woven/pkg/parser"
)

const (
	banner     = "Woven REPL. Type :quit to exit, :help for commands."
	promptCont = "... "
)

const replHelp = `:quit          leave the session
:tokens <src>  show the tokens of src
:tree <src>    show the parse tree of src
:help          this list
`

// lineReader is the part of liner.State the session loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// plainReader reads lines without editing support, for piped stdin.
type plainReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newPlainReader(r io.Reader, out io.Writer) *plainReader {
	return &plainReader{sc: bufio.NewScanner(r), out: out}
}

func (p *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.sc.Text(), nil
}

func (a *app) cmdRepl(_ []string) int {
	c := a.newCompiler()

	f, ok := a.stdin.(*os.File)
	if !ok || !isTerminal(f) {
		// Piped input: no banner, no prompts.
		return a.session(c, newPlainReader(a.stdin, io.Discard), "", "", nil)
	}

	fmt.Fprintln(a.stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := a.cfg.HistoryFile
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	var saveOnce sync.Once
	save := func() {
		saveOnce.Do(func() {
			if err := saveHistory(ln, histPath); err != nil {
				fmt.Fprintf(a.stderr, "error writing history: %s\n", err)
			}
		})
	}
	defer save()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		save()
		ln.Close()
		os.Exit(130)
	}()

	return a.session(c, ln, a.cfg.Prompt, promptCont, ln.AppendHistory)
}

// historyWriter is the part of liner.State that persists history.
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

// saveHistory writes h to path, creating its directory. An empty path
// disables history.
func saveHistory(h historyWriter, path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := h.WriteHistory(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// session runs the read-eval-print loop until end of input or :quit.
// Errors are reported and the session continues.
func (a *app) session(c *compiler.Compiler, r lineReader, prompt, cont string, remember func(string)) int {
	for {
		code, ok := readChunk(r, prompt, cont)
		if !ok {
			if prompt != "" {
				fmt.Fprintln(a.stdout)
			}
			return exitOK
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if remember != nil {
			remember(strings.ReplaceAll(code, "\n", " "))
		}

		if strings.HasPrefix(trimmed, ":") {
			if a.replCommand(c, trimmed) {
				return exitOK
			}
			continue
		}

		// Execute writes the report line to stderr on failure.
		v, err := c.Execute(context.Background(), code)
		if err != nil {
			continue
		}
		if _, isNil := v.(evaluator.Nil); v != nil && !isNil {
			fmt.Fprintln(a.stdout, evaluator.FormatValue(v))
		}
	}
}

// replCommand handles one colon command and reports whether the session
// should end.
func (a *app) replCommand(c *compiler.Compiler, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(a.stdout, replHelp)
	case ":tokens":
		tokens, err := c.Tokenize(arg)
		if err != nil {
			fmt.Fprintln(a.stderr, compiler.Report(err))
			return false
		}
		for _, tok := range tokens {
			fmt.Fprintln(a.stdout, tok)
		}
	case ":tree":
		fmt.Fprint(a.stdout, strings.TrimSuffix(c.ParseTree(arg), "\n")+"\n")
	default:
		fmt.Fprintf(a.stdout, "unknown command %s. Type :help for the list.\n", name)
	}
	return false
}

// readChunk gathers lines until they parse or fail for a reason
// other than reaching end of input.
func readChunk(r lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := r.Prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.Parse(src); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
