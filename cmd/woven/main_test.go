package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woven-lang/woven/pkg/config"
)

func newTestApp(stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &app{
		stdin:  strings.NewReader(stdin),
		stdout: out,
		stderr: errOut,
		cfg:    config.Default(),
	}, out, errOut
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.wv")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     int
		stdout   string
		inStderr string
	}{
		{"ok", "print 1 + 2;", exitOK, "3\n", ""},
		{"final value", "print 1; 2 * 3;", exitOK, "1\n6\n", ""},
		{"syntax", "print (;", exitFrontEnd, "", "syntax-error"},
		{"semantic", "print nope;", exitFrontEnd, "", "semantic-error"},
		{"runtime", "print 1 / 0;", exitRuntime, "", "runtime-error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out, errOut := newTestApp(tt.src)
			if code := a.main([]string{"run", "-"}); code != tt.code {
				t.Fatalf("exit %d, want %d (stderr %q)", code, tt.code, errOut.String())
			}
			if out.String() != tt.stdout {
				t.Errorf("stdout %q, want %q", out.String(), tt.stdout)
			}
			if !strings.Contains(errOut.String(), tt.inStderr) {
				t.Errorf("stderr %q does not contain %q", errOut.String(), tt.inStderr)
			}
		})
	}
}

func TestRunJSON(t *testing.T) {
	a, out, _ := newTestApp("[1, 2];")
	if code := a.main([]string{"run", "-", "--json"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	var got any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output %q is not JSON: %v", out.String(), err)
	}
}

func TestRunTraceThenSummarize(t *testing.T) {
	a, _, errOut := newTestApp("fn sq(x) = x^2; print sq(3); print sqrt(4);")
	if code := a.main([]string{"run", "-", "--trace"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	trace := errOut.String()
	if !strings.Contains(trace, `"event":"run_start"`) {
		t.Fatalf("trace %q", trace)
	}

	b, out, _ := newTestApp(trace)
	if code := b.main([]string{"trace", "-"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	var s TraceSummary
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.RunID != "-" || s.FnCalls != 1 || s.NativeCalls != 1 || s.CallsByName["sq"] != 1 {
		t.Errorf("summary %+v", s)
	}
	if s.Statements == 0 || s.StartTime == "" || s.EndTime == "" {
		t.Errorf("summary %+v", s)
	}
}

func TestTraceText(t *testing.T) {
	lines := `{"ts":"2026-01-01T00:00:00Z","runId":"r","event":"run_start"}
not json
{"ts":"2026-01-01T00:00:00Z","runId":"r","event":"native_call","data":{"fn":"abs"}}
{"ts":"2026-01-01T00:00:01Z","runId":"r","event":"run_end","data":{"steps":"3","durationMs":"1000"}}
`
	a, out, _ := newTestApp(lines)
	if code := a.main([]string{"trace", "-", "--text"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"Run: r\n", "Events: 3\n", "(3 steps)", "  abs: 1\n", "Duration: 1000ms\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q missing %q", out.String(), want)
		}
	}
}

func TestCheck(t *testing.T) {
	a, out, _ := newTestApp("var x = 1; print x;")
	if code := a.main([]string{"check", "-"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if out.String() != "No errors found.\n" {
		t.Errorf("stdout %q", out.String())
	}

	a, out, errOut := newTestApp("print y;")
	if code := a.main([]string{"check", "-", "--json"}); code != exitFrontEnd {
		t.Fatalf("exit %d", code)
	}
	if out.Len() != 0 {
		t.Errorf("check printed %q", out.String())
	}
	var d map[string]any
	if err := json.Unmarshal(errOut.Bytes(), &d); err != nil || d["kind"] != "semantic-error" {
		t.Errorf("stderr %q", errOut.String())
	}
}

func TestTokensAndTree(t *testing.T) {
	a, out, _ := newTestApp("x = 1;")
	if code := a.main([]string{"tokens", "-"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 || lines[2] != `[INTEGER "1" L1 C4]` {
		t.Errorf("tokens %q", lines)
	}

	a, out, _ = newTestApp("print 1;")
	if code := a.main([]string{"tree", "-"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "PrintStmt @1:0") {
		t.Errorf("tree %q", out.String())
	}

	a, _, errOut := newTestApp(`print "open`)
	if code := a.main([]string{"tokens", "-"}); code != exitFrontEnd {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(errOut.String(), "lexical-error") {
		t.Errorf("stderr %q", errOut.String())
	}
}

func TestFmt(t *testing.T) {
	path := writeProgram(t, "--- note\nvar   x=1+2 ;print x")
	a, out, errOut := newTestApp("")
	if code := a.main([]string{"fmt", path}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if out.String() != "var x = 1 + 2;\nprint x;\n" {
		t.Errorf("stdout %q", out.String())
	}
	if !strings.Contains(errOut.String(), "comments are not preserved") {
		t.Errorf("stderr %q", errOut.String())
	}

	a, _, _ = newTestApp("")
	if code := a.main([]string{"fmt", path, "--write"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "var x = 1 + 2;\nprint x;\n" {
		t.Errorf("file %q", data)
	}
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		args     []string
		code     int
		out      string
		inStderr string
	}{
		{[]string{"1/2 + 1/3"}, exitOK, "5|6\n", ""},
		{[]string{"2", "*", "3"}, exitOK, "6\n", ""},
		{[]string{"2 * 3 * x", "--fold"}, exitOK, "6 * x\n", ""},
		{[]string{"1/0"}, exitRuntime, "", "a runtime-error occurred"},
		{[]string{"1 +"}, exitFrontEnd, "", "a syntax-error occurred"},
		{[]string{"1_23"}, exitFrontEnd, "", "a lexical-error occurred"},
		{nil, exitUsage, "", ""},
	}
	for _, tt := range tests {
		a, out, errOut := newTestApp("")
		if code := a.main(append([]string{"simplify"}, tt.args...)); code != tt.code {
			t.Errorf("simplify %q: exit %d, want %d", tt.args, code, tt.code)
		}
		if out.String() != tt.out {
			t.Errorf("simplify %q: stdout %q, want %q", tt.args, out.String(), tt.out)
		}
		if !strings.Contains(errOut.String(), tt.inStderr) {
			t.Errorf("simplify %q: stderr %q does not contain %q", tt.args, errOut.String(), tt.inStderr)
		}
	}
}

func TestPlot(t *testing.T) {
	a, out, _ := newTestApp("")
	code := a.main([]string{"plot", "f(x) = 1/x", "--from", "-1", "--to", "1", "--samples", "3"})
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if out.String() != "-1\t-1\n0\t-\n1\t1\n" {
		t.Errorf("stdout %q", out.String())
	}

	a, out, _ = newTestApp("")
	if code := a.main([]string{"plot", "f(x) = x +", "--samples", "2"}); code != exitFrontEnd {
		t.Fatalf("exit %d", code)
	}
	if out.String() != "-10\t-\n10\t-\n" {
		t.Errorf("stdout %q", out.String())
	}

	a, _, _ = newTestApp("")
	if code := a.main([]string{"plot"}); code != exitUsage {
		t.Errorf("exit %d", code)
	}
}

func TestConfigCommand(t *testing.T) {
	a, out, _ := newTestApp("")
	if code := a.main([]string{"config"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["prompt"] != "woven> " {
		t.Errorf("config %v", got)
	}
}

func TestHelp(t *testing.T) {
	a, out, _ := newTestApp("")
	if code := a.main([]string{"help"}); code != exitOK || !strings.Contains(out.String(), "quick reference") {
		t.Errorf("exit %d, stdout %q", code, out.String())
	}
	a, out, _ = newTestApp("")
	if code := a.main([]string{"help", "alg"}); code != exitOK || !strings.HasPrefix(out.String(), "Algebra") {
		t.Errorf("exit %d, stdout %q", code, out.String())
	}
	a, out, _ = newTestApp("")
	if code := a.main([]string{"help", "stdlib", "--index"}); code != exitOK || !strings.Contains(out.String(), "Total: ") {
		t.Errorf("exit %d, stdout %q", code, out.String())
	}
	a, _, errOut := newTestApp("")
	if code := a.main([]string{"help", "nope"}); code != exitUsage || !strings.Contains(errOut.String(), "Available topics") {
		t.Errorf("exit %d, stderr %q", code, errOut.String())
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{nil, {"bogus"}, {"run"}, {"run", "/does/not/exist.wv"}} {
		a, _, _ := newTestApp("")
		if code := a.main(args); code != exitUsage {
			t.Errorf("%q: exit %d, want %d", args, code, exitUsage)
		}
	}
}

func TestReplSession(t *testing.T) {
	input := strings.Join([]string{
		"fn add(a, b) {",
		"  return a + b;",
		"}",
		"add(2, 3);",
		"print nope;",
		"var n = 4;",
		"n * n;",
		":tokens 1|2",
		":quit",
		"print 99;",
	}, "\n")
	a, out, errOut := newTestApp(input)
	if code := a.main([]string{"repl"}); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	got := out.String()
	for _, want := range []string{"5\n", "16\n", `[FRACTION "1|2" L1 C0]`} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "99") {
		t.Error("session continued after :quit")
	}
	if !strings.Contains(errOut.String(), "undefined variable 'nope'") {
		t.Errorf("stderr %q", errOut.String())
	}
}

func TestReadChunk(t *testing.T) {
	r := newPlainReader(strings.NewReader("if (true) {\nprint 1;\n}\nprint 2;\n"), &bytes.Buffer{})
	code, ok := readChunk(r, "> ", "... ")
	if !ok || code != "if (true) {\nprint 1;\n}" {
		t.Errorf("first chunk %q, %v", code, ok)
	}
	code, ok = readChunk(r, "> ", "... ")
	if !ok || code != "print 2;" {
		t.Errorf("second chunk %q, %v", code, ok)
	}
	if _, ok := readChunk(r, "> ", "... "); ok {
		t.Error("expected end of input")
	}
}

type fakeHistory []string

func (h fakeHistory) WriteHistory(w io.Writer) (int, error) {
	n := 0
	for _, line := range h {
		m, err := fmt.Fprintln(w, line)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func TestSaveHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	if err := saveHistory(fakeHistory{"print 1;", "x = 2;"}, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "print 1;\nx = 2;\n" {
		t.Errorf("history file %q", data)
	}
	if err := saveHistory(fakeHistory{"ignored"}, ""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}
