package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woven-lang/woven/internal/testutil"
	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/evaluator"
)

// outcome is what a scenario run produced.
type outcome struct {
	exitCode int
	stdout   string
	stderr   string
	diag     *diagnostics.Diagnostic
}

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("listing scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}

			source, _, err := testutil.ReadProgramFile(dir, scenario)
			if err != nil {
				t.Fatalf("failed to read program file: %v", err)
			}

			jsonOut := false
			for _, arg := range scenario.Cmd {
				if arg == "--json" {
					jsonOut = true
				}
			}

			var got outcome
			switch scenario.Cmd[0] {
			case "run":
				got = runScenario(source, scenario, jsonOut)
			case "check":
				got = checkScenario(source, scenario, jsonOut)
			default:
				t.Skipf("unsupported command: %s", scenario.Cmd[0])
			}
			checkExpectations(t, got, scenario)
		})
	}
}

func newScenarioCompiler(scenario *testutil.Scenario, out, errOut *bytes.Buffer) *compiler.Compiler {
	var settings compiler.Settings
	if cfg := scenario.Config; cfg != nil {
		settings.GlobalConstants = cfg.Constants
		settings.Budget = evaluator.Budget{MaxSteps: cfg.MaxSteps, MaxDepth: cfg.MaxDepth}
	}
	return compiler.New(settings,
		compiler.WithOutput(out),
		compiler.WithErrorOutput(errOut),
		compiler.WithRunID("test"))
}

func runScenario(source string, scenario *testutil.Scenario, jsonOut bool) outcome {
	var out, errOut bytes.Buffer
	c := newScenarioCompiler(scenario, &out, &errOut)

	value, err := c.Execute(context.Background(), source)
	if err != nil {
		d := compiler.AsDiagnostic(err)
		return outcome{exitCode: exitCodeFor(d), stdout: out.String(), stderr: errOut.String(), diag: d}
	}

	if jsonOut {
		b, _ := evaluator.ValueToJSON(value)
		out.Write(b)
		out.WriteByte('\n')
	} else if _, isNil := value.(evaluator.Nil); value != nil && !isNil {
		out.WriteString(evaluator.FormatValue(value) + "\n")
	}
	return outcome{stdout: out.String(), stderr: errOut.String()}
}

func checkScenario(source string, scenario *testutil.Scenario, jsonOut bool) outcome {
	var out, errOut bytes.Buffer
	c := newScenarioCompiler(scenario, &out, &errOut)

	if err := c.Check(source); err != nil {
		d := compiler.AsDiagnostic(err)
		return outcome{exitCode: exitCodeFor(d), stderr: diagnostics.FormatDiagnostic(d, !jsonOut) + "\n", diag: d}
	}
	if jsonOut {
		return outcome{stdout: "[]\n"}
	}
	return outcome{stdout: "No errors found.\n"}
}

func exitCodeFor(d *diagnostics.Diagnostic) int {
	if d.Kind == diagnostics.RuntimeError {
		return 4
	}
	return 2
}

func checkExpectations(t *testing.T, got outcome, scenario *testutil.Scenario) {
	t.Helper()
	expect := scenario.Expect

	if got.exitCode != expect.ExitCode {
		t.Errorf("exit code: got %d, want %d (stderr %q)", got.exitCode, expect.ExitCode, got.stderr)
	}

	if expect.StdoutText != "" && got.stdout != expect.StdoutText {
		t.Errorf("stdout:\n  got:  %q\n  want: %q", got.stdout, expect.StdoutText)
	}
	if expect.StdoutContains != "" && !strings.Contains(got.stdout, expect.StdoutContains) {
		t.Errorf("stdout should contain %q, got: %q", expect.StdoutContains, got.stdout)
	}
	if expect.StdoutJSON != nil {
		expected := normalizeJSON(t, expect.StdoutJSON)
		actual := normalizeJSON(t, json.RawMessage(got.stdout))
		if expected != actual {
			t.Errorf("stdout JSON:\n  got:  %s\n  want: %s", actual, expected)
		}
	}

	if expect.StderrText != "" && got.stderr != expect.StderrText {
		t.Errorf("stderr:\n  got:  %q\n  want: %q", got.stderr, expect.StderrText)
	}
	if expect.StderrContains != "" && !strings.Contains(got.stderr, expect.StderrContains) {
		t.Errorf("stderr should contain %q, got: %q", expect.StderrContains, got.stderr)
	}
	if expect.StderrJSONSubset != nil {
		if got.diag == nil {
			t.Fatal("expected a diagnostic")
		}
		var expected map[string]any
		if err := json.Unmarshal(expect.StderrJSONSubset, &expected); err != nil {
			t.Fatalf("failed to parse expected stderr JSON subset: %v", err)
		}
		b, _ := json.Marshal(got.diag)
		var actual map[string]any
		if err := json.Unmarshal(b, &actual); err != nil {
			t.Fatalf("failed to parse actual diagnostic: %v", err)
		}
		if !isSubset(expected, actual) {
			t.Errorf("diagnostic %s does not contain %s", b, expect.StderrJSONSubset)
		}
	}
}

func normalizeJSON(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to parse JSON: %v (raw: %s)", err, string(raw))
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to re-marshal JSON: %v", err)
	}
	return string(b)
}

// isSubset checks if expected is a subset of actual (for JSON comparison).
func isSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !isSubset(ev, av) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !isSubset(ev, a[i]) {
				return false
			}
		}
		return true
	default:
		return expected == actual
	}
}
