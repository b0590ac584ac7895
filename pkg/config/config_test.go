package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xyproto/env/v2"

	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

var overrides = []string{"WOVEN_MAX_STEPS", "WOVEN_MAX_DEPTH", "WOVEN_HISTORY", "WOVEN_PROMPT", "WOVEN_TRACE"}

// setenv sets name through env so its view of the environment stays current.
func setenv(t *testing.T, name, value string) {
	t.Helper()
	if err := env.Set(name, value); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = env.Unset(name) })
}

// isolate points HOME at an empty directory and clears the overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range overrides {
		t.Setenv(name, "")
		_ = env.Unset(name)
	}
	return home
}

func TestDefaults(t *testing.T) {
	home := isolate(t)
	c := config.Load(t.TempDir())
	if c.Path != "" {
		t.Errorf("path %q, want defaults", c.Path)
	}
	if c.MaxDepth != compiler.DefaultMaxDepth || c.MaxSteps != 0 {
		t.Errorf("budget %d/%d", c.MaxSteps, c.MaxDepth)
	}
	if c.Prompt != "woven> " {
		t.Errorf("prompt %q", c.Prompt)
	}
	if c.HistoryFile != filepath.Join(home, ".woven", "history") {
		t.Errorf("history %q", c.HistoryFile)
	}
}

func TestProjectFileWins(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, config.ProjectFile), `{"maxSteps": 500, "constants": {"g": 9.81}}`)
	writeFile(t, filepath.Join(home, config.UserDir, config.UserFile), `{"maxSteps": 7}`)

	c := config.Load(project)
	if c.MaxSteps != 500 || c.GlobalConstants["g"] != 9.81 {
		t.Errorf("got %+v", c)
	}
	if c.Prompt != "woven> " {
		t.Errorf("unset fields should keep defaults, prompt %q", c.Prompt)
	}
}

func TestUserFileFallback(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, config.ProjectFile), `{not json`)
	userPath := filepath.Join(home, config.UserDir, config.UserFile)
	writeFile(t, userPath, `{"prompt": "> ", "history": "~/hist"}`)

	c := config.Load(project)
	if c.Path != userPath || c.Prompt != "> " {
		t.Errorf("got %+v", c)
	}
	if c.HistoryFile != env.ExpandUser("~/hist") || strings.HasPrefix(c.HistoryFile, "~") {
		t.Errorf("history %q", c.HistoryFile)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, config.ProjectFile), `{"maxSteps": 500}`)
	setenv(t, "WOVEN_MAX_STEPS", "42")
	setenv(t, "WOVEN_PROMPT", "w: ")
	setenv(t, "WOVEN_TRACE", "true")

	c := config.Load(project)
	if c.MaxSteps != 42 || c.Prompt != "w: " || !c.Trace {
		t.Errorf("got %+v", c)
	}
}

func TestSettings(t *testing.T) {
	c := config.Default()
	c.MaxSteps = 10
	c.GlobalConstants = map[string]float64{"k": 2}
	s := c.Settings()
	if s.Budget.MaxSteps != 10 || s.Budget.MaxDepth != compiler.DefaultMaxDepth {
		t.Errorf("budget %+v", s.Budget)
	}
	s.GlobalConstants["k"] = 3
	if c.GlobalConstants["k"] != 2 {
		t.Error("Settings shares the constants map")
	}
}
