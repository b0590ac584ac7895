// Package config loads Woven settings from project and user JSON files
// with environment overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"

	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/evaluator"
)

// File names searched by Load.
const (
	ProjectFile = ".woven.json"
	UserDir     = ".woven"
	UserFile    = "config.json"
)

// Config holds the user-tunable settings of the CLI and REPL.
type Config struct {
	GlobalConstants map[string]float64 `json:"constants,omitempty"`
	MaxSteps        int64              `json:"maxSteps,omitempty"`
	MaxDepth        int64              `json:"maxDepth,omitempty"`
	HistoryFile     string             `json:"history,omitempty"`
	Prompt          string             `json:"prompt,omitempty"`
	Trace           bool               `json:"trace,omitempty"`

	// Path is the file the settings came from, empty for defaults.
	Path string `json:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	c := &Config{
		MaxDepth: compiler.DefaultMaxDepth,
		Prompt:   "woven> ",
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.HistoryFile = filepath.Join(home, UserDir, "history")
	}
	return c
}

// Load reads settings with precedence project (.woven.json in projectDir)
// → user (~/.woven/config.json) → defaults, then applies WOVEN_*
// environment overrides. Unreadable or malformed files are skipped.
func Load(projectDir string) *Config {
	c := loadFiles(projectDir)
	c.ApplyEnv()
	return c
}

func loadFiles(projectDir string) *Config {
	if c, err := LoadFile(filepath.Join(projectDir, ProjectFile)); err == nil {
		return c
	}
	if home, err := os.UserHomeDir(); err == nil {
		if c, err := LoadFile(filepath.Join(home, UserDir, UserFile)); err == nil {
			return c
		}
	}
	return Default()
}

// LoadFile reads one JSON config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	c.HistoryFile = env.ExpandUser(c.HistoryFile)
	c.Path = path
	return c, nil
}

// ApplyEnv overrides c with WOVEN_MAX_STEPS, WOVEN_MAX_DEPTH,
// WOVEN_HISTORY, WOVEN_PROMPT and WOVEN_TRACE when they are set.
func (c *Config) ApplyEnv() {
	c.MaxSteps = int64(env.Int("WOVEN_MAX_STEPS", int(c.MaxSteps)))
	c.MaxDepth = int64(env.Int("WOVEN_MAX_DEPTH", int(c.MaxDepth)))
	c.HistoryFile = env.ExpandUser(env.Str("WOVEN_HISTORY", c.HistoryFile))
	c.Prompt = env.Str("WOVEN_PROMPT", c.Prompt)
	if env.Has("WOVEN_TRACE") {
		c.Trace = env.Bool("WOVEN_TRACE")
	}
}

// Settings converts c into compiler settings. The constants map is copied.
func (c *Config) Settings() compiler.Settings {
	constants := make(map[string]float64, len(c.GlobalConstants))
	for name, v := range c.GlobalConstants {
		constants[name] = v
	}
	return compiler.Settings{
		GlobalConstants: constants,
		Budget: evaluator.Budget{
			MaxSteps: c.MaxSteps,
			MaxDepth: c.MaxDepth,
		},
	}
}
