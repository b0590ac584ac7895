// Package diagnostics defines Woven diagnostic types for lexical, syntax,
// semantic and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"

	"github.com/woven-lang/woven/pkg/ast"
)

// Error kinds, one per phase of origin.
const (
	LexicalError  = "lexical-error"
	SyntaxError   = "syntax-error"
	TypeError     = "type-error" // reserved; no current rule produces it
	SemanticError = "semantic-error"
	RuntimeError  = "runtime-error"
)

// Diagnostic represents a phase-tagged lexical, syntax, semantic or runtime error.
// It implements error so every pipeline stage can return it directly.
type Diagnostic struct {
	Kind    string   `json:"kind"`
	Phase   string   `json:"phase"`
	Message string   `json:"message"`
	Span    ast.Span `json:"span"`
	HasSpan bool     `json:"hasSpan"`
	Hint    string   `json:"hint,omitempty"`

	// Incomplete is set when the failure happened at end of input, so a REPL
	// can ask for more lines instead of reporting.
	Incomplete bool `json:"-"`
}

// MakeDiag creates a new positioned Diagnostic.
func MakeDiag(kind, phase, message string, span ast.Span) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Phase:   phase,
		Message: message,
		Span:    span,
		HasSpan: true,
	}
}

// MakeUnpositioned creates a Diagnostic without a source position.
func MakeUnpositioned(kind, phase, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Phase: phase, Message: message}
}

func (d *Diagnostic) Error() string {
	return d.Report()
}

// Report renders the one-line form shown to users.
func (d *Diagnostic) Report() string {
	if !d.HasSpan {
		return fmt.Sprintf("While %s, a %s occurred: %s", d.Phase, d.Kind, d.Message)
	}
	return fmt.Sprintf("On line %d, column %d, while %s, a %s occurred: %s",
		d.Span.Line, d.Span.Column, d.Phase, d.Kind, d.Message)
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d *Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := d.Report()
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

