package parser_test

import (
	"testing"

	"github.com/woven-lang/woven/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; invalid input yields a diagnostic.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Minimal programs
		`print 42;`,
		`var x = 1; print x;`,
		// Functions
		`fn sq(x) = x^2; print sq(5);`,
		`fn add(a, b) { return a + b; }`,
		// Loops
		`var x = 0; for (x = 0; x < 3; x++) { print x; }`,
		`while (true) { print 1; }`,
		// Classes
		`class P { def(x) { this.x = x; } fn get() = this.x; }`,
		// Collections
		`print [1, 2, 3];`,
		`print [[1, 2], [3, 4]];`,
		`print (1, 2);`,
		// Implicit multiplication
		`print 2x^3 + 4x^2 - 5;`,
		// Edge cases
		``,
		`(`,
		`[`,
		`{`,
		`fn`,
		`class`,
		`for (;;`,
		`x = = 1`,
		`1 2 3`,
		`print ;`,
		`[1,]`,
		`a.b.c.d = 1`,
		`----`,
		`=== x ===`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			prog, err := parser.Parse(input)
			if err == nil && prog == nil {
				t.Fatalf("Parse(%q) returned neither a program nor an error", input)
			}
		}()
	})
}
