package lexer

import (
	"testing"
)

// FuzzStream feeds random inputs to the lexer to catch panics.
// The lexer should never panic; invalid input yields an error.
func FuzzStream(f *testing.F) {
	seeds := []string{
		// Keywords
		`and or xor not class else false fn for if nil`,
		`print return this true var let while rem mod div`,
		// Literals
		`42 3.14 1_234 0b101 3|4 2E5 1.5E-3`,
		`"hello" "multi
line"`,
		// Operators
		`+ - * / ^ % ! != = == < <= > >= ++ --`,
		// Delimiters
		`( ) { } [ ] , . ; :`,
		// Identifiers
		`x foo bar_baz θ ∞`,
		// Comments
		`--- line comment`,
		`=== block ===`,
		// Mixed
		`fn sq(x) = x^2; print sq(5);`,
		`[[1, 2], [3, 4],]`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`===`,
		`1_23`,
		`1_234_5`,
		`0b2`,
		`1|0`,
		`@#$&`,
		`\x00`,
		`99999999999999999999999`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Stream panicked on input %q: %v", input, r)
				}
			}()
			tokens, err := Stream(input)
			if err == nil && (len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF) {
				t.Fatalf("Stream(%q) did not end with EOF", input)
			}
		}()
	})
}
