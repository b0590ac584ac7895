package lexer

import (
	"fmt"

	"github.com/woven-lang/woven/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokAnd TokenType = iota
	TokOr
	TokXor
	TokNot
	TokClass
	TokElse
	TokFalse
	TokFn
	TokFor
	TokIf
	TokNil
	TokPrint
	TokReturn
	TokThis
	TokTrue
	TokVar
	TokLet
	TokWhile
	TokRem
	TokMod
	TokDiv

	// Literals
	TokInteger
	TokFloat
	TokFraction
	TokScientific
	TokString

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokComma     // ,
	TokDot       // .
	TokSemicolon // ;
	TokColon     // :

	// Operators
	TokPlus       // +
	TokMinus      // -
	TokStar       // *
	TokSlash      // /
	TokCaret      // ^
	TokPercent    // %
	TokBang       // !
	TokBangEq     // !=
	TokEquals     // =
	TokEqEq       // ==
	TokLt         // <
	TokLtEq       // <=
	TokGt         // >
	TokGtEq       // >=
	TokPlusPlus   // ++
	TokMinusMinus // --

	// Special
	TokEOF
)

var typeNames = [...]string{
	TokAnd:        "AND",
	TokOr:         "OR",
	TokXor:        "XOR",
	TokNot:        "NOT",
	TokClass:      "CLASS",
	TokElse:       "ELSE",
	TokFalse:      "FALSE",
	TokFn:         "FN",
	TokFor:        "FOR",
	TokIf:         "IF",
	TokNil:        "NIL",
	TokPrint:      "PRINT",
	TokReturn:     "RETURN",
	TokThis:       "THIS",
	TokTrue:       "TRUE",
	TokVar:        "VAR",
	TokLet:        "LET",
	TokWhile:      "WHILE",
	TokRem:        "REM",
	TokMod:        "MOD",
	TokDiv:        "DIV",
	TokInteger:    "INTEGER",
	TokFloat:      "FLOAT",
	TokFraction:   "FRACTION",
	TokScientific: "SCIENTIFIC",
	TokString:     "STRING",
	TokIdent:      "IDENTIFIER",
	TokLParen:     "LEFT_PAREN",
	TokRParen:     "RIGHT_PAREN",
	TokLBrace:     "LEFT_BRACE",
	TokRBrace:     "RIGHT_BRACE",
	TokLBracket:   "LEFT_BRACKET",
	TokRBracket:   "RIGHT_BRACKET",
	TokComma:      "COMMA",
	TokDot:        "DOT",
	TokSemicolon:  "SEMICOLON",
	TokColon:      "COLON",
	TokPlus:       "PLUS",
	TokMinus:      "MINUS",
	TokStar:       "STAR",
	TokSlash:      "SLASH",
	TokCaret:      "CARET",
	TokPercent:    "PERCENT",
	TokBang:       "BANG",
	TokBangEq:     "BANG_EQUAL",
	TokEquals:     "EQUAL",
	TokEqEq:       "EQUAL_EQUAL",
	TokLt:         "LESS",
	TokLtEq:       "LESS_EQUAL",
	TokGt:         "GREATER",
	TokGtEq:       "GREATER_EQUAL",
	TokPlusPlus:   "PLUS_PLUS",
	TokMinusMinus: "MINUS_MINUS",
	TokEOF:        "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"or":     TokOr,
	"xor":    TokXor,
	"not":    TokNot,
	"class":  TokClass,
	"else":   TokElse,
	"false":  TokFalse,
	"fn":     TokFn,
	"for":    TokFor,
	"if":     TokIf,
	"nil":    TokNil,
	"print":  TokPrint,
	"return": TokReturn,
	"this":   TokThis,
	"true":   TokTrue,
	"var":    TokVar,
	"let":    TokLet,
	"while":  TokWhile,
	"rem":    TokRem,
	"mod":    TokMod,
	"div":    TokDiv,
}

// IsKeyword reports whether t is a reserved word.
func IsKeyword(t TokenType) bool {
	return t >= TokAnd && t <= TokDiv
}

// Fraction is the literal payload of an exact `num|den` token.
type Fraction struct {
	Num int64
	Den int64
}

// Scientific is the literal payload of a `base E exp` token.
type Scientific struct {
	Base float64
	Exp  int
}

// Token represents a single lexer token. Literal holds one of nil, int64,
// float64, string, bool, Fraction or Scientific.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Span    ast.Span
}

// With returns a copy of t retyped to typ with the given lexeme and literal.
// Tokens are never mutated in place.
func (t Token) With(typ TokenType, lexeme string, literal any) Token {
	t.Type = typ
	t.Lexeme = lexeme
	t.Literal = literal
	return t
}

// String renders the token as [TYPENAME "lexeme" L<line> C<column>].
func (t Token) String() string {
	return fmt.Sprintf("[%s \"%s\" L%d C%d]", t.Type, t.Lexeme, t.Span.Line, t.Span.Column)
}
