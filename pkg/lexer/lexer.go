// Package lexer implements the Woven language tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
)

// Scanner produces Woven tokens one at a time. After the first lexical
// error it is permanently at end and every further pull yields EOF.
type Scanner struct {
	source []rune
	pos    int
	line   int
	col    int
	failed bool
}

// NewScanner returns a scanner positioned at the start of source.
func NewScanner(source string) *Scanner {
	return &Scanner{
		source: []rune(source),
		line:   1,
		col:    0,
	}
}

func (s *Scanner) atEnd() bool {
	return s.failed || s.pos >= len(s.source)
}

func (s *Scanner) peek() rune {
	return s.peekAt(0)
}

func (s *Scanner) peekAt(offset int) rune {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *Scanner) advance() rune {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	return ch
}

func (s *Scanner) lexError(phase string, line, col int, msg string) error {
	s.failed = true
	return diagnostics.MakeDiag(diagnostics.LexicalError, phase, msg, ast.Span{Line: line, Column: col})
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	switch {
	case ch == '_':
		return true
	case ch < 0x80:
		return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
	}
	return unicode.In(ch, unicode.Latin, unicode.Greek, unicode.Sm)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// Next returns the next token. Comments are consumed silently.
func (s *Scanner) Next() (Token, error) {
	for {
		for !s.atEnd() && isSpace(s.peek()) {
			s.advance()
		}
		if s.atEnd() {
			return Token{Type: TokEOF, Span: ast.Span{Line: s.line, Column: s.col}}, nil
		}
		tok, ok, err := s.scanToken()
		if err != nil {
			return Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
}

func (s *Scanner) emit(typ TokenType, line, col, start int, literal any) Token {
	return Token{
		Type:    typ,
		Lexeme:  string(s.source[start:s.pos]),
		Literal: literal,
		Span:    ast.Span{Line: line, Column: col},
	}
}

// scanToken scans one lexeme. ok is false when the lexeme was a comment.
func (s *Scanner) scanToken() (tok Token, ok bool, err error) {
	line, col, start := s.line, s.col, s.pos
	ch := s.peek()

	single := func(typ TokenType) (Token, bool, error) {
		s.advance()
		return s.emit(typ, line, col, start, nil), true, nil
	}
	// pair consumes ch and, when the next rune is second, that rune too.
	pair := func(second rune, one, two TokenType) (Token, bool, error) {
		s.advance()
		if s.peek() == second {
			s.advance()
			return s.emit(two, line, col, start, nil), true, nil
		}
		return s.emit(one, line, col, start, nil), true, nil
	}

	switch ch {
	case '(':
		return single(TokLParen)
	case ')':
		return single(TokRParen)
	case '{':
		return single(TokLBrace)
	case '}':
		return single(TokRBrace)
	case '[':
		return single(TokLBracket)
	case ']':
		return single(TokRBracket)
	case ',':
		return single(TokComma)
	case '.':
		return single(TokDot)
	case ';':
		return single(TokSemicolon)
	case ':':
		return single(TokColon)
	case '*':
		return single(TokStar)
	case '/':
		return single(TokSlash)
	case '^':
		return single(TokCaret)
	case '%':
		return single(TokPercent)
	case '+':
		return pair('+', TokPlus, TokPlusPlus)
	case '!':
		return pair('=', TokBang, TokBangEq)
	case '<':
		return pair('=', TokLt, TokLtEq)
	case '>':
		return pair('=', TokGt, TokGtEq)
	case '-':
		if s.peekAt(1) == '-' && s.peekAt(2) == '-' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			return Token{}, false, nil
		}
		return pair('-', TokMinus, TokMinusMinus)
	case '=':
		if s.peekAt(1) == '=' && s.peekAt(2) == '=' {
			return Token{}, false, s.skipBlockComment(line, col)
		}
		return pair('=', TokEquals, TokEqEq)
	case '"':
		tok, err := s.scanString(line, col, start)
		return tok, err == nil, err
	}

	if isDigit(ch) {
		tok, err := s.scanNumber(line, col, start)
		return tok, err == nil, err
	}
	if isIdentStart(ch) {
		return s.scanIdentOrKeyword(line, col, start), true, nil
	}

	s.advance()
	return Token{}, false, s.lexError("scanning a token", line, col, fmt.Sprintf("unexpected character '%c'", ch))
}

func (s *Scanner) skipBlockComment(line, col int) error {
	for i := 0; i < 3; i++ {
		s.advance()
	}
	for !s.atEnd() {
		if s.peek() == '=' && s.peekAt(1) == '=' && s.peekAt(2) == '=' {
			for i := 0; i < 3; i++ {
				s.advance()
			}
			return nil
		}
		s.advance()
	}
	return s.lexError("scanning a block comment", line, col, "unterminated block comment")
}

func (s *Scanner) scanString(line, col, start int) (Token, error) {
	s.advance() // consume opening "
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.atEnd() {
		return Token{}, s.lexError("scanning a string", line, col, "unterminated string")
	}
	s.advance() // consume closing "
	value := string(s.source[start+1 : s.pos-1])
	return s.emit(TokString, line, col, start, value), nil
}

// scanDigits consumes a decimal digit run with optional `_` grouping and
// returns the digits with separators removed.
func (s *Scanner) scanDigits(line, col int) (string, error) {
	var digits []rune
	lead := 0
	for isDigit(s.peek()) {
		digits = append(digits, s.advance())
		lead++
	}
	grouped := false
	for s.peek() == '_' {
		if !grouped && lead > 3 {
			return "", s.lexError("scanning a number", line, col, "digit group before '_' must have at most 3 digits")
		}
		grouped = true
		s.advance()
		n := 0
		for isDigit(s.peek()) {
			digits = append(digits, s.advance())
			n++
		}
		if n != 3 {
			return "", s.lexError("scanning a number", line, col, "digit group after '_' must have exactly 3 digits")
		}
	}
	return string(digits), nil
}

func (s *Scanner) scanNumber(line, col, start int) (Token, error) {
	if s.peek() == '0' && s.peekAt(1) == 'b' && isDigit(s.peekAt(2)) {
		return s.scanBinary(line, col, start)
	}

	intPart, err := s.scanDigits(line, col)
	if err != nil {
		return Token{}, err
	}

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		fracPart, err := s.scanDigits(line, col)
		if err != nil {
			return Token{}, err
		}
		text := intPart + "." + fracPart
		if exp, ok, err := s.scanExponent(line, col); err != nil {
			return Token{}, err
		} else if ok {
			base, _ := strconv.ParseFloat(text, 64)
			return s.emit(TokScientific, line, col, start, Scientific{Base: base, Exp: exp}), nil
		}
		f, _ := strconv.ParseFloat(text, 64)
		return s.emit(TokFloat, line, col, start, f), nil
	}

	n, perr := strconv.ParseInt(intPart, 10, 64)
	if perr != nil {
		return Token{}, s.lexError("scanning a number", line, col, fmt.Sprintf("integer literal %s is out of range", intPart))
	}

	if s.peek() == '|' && isDigit(s.peekAt(1)) {
		s.advance() // consume '|'
		denPart, err := s.scanDigits(line, col)
		if err != nil {
			return Token{}, err
		}
		den, perr := strconv.ParseInt(denPart, 10, 64)
		if perr != nil {
			return Token{}, s.lexError("scanning a fraction", line, col, fmt.Sprintf("denominator %s is out of range", denPart))
		}
		if den == 0 {
			return Token{}, s.lexError("scanning a fraction", line, col, "fraction denominator must not be zero")
		}
		return s.emit(TokFraction, line, col, start, Fraction{Num: n, Den: den}), nil
	}

	if exp, ok, err := s.scanExponent(line, col); err != nil {
		return Token{}, err
	} else if ok {
		return s.emit(TokScientific, line, col, start, Scientific{Base: float64(n), Exp: exp}), nil
	}

	return s.emit(TokInteger, line, col, start, n), nil
}

// scanExponent consumes `E[+-]?digits` when present.
func (s *Scanner) scanExponent(line, col int) (int, bool, error) {
	if s.peek() != 'E' {
		return 0, false, nil
	}
	next := s.peekAt(1)
	signed := next == '+' || next == '-'
	if !isDigit(next) && !(signed && isDigit(s.peekAt(2))) {
		return 0, false, nil
	}
	s.advance() // consume 'E'
	text := ""
	if signed {
		text = string(s.advance())
	}
	for isDigit(s.peek()) {
		text += string(s.advance())
	}
	exp, err := strconv.Atoi(text)
	if err != nil {
		return 0, false, s.lexError("scanning a number", line, col, fmt.Sprintf("exponent %s is out of range", text))
	}
	return exp, true, nil
}

func (s *Scanner) scanBinary(line, col, start int) (Token, error) {
	s.advance() // 0
	s.advance() // b
	var digits []rune
	for isDigit(s.peek()) {
		d := s.advance()
		if d != '0' && d != '1' {
			return Token{}, s.lexError("scanning a binary number", line, col, fmt.Sprintf("invalid binary digit '%c'", d))
		}
		digits = append(digits, d)
	}
	n, err := strconv.ParseInt(string(digits), 2, 64)
	if err != nil {
		return Token{}, s.lexError("scanning a binary number", line, col, "binary literal is out of range")
	}
	return s.emit(TokInteger, line, col, start, n), nil
}

func (s *Scanner) scanIdentOrKeyword(line, col, start int) Token {
	for !s.atEnd() && isIdentPart(s.peek()) {
		s.advance()
	}
	text := string(s.source[start:s.pos])
	if typ, ok := keywords[text]; ok {
		var literal any
		switch typ {
		case TokTrue:
			literal = true
		case TokFalse:
			literal = false
		}
		return s.emit(typ, line, col, start, literal)
	}
	return s.emit(TokIdent, line, col, start, nil)
}

func isCloser(t TokenType) bool {
	return t == TokRParen || t == TokRBracket || t == TokRBrace
}

// Stream scans all of source. A comma sitting directly between two closing
// delimiters is dropped, and the result always ends with exactly one EOF.
func Stream(source string) ([]Token, error) {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if isCloser(tok.Type) {
			n := len(tokens)
			if n >= 2 && tokens[n-1].Type == TokComma && isCloser(tokens[n-2].Type) {
				tokens = tokens[:n-1]
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens, nil
		}
	}
}

// Tokenize scans source and renders every token with Token.String,
// including the final EOF.
func Tokenize(source string) ([]string, error) {
	tokens, err := Stream(source)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.String()
	}
	return out, nil
}
