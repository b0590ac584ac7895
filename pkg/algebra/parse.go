package algebra

import (
	"errors"
	"math/big"
	"strings"

	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/lexer"
)

const parsePhase = "parsing an algebraic expression"

// Binding powers, lowest to highest.
const (
	bpNone     = 0
	bpRelation = 10
	bpSum      = 20
	bpProduct  = 30
	bpImplicit = 35
	bpPrefix   = 40
	bpPower    = 50
	bpPostfix  = 60
)

type prefixRule func(p *parser, tok lexer.Token) (Expr, error)
type infixRule func(p *parser, left Expr, tok lexer.Token) (Expr, error)

type rule struct {
	prefix prefixRule
	infix  infixRule
	bp     int
}

var rules map[lexer.TokenType]rule

var relationOps = map[lexer.TokenType]string{
	lexer.TokEquals: "=",
	lexer.TokLt:     "<",
	lexer.TokGt:     ">",
	lexer.TokLtEq:   "<=",
	lexer.TokGtEq:   ">=",
}

func init() {
	rules = map[lexer.TokenType]rule{
		lexer.TokInteger:    {prefix: parseNumber},
		lexer.TokFloat:      {prefix: parseNumber},
		lexer.TokFraction:   {prefix: parseNumber},
		lexer.TokScientific: {prefix: parseNumber},
		lexer.TokIdent:      {prefix: parseIdent},
		lexer.TokLParen:     {prefix: parseGroup},
		lexer.TokMinus:      {prefix: parseNegation, infix: parseDifference, bp: bpSum},
		lexer.TokPlus:       {prefix: parseUnaryPlus, infix: parseSum, bp: bpSum},
		lexer.TokStar:       {infix: parseProduct, bp: bpProduct},
		lexer.TokSlash:      {infix: parseQuotient, bp: bpProduct},
		lexer.TokCaret:      {infix: parsePower, bp: bpPower},
		lexer.TokBang:       {infix: parseFactorial, bp: bpPostfix},
	}
	for typ := range relationOps {
		rules[typ] = rule{infix: parseRelation, bp: bpRelation}
	}
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse reads an algebraic expression such as "2x^3 + 4x^2 - 5".
// Sums and products are flattened into n-ary nodes.
func Parse(source string) (Expr, error) {
	tokens, err := lexer.Stream(source)
	if err != nil {
		var d *diagnostics.Diagnostic
		if errors.As(err, &d) {
			return nil, &Error{Kind: d.Kind, Phase: d.Phase, Message: d.Message}
		}
		return nil, &Error{Kind: diagnostics.LexicalError, Phase: parsePhase, Message: err.Error()}
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != lexer.TokEOF {
		return nil, syntaxErrorf("unexpected %s", describe(tok))
	}
	return expr, nil
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level constants.
func MustParse(source string) Expr {
	u, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return u
}

func (p *parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokEOF {
		p.pos++
	}
	return tok
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return "'" + tok.Lexeme + "'"
}

func (p *parser) parseExpr(minBP int) (Expr, error) {
	tok := p.advance()
	r := rules[tok.Type]
	if r.prefix == nil {
		return nil, syntaxErrorf("expected an expression, got %s", describe(tok))
	}
	left, err := r.prefix(p, tok)
	if err != nil {
		return nil, err
	}

	for {
		next := p.current()
		if isNumber(left) && (next.Type == lexer.TokIdent || next.Type == lexer.TokLParen) {
			if bpImplicit <= minBP {
				break
			}
			right, err := p.parseExpr(bpImplicit)
			if err != nil {
				return nil, err
			}
			left = flatProduct(left, right)
			continue
		}
		r := rules[next.Type]
		if r.infix == nil || r.bp <= minBP {
			break
		}
		p.advance()
		left, err = r.infix(p, left, next)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func isNumber(u Expr) bool {
	switch u.(type) {
	case *Int, *Fraction:
		return true
	}
	return false
}

// ---- prefix rules ----

func parseNumber(p *parser, tok lexer.Token) (Expr, error) {
	switch v := tok.Literal.(type) {
	case int64:
		return NewInt(v), nil
	case lexer.Fraction:
		return NewFraction(v.Num, v.Den), nil
	}
	// Decimals and scientific literals are read exactly from their text.
	r, ok := new(big.Rat).SetString(strings.ReplaceAll(tok.Lexeme, "_", ""))
	if !ok {
		return nil, syntaxErrorf("malformed number %s", describe(tok))
	}
	if r.IsInt() {
		return &Int{Value: new(big.Int).Set(r.Num())}, nil
	}
	return &Fraction{Num: new(big.Int).Set(r.Num()), Den: new(big.Int).Set(r.Denom())}, nil
}

func parseIdent(p *parser, tok lexer.Token) (Expr, error) {
	if p.current().Type != lexer.TokLParen {
		return &Sym{Name: tok.Lexeme}, nil
	}
	p.advance()
	var args []Expr
	if p.current().Type != lexer.TokRParen {
		for {
			arg, err := p.parseExpr(bpNone)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().Type != lexer.TokComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(lexer.TokRParen, "')'"); err != nil {
		return nil, err
	}
	return &FunctionForm{Name: tok.Lexeme, Args: args}, nil
}

func (p *parser) expect(typ lexer.TokenType, what string) error {
	if tok := p.current(); tok.Type != typ {
		return syntaxErrorf("expected %s, got %s", what, describe(tok))
	}
	p.advance()
	return nil
}

func parseGroup(p *parser, tok lexer.Token) (Expr, error) {
	inner, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokRParen, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

// parseNegation folds the sign into integer and fraction literals and
// otherwise produces -1 * u.
func parseNegation(p *parser, tok lexer.Token) (Expr, error) {
	literal := isNumberToken(p.current().Type)
	operand, err := p.parseExpr(bpPrefix)
	if err != nil {
		return nil, err
	}
	if literal {
		switch n := operand.(type) {
		case *Int:
			return &Int{Value: new(big.Int).Neg(n.Value)}, nil
		case *Fraction:
			return &Fraction{Num: new(big.Int).Neg(n.Num), Den: n.Den}, nil
		}
	}
	return &Product{Args: []Expr{NewInt(-1), operand}}, nil
}

func isNumberToken(typ lexer.TokenType) bool {
	switch typ {
	case lexer.TokInteger, lexer.TokFloat, lexer.TokFraction, lexer.TokScientific:
		return true
	}
	return false
}

func parseUnaryPlus(p *parser, tok lexer.Token) (Expr, error) {
	return p.parseExpr(bpPrefix)
}

// ---- infix rules ----

func parseSum(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpSum)
	if err != nil {
		return nil, err
	}
	args := spliceArgs(nil, left, isSum)
	return &Sum{Args: spliceArgs(args, right, isSum)}, nil
}

func parseDifference(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpSum)
	if err != nil {
		return nil, err
	}
	return &Difference{Left: left, Right: right}, nil
}

func parseProduct(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpProduct)
	if err != nil {
		return nil, err
	}
	return flatProduct(left, right), nil
}

func flatProduct(left, right Expr) Expr {
	args := spliceArgs(nil, left, isProduct)
	return &Product{Args: spliceArgs(args, right, isProduct)}
}

func parseQuotient(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpProduct)
	if err != nil {
		return nil, err
	}
	return &Quotient{Left: left, Right: right}, nil
}

func parsePower(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpPower - 1)
	if err != nil {
		return nil, err
	}
	return &Power{Base: left, Exp: right}, nil
}

func parseFactorial(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	return &Factorial{Arg: left}, nil
}

func parseRelation(p *parser, left Expr, tok lexer.Token) (Expr, error) {
	right, err := p.parseExpr(bpRelation)
	if err != nil {
		return nil, err
	}
	return &Relation{Op: relationOps[tok.Type], Left: left, Right: right}, nil
}

func isSum(u Expr) ([]Expr, bool) {
	s, ok := u.(*Sum)
	if !ok {
		return nil, false
	}
	return s.Args, true
}

func isProduct(u Expr) ([]Expr, bool) {
	s, ok := u.(*Product)
	if !ok {
		return nil, false
	}
	return s.Args, true
}

// spliceArgs appends u to args, or u's own operands when u is already a
// node of the kind being built.
func spliceArgs(args []Expr, u Expr, same func(Expr) ([]Expr, bool)) []Expr {
	if inner, ok := same(u); ok {
		return append(args, inner...)
	}
	return append(args, u)
}
