package parser

import (
	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/lexer"
)

// Binding powers, lowest to highest.
const (
	bpNone       = 0
	bpAssign     = 10 // =
	bpOr         = 20 // or xor
	bpAnd        = 30 // and
	bpEquality   = 40 // == !=
	bpComparison = 50 // < <= > >=
	bpSum        = 60 // + -
	bpProduct    = 70 // * / % rem mod div
	bpImplicit   = 75 // 2x
	bpPrefix     = 80 // -x +x !x not x
	bpPower      = 90 // ^
	bpPostfix    = 100
	bpCall       = 110 // f(x) a.b v[i]
)

type (
	prefixRule func(p *parser, tok lexer.Token) (ast.Expr, error)
	infixRule  func(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error)
)

// rule is one row of the Pratt table: how a token starts an expression, how
// it continues one, and how tightly it binds when continuing.
type rule struct {
	prefix prefixRule
	infix  infixRule
	bp     int
}

var rules map[lexer.TokenType]rule

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokPlus:    ast.OpAdd,
	lexer.TokMinus:   ast.OpSub,
	lexer.TokStar:    ast.OpMul,
	lexer.TokSlash:   ast.OpDiv,
	lexer.TokCaret:   ast.OpPow,
	lexer.TokPercent: ast.OpPercent,
	lexer.TokRem:     ast.OpRem,
	lexer.TokMod:     ast.OpMod,
	lexer.TokDiv:     ast.OpIntDiv,
	lexer.TokGt:      ast.OpGt,
	lexer.TokLt:      ast.OpLt,
	lexer.TokGtEq:    ast.OpGtEq,
	lexer.TokLtEq:    ast.OpLtEq,
	lexer.TokEqEq:    ast.OpEqEq,
	lexer.TokBangEq:  ast.OpNeq,
}

var logicalOps = map[lexer.TokenType]ast.LogicalOp{
	lexer.TokAnd: ast.OpAnd,
	lexer.TokOr:  ast.OpOr,
	lexer.TokXor: ast.OpXor,
}

func init() {
	rules = map[lexer.TokenType]rule{
		lexer.TokInteger:    {prefix: parseNumber},
		lexer.TokFloat:      {prefix: parseNumber},
		lexer.TokFraction:   {prefix: parseNumber},
		lexer.TokScientific: {prefix: parseNumber},
		lexer.TokString:     {prefix: parseString},
		lexer.TokTrue:       {prefix: parseBool},
		lexer.TokFalse:      {prefix: parseBool},
		lexer.TokNil:        {prefix: parseNil},
		lexer.TokIdent:      {prefix: parseVariable},
		lexer.TokThis:       {prefix: parseThis},
		lexer.TokLParen:     {prefix: parseGroupOrTuple, infix: parseCall, bp: bpCall},
		lexer.TokLBracket:   {prefix: parseVector, infix: parseIndex, bp: bpCall},
		lexer.TokDot:        {infix: parseGet, bp: bpCall},
		lexer.TokNot:        {prefix: parseUnary},
		lexer.TokBang:       {prefix: parseUnary, infix: parseFactorial, bp: bpPostfix},
		lexer.TokMinus:      {prefix: parseUnary, infix: parseBinary, bp: bpSum},
		lexer.TokPlus:       {prefix: parseUnary, infix: parseBinary, bp: bpSum},
		lexer.TokPlusPlus:   {infix: parseIncrement, bp: bpPostfix},
		lexer.TokMinusMinus: {infix: parseIncrement, bp: bpPostfix},
		lexer.TokStar:       {infix: parseBinary, bp: bpProduct},
		lexer.TokSlash:      {infix: parseBinary, bp: bpProduct},
		lexer.TokPercent:    {infix: parseBinary, bp: bpProduct},
		lexer.TokRem:        {infix: parseBinary, bp: bpProduct},
		lexer.TokMod:        {infix: parseBinary, bp: bpProduct},
		lexer.TokDiv:        {infix: parseBinary, bp: bpProduct},
		lexer.TokCaret:      {infix: parsePower, bp: bpPower},
		lexer.TokEqEq:       {infix: parseBinary, bp: bpEquality},
		lexer.TokBangEq:     {infix: parseBinary, bp: bpEquality},
		lexer.TokLt:         {infix: parseBinary, bp: bpComparison},
		lexer.TokLtEq:       {infix: parseBinary, bp: bpComparison},
		lexer.TokGt:         {infix: parseBinary, bp: bpComparison},
		lexer.TokGtEq:       {infix: parseBinary, bp: bpComparison},
		lexer.TokAnd:        {infix: parseLogical, bp: bpAnd},
		lexer.TokOr:         {infix: parseLogical, bp: bpOr},
		lexer.TokXor:        {infix: parseLogical, bp: bpOr},
		lexer.TokEquals:     {infix: parseAssign, bp: bpAssign},
	}
}

// parseExpr is the Pratt loop: one prefix rule, then infix rules for as long
// as the upcoming token binds tighter than minBP.
func (p *parser) parseExpr(minBP int) (ast.Expr, error) {
	tok := p.advance()
	r := rules[tok.Type]
	if r.prefix == nil {
		return nil, p.errorAt(tok, "parsing an expression", "expected an expression, got %s", describe(tok))
	}
	left, err := r.prefix(p, tok)
	if err != nil {
		return nil, err
	}

	for {
		next := p.current()
		if next.Type == lexer.TokIdent && isNumeric(left) {
			if bpImplicit <= minBP {
				break
			}
			right, err := p.parseExpr(bpImplicit)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{Span: next.Span, Op: ast.OpMul, Left: left, Right: right}
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

// isNumeric reports whether e is a numeric literal, optionally negated, that
// may start an implicit multiplication.
func isNumeric(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.FractionLiteral, *ast.SciLiteral:
		return true
	case *ast.UnaryExpr:
		return n.Op == ast.OpNeg && isNumeric(n.Operand)
	}
	return false
}

// ---- prefix rules ----

func parseNumber(p *parser, tok lexer.Token) (ast.Expr, error) {
	switch v := tok.Literal.(type) {
	case int64:
		return &ast.IntLiteral{Span: tok.Span, Value: v}, nil
	case float64:
		return &ast.FloatLiteral{Span: tok.Span, Value: v}, nil
	case lexer.Fraction:
		return &ast.FractionLiteral{Span: tok.Span, Num: v.Num, Den: v.Den}, nil
	case lexer.Scientific:
		return &ast.SciLiteral{Span: tok.Span, Base: v.Base, Exp: v.Exp}, nil
	}
	return nil, p.errorAt(tok, "parsing a number", "malformed numeric literal %s", describe(tok))
}

func parseString(p *parser, tok lexer.Token) (ast.Expr, error) {
	s, _ := tok.Literal.(string)
	return &ast.StrLiteral{Span: tok.Span, Value: s}, nil
}

func parseBool(p *parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}, nil
}

func parseNil(p *parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.NilLiteral{Span: tok.Span}, nil
}

func parseVariable(p *parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.Variable{Span: tok.Span, Name: tok.Lexeme}, nil
}

func parseThis(p *parser, tok lexer.Token) (ast.Expr, error) {
	return &ast.ThisExpr{Span: tok.Span}, nil
}

func parseUnary(p *parser, tok lexer.Token) (ast.Expr, error) {
	operand, err := p.parseExpr(bpPrefix)
	if err != nil {
		return nil, err
	}
	var op ast.UnaryOp
	switch tok.Type {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokPlus:
		op = ast.OpPlus
	default:
		op = ast.OpNot
	}
	return &ast.UnaryExpr{Span: tok.Span, Op: op, Operand: operand}, nil
}

// parseGroupOrTuple handles `(e)`, `()` and `(a, b, ...)`.
func parseGroupOrTuple(p *parser, tok lexer.Token) (ast.Expr, error) {
	const phase = "parsing a parenthesized expression"
	if p.match(lexer.TokRParen) {
		return &ast.TupleExpr{Span: tok.Span}, nil
	}
	first, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.TokComma) {
		if _, err := p.expect(lexer.TokRParen, phase, "')'"); err != nil {
			return nil, err
		}
		return &ast.GroupExpr{Span: tok.Span, Inner: first}, nil
	}
	elems := []ast.Expr{first}
	for p.match(lexer.TokComma) {
		e, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(lexer.TokRParen, "parsing a tuple", "')' after tuple elements"); err != nil {
		return nil, err
	}
	return &ast.TupleExpr{Span: tok.Span, Elements: elems}, nil
}

// parseVector handles `[a, b, ...]`. A literal with any nested vector
// literal element becomes a matrix literal.
func parseVector(p *parser, tok lexer.Token) (ast.Expr, error) {
	const phase = "parsing a vector literal"
	var elems []ast.Expr
	nested := false
	if !p.check(lexer.TokRBracket) {
		for {
			if p.check(lexer.TokRBracket) {
				return nil, p.errorAt(p.current(), phase, "trailing comma in vector literal")
			}
			e, err := p.parseExpr(bpNone)
			if err != nil {
				return nil, err
			}
			switch e.(type) {
			case *ast.VectorExpr, *ast.MatrixExpr:
				nested = true
			}
			elems = append(elems, e)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.TokRBracket, phase, "']' after vector elements"); err != nil {
		return nil, err
	}
	if nested {
		return &ast.MatrixExpr{Span: tok.Span, Rows: elems}, nil
	}
	return &ast.VectorExpr{Span: tok.Span, Elements: elems}, nil
}

// ---- infix rules ----

func parseBinary(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	right, err := p.parseExpr(rules[tok.Type].bp)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Span: tok.Span, Op: binaryOps[tok.Type], Left: left, Right: right}, nil
}

// parsePower is right-associative: its right operand binds one below `^`.
func parsePower(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	right, err := p.parseExpr(bpPower - 1)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Span: tok.Span, Op: ast.OpPow, Left: left, Right: right}, nil
}

func parseLogical(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	right, err := p.parseExpr(rules[tok.Type].bp)
	if err != nil {
		return nil, err
	}
	return &ast.LogicalExpr{Span: tok.Span, Op: logicalOps[tok.Type], Left: left, Right: right}, nil
}

func parseFactorial(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	return &ast.UnaryExpr{Span: tok.Span, Op: ast.OpFactorial, Operand: left}, nil
}

// parseIncrement desugars `x++` into `x = x + 1` (and `--` likewise) using
// tokens derived from the operator.
func parseIncrement(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	opTok := tok.With(lexer.TokPlus, "+", nil)
	if tok.Type == lexer.TokMinusMinus {
		opTok = tok.With(lexer.TokMinus, "-", nil)
	}
	oneTok := tok.With(lexer.TokInteger, "1", int64(1))
	one, err := parseNumber(p, oneTok)
	if err != nil {
		return nil, err
	}
	step := func(target ast.Expr) ast.Expr {
		return &ast.BinaryExpr{Span: opTok.Span, Op: binaryOps[opTok.Type], Left: target, Right: one}
	}
	switch target := left.(type) {
	case *ast.Variable:
		return &ast.AssignExpr{Span: tok.Span, Name: target.Name, Value: step(target)}, nil
	case *ast.GetExpr:
		return &ast.SetExpr{Span: tok.Span, Object: target.Object, Name: target.Name, Value: step(target)}, nil
	}
	return nil, p.errorAt(tok, "parsing an increment", "invalid target for '%s'", tok.Lexeme)
}

// parseAssign is right-associative.
func parseAssign(p *parser, left ast.Expr, tok lexer.Token) (ast.Expr, error) {
	value, err := p.parseExpr(bpAssign - 1)
	if err != nil {
		return nil, err
	}
	switch target := left.(type) {
	case *ast.Variable:
		return &ast.AssignExpr{Span: target.Span, Name: target.Name, Value: value}, nil
	case *ast.GetExpr:
		return &ast.SetExpr{Span: target.Span, Object: target.Object, Name: target.Name, Value: value}, nil
	}
	return nil, p.errorAt(tok, "parsing an assignment", "invalid assignment target")
}

func parseCall(p *parser, callee ast.Expr, tok lexer.Token) (ast.Expr, error) {
	const phase = "parsing a function call"
	var args []ast.Expr
	if !p.check(lexer.TokRParen) {
		for {
			arg, err := p.parseExpr(bpNone)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.TokRParen, phase, "')' after arguments"); err != nil {
		return nil, err
	}
	return &ast.CallExpr{Span: tok.Span, Callee: callee, Args: args}, nil
}

func parseGet(p *parser, object ast.Expr, tok lexer.Token) (ast.Expr, error) {
	name, err := p.expect(lexer.TokIdent, "parsing a property access", "property name after '.'")
	if err != nil {
		return nil, err
	}
	return &ast.GetExpr{Span: name.Span, Object: object, Name: name.Lexeme}, nil
}

func parseIndex(p *parser, object ast.Expr, tok lexer.Token) (ast.Expr, error) {
	index, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRBracket, "parsing an index", "']' after index"); err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Span: tok.Span, Object: object, Index: index}, nil
}
