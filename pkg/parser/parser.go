// Package parser implements the Woven language parser.
package parser

import (
	"errors"
	"fmt"

	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse tokenizes source and parses it into an AST. Parsing halts at the
// first lexical or syntax error, returned as a *diagnostics.Diagnostic.
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Stream(source)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already scanned token stream.
func ParseTokens(tokens []lexer.Token) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		eof := lexer.Token{Type: lexer.TokEOF}
		if len(tokens) > 0 {
			eof.Span = tokens[len(tokens)-1].Span
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

// IsIncomplete reports whether err is a syntax error raised at end of
// input, meaning more source could still complete the program.
func IsIncomplete(err error) bool {
	var d *diagnostics.Diagnostic
	return errors.As(err, &d) && d.Incomplete
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) check(typ lexer.TokenType) bool {
	return p.peek() == typ
}

func (p *parser) match(typ lexer.TokenType) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(typ lexer.TokenType, phase, what string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, p.errorAt(tok, phase, "expected %s, got %s", what, describe(tok))
	}
	return p.advance(), nil
}

func (p *parser) errorAt(tok lexer.Token, phase, format string, args ...any) error {
	d := diagnostics.MakeDiag(diagnostics.SyntaxError, phase, fmt.Sprintf(format, args...), tok.Span)
	d.Incomplete = tok.Type == lexer.TokEOF
	return d
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

// endStatement consumes a `;`. It may be omitted before `}` or end of input.
func (p *parser) endStatement(phase string) error {
	if p.match(lexer.TokSemicolon) {
		return nil
	}
	if p.check(lexer.TokRBrace) || p.check(lexer.TokEOF) {
		return nil
	}
	tok := p.current()
	return p.errorAt(tok, phase, "expected ';', got %s", describe(tok))
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Span: ast.Span{Line: 1, Column: 0}}
	for !p.check(lexer.TokEOF) {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

func (p *parser) parseDeclaration() (ast.Stmt, error) {
	switch p.peek() {
	case lexer.TokClass:
		return p.parseClassDecl()
	case lexer.TokFn:
		start := p.advance()
		return p.parseFnDecl(start, "parsing a function declaration")
	case lexer.TokVar, lexer.TokLet:
		return p.parseVarDecl()
	}
	return p.parseStmt()
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.peek() {
	case lexer.TokPrint:
		return p.parsePrintStmt()
	case lexer.TokReturn:
		return p.parseReturnStmt()
	case lexer.TokLBrace:
		return p.parseBlockStmt()
	case lexer.TokIf:
		return p.parseIfStmt()
	case lexer.TokWhile:
		return p.parseWhileStmt()
	case lexer.TokFor:
		return p.parseForStmt()
	}
	return p.parseExprStmt()
}

func (p *parser) parseVarDecl() (*ast.VarStmt, error) {
	const phase = "parsing a variable declaration"
	start := p.advance() // var / let
	name, err := p.expect(lexer.TokIdent, phase, "a variable name")
	if err != nil {
		return nil, err
	}
	stmt := &ast.VarStmt{Span: start.Span, Name: name.Lexeme}
	if p.match(lexer.TokEquals) {
		stmt.Init, err = p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
	}
	if err := p.endStatement(phase); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parsePrintStmt() (*ast.PrintStmt, error) {
	const phase = "parsing a print statement"
	start := p.advance()
	value, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(phase); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Span: start.Span, Value: value}, nil
}

func (p *parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	const phase = "parsing a return statement"
	start := p.advance()
	stmt := &ast.ReturnStmt{Span: start.Span}
	if !p.check(lexer.TokSemicolon) && !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		value, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if err := p.endStatement(phase); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseExprStmt() (*ast.ExprStmt, error) {
	start := p.current()
	expr, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if err := p.endStatement("parsing an expression statement"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Span: start.Span, Expr: expr}, nil
}

// parseBlock parses `{ decl* }` and returns the inner statements.
func (p *parser) parseBlock(phase string) ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.TokLBrace, phase, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.TokRBrace) {
		if p.check(lexer.TokEOF) {
			tok := p.current()
			return nil, p.errorAt(tok, phase, "expected '}', got %s", describe(tok))
		}
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // consume '}'
	return stmts, nil
}

func (p *parser) parseBlockStmt() (*ast.BlockStmt, error) {
	start := p.current()
	stmts, err := p.parseBlock("parsing a block")
	if err != nil {
		return nil, err
	}
	return &ast.BlockStmt{Span: start.Span, Stmts: stmts}, nil
}

// parseCondition parses a parenthesized condition.
func (p *parser) parseCondition(phase string) (ast.Expr, error) {
	if _, err := p.expect(lexer.TokLParen, phase, "'(' before condition"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRParen, phase, "')' after condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) parseIfStmt() (*ast.IfStmt, error) {
	const phase = "parsing an if statement"
	start := p.advance()
	cond, err := p.parseCondition(phase)
	if err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Span: start.Span, Cond: cond, Then: then}
	if p.match(lexer.TokElse) {
		stmt.Else, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseWhileStmt() (*ast.WhileStmt, error) {
	start := p.advance()
	cond, err := p.parseCondition("parsing a while loop")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Span: start.Span, Cond: cond, Body: body}, nil
}

// parseForStmt desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *parser) parseForStmt() (ast.Stmt, error) {
	const phase = "parsing a for loop"
	start := p.advance()
	if _, err := p.expect(lexer.TokLParen, phase, "'(' after 'for'"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch p.peek() {
	case lexer.TokSemicolon:
		p.advance()
	case lexer.TokVar, lexer.TokLet:
		init, err = p.parseVarDecl()
	default:
		init, err = p.parseExprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr = &ast.BoolLiteral{Span: start.Span, Value: true}
	if !p.check(lexer.TokSemicolon) {
		cond, err = p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.TokSemicolon, phase, "';' after loop condition"); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(lexer.TokRParen) {
		incr, err = p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.TokRParen, phase, "')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{Span: body.NodeSpan(), Stmts: []ast.Stmt{
			body,
			&ast.ExprStmt{Span: incr.NodeSpan(), Expr: incr},
		}}
	}
	var loop ast.Stmt = &ast.WhileStmt{Span: start.Span, Cond: cond, Body: body}
	stmts := []ast.Stmt{loop}
	if init != nil {
		stmts = []ast.Stmt{init, loop}
	}
	return &ast.BlockStmt{Span: start.Span, Stmts: stmts}, nil
}

// parseFnDecl parses the rest of a function or method after its optional
// `fn` keyword: `name(params) { body }` or `name(params) = expr;`.
func (p *parser) parseFnDecl(start lexer.Token, phase string) (*ast.FnDecl, error) {
	name, err := p.expect(lexer.TokIdent, phase, "a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLParen, phase, "'(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(lexer.TokRParen) {
		for {
			param, err := p.expect(lexer.TokIdent, phase, "a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.TokRParen, phase, "')' after parameters"); err != nil {
		return nil, err
	}

	decl := &ast.FnDecl{Span: start.Span, Name: name.Lexeme, Params: params}
	if eq := p.current(); p.match(lexer.TokEquals) {
		value, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(phase); err != nil {
			return nil, err
		}
		decl.Body = []ast.Stmt{&ast.ExprStmt{Span: eq.Span, Expr: value}}
		decl.Short = true
		return decl, nil
	}

	decl.Body, err = p.parseBlock(phase)
	if err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseClassDecl() (*ast.ClassDecl, error) {
	const phase = "parsing a class declaration"
	start := p.advance()
	name, err := p.expect(lexer.TokIdent, phase, "a class name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLBrace, phase, "'{' before class body"); err != nil {
		return nil, err
	}
	decl := &ast.ClassDecl{Span: start.Span, Name: name.Lexeme}
	for !p.check(lexer.TokRBrace) {
		if p.check(lexer.TokEOF) {
			tok := p.current()
			return nil, p.errorAt(tok, phase, "expected '}' after class body, got %s", describe(tok))
		}
		methodStart := p.current()
		p.match(lexer.TokFn)
		method, err := p.parseFnDecl(methodStart, "parsing a method declaration")
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, method)
	}
	p.advance() // consume '}'
	return decl, nil
}
