package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/parser"
)

// helper: parse source and assert no error
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	return prog
}

// helper: parse source and assert a syntax diagnostic is returned
func mustFail(t *testing.T, source string) *diagnostics.Diagnostic {
	t.Helper()
	prog, err := parser.Parse(source)
	if err == nil {
		t.Fatalf("expected parse of %q to fail, got %d statements", source, len(prog.Statements))
	}
	var d *diagnostics.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected *diagnostics.Diagnostic, got %T", err)
	}
	return d
}

// helper: extract the single statement from a program, assert it is an ExprStmt, return its Expr
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Statements[0])
	}
	return es.Expr
}

// sexpr renders an expression as a parenthesized prefix form for compact
// structural assertions.
func sexpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return fmt.Sprint(n.Value)
	case *ast.FloatLiteral:
		return fmt.Sprint(n.Value)
	case *ast.FractionLiteral:
		return fmt.Sprintf("%d|%d", n.Num, n.Den)
	case *ast.SciLiteral:
		return fmt.Sprintf("%vE%d", n.Base, n.Exp)
	case *ast.StrLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.BoolLiteral:
		return fmt.Sprint(n.Value)
	case *ast.NilLiteral:
		return "nil"
	case *ast.Variable:
		return n.Name
	case *ast.ThisExpr:
		return "this"
	case *ast.AssignExpr:
		return fmt.Sprintf("(= %s %s)", n.Name, sexpr(n.Value))
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", n.Op, sexpr(n.Left), sexpr(n.Right))
	case *ast.LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", n.Op, sexpr(n.Left), sexpr(n.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", n.Op, sexpr(n.Operand))
	case *ast.GroupExpr:
		return fmt.Sprintf("(group %s)", sexpr(n.Inner))
	case *ast.CallExpr:
		return fmt.Sprintf("(call %s%s)", sexpr(n.Callee), list(n.Args))
	case *ast.GetExpr:
		return fmt.Sprintf("(get %s %s)", sexpr(n.Object), n.Name)
	case *ast.SetExpr:
		return fmt.Sprintf("(set %s %s %s)", sexpr(n.Object), n.Name, sexpr(n.Value))
	case *ast.TupleExpr:
		return fmt.Sprintf("(tuple%s)", list(n.Elements))
	case *ast.VectorExpr:
		return fmt.Sprintf("(vector%s)", list(n.Elements))
	case *ast.MatrixExpr:
		return fmt.Sprintf("(matrix%s)", list(n.Rows))
	case *ast.IndexExpr:
		return fmt.Sprintf("(index %s %s)", sexpr(n.Object), sexpr(n.Index))
	}
	return fmt.Sprintf("<%T>", e)
}

func list(es []ast.Expr) string {
	var b strings.Builder
	for _, e := range es {
		b.WriteString(" ")
		b.WriteString(sexpr(e))
	}
	return b.String()
}

func assertExpr(t *testing.T, source, want string) {
	t.Helper()
	if got := sexpr(singleExpr(t, source)); got != want {
		t.Errorf("%q:\n  got  %s\n  want %s", source, got, want)
	}
}

// ---- 1. Literal Expressions ----

func TestLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42;", "42"},
		{"3.5;", "3.5"},
		{"3|4;", "3|4"},
		{"2E3;", "2E3"},
		{`"hi";`, `"hi"`},
		{"true;", "true"},
		{"false;", "false"},
		{"nil;", "nil"},
		{"x;", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertExpr(t, tt.src, tt.want)
		})
	}
}

// ---- 2. Operator Precedence ----

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2+3*4;", "(+ 2 (* 3 4))"},
		{"(2+3)*4;", "(* (group (+ 2 3)) 4)"},
		{"a - b - c;", "(- (- a b) c)"},
		{"a / b * c;", "(* (/ a b) c)"},
		{"2^3^2;", "(^ 2 (^ 3 2))"},
		{"-x^2;", "(- (^ x 2))"},
		{"-5!;", "(- (! 5))"},
		{"2^3!;", "(^ 2 (! 3))"},
		{"a < b == c > d;", "(== (< a b) (> c d))"},
		{"a or b and c;", "(or a (and b c))"},
		{"a xor b or c;", "(or (xor a b) c)"},
		{"not a and b;", "(and (not a) b)"},
		{"!a;", "(not a)"},
		{"a rem b;", "(rem a b)"},
		{"a mod b + 1;", "(+ (mod a b) 1)"},
		{"a div b;", "(div a b)"},
		{"50 % 20;", "(% 50 20)"},
		{"a != b;", "(!= a b)"},
		{"+a;", "(+ a)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertExpr(t, tt.src, tt.want)
		})
	}
}

// ---- 3. Implicit Multiplication ----

func TestImplicitMultiplication(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2x;", "(* 2 x)"},
		{"2x^3;", "(* 2 (^ x 3))"},
		{"2x^3 + 4x^2 - 5;", "(- (+ (* 2 (^ x 3)) (* 4 (^ x 2))) 5)"},
		{"3sin(x);", "(* 3 (call sin x))"},
		{"2x*y;", "(* (* 2 x) y)"},
		{"-2x;", "(* (- 2) x)"},
		{"1.5t;", "(* 1.5 t)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertExpr(t, tt.src, tt.want)
		})
	}

	// Same structure as the explicit form.
	if sexpr(singleExpr(t, "2x^3 + 4x^2 - 5;")) != sexpr(singleExpr(t, "2*x^3 + 4*x^2 - 5;")) {
		t.Error("implicit and explicit products parsed differently")
	}
}

// ---- 4. Assignment and Increment ----

func TestAssignment(t *testing.T) {
	assertExpr(t, "x = 1;", "(= x 1)")
	assertExpr(t, "x = y = 2;", "(= x (= y 2))")
	assertExpr(t, "p.x = 3;", "(set p x 3)")
	assertExpr(t, "x = a or b;", "(= x (or a b))")
}

func TestInvalidAssignmentTarget(t *testing.T) {
	d := mustFail(t, "1 = 2;")
	if d.Phase != "parsing an assignment" {
		t.Errorf("got phase %q", d.Phase)
	}
}

func TestIncrement(t *testing.T) {
	assertExpr(t, "x++;", "(= x (+ x 1))")
	assertExpr(t, "x--;", "(= x (- x 1))")
	assertExpr(t, "p.n++;", "(set p n (+ (get p n) 1))")
	mustFail(t, "3++;")
}

// ---- 5. Calls, Properties, Indexing ----

func TestCalls(t *testing.T) {
	assertExpr(t, "f();", "(call f)")
	assertExpr(t, "f(1, x + 2);", "(call f 1 (+ x 2))")
	assertExpr(t, "f(1)(2);", "(call (call f 1) 2)")
	assertExpr(t, "p.move(1);", "(call (get p move) 1)")
	assertExpr(t, "this.x;", "(get this x)")
}

func TestIndexing(t *testing.T) {
	assertExpr(t, "v[1];", "(index v 1)")
	assertExpr(t, "m[1][2];", "(index (index m 1) 2)")
	assertExpr(t, "v[i + 1] * 2;", "(* (index v (+ i 1)) 2)")
}

// ---- 6. Collections ----

func TestTuples(t *testing.T) {
	assertExpr(t, "(1, 2);", "(tuple 1 2)")
	assertExpr(t, "();", "(tuple)")
	assertExpr(t, "(1);", "(group 1)")
}

func TestVectorsAndMatrices(t *testing.T) {
	assertExpr(t, "[];", "(vector)")
	assertExpr(t, "[1, 2, 3];", "(vector 1 2 3)")
	assertExpr(t, "[[1, 2], [3, 4]];", "(matrix (vector 1 2) (vector 3 4))")
	assertExpr(t, "[[1, 2], [3, 4],];", "(matrix (vector 1 2) (vector 3 4))")
	assertExpr(t, "[[1, 2], [3]];", "(matrix (vector 1 2) (vector 3))")
}

func TestVectorTrailingComma(t *testing.T) {
	d := mustFail(t, "[1, 2,];")
	if d.Phase != "parsing a vector literal" {
		t.Errorf("got phase %q", d.Phase)
	}
}

// ---- 7. Statements ----

func TestVarStatements(t *testing.T) {
	prog := mustParse(t, "var x = 1; let y; var z = x + 1;")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	v, ok := prog.Statements[1].(*ast.VarStmt)
	if !ok || v.Name != "y" || v.Init != nil {
		t.Errorf("got %#v, want uninitialized y", prog.Statements[1])
	}
}

func TestOptionalSemicolon(t *testing.T) {
	mustParse(t, "print 1")
	mustParse(t, "{ print 1 }")
	mustParse(t, "fn f() { return }")
	mustFail(t, "print 1 print 2")
}

func TestPrintAndReturn(t *testing.T) {
	prog := mustParse(t, "fn f() { print 1; return 2; }")
	fn := prog.Statements[0].(*ast.FnDecl)
	if _, ok := fn.Body[0].(*ast.PrintStmt); !ok {
		t.Errorf("got %T, want PrintStmt", fn.Body[0])
	}
	ret, ok := fn.Body[1].(*ast.ReturnStmt)
	if !ok || sexpr(ret.Value) != "2" {
		t.Errorf("got %#v, want return 2", fn.Body[1])
	}
}

func TestIfElse(t *testing.T) {
	prog := mustParse(t, "if (x > 1) print 1; else { print 2; }")
	stmt, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("got %T, want IfStmt", prog.Statements[0])
	}
	if sexpr(stmt.Cond) != "(> x 1)" {
		t.Errorf("got cond %s", sexpr(stmt.Cond))
	}
	if _, ok := stmt.Else.(*ast.BlockStmt); !ok {
		t.Errorf("got else %T, want BlockStmt", stmt.Else)
	}
}

func TestWhile(t *testing.T) {
	prog := mustParse(t, "while (i < 3) i = i + 1;")
	w, ok := prog.Statements[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("got %T, want WhileStmt", prog.Statements[0])
	}
	if sexpr(w.Cond) != "(< i 3)" {
		t.Errorf("got cond %s", sexpr(w.Cond))
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	prog := mustParse(t, "for (var i = 0; i < 3; i++) { print i; }")
	outer, ok := prog.Statements[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("got %T, want BlockStmt", prog.Statements[0])
	}
	if len(outer.Stmts) != 2 {
		t.Fatalf("expected init + while, got %d statements", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ast.VarStmt); !ok {
		t.Errorf("got init %T, want VarStmt", outer.Stmts[0])
	}
	loop, ok := outer.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("got %T, want WhileStmt", outer.Stmts[1])
	}
	body, ok := loop.Body.(*ast.BlockStmt)
	if !ok || len(body.Stmts) != 2 {
		t.Fatalf("expected body + increment block, got %#v", loop.Body)
	}
	incr := body.Stmts[1].(*ast.ExprStmt)
	if sexpr(incr.Expr) != "(= i (+ i 1))" {
		t.Errorf("got increment %s", sexpr(incr.Expr))
	}
}

func TestForEmptyClauses(t *testing.T) {
	prog := mustParse(t, "for (;;) print 1;")
	outer := prog.Statements[0].(*ast.BlockStmt)
	if len(outer.Stmts) != 1 {
		t.Fatalf("expected only the loop, got %d statements", len(outer.Stmts))
	}
	loop := outer.Stmts[0].(*ast.WhileStmt)
	if sexpr(loop.Cond) != "true" {
		t.Errorf("got cond %s, want true", sexpr(loop.Cond))
	}
}

func TestFnDecl(t *testing.T) {
	prog := mustParse(t, "fn add(a, b) { return a + b; }")
	fn, ok := prog.Statements[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("got %T, want FnDecl", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.Short {
		t.Errorf("got %#v", fn)
	}
}

func TestShortFnDecl(t *testing.T) {
	prog := mustParse(t, "fn sq(x) = x^2;")
	fn := prog.Statements[0].(*ast.FnDecl)
	if !fn.Short || len(fn.Body) != 1 {
		t.Fatalf("got %#v, want short form with one statement", fn)
	}
	es, ok := fn.Body[0].(*ast.ExprStmt)
	if !ok || sexpr(es.Expr) != "(^ x 2)" {
		t.Errorf("got %#v, want expression x^2", fn.Body[0])
	}
}

func TestClassDecl(t *testing.T) {
	prog := mustParse(t, `class Point {
		def(x, y) { this.x = x; this.y = y; }
		fn norm2() = this.x^2 + this.y^2;
	}`)
	cls, ok := prog.Statements[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("got %T, want ClassDecl", prog.Statements[0])
	}
	if cls.Name != "Point" || len(cls.Methods) != 2 {
		t.Fatalf("got %#v", cls)
	}
	if cls.Methods[0].Name != "def" || !cls.Methods[1].Short {
		t.Errorf("got methods %q, %q", cls.Methods[0].Name, cls.Methods[1].Name)
	}
}

// ---- 8. Errors ----

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src   string
		phase string
	}{
		{"f(1, 2;", "parsing a function call"},
		{"var = 1;", "parsing a variable declaration"},
		{"fn (x) {}", "parsing a function declaration"},
		{"class { }", "parsing a class declaration"},
		{"if x > 1 print x;", "parsing an if statement"},
		{"while (x print x;", "parsing a while loop"},
		{"for (x = 0) {}", "parsing an expression statement"},
		{"v[1;", "parsing an index"},
		{"p.;", "parsing a property access"},
		{"*;", "parsing an expression"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d := mustFail(t, tt.src)
			if d.Kind != diagnostics.SyntaxError {
				t.Errorf("got kind %q, want %q", d.Kind, diagnostics.SyntaxError)
			}
			if d.Phase != tt.phase {
				t.Errorf("got phase %q, want %q", d.Phase, tt.phase)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	d := mustFail(t, "var x = 1;\nprint (x;")
	if d.Span.Line != 2 || d.Span.Column != 8 {
		t.Errorf("got %+v, want line 2, column 8", d.Span)
	}
	want := "On line 2, column 8, while parsing a parenthesized expression, a syntax-error occurred: expected ')', got ';'"
	if d.Report() != want {
		t.Errorf("got %q\nwant %q", d.Report(), want)
	}
}

func TestLexicalErrorsPassThrough(t *testing.T) {
	d := mustFail(t, `print "open`)
	if d.Kind != diagnostics.LexicalError {
		t.Errorf("got kind %q, want lexical-error", d.Kind)
	}
}

func TestIncomplete(t *testing.T) {
	for _, src := range []string{"fn f() {", "print 1 +", "class A { def() { ", "(1, 2"} {
		_, err := parser.Parse(src)
		if !parser.IsIncomplete(err) {
			t.Errorf("%q: expected incomplete error, got %v", src, err)
		}
	}
	_, err := parser.Parse("print )")
	if parser.IsIncomplete(err) {
		t.Error("a bad token mid-input is not incomplete")
	}
}
