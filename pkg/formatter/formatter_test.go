package formatter_test

import (
	"strings"
	"testing"

	"github.com/woven-lang/woven/pkg/formatter"
	"github.com/woven-lang/woven/pkg/parser"
)

func format(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return formatter.Format(prog)
}

func TestFormatStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"var", "var   x=1;", "var x = 1;\n"},
		{"var without init", "var x;", "var x;\n"},
		{"print", "print x", "print x;\n"},
		{"expr", "f(1,2)", "f(1, 2);\n"},
		{"short fn", "fn sq(x)=x^2;", "fn sq(x) = x^2;\n"},
		{"block fn", "fn f(a,b){return a+b;}", "fn f(a, b) {\n  return a + b;\n}\n"},
		{"bare return", "fn f(){return;}", "fn f() {\n  return;\n}\n"},
		{"if else", "if (x) print 1; else print 2;",
			"if (x) {\n  print 1;\n} else {\n  print 2;\n}\n"},
		{"else if", "if (a) {print 1;} else if (b) {print 2;}",
			"if (a) {\n  print 1;\n} else if (b) {\n  print 2;\n}\n"},
		{"while", "while (i < 3) i = i + 1;", "while (i < 3) {\n  i = i + 1;\n}\n"},
		{"empty block", "{}", "{}\n"},
		{"class", "class P { def(x) { this.x = x; } fn get() = this.x; }",
			"class P {\n  fn def(x) {\n    this.x = x;\n  }\n  fn get() = this.x;\n}\n"},
		{"empty class", "class E {}", "class E {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(t, tt.src); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2*3", "1 + 2 * 3;\n"},
		{"(1+2)*3", "(1 + 2) * 3;\n"},
		{"a-(b-c)", "a - (b - c);\n"},
		{"2^3^2", "2^3^2;\n"},
		{"2x", "2 * x;\n"},
		{"-2^2", "-2^2;\n"},
		{"- -x", "-(-x);\n"},
		{"not x", "!x;\n"},
		{"5!", "5!;\n"},
		{"a and b or c", "a and b or c;\n"},
		{"x = y = 3", "x = y = 3;\n"},
		{"1|2 + 2.5", "1|2 + 2.5;\n"},
		{"1.5E3", "1.5E3;\n"},
		{"[1, 2][1]", "[1, 2][1];\n"},
		{"[[1,2],[3,4]]", "[[1, 2], [3, 4]];\n"},
		{"(1, \"a\")", "(1, \"a\");\n"},
		{"p.x = nil", "p.x = nil;\n"},
		{"7 rem 2 + 7 mod 2", "7 rem 2 + 7 mod 2;\n"},
		{"true == false", "true == false;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := format(t, tt.src); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatForLoopDesugars(t *testing.T) {
	got := format(t, "for (var i = 0; i < 2; i++) print i;")
	for _, part := range []string{"var i = 0;", "while (i < 2)", "print i;", "i = i + 1;"} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %q in:\n%s", part, got)
		}
	}
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"fn fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(10);",
		"class Counter { def() { this.n = 0; } fn inc() { this.n = this.n + 1; return this; } }",
		"var m = [[1, 2], [3, 4]]; print m[2][1] * -(3 - 1)^2;",
		"for (var i = 0; i < 3; i++) { print i; }",
	}
	for _, src := range sources {
		once := format(t, src)
		twice := format(t, once)
		if once != twice {
			t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"print 1; --- note", true},
		{"=== block ===\nprint 1;", true},
		{"print \"--- not a comment\";", false},
		{"x--;", false},
		{"print 1 == 2;", false},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.src); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestTree(t *testing.T) {
	prog, err := parser.Parse("var x = 1 + 2;\nprint x;")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Program @1:0",
		"  VarStmt x @1:0",
		"    BinaryExpr + @1:10",
		"      IntLiteral 1 @1:8",
		"      IntLiteral 2 @1:12",
		"  PrintStmt @2:0",
		"    Variable x @2:6",
		"",
	}, "\n")
	if got := formatter.Tree(prog); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestTreeFunctionsAndBranches(t *testing.T) {
	prog, err := parser.Parse("fn f(a) = a!; if (f(3)) print 1; else print 2;")
	if err != nil {
		t.Fatal(err)
	}
	got := formatter.Tree(prog)
	for _, part := range []string{"FnDecl f(a) short", "ExprStmt", "UnaryExpr !", "IfStmt", "  then\n", "  else\n", "CallExpr"} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %q in:\n%s", part, got)
		}
	}
}
