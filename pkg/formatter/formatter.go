// Package formatter prints Woven ASTs back to canonical source and as
// indented parse trees.
package formatter

import (
	"strconv"
	"strings"

	"github.com/woven-lang/woven/pkg/ast"
)

const indent = "  "

// Precedence levels for expressions (higher = tighter binding).
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precCompare
	precSum
	precProduct
	precPrefix
	precPower
	precPostfix
	precAtom
)

var binaryPrecedence = map[ast.BinaryOp]int{
	ast.OpEqEq: precEquality, ast.OpNeq: precEquality,
	ast.OpGt: precCompare, ast.OpLt: precCompare, ast.OpGtEq: precCompare, ast.OpLtEq: precCompare,
	ast.OpAdd: precSum, ast.OpSub: precSum,
	ast.OpMul: precProduct, ast.OpDiv: precProduct, ast.OpPercent: precProduct,
	ast.OpRem: precProduct, ast.OpMod: precProduct, ast.OpIntDiv: precProduct,
	ast.OpPow: precPower,
}

func precedenceOf(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.AssignExpr, *ast.SetExpr:
		return precAssign
	case *ast.LogicalExpr:
		if expr.Op == ast.OpAnd {
			return precAnd
		}
		return precOr
	case *ast.BinaryExpr:
		return binaryPrecedence[expr.Op]
	case *ast.UnaryExpr:
		if expr.Op == ast.OpFactorial {
			return precPostfix
		}
		return precPrefix
	}
	return precAtom
}

// operand formats child, parenthesized when it binds looser than least.
func operand(child ast.Expr, least, depth int) string {
	s := formatExpr(child, depth)
	if precedenceOf(child) < least {
		return "(" + s + ")"
	}
	return s
}

// Format pretty-prints a Woven AST back to source code. For loops come
// back in their desugared block form since the tree no longer records them.
func Format(program *ast.Program) string {
	lines := make([]string, 0, len(program.Statements))
	for _, s := range program.Statements {
		lines = append(lines, formatStmt(s, 0))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains Woven comments (`---` line
// comments or `===` block comments) outside string literals. Format drops
// them.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case inString:
		case strings.HasPrefix(source[i:], "---"), strings.HasPrefix(source[i:], "==="):
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr, depth) + ";"
	case *ast.PrintStmt:
		return prefix + "print " + formatExpr(stmt.Value, depth) + ";"
	case *ast.VarStmt:
		if stmt.Init == nil {
			return prefix + "var " + stmt.Name + ";"
		}
		return prefix + "var " + stmt.Name + " = " + formatExpr(stmt.Init, depth) + ";"
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Value, depth) + ";"
	case *ast.BlockStmt:
		return prefix + formatBlock(stmt.Stmts, depth)
	case *ast.IfStmt:
		out := prefix + "if (" + formatExpr(stmt.Cond, depth) + ") " + formatBody(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatBody(stmt.Else, depth)
		}
		return out
	case *ast.WhileStmt:
		return prefix + "while (" + formatExpr(stmt.Cond, depth) + ") " + formatBody(stmt.Body, depth)
	case *ast.FnDecl:
		return prefix + formatFn(stmt, depth)
	case *ast.ClassDecl:
		if len(stmt.Methods) == 0 {
			return prefix + "class " + stmt.Name + " {}"
		}
		lines := make([]string, len(stmt.Methods))
		for i, m := range stmt.Methods {
			lines[i] = strings.Repeat(indent, depth+1) + formatFn(m, depth+1)
		}
		return prefix + "class " + stmt.Name + " {\n" + strings.Join(lines, "\n") + "\n" + prefix + "}"
	}
	return ""
}

// formatBody formats the statement following `if (...)`, `else` or
// `while (...)`, which continues the current line.
func formatBody(s ast.Stmt, depth int) string {
	switch body := s.(type) {
	case *ast.BlockStmt:
		return formatBlock(body.Stmts, depth)
	case *ast.IfStmt:
		return strings.TrimLeft(formatStmt(body, depth), " ")
	}
	return formatBlock([]ast.Stmt{s}, depth)
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatFn(fn *ast.FnDecl, depth int) string {
	head := "fn " + fn.Name + "(" + strings.Join(fn.Params, ", ") + ")"
	if fn.Short && len(fn.Body) == 1 {
		if es, ok := fn.Body[0].(*ast.ExprStmt); ok {
			return head + " = " + formatExpr(es.Expr, depth) + ";"
		}
	}
	return head + " " + formatBlock(fn.Body, depth)
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.FloatLiteral:
		return formatFloatLiteral(expr.Value)
	case *ast.FractionLiteral:
		return strconv.FormatInt(expr.Num, 10) + "|" + strconv.FormatInt(expr.Den, 10)
	case *ast.SciLiteral:
		return formatFloatLiteral(expr.Base) + "E" + strconv.Itoa(expr.Exp)
	case *ast.StrLiteral:
		return `"` + expr.Value + `"`
	case *ast.BoolLiteral:
		return strconv.FormatBool(expr.Value)
	case *ast.NilLiteral:
		return "nil"
	case *ast.ThisExpr:
		return "this"
	case *ast.Variable:
		return expr.Name
	case *ast.AssignExpr:
		return expr.Name + " = " + operand(expr.Value, precAssign, depth)
	case *ast.GroupExpr:
		return "(" + formatExpr(expr.Inner, depth) + ")"
	case *ast.LogicalExpr:
		prec := precedenceOf(expr)
		return operand(expr.Left, prec, depth) + " " + string(expr.Op) + " " + operand(expr.Right, prec+1, depth)
	case *ast.BinaryExpr:
		prec := precedenceOf(expr)
		if expr.Op == ast.OpPow {
			// Right-associative.
			return operand(expr.Left, prec+1, depth) + "^" + operand(expr.Right, prec, depth)
		}
		return operand(expr.Left, prec, depth) + " " + string(expr.Op) + " " + operand(expr.Right, prec+1, depth)
	case *ast.UnaryExpr:
		switch expr.Op {
		case ast.OpFactorial:
			return operand(expr.Operand, precPostfix, depth) + "!"
		case ast.OpNot:
			return "!" + operand(expr.Operand, precPrefix, depth)
		}
		inner := operand(expr.Operand, precPrefix, depth)
		if strings.HasPrefix(inner, "-") || strings.HasPrefix(inner, "+") {
			// Keep `- -x` from scanning as a decrement.
			inner = "(" + inner + ")"
		}
		return string(expr.Op) + inner
	case *ast.CallExpr:
		return operand(expr.Callee, precAtom, depth) + "(" + formatList(expr.Args, depth) + ")"
	case *ast.GetExpr:
		return operand(expr.Object, precAtom, depth) + "." + expr.Name
	case *ast.SetExpr:
		return operand(expr.Object, precAtom, depth) + "." + expr.Name + " = " + operand(expr.Value, precAssign, depth)
	case *ast.IndexExpr:
		return operand(expr.Object, precAtom, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.TupleExpr:
		return "(" + formatList(expr.Elements, depth) + ")"
	case *ast.VectorExpr:
		return "[" + formatList(expr.Elements, depth) + "]"
	case *ast.MatrixExpr:
		return "[" + formatList(expr.Rows, depth) + "]"
	}
	return ""
}

func formatList(items []ast.Expr, depth int) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = formatExpr(item, depth)
	}
	return strings.Join(parts, ", ")
}

// formatFloatLiteral writes a float in positional notation so the scanner
// reads it back as a float literal.
func formatFloatLiteral(value float64) string {
	raw := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw
}
