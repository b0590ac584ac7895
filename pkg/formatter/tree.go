package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/woven-lang/woven/pkg/ast"
)

// Tree renders program as an indented parse tree, one node per line:
// the node kind, its payload if any, and its line:column.
func Tree(program *ast.Program) string {
	var sb strings.Builder
	t := &treeWriter{sb: &sb}
	t.line(0, program, "")
	for _, s := range program.Statements {
		t.stmt(1, s)
	}
	return sb.String()
}

type treeWriter struct {
	sb *strings.Builder
}

func (t *treeWriter) line(depth int, n ast.Node, label string) {
	t.sb.WriteString(strings.Repeat(indent, depth))
	t.sb.WriteString(n.Kind())
	if label != "" {
		t.sb.WriteString(" ")
		t.sb.WriteString(label)
	}
	span := n.NodeSpan()
	fmt.Fprintf(t.sb, " @%d:%d\n", span.Line, span.Column)
}

// note writes an unlabeled marker line for an optional child slot.
func (t *treeWriter) note(depth int, text string) {
	t.sb.WriteString(strings.Repeat(indent, depth))
	t.sb.WriteString(text)
	t.sb.WriteString("\n")
}

func (t *treeWriter) stmt(depth int, s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		t.line(depth, stmt, "")
		t.expr(depth+1, stmt.Expr)
	case *ast.PrintStmt:
		t.line(depth, stmt, "")
		t.expr(depth+1, stmt.Value)
	case *ast.VarStmt:
		t.line(depth, stmt, stmt.Name)
		if stmt.Init != nil {
			t.expr(depth+1, stmt.Init)
		}
	case *ast.ReturnStmt:
		t.line(depth, stmt, "")
		if stmt.Value != nil {
			t.expr(depth+1, stmt.Value)
		}
	case *ast.BlockStmt:
		t.line(depth, stmt, "")
		for _, inner := range stmt.Stmts {
			t.stmt(depth+1, inner)
		}
	case *ast.IfStmt:
		t.line(depth, stmt, "")
		t.expr(depth+1, stmt.Cond)
		t.note(depth+1, "then")
		t.stmt(depth+2, stmt.Then)
		if stmt.Else != nil {
			t.note(depth+1, "else")
			t.stmt(depth+2, stmt.Else)
		}
	case *ast.WhileStmt:
		t.line(depth, stmt, "")
		t.expr(depth+1, stmt.Cond)
		t.stmt(depth+1, stmt.Body)
	case *ast.FnDecl:
		t.fn(depth, stmt)
	case *ast.ClassDecl:
		t.line(depth, stmt, stmt.Name)
		for _, m := range stmt.Methods {
			t.fn(depth+1, m)
		}
	}
}

func (t *treeWriter) fn(depth int, fn *ast.FnDecl) {
	label := fn.Name + "(" + strings.Join(fn.Params, ", ") + ")"
	if fn.Short {
		label += " short"
	}
	t.line(depth, fn, label)
	for _, s := range fn.Body {
		t.stmt(depth+1, s)
	}
}

func (t *treeWriter) expr(depth int, e ast.Expr) {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		t.line(depth, expr, strconv.FormatInt(expr.Value, 10))
	case *ast.FloatLiteral:
		t.line(depth, expr, strconv.FormatFloat(expr.Value, 'g', -1, 64))
	case *ast.FractionLiteral, *ast.SciLiteral:
		t.line(depth, expr, formatExpr(expr, 0))
	case *ast.StrLiteral:
		t.line(depth, expr, strconv.Quote(expr.Value))
	case *ast.BoolLiteral:
		t.line(depth, expr, strconv.FormatBool(expr.Value))
	case *ast.NilLiteral, *ast.ThisExpr:
		t.line(depth, expr, "")
	case *ast.Variable:
		t.line(depth, expr, expr.Name)
	case *ast.AssignExpr:
		t.line(depth, expr, expr.Name)
		t.expr(depth+1, expr.Value)
	case *ast.GroupExpr:
		t.line(depth, expr, "")
		t.expr(depth+1, expr.Inner)
	case *ast.LogicalExpr:
		t.line(depth, expr, string(expr.Op))
		t.expr(depth+1, expr.Left)
		t.expr(depth+1, expr.Right)
	case *ast.BinaryExpr:
		t.line(depth, expr, string(expr.Op))
		t.expr(depth+1, expr.Left)
		t.expr(depth+1, expr.Right)
	case *ast.UnaryExpr:
		t.line(depth, expr, string(expr.Op))
		t.expr(depth+1, expr.Operand)
	case *ast.CallExpr:
		t.line(depth, expr, "")
		t.expr(depth+1, expr.Callee)
		for _, a := range expr.Args {
			t.expr(depth+1, a)
		}
	case *ast.GetExpr:
		t.line(depth, expr, expr.Name)
		t.expr(depth+1, expr.Object)
	case *ast.SetExpr:
		t.line(depth, expr, expr.Name)
		t.expr(depth+1, expr.Object)
		t.expr(depth+1, expr.Value)
	case *ast.IndexExpr:
		t.line(depth, expr, "")
		t.expr(depth+1, expr.Object)
		t.expr(depth+1, expr.Index)
	case *ast.TupleExpr:
		t.line(depth, expr, "")
		for _, el := range expr.Elements {
			t.expr(depth+1, el)
		}
	case *ast.VectorExpr:
		t.line(depth, expr, "")
		for _, el := range expr.Elements {
			t.expr(depth+1, el)
		}
	case *ast.MatrixExpr:
		t.line(depth, expr, "")
		for _, row := range expr.Rows {
			t.expr(depth+1, row)
		}
	}
}
