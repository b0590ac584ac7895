package algebra

import "strings"

// Precedence levels used to decide parentheses when rendering.
const (
	precRelation = iota + 1
	precSum
	precProduct
	precNegative
	precPower
	precFactorial
	precAtom
)

func precedence(u Expr) int {
	switch e := u.(type) {
	case *Relation:
		return precRelation
	case *Sum, *Difference:
		return precSum
	case *Product, *Quotient:
		return precProduct
	case *Power:
		return precPower
	case *Factorial:
		return precFactorial
	case *Int:
		if e.Value.Sign() < 0 {
			return precNegative
		}
	case *Fraction:
		if e.Num.Sign() < 0 {
			return precNegative
		}
	}
	return precAtom
}

// String renders u in Woven expression syntax. Relations use the algebra
// parser's `=`.
func String(u Expr) string {
	var b strings.Builder
	write(&b, u)
	return b.String()
}

func write(b *strings.Builder, u Expr) {
	switch e := u.(type) {
	case *Int:
		b.WriteString(e.Value.String())
	case *Fraction:
		b.WriteString(e.Num.String())
		b.WriteByte('|')
		b.WriteString(e.Den.String())
	case *Sym:
		b.WriteString(e.Name)
	case *Undefined:
		b.WriteString("undefined")
	case *Sum:
		writeJoined(b, e.Args, " + ", precSum)
	case *Product:
		writeJoined(b, e.Args, " * ", precProduct)
	case *Difference:
		writeOperand(b, e.Left, precSum)
		b.WriteString(" - ")
		writeOperand(b, e.Right, precSum+1)
	case *Quotient:
		writeOperand(b, e.Left, precProduct)
		b.WriteString(" / ")
		writeOperand(b, e.Right, precProduct+1)
	case *Power:
		writeOperand(b, e.Base, precPower+1)
		b.WriteString("^")
		writeOperand(b, e.Exp, precPower)
	case *Factorial:
		writeOperand(b, e.Arg, precAtom)
		b.WriteString("!")
	case *FunctionForm:
		b.WriteString(e.Name)
		b.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, a)
		}
		b.WriteByte(')')
	case *Relation:
		writeOperand(b, e.Left, precRelation+1)
		b.WriteString(" " + e.Op + " ")
		writeOperand(b, e.Right, precRelation+1)
	}
}

// writeJoined renders the operands of an n-ary node. Later operands at the
// node's own level are parenthesized so the text parses back to the same tree.
func writeJoined(b *strings.Builder, args []Expr, sep string, level int) {
	for i, a := range args {
		if i == 0 {
			writeOperand(b, a, level)
			continue
		}
		b.WriteString(sep)
		writeOperand(b, a, level+1)
	}
}

// writeOperand parenthesizes u when it binds more loosely than min.
func writeOperand(b *strings.Builder, u Expr, min int) {
	if precedence(u) < min {
		b.WriteByte('(')
		write(b, u)
		b.WriteByte(')')
		return
	}
	write(b, u)
}
