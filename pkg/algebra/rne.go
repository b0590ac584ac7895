package algebra

import "math/big"

const (
	simplifyPhase = "simplifying a rational number expression"
	arithPhase    = "performing rational arithmetic"
)

// maxExponent bounds integer powers so a typo cannot exhaust memory.
const maxExponent = 1 << 16

// maxPowerBits bounds the estimated bit length of a power's numerator and
// denominator.
const maxPowerBits = 1 << 22

// IsRNE reports whether u is a rational number expression: an integer, a
// fraction, a unary or binary sum, a binary difference, product or
// quotient of RNEs, or an RNE raised to an integer power.
func IsRNE(u Expr) bool {
	switch e := u.(type) {
	case *Int, *Fraction:
		return true
	case *Sum:
		if len(e.Args) != 1 && len(e.Args) != 2 {
			return false
		}
		return allRNE(e.Args)
	case *Product:
		return len(e.Args) == 2 && allRNE(e.Args)
	case *Difference:
		return IsRNE(e.Left) && IsRNE(e.Right)
	case *Quotient:
		return IsRNE(e.Left) && IsRNE(e.Right)
	case *Power:
		_, intExp := e.Exp.(*Int)
		return intExp && IsRNE(e.Base)
	}
	return false
}

func allRNE(args []Expr) bool {
	for _, a := range args {
		if !IsRNE(a) {
			return false
		}
	}
	return true
}

// SimplifyRNE reduces a rational number expression to a reduced Int or
// Fraction.
func SimplifyRNE(u Expr) (Expr, error) {
	if !IsRNE(u) {
		return nil, errorf(simplifyPhase, "%s is not a rational number expression", String(u))
	}
	v, err := simplifyRNE(u)
	if err != nil {
		return nil, err
	}
	return SimplifyRationalNumber(v)
}

func simplifyRNE(u Expr) (Expr, error) {
	switch e := u.(type) {
	case *Int:
		return e, nil
	case *Fraction:
		if e.Den.Sign() == 0 {
			return nil, errorf(simplifyPhase, "fraction %s has a zero denominator", String(e))
		}
		return e, nil
	case *Sum:
		if len(e.Args) == 1 {
			return simplifyRNE(e.Args[0])
		}
		return simplifyBinary(e.Args[0], e.Args[1], RatSum)
	case *Difference:
		return simplifyBinary(e.Left, e.Right, RatDiff)
	case *Product:
		return simplifyBinary(e.Args[0], e.Args[1], RatProd)
	case *Quotient:
		return simplifyBinary(e.Left, e.Right, RatQuot)
	case *Power:
		base, err := simplifyRNE(e.Base)
		if err != nil {
			return nil, err
		}
		return RatPow(base, e.Exp.(*Int).Value)
	}
	return nil, errorf(simplifyPhase, "%s is not a rational number expression", String(u))
}

func simplifyBinary(l, r Expr, op func(v, w Expr) (Expr, error)) (Expr, error) {
	v, err := simplifyRNE(l)
	if err != nil {
		return nil, err
	}
	w, err := simplifyRNE(r)
	if err != nil {
		return nil, err
	}
	return op(v, w)
}

// SimplifyRationalNumber reduces an Int or Fraction by the GCD of its parts
// and moves the sign to the numerator. A whole result collapses to an Int.
func SimplifyRationalNumber(u Expr) (Expr, error) {
	switch e := u.(type) {
	case *Int:
		return e, nil
	case *Fraction:
		if e.Den.Sign() == 0 {
			return nil, errorf(simplifyPhase, "fraction %s has a zero denominator", String(e))
		}
		g := new(big.Int).GCD(nil, nil, e.Num, e.Den)
		num := new(big.Int).Quo(e.Num, g)
		den := new(big.Int).Quo(e.Den, g)
		if den.Sign() < 0 {
			num.Neg(num)
			den.Neg(den)
		}
		if den.Cmp(big.NewInt(1)) == 0 {
			return &Int{Value: num}, nil
		}
		return &Fraction{Num: num, Den: den}, nil
	}
	return nil, errorf(simplifyPhase, "%s is not an integer or fraction", String(u))
}

// NumerOf returns the numerator of an Int or Fraction.
func NumerOf(u Expr) (*big.Int, error) {
	switch e := u.(type) {
	case *Int:
		return e.Value, nil
	case *Fraction:
		return e.Num, nil
	}
	return nil, errorf(arithPhase, "%s has no numerator", String(u))
}

// DenomOf returns the denominator of an Int or Fraction.
func DenomOf(u Expr) (*big.Int, error) {
	switch e := u.(type) {
	case *Int:
		return big.NewInt(1), nil
	case *Fraction:
		return e.Den, nil
	}
	return nil, errorf(arithPhase, "%s has no denominator", String(u))
}

func parts(v, w Expr) (vn, vd, wn, wd *big.Int, err error) {
	if vn, err = NumerOf(v); err != nil {
		return
	}
	if vd, err = DenomOf(v); err != nil {
		return
	}
	if wn, err = NumerOf(w); err != nil {
		return
	}
	wd, err = DenomOf(w)
	return
}

func mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// RatSum returns v + w as an unreduced Fraction.
func RatSum(v, w Expr) (Expr, error) {
	vn, vd, wn, wd, err := parts(v, w)
	if err != nil {
		return nil, err
	}
	num := new(big.Int).Add(mul(vn, wd), mul(wn, vd))
	return &Fraction{Num: num, Den: mul(vd, wd)}, nil
}

// RatDiff returns v - w as an unreduced Fraction.
func RatDiff(v, w Expr) (Expr, error) {
	vn, vd, wn, wd, err := parts(v, w)
	if err != nil {
		return nil, err
	}
	num := new(big.Int).Sub(mul(vn, wd), mul(wn, vd))
	return &Fraction{Num: num, Den: mul(vd, wd)}, nil
}

// RatProd returns v * w as an unreduced Fraction.
func RatProd(v, w Expr) (Expr, error) {
	vn, vd, wn, wd, err := parts(v, w)
	if err != nil {
		return nil, err
	}
	return &Fraction{Num: mul(vn, wn), Den: mul(vd, wd)}, nil
}

// RatQuot returns v / w as an unreduced Fraction.
func RatQuot(v, w Expr) (Expr, error) {
	vn, vd, wn, wd, err := parts(v, w)
	if err != nil {
		return nil, err
	}
	if wn.Sign() == 0 {
		return nil, errorf(arithPhase, "division by zero")
	}
	return &Fraction{Num: mul(vn, wd), Den: mul(vd, wn)}, nil
}

// RatPow returns v raised to the integer n. A negative exponent takes the
// reciprocal first. A zero base needs a positive exponent.
func RatPow(v Expr, n *big.Int) (Expr, error) {
	num, err := NumerOf(v)
	if err != nil {
		return nil, err
	}
	den, err := DenomOf(v)
	if err != nil {
		return nil, err
	}
	if num.Sign() == 0 {
		if n.Sign() > 0 {
			return NewInt(0), nil
		}
		return nil, errorf(arithPhase, "0 raised to %s is undefined", n.String())
	}
	if n.Sign() == 0 {
		return NewInt(1), nil
	}
	if !n.IsInt64() || n.Int64() > maxExponent || n.Int64() < -maxExponent {
		return nil, errorf(arithPhase, "exponent %s is too large", n.String())
	}
	if n.Sign() < 0 {
		num, den = den, num
	}
	k := new(big.Int).Abs(n)
	if int64(max(num.BitLen(), den.BitLen())-1)*k.Int64() > maxPowerBits {
		return nil, errorf(arithPhase, "result of raising to %s is too large", n.String())
	}
	return &Fraction{
		Num: new(big.Int).Exp(num, k, nil),
		Den: new(big.Int).Exp(den, k, nil),
	}, nil
}

// FoldRNE replaces every rational number subexpression of u with its
// simplified value, and every one that cannot be simplified with
// Undefined. Sums and products whose operands all fold to numbers are
// combined as well.
func FoldRNE(u Expr) Expr {
	if IsRNE(u) {
		v, err := SimplifyRNE(u)
		if err != nil {
			return &Undefined{}
		}
		return v
	}
	switch e := u.(type) {
	case *Sum:
		return foldNary(foldAll(e.Args), RatSum, func(args []Expr) Expr { return &Sum{Args: args} })
	case *Product:
		return foldNary(foldAll(e.Args), RatProd, func(args []Expr) Expr { return &Product{Args: args} })
	case *Power:
		return foldPair(&Power{Base: FoldRNE(e.Base), Exp: FoldRNE(e.Exp)})
	case *Difference:
		return foldPair(&Difference{Left: FoldRNE(e.Left), Right: FoldRNE(e.Right)})
	case *Quotient:
		return foldPair(&Quotient{Left: FoldRNE(e.Left), Right: FoldRNE(e.Right)})
	case *Factorial:
		return &Factorial{Arg: FoldRNE(e.Arg)}
	case *FunctionForm:
		return &FunctionForm{Name: e.Name, Args: foldAll(e.Args)}
	case *Relation:
		return &Relation{Op: e.Op, Left: FoldRNE(e.Left), Right: FoldRNE(e.Right)}
	}
	return u
}

func foldAll(args []Expr) []Expr {
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = FoldRNE(a)
	}
	return out
}

// foldPair simplifies a binary node again once its operands are folded.
func foldPair(u Expr) Expr {
	if IsRNE(u) {
		if v, err := SimplifyRNE(u); err == nil {
			return v
		}
		return &Undefined{}
	}
	return u
}

// foldNary combines the numeric operands of an n-ary node. Symbolic
// operands keep their positions after the combined constant.
func foldNary(args []Expr, op func(v, w Expr) (Expr, error), build func([]Expr) Expr) Expr {
	var acc Expr
	var rest []Expr
	for _, a := range args {
		if !isNumber(a) {
			rest = append(rest, a)
			continue
		}
		if acc == nil {
			acc = a
			continue
		}
		combined, err := op(acc, a)
		if err != nil {
			return &Undefined{}
		}
		acc = combined
	}
	if acc == nil {
		return build(args)
	}
	acc, err := SimplifyRationalNumber(acc)
	if err != nil {
		return &Undefined{}
	}
	if len(rest) == 0 {
		return acc
	}
	return build(append([]Expr{acc}, rest...))
}
