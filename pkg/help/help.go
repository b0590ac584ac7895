// Package help holds the text behind `woven help`.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/woven-lang/woven/pkg/stdlib"
)

// Version is the language version shown in the quick reference.
const Version = "v0.3"

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "types", "classes", "algebra", "stdlib", "diagnostics", "examples"}

// QUICKREF is printed by `woven help` without a topic.
var QUICKREF = `Woven ` + Version + ` quick reference

  var x = 2;              declare (let is the same)
  fn sq(x) = x^2;         short function
  fn f(a, b) { ... }      block function, return e;
  class P { def(x) { this.x = x; } }
  if (c) s else s   while (c) s   for (i; c; i++) s
  print 2x + 1|3;         implicit product, exact fraction

Commands: run, check, tokens, tree, fmt, simplify, plot, trace, config, repl, help

Topics (woven help <topic>):
  syntax        statements, operators and literals
  types         numbers, strings, vectors, matrices, tuples
  classes       classes, initializers and this
  algebra       exact rational simplification
  stdlib        native functions and constants
  diagnostics   error kinds and the report line
  examples      short complete programs
`

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `Syntax

Statements end with ';', which may be dropped before '}' or end of input.
  var name = expr;  let name = expr;   print expr;   return expr;
  { ... }   if (c) s else s   while (c) s   for (init; cond; incr) s
  fn name(a, b) { ... }   fn name(a) = expr;   class Name { ... }

Operators, loosest first:
  =                 assignment (right associative)
  or xor            logical, both sides always evaluated
  and
  == !=
  < <= > >=
  + -
  * / % rem mod div  % is percent-of: a % b = (a/100)*b
  2x                implicit product of a number and a name
  - + ! not         prefix
  ^                 power (right associative)
  ! ++ --           postfix factorial, increment, decrement
  f() a.b v[i]      call, property, 1-based index

Literals: 42  1_000_000  0b101  2.5  1|3  6.02E23  "text"  true  false  nil
Comments: --- to end of line, === block ===
`,
	"types": `Types

number    64-bit float; whole numbers print without a decimal point
string    "raw text", no escapes
bool      true, false
nil
vector    [1, 2, 3]; + - with vectors, * / with scalars, v * w is the dot product
matrix    [[1, 2], [3, 4]]; rows must have equal length
tuple     (1, "a"); (a, b) groups any values
function  fn values close over their defining scope
class     calling a class constructs an instance

Falsy values: false, nil, 0, NaN and "". Everything else is truthy.
Equality is structural; instances and functions compare by identity.
`,
	"classes": `Classes

  class Point {
    def(x, y) { this.x = x; this.y = y; }
    fn norm() = sqrt(this.x^2 + this.y^2);
  }
  var p = Point(3, 4);
  print p.norm();   --- 5

The method named def is the initializer; it receives the constructor
arguments and always returns the instance. The fn keyword is optional
inside a class body. Fields are created by assignment to this.name.
`,
	"algebra": `Algebra

simplify(s) parses s as an algebraic expression and reduces a rational
number expression (integers and fractions under + - * / and integer ^)
to a single exact integer or fraction:
  simplify("1|2 + 1|3")   5|6
  simplify("6/4")         3|2
  simplify("2^(-2)")      1|4

fold(s) simplifies every rational subexpression and keeps the rest:
  fold("2 * 3 * x")       6 * x

On the command line: woven simplify "1/3 + 1/6"
Division by zero and 0 raised to a non-positive power are errors.
`,
	"diagnostics": `Diagnostics

Every failure is reported on one line:
  On line L, column C, while <phase>, a <kind> occurred: <message>

Kinds:
  lexical-error    the scanner rejected a character, number or string
  syntax-error     the parser expected something else
  semantic-error   the resolver found an undefined or duplicate name
  runtime-error    evaluation or simplification failed

Lines count from 1 and columns from 0. Algebra errors have no position.
Exit codes: 0 ok, 1 usage or I/O error, 2 lexical/syntax/semantic, 4 runtime.
`,
	"examples": `Examples

  fn fib(n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
  }
  print fib(20);

  var m = [[2, 0], [1, 3]];
  print det(m);                 --- 6
  print transpose(m);

  fn counter() {
    var n = 0;
    fn next() { n = n + 1; return n; }
    return next;
  }
  var c = counter();
  c(); print c();               --- 2

  woven plot "f(x) = x^2 - 1" --from -2 --to 2 --samples 5
`,
}

func init() {
	Topics["stdlib"] = stdlibTopic()
}

func stdlibTopic() string {
	var sb strings.Builder
	sb.WriteString("Standard library\n\nConstants: ")
	names := make([]string, 0, len(stdlib.Constants))
	for name := range stdlib.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n\nFunctions are listed by `woven help stdlib --index`.\n")
	sb.WriteString("Arguments are checked by count and type; a failing call reports\n")
	sb.WriteString("\"while calling native function <name>\".\n")
	return sb.String()
}

// MatchTopic resolves an exact topic name or a unique prefix of one.
func MatchTopic(input string) (string, string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if content, ok := Topics[input]; ok {
		return input, content, nil
	}
	var matches []string
	if input != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, input) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", input)
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous help topic %q: %s", input, strings.Join(matches, ", "))
}

// StdlibIndex lists every registered native function with its arity.
func StdlibIndex() string {
	reg := stdlib.Default()
	names := reg.Names()
	var sb strings.Builder
	sb.WriteString("Native functions:\n")
	for _, name := range names {
		arity := "any"
		if n := reg.Get(name).Arity; n >= 0 {
			arity = fmt.Sprint(n)
		}
		fmt.Fprintf(&sb, "  %-10s %s\n", name, arity)
	}
	fmt.Fprintf(&sb, "\nTotal: %d functions\n", len(names))
	return sb.String()
}
