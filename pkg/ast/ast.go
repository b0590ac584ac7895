// Package ast defines the Woven language AST node types.
package ast

// Span is the source position of a node: 1-based line, 0-based column.
type Span struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary arithmetic or relational operator.
type BinaryOp string

const (
	OpAdd     BinaryOp = "+"
	OpSub     BinaryOp = "-"
	OpMul     BinaryOp = "*"
	OpDiv     BinaryOp = "/"
	OpPow     BinaryOp = "^"
	OpPercent BinaryOp = "%"
	OpRem     BinaryOp = "rem"
	OpMod     BinaryOp = "mod"
	OpIntDiv  BinaryOp = "div"
	OpGt      BinaryOp = ">"
	OpLt      BinaryOp = "<"
	OpGtEq    BinaryOp = ">="
	OpLtEq    BinaryOp = "<="
	OpEqEq    BinaryOp = "=="
	OpNeq     BinaryOp = "!="
)

// LogicalOp represents a short-circuit-free logical operator.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpXor LogicalOp = "xor"
)

// UnaryOp represents a prefix or postfix unary operator.
type UnaryOp string

const (
	OpNeg       UnaryOp = "-"
	OpPlus      UnaryOp = "+"
	OpNot       UnaryOp = "not"
	OpFactorial UnaryOp = "!"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}

// FractionLiteral is an exact fraction written as `num|den`.
type FractionLiteral struct {
	Span Span
	Num  int64
	Den  int64
}

func (n *FractionLiteral) Kind() string   { return "FractionLiteral" }
func (n *FractionLiteral) NodeSpan() Span { return n.Span }
func (n *FractionLiteral) exprNode()      {}

// SciLiteral is a number written as `base E exp`.
type SciLiteral struct {
	Span Span
	Base float64
	Exp  int
}

func (n *SciLiteral) Kind() string   { return "SciLiteral" }
func (n *SciLiteral) NodeSpan() Span { return n.Span }
func (n *SciLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type NilLiteral struct {
	Span Span
}

func (n *NilLiteral) Kind() string   { return "NilLiteral" }
func (n *NilLiteral) NodeSpan() Span { return n.Span }
func (n *NilLiteral) exprNode()      {}

// --- Variables ---

type Variable struct {
	Span Span
	Name string
}

func (n *Variable) Kind() string   { return "Variable" }
func (n *Variable) NodeSpan() Span { return n.Span }
func (n *Variable) exprNode()      {}

type AssignExpr struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *AssignExpr) Kind() string   { return "AssignExpr" }
func (n *AssignExpr) NodeSpan() Span { return n.Span }
func (n *AssignExpr) exprNode()      {}

type ThisExpr struct {
	Span Span
}

func (n *ThisExpr) Kind() string   { return "ThisExpr" }
func (n *ThisExpr) NodeSpan() Span { return n.Span }
func (n *ThisExpr) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type LogicalExpr struct {
	Span  Span
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (n *LogicalExpr) Kind() string   { return "LogicalExpr" }
func (n *LogicalExpr) NodeSpan() Span { return n.Span }
func (n *LogicalExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type GroupExpr struct {
	Span  Span
	Inner Expr
}

func (n *GroupExpr) Kind() string   { return "GroupExpr" }
func (n *GroupExpr) NodeSpan() Span { return n.Span }
func (n *GroupExpr) exprNode()      {}

// --- Calls and objects ---

type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

type GetExpr struct {
	Span   Span
	Object Expr
	Name   string
}

func (n *GetExpr) Kind() string   { return "GetExpr" }
func (n *GetExpr) NodeSpan() Span { return n.Span }
func (n *GetExpr) exprNode()      {}

type SetExpr struct {
	Span   Span
	Object Expr
	Name   string
	Value  Expr
}

func (n *SetExpr) Kind() string   { return "SetExpr" }
func (n *SetExpr) NodeSpan() Span { return n.Span }
func (n *SetExpr) exprNode()      {}

// --- Collections ---

type TupleExpr struct {
	Span     Span
	Elements []Expr
}

func (n *TupleExpr) Kind() string   { return "TupleExpr" }
func (n *TupleExpr) NodeSpan() Span { return n.Span }
func (n *TupleExpr) exprNode()      {}

type VectorExpr struct {
	Span     Span
	Elements []Expr
}

func (n *VectorExpr) Kind() string   { return "VectorExpr" }
func (n *VectorExpr) NodeSpan() Span { return n.Span }
func (n *VectorExpr) exprNode()      {}

// MatrixExpr is a vector literal that contained at least one nested vector literal.
type MatrixExpr struct {
	Span Span
	Rows []Expr
}

func (n *MatrixExpr) Kind() string   { return "MatrixExpr" }
func (n *MatrixExpr) NodeSpan() Span { return n.Span }
func (n *MatrixExpr) exprNode()      {}

type IndexExpr struct {
	Span   Span
	Object Expr
	Index  Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// --- Statements ---

type PrintStmt struct {
	Span  Span
	Value Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

type VarStmt struct {
	Span Span
	Name string
	Init Expr // nil when declared without initializer
}

func (n *VarStmt) Kind() string   { return "VarStmt" }
func (n *VarStmt) NodeSpan() Span { return n.Span }
func (n *VarStmt) stmtNode()      {}

type BlockStmt struct {
	Span  Span
	Stmts []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

type ReturnStmt struct {
	Span  Span
	Value Expr // nil for a bare return
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// FnDecl declares a named function. Short is set for the `fn f(x) = expr;` form,
// whose Body is a single ExprStmt yielding the value.
type FnDecl struct {
	Span   Span
	Name   string
	Params []string
	Body   []Stmt
	Short  bool
}

func (n *FnDecl) Kind() string   { return "FnDecl" }
func (n *FnDecl) NodeSpan() Span { return n.Span }
func (n *FnDecl) stmtNode()      {}

type ClassDecl struct {
	Span    Span
	Name    string
	Methods []*FnDecl
}

func (n *ClassDecl) Kind() string   { return "ClassDecl" }
func (n *ClassDecl) NodeSpan() Span { return n.Span }
func (n *ClassDecl) stmtNode()      {}

type IfStmt struct {
	Span Span
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body Stmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
