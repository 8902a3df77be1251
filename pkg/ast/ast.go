// Package ast defines the BlockScript syntax tree.
//
// The tree has two sealed node families: Operation (expressions that yield a
// value) and Statement (instructions executed for effect). Every node carries
// the Span it was parsed from so runtime errors can point back at source.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// To returns a span covering s through end.
func (s Span) To(end Span) Span {
	return Span{
		File:      s.File,
		StartLine: s.StartLine,
		StartCol:  s.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp is an arithmetic operator.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
)

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq   CompareOp = "=="
	OpNeq  CompareOp = "!="
	OpLt   CompareOp = "<"
	OpGt   CompareOp = ">"
	OpLtEq CompareOp = "<="
	OpGtEq CompareOp = ">="
)

// LogicalOp is a boolean connective.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "not"
)

// UnaryOp is a prefix sign operator.
type UnaryOp string

const (
	OpPos UnaryOp = "+"
	OpNeg UnaryOp = "-"
)

// --- Operation is the interface for all expression nodes ---

type Operation interface {
	Node
	operationNode() // sealed marker
}

// --- Statement is the interface for all statement nodes ---

type Statement interface {
	Node
	statementNode() // sealed marker
}

// --- Literals ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) operationNode() {}

type DoubleLiteral struct {
	Span  Span
	Value float64
}

func (n *DoubleLiteral) Kind() string   { return "DoubleLiteral" }
func (n *DoubleLiteral) NodeSpan() Span { return n.Span }
func (n *DoubleLiteral) operationNode() {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) operationNode() {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) operationNode() {}

// ArrayLiteral is `[a, b, c]`. Its element type is decided by the
// declaration or parameter it is bound to.
type ArrayLiteral struct {
	Span     Span
	Elements []Operation
}

func (n *ArrayLiteral) Kind() string   { return "ArrayLiteral" }
func (n *ArrayLiteral) NodeSpan() Span { return n.Span }
func (n *ArrayLiteral) operationNode() {}

// --- References and operators ---

type VariableRef struct {
	Span Span
	Name string
}

func (n *VariableRef) Kind() string   { return "VariableRef" }
func (n *VariableRef) NodeSpan() Span { return n.Span }
func (n *VariableRef) operationNode() {}

type Unary struct {
	Span    Span
	Op      UnaryOp
	Operand Operation
}

func (n *Unary) Kind() string   { return "Unary" }
func (n *Unary) NodeSpan() Span { return n.Span }
func (n *Unary) operationNode() {}

type Binary struct {
	Span  Span
	Op    BinaryOp
	Left  Operation
	Right Operation
}

func (n *Binary) Kind() string   { return "Binary" }
func (n *Binary) NodeSpan() Span { return n.Span }
func (n *Binary) operationNode() {}

type Comparison struct {
	Span  Span
	Op    CompareOp
	Left  Operation
	Right Operation
}

func (n *Comparison) Kind() string   { return "Comparison" }
func (n *Comparison) NodeSpan() Span { return n.Span }
func (n *Comparison) operationNode() {}

// Logical covers and/or/not. For OpNot only Left is set.
type Logical struct {
	Span  Span
	Op    LogicalOp
	Left  Operation
	Right Operation
}

func (n *Logical) Kind() string   { return "Logical" }
func (n *Logical) NodeSpan() Span { return n.Span }
func (n *Logical) operationNode() {}

type ArrayElement struct {
	Span  Span
	Array Operation
	Index Operation
}

func (n *ArrayElement) Kind() string   { return "ArrayElement" }
func (n *ArrayElement) NodeSpan() Span { return n.Span }
func (n *ArrayElement) operationNode() {}

type FunctionCall struct {
	Span Span
	Name string
	Args []Operation
}

func (n *FunctionCall) Kind() string   { return "FunctionCall" }
func (n *FunctionCall) NodeSpan() Span { return n.Span }
func (n *FunctionCall) operationNode() {}

type MethodCall struct {
	Span     Span
	Receiver Operation
	Method   string
	Args     []Operation
}

func (n *MethodCall) Kind() string   { return "MethodCall" }
func (n *MethodCall) NodeSpan() Span { return n.Span }
func (n *MethodCall) operationNode() {}

// AssignOp is assignment used as an expression. Target is a VariableRef or
// an ArrayElement chain rooted at a VariableRef.
type AssignOp struct {
	Span   Span
	Target Operation
	Value  Operation
}

func (n *AssignOp) Kind() string   { return "AssignOp" }
func (n *AssignOp) NodeSpan() Span { return n.Span }
func (n *AssignOp) operationNode() {}

// --- Statements ---

// Program is the root node.
type Program struct {
	Span       Span
	Statements []Statement
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }

// Declaration is `name: Type [= init]`. Init is nil when absent.
type Declaration struct {
	Span Span
	Name string
	Type VariableType
	Init Operation
}

func (n *Declaration) Kind() string   { return "Declaration" }
func (n *Declaration) NodeSpan() Span { return n.Span }
func (n *Declaration) statementNode() {}

type Assignment struct {
	Span  Span
	Name  string
	Value Operation
}

func (n *Assignment) Kind() string   { return "Assignment" }
func (n *Assignment) NodeSpan() Span { return n.Span }
func (n *Assignment) statementNode() {}

type ArrayElementAssignment struct {
	Span  Span
	Name  string
	Index Operation
	Value Operation
}

func (n *ArrayElementAssignment) Kind() string   { return "ArrayElementAssignment" }
func (n *ArrayElementAssignment) NodeSpan() Span { return n.Span }
func (n *ArrayElementAssignment) statementNode() {}

type Block struct {
	Span       Span
	Statements []Statement
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) statementNode() {}

// CondBranch is one `if`/`elif` arm.
type CondBranch struct {
	Span Span
	Cond Operation
	Body *Block
}

// IfElse holds its arms in source order. Else is nil when absent.
type IfElse struct {
	Span     Span
	Branches []CondBranch
	Else     *Block
}

func (n *IfElse) Kind() string   { return "IfElse" }
func (n *IfElse) NodeSpan() Span { return n.Span }
func (n *IfElse) statementNode() {}

// ForLoop is `for init; cond; step { body }`. Any of Init, Cond and Step
// may be nil; a nil Cond loops until break or return.
type ForLoop struct {
	Span Span
	Init Statement
	Cond Operation
	Step Statement
	Body *Block
}

func (n *ForLoop) Kind() string   { return "ForLoop" }
func (n *ForLoop) NodeSpan() Span { return n.Span }
func (n *ForLoop) statementNode() {}

type WhileLoop struct {
	Span Span
	Cond Operation
	Body *Block
}

func (n *WhileLoop) Kind() string   { return "WhileLoop" }
func (n *WhileLoop) NodeSpan() Span { return n.Span }
func (n *WhileLoop) statementNode() {}

type Break struct {
	Span Span
}

func (n *Break) Kind() string   { return "Break" }
func (n *Break) NodeSpan() Span { return n.Span }
func (n *Break) statementNode() {}

type Continue struct {
	Span Span
}

func (n *Continue) Kind() string   { return "Continue" }
func (n *Continue) NodeSpan() Span { return n.Span }
func (n *Continue) statementNode() {}

// Return carries an optional value; Value is nil for a bare `return`.
type Return struct {
	Span  Span
	Value Operation
}

func (n *Return) Kind() string   { return "Return" }
func (n *Return) NodeSpan() Span { return n.Span }
func (n *Return) statementNode() {}

type Print struct {
	Span  Span
	Value Operation
}

func (n *Print) Kind() string   { return "Print" }
func (n *Print) NodeSpan() Span { return n.Span }
func (n *Print) statementNode() {}

// Param is one declared function parameter.
type Param struct {
	Span Span
	Name string
	Type VariableType
}

type FunctionDeclaration struct {
	Span   Span
	Name   string
	Params []Param
	Body   *Block
}

func (n *FunctionDeclaration) Kind() string   { return "FunctionDeclaration" }
func (n *FunctionDeclaration) NodeSpan() Span { return n.Span }
func (n *FunctionDeclaration) statementNode() {}

// ExpressionStatement evaluates an operation and discards its value.
type ExpressionStatement struct {
	Span Span
	Expr Operation
}

func (n *ExpressionStatement) Kind() string   { return "ExpressionStatement" }
func (n *ExpressionStatement) NodeSpan() Span { return n.Span }
func (n *ExpressionStatement) statementNode() {}
