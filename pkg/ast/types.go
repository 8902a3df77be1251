package ast

// ScalarName names one of the non-array types.
type ScalarName string

const (
	TypeInt    ScalarName = "Int"
	TypeDouble ScalarName = "Double"
	TypeString ScalarName = "String"
	TypeBool   ScalarName = "Bool"
)

// VariableType is the syntactic type written in a declaration or parameter.
// Array sizes stay unevaluated here; the evaluator resolves them when the
// declaration runs.
type VariableType interface {
	Node
	String() string
	typeNode() // sealed marker
}

type ScalarType struct {
	Span Span
	Name ScalarName
}

func (n *ScalarType) Kind() string   { return "ScalarType" }
func (n *ScalarType) NodeSpan() Span { return n.Span }
func (n *ScalarType) String() string { return string(n.Name) }
func (n *ScalarType) typeNode()      {}

// ArrayType is `Array<Elem>(Size)` or `Elem[Size]`.
type ArrayType struct {
	Span Span
	Elem VariableType
	Size Operation
}

func (n *ArrayType) Kind() string   { return "ArrayType" }
func (n *ArrayType) NodeSpan() Span { return n.Span }
func (n *ArrayType) String() string { return "Array<" + n.Elem.String() + ">" }
func (n *ArrayType) typeNode()      {}
