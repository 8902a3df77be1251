package evaluator

import "fmt"

// Kind is the tag of a resolved runtime type.
type Kind int

const (
	KindInt Kind = iota
	KindDouble
	KindString
	KindBool
	KindArray
	KindVoid
)

var kindNames = [...]string{
	KindInt:    "Int",
	KindDouble: "Double",
	KindString: "String",
	KindBool:   "Bool",
	KindArray:  "Array",
	KindVoid:   "Void",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a declared type with its array size already evaluated.
type Type struct {
	Kind Kind
	Elem *Type
	Size int
}

var (
	IntType    = Type{Kind: KindInt}
	DoubleType = Type{Kind: KindDouble}
	StringType = Type{Kind: KindString}
	BoolType   = Type{Kind: KindBool}
	VoidType   = Type{Kind: KindVoid}
)

// ArrayOf returns the type of a fixed-size array of elem.
func ArrayOf(elem Type, size int) Type {
	return Type{Kind: KindArray, Elem: &elem, Size: size}
}

func (t Type) String() string {
	if t.Kind == KindArray && t.Elem != nil {
		return fmt.Sprintf("Array<%s>(%d)", t.Elem.String(), t.Size)
	}
	return t.Kind.String()
}

// Equal reports structural equality, including array sizes.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != KindArray {
		return true
	}
	if t.Size != o.Size || (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	return t.Elem == nil || t.Elem.Equal(*o.Elem)
}
