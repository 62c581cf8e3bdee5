package java

import "strings"

// Kind classifies a type reference in a signature position.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindClass
	KindParameterized
	KindTypeVar
	KindWildcard
)

// TypeRef is a reference to a Java type as it appears in a signature.
// Class names are qualified source names with `$` separating nested
// classes ("java.util.Map$Entry"). Values are immutable once built.
type TypeRef struct {
	Kind Kind
	// Name holds the primitive keyword, the qualified class name, or
	// the type variable name, depending on Kind.
	Name string
	// Elem is the element type of an array.
	Elem *TypeRef
	// Args are the type arguments of a parameterized type.
	Args []*TypeRef
	// Upper is the bound of a "? extends X" wildcard, Lower of a
	// "? super X" wildcard; both nil for the unbounded wildcard.
	Upper *TypeRef
	Lower *TypeRef
}

func PrimitiveType(name string) *TypeRef { return &TypeRef{Kind: KindPrimitive, Name: name} }
func ClassType(name string) *TypeRef     { return &TypeRef{Kind: KindClass, Name: name} }
func ArrayType(elem *TypeRef) *TypeRef   { return &TypeRef{Kind: KindArray, Elem: elem} }
func TypeVarType(name string) *TypeRef   { return &TypeRef{Kind: KindTypeVar, Name: name} }

// RawName returns the class name a class or parameterized reference
// points at, or "".
func (t *TypeRef) RawName() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindClass, KindParameterized:
		return t.Name
	}
	return ""
}

// String renders the reference in Java source form, for diagnostics
// and for stable ordering keys.
func (t *TypeRef) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindPrimitive, KindTypeVar:
		return t.Name
	case KindArray:
		return t.Elem.String() + "[]"
	case KindClass:
		return strings.ReplaceAll(t.Name, "$", ".")
	case KindParameterized:
		parts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			parts[i] = arg.String()
		}
		return strings.ReplaceAll(t.Name, "$", ".") + "<" + strings.Join(parts, ", ") + ">"
	case KindWildcard:
		switch {
		case t.Upper != nil:
			return "? extends " + t.Upper.String()
		case t.Lower != nil:
			return "? super " + t.Lower.String()
		}
		return "?"
	}
	return ""
}

// TypeParam is a declared generic type parameter with its bounds.
type TypeParam struct {
	Name   string
	Bounds []*TypeRef
}
