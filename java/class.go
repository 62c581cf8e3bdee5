package java

import "strings"

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

// Emitted reports whether members of this visibility appear in stubs.
func (v Visibility) Emitted() bool {
	return v == VisibilityPublic || v == VisibilityProtected
}

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
)

// Class is the reflected model of one class. It is built once from a
// class file and never mutated afterwards; the generation pipeline is
// read-only over it.
type Class struct {
	// Name is the qualified name with `$` separating nested classes,
	// e.g. "com.example.Outer$Inner".
	Name         string
	Kind         ClassKind
	Visibility   Visibility
	IsStatic     bool // static nested classes do not see enclosing type parameters
	IsDeprecated bool
	TypeParams   []TypeParam
	// Super is nil for java.lang.Object and for interfaces.
	Super         *TypeRef
	Interfaces    []*TypeRef
	EnumConstants []string
	Members       []Member
	Nested        []*Class
	Doc           string
}

// Package returns the package part of the qualified name, or "".
func (c *Class) Package() string {
	if i := strings.LastIndex(c.Name, "."); i >= 0 {
		return c.Name[:i]
	}
	return ""
}

// LocalName returns the package-local name, e.g. "Outer$Inner".
func (c *Class) LocalName() string {
	if i := strings.LastIndex(c.Name, "."); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

// SimpleName returns the innermost simple name, e.g. "Inner".
func (c *Class) SimpleName() string {
	local := c.LocalName()
	if i := strings.LastIndex(local, "$"); i >= 0 {
		return local[i+1:]
	}
	return local
}

type MemberKind string

const (
	MemberField       MemberKind = "field"
	MemberMethod      MemberKind = "method"
	MemberConstructor MemberKind = "constructor"
)

type Param struct {
	// Name is "" when the class file carries no parameter name.
	Name string
	Type *TypeRef
}

// Member is the uniform shape of a field, method, or constructor.
type Member struct {
	Kind         MemberKind
	Name         string
	Visibility   Visibility
	IsStatic     bool
	IsFinal      bool
	IsAbstract   bool
	IsVarargs    bool
	IsDeprecated bool
	// TypeParams are method-scoped generic parameters.
	TypeParams []TypeParam
	Params     []Param
	// Return is nil for void methods, fields, and constructors.
	Return *TypeRef
	// Type is the field type; nil for methods and constructors.
	Type   *TypeRef
	Throws []*TypeRef
	Doc    string
}
