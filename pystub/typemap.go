package pystub

import (
	"strings"

	"github.com/dhamidi/stubgen/java"
)

// pyType is a Python type expression: a dotted name plus optional
// subscript arguments. Java nested-class names keep their `$` until
// rendering, where it becomes an attribute dot.
type pyType struct {
	name string
	args []pyType
}

var pyAny = pyType{name: "typing.Any"}

// typeVar is one declared type parameter together with its
// module-level stub declaration name.
type typeVar struct {
	stubName string // "_Box__T"
	javaName string // "T"
	// bound is nil when the Java bound constrains nothing.
	bound *pyType
}

// scope is the ordered set of type variables visible at a use site.
// Lookup prefers the innermost (latest) declaration, so a method
// variable shadows a class variable of the same Java name.
type scope struct {
	vars []typeVar
}

func (s scope) lookup(javaName string) (typeVar, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].javaName == javaName {
			return s.vars[i], true
		}
	}
	return typeVar{}, false
}

func (s scope) extend(vars []typeVar) scope {
	merged := make([]typeVar, 0, len(s.vars)+len(vars))
	merged = append(merged, s.vars...)
	merged = append(merged, vars...)
	return scope{vars: merged}
}

// primitiveTargets fixes the Python equivalent of every Java
// primitive. The narrower integer and float widths collapse onto
// Python's unified numeric types; char maps to its numeric code.
var primitiveTargets = map[string]string{
	"boolean": "bool",
	"byte":    "int",
	"char":    "int",
	"short":   "int",
	"int":     "int",
	"long":    "int",
	"float":   "float",
	"double":  "float",
	"void":    "None",
}

// boxedTargets maps the wrapper classes onto the same targets as
// their primitive counterparts.
var boxedTargets = map[string]string{
	"java.lang.Boolean":   "bool",
	"java.lang.Byte":      "int",
	"java.lang.Character": "int",
	"java.lang.Short":     "int",
	"java.lang.Integer":   "int",
	"java.lang.Long":      "int",
	"java.lang.Float":     "float",
	"java.lang.Double":    "float",
	"java.lang.Void":      "None",
}

// mapper translates Java type references into Python type
// expressions. It never fails: constructs with no precise Python
// shape widen to typing.Any rather than aborting the class.
type mapper struct {
	convertStrings bool // java.lang.String renders as str
	builtinList    bool // list[...] instead of typing.List[...]
}

func (m mapper) sequence() string {
	if m.builtinList {
		return "list"
	}
	return "typing.List"
}

// typeOf maps one type reference. A nil reference is the void return.
func (m mapper) typeOf(ref *java.TypeRef, sc scope) pyType {
	if ref == nil {
		return pyType{name: "None"}
	}
	switch ref.Kind {
	case java.KindPrimitive:
		if target, ok := primitiveTargets[ref.Name]; ok {
			return pyType{name: target}
		}
	case java.KindArray:
		return pyType{name: m.sequence(), args: []pyType{m.typeOf(ref.Elem, sc)}}
	case java.KindTypeVar:
		if tv, ok := sc.lookup(ref.Name); ok {
			return pyType{name: tv.stubName}
		}
		// A variable that escaped its declaring scope; nothing
		// narrower than Any is expressible for it.
		return pyAny
	case java.KindWildcard:
		if ref.Upper != nil {
			return m.typeOf(ref.Upper, sc)
		}
		// Unbounded, or lower-bounded: Python has no "super"
		// constraint, so both widen.
		return pyAny
	case java.KindClass, java.KindParameterized:
		return m.classRef(ref, sc)
	}
	return pyAny
}

func (m mapper) classRef(ref *java.TypeRef, sc scope) pyType {
	var args []pyType
	if len(ref.Args) > 0 {
		args = make([]pyType, len(ref.Args))
		for i, arg := range ref.Args {
			args[i] = m.typeOf(arg, sc)
		}
	}
	if target, ok := boxedTargets[ref.Name]; ok {
		return pyType{name: target}
	}
	switch ref.Name {
	case "java.lang.String":
		if m.convertStrings {
			return pyType{name: "str"}
		}
	case "java.lang.Class":
		return pyType{name: "typing.Type", args: args}
	}
	return pyType{name: ref.Name, args: args}
}

// typeVarsFor builds the stub declarations for one declaration's type
// parameters. The scope id prefixes the stub names so identically
// named variables of different classes or methods cannot collide at
// module level. Bounds map in an empty scope: a bound that only
// references another type variable is dropped rather than declared
// as typing.Any.
func (m mapper) typeVarsFor(params []java.TypeParam, scopeID string) []typeVar {
	if len(params) == 0 {
		return nil
	}
	vars := make([]typeVar, 0, len(params))
	for _, p := range params {
		tv := typeVar{
			stubName: "_" + scopeID + "__" + p.Name,
			javaName: p.Name,
		}
		if bound := typeVarBound(p); bound != nil {
			mapped := m.typeOf(bound, scope{})
			if mapped.name != "typing.Any" {
				tv.bound = &mapped
			}
		}
		vars = append(vars, tv)
	}
	return vars
}

// typeVarBound picks the declaration's first bound, collapsing a
// parameterized bound to its raw class. A java.lang.Object bound
// constrains nothing and reads as absent.
func typeVarBound(p java.TypeParam) *java.TypeRef {
	if len(p.Bounds) == 0 {
		return nil
	}
	bound := p.Bounds[0]
	if bound.Kind == java.KindParameterized {
		bound = java.ClassType(bound.Name)
	}
	if bound.RawName() == "java.lang.Object" {
		return nil
	}
	return bound
}

// classScopeID derives the TypeVar scope id from a class's
// package-local name: "Outer$Inner" scopes as "Outer__Inner".
func classScopeID(cls *java.Class) string {
	return strings.ReplaceAll(cls.LocalName(), "$", "__")
}
