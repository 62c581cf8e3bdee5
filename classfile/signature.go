package classfile

import (
	"fmt"
	"strings"
)

// TypeSig is a type as it appears in a descriptor or generic signature.
// Exactly one of Primitive, Name, or TypeVar is set; ArrayDims wraps it.
type TypeSig struct {
	Primitive string
	Name      string
	TypeVar   string
	ArrayDims int
	Args      []TypeArg
}

// TypeArg is one type argument of a parameterized type. Wildcard is 0
// for a plain argument, '+' for "? extends", '-' for "? super", and '*'
// for the unbounded wildcard (Type is nil only in that case).
type TypeArg struct {
	Wildcard byte
	Type     *TypeSig
}

// TypeParamSig is a declared type parameter with its bounds (class
// bound first when present, then interface bounds).
type TypeParamSig struct {
	Name   string
	Bounds []*TypeSig
}

type ClassSig struct {
	TypeParams []TypeParamSig
	Super      *TypeSig
	Interfaces []*TypeSig
}

// MethodSig is a parsed method descriptor or signature. Return is nil
// for void.
type MethodSig struct {
	TypeParams []TypeParamSig
	Params     []*TypeSig
	Return     *TypeSig
	Throws     []*TypeSig
}

func (t *TypeSig) IsPrimitive() bool { return t.Primitive != "" && t.ArrayDims == 0 }
func (t *TypeSig) IsArray() bool     { return t.ArrayDims > 0 }

// SlotSize returns how many local variable slots a parameter of this
// type occupies.
func (t *TypeSig) SlotSize() int {
	if t.ArrayDims == 0 && (t.Primitive == "long" || t.Primitive == "double") {
		return 2
	}
	return 1
}

func (t *TypeSig) String() string {
	var sb strings.Builder
	switch {
	case t.Primitive != "":
		sb.WriteString(t.Primitive)
	case t.TypeVar != "":
		sb.WriteString(t.TypeVar)
	default:
		sb.WriteString(InternalToSourceName(t.Name))
	}
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	for i := 0; i < t.ArrayDims; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (a TypeArg) String() string {
	switch a.Wildcard {
	case '*':
		return "?"
	case '+':
		return "? extends " + a.Type.String()
	case '-':
		return "? super " + a.Type.String()
	}
	return a.Type.String()
}

var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// sigParser walks descriptor and signature strings (JVMS 4.3, 4.7.9.1).
// The descriptor grammar is the generics-free subset of the signature
// grammar, so one parser serves both. Errors are sticky.
type sigParser struct {
	s   string
	pos int
	err error
}

func (p *sigParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
	p.pos = len(p.s)
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) next() byte {
	c := p.peek()
	p.pos++
	return c
}

func (p *sigParser) expect(c byte) {
	if p.err != nil {
		return
	}
	if got := p.peek(); got != c {
		p.fail("expected %q at position %d, got %q", c, p.pos, got)
		return
	}
	p.pos++
}

// identifier reads up to the next delimiter. JVMS identifiers exclude
// '.', ';', '[', '/', '<', '>' and ':'.
func (p *sigParser) identifier() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '.', ';', '[', '/', '<', '>', ':':
			return p.s[start:p.pos]
		}
		p.pos++
	}
	return p.s[start:]
}

// javaType reads a BaseType or ReferenceTypeSignature, with any array
// dimensions.
func (p *sigParser) javaType() *TypeSig {
	dims := 0
	for p.peek() == '[' {
		p.pos++
		dims++
	}
	t := p.referenceOrBaseType()
	t.ArrayDims = dims
	return t
}

func (p *sigParser) referenceOrBaseType() *TypeSig {
	c := p.peek()
	switch c {
	case 'L':
		return p.classType()
	case 'T':
		return p.typeVariable()
	}
	if name, ok := primitiveNames[c]; ok {
		p.pos++
		return &TypeSig{Primitive: name}
	}
	p.fail("unexpected character %q at position %d", c, p.pos)
	return &TypeSig{}
}

// referenceType reads a ReferenceTypeSignature (class, type variable,
// or array; no primitives).
func (p *sigParser) referenceType() *TypeSig {
	if c := p.peek(); c != 'L' && c != 'T' && c != '[' {
		p.fail("expected reference type at position %d, got %q", p.pos, c)
		return &TypeSig{}
	}
	return p.javaType()
}

func (p *sigParser) typeVariable() *TypeSig {
	p.expect('T')
	name := p.identifier()
	p.expect(';')
	return &TypeSig{TypeVar: name}
}

// classType reads Lpkg/Outer<args>.Inner<args>; into a TypeSig whose
// Name is the binary form (pkg/Outer$Inner). When nested segments
// follow, the innermost segment's type arguments win; outer arguments
// are not representable in the target syntax and are dropped.
func (p *sigParser) classType() *TypeSig {
	p.expect('L')
	t := &TypeSig{}
	var name strings.Builder
	name.WriteString(p.identifier())
	for p.peek() == '/' {
		p.pos++
		name.WriteByte('/')
		name.WriteString(p.identifier())
	}
	if p.peek() == '<' {
		t.Args = p.typeArguments()
	}
	for p.peek() == '.' {
		p.pos++
		name.WriteByte('$')
		name.WriteString(p.identifier())
		t.Args = nil
		if p.peek() == '<' {
			t.Args = p.typeArguments()
		}
	}
	p.expect(';')
	t.Name = name.String()
	return t
}

func (p *sigParser) typeArguments() []TypeArg {
	p.expect('<')
	var args []TypeArg
	for p.err == nil && p.peek() != '>' {
		args = append(args, p.typeArgument())
	}
	p.expect('>')
	return args
}

func (p *sigParser) typeArgument() TypeArg {
	switch p.peek() {
	case '*':
		p.pos++
		return TypeArg{Wildcard: '*'}
	case '+', '-':
		w := p.next()
		return TypeArg{Wildcard: w, Type: p.referenceType()}
	}
	return TypeArg{Type: p.referenceType()}
}

func (p *sigParser) typeParameters() []TypeParamSig {
	p.expect('<')
	var params []TypeParamSig
	for p.err == nil && p.peek() != '>' {
		tp := TypeParamSig{Name: p.identifier()}
		p.expect(':')
		// The class bound may be empty when only interface bounds exist.
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		for p.peek() == ':' {
			p.pos++
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		params = append(params, tp)
	}
	p.expect('>')
	return params
}

// ParseTypeSignature parses a single field descriptor or field type
// signature.
func ParseTypeSignature(s string) (*TypeSig, error) {
	p := &sigParser{s: s}
	t := p.javaType()
	if p.err == nil && p.pos != len(s) {
		p.fail("trailing input at position %d", p.pos)
	}
	if p.err != nil {
		return nil, fmt.Errorf("invalid type signature %q: %w", s, p.err)
	}
	return t, nil
}

// ParseClassSignature parses the Signature attribute of a class.
func ParseClassSignature(s string) (*ClassSig, error) {
	p := &sigParser{s: s}
	sig := &ClassSig{}
	if p.peek() == '<' {
		sig.TypeParams = p.typeParameters()
	}
	sig.Super = p.classType()
	for p.err == nil && p.pos < len(p.s) {
		sig.Interfaces = append(sig.Interfaces, p.classType())
	}
	if p.err != nil {
		return nil, fmt.Errorf("invalid class signature %q: %w", s, p.err)
	}
	return sig, nil
}

// ParseMethodSignature parses a method descriptor or the Signature
// attribute of a method.
func ParseMethodSignature(s string) (*MethodSig, error) {
	p := &sigParser{s: s}
	sig := &MethodSig{}
	if p.peek() == '<' {
		sig.TypeParams = p.typeParameters()
	}
	p.expect('(')
	for p.err == nil && p.peek() != ')' {
		sig.Params = append(sig.Params, p.javaType())
	}
	p.expect(')')
	if p.peek() == 'V' {
		p.pos++
	} else {
		sig.Return = p.javaType()
	}
	for p.err == nil && p.pos < len(p.s) {
		p.expect('^')
		sig.Throws = append(sig.Throws, p.referenceType())
	}
	if p.err != nil {
		return nil, fmt.Errorf("invalid method signature %q: %w", s, p.err)
	}
	return sig, nil
}

// ParseFieldDescriptor parses a plain field descriptor (JVMS 4.3.2).
func ParseFieldDescriptor(s string) (*TypeSig, error) {
	return ParseTypeSignature(s)
}

// ParseMethodDescriptor parses a plain method descriptor (JVMS 4.3.3).
func ParseMethodDescriptor(s string) (*MethodSig, error) {
	return ParseMethodSignature(s)
}

// InternalToSourceName converts "java/util/List" to "java.util.List".
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// SourceToInternalName converts "java.util.List" to "java/util/List".
func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
