// Package classfiletest assembles small class file images in memory so
// parser and stub tests do not depend on a Java toolchain.
package classfiletest

import (
	"github.com/dhamidi/stubgen/classfile"
)

// Class describes one synthetic class image.
type Class struct {
	Flags      classfile.AccessFlags
	Name       string // internal form, e.g. "com/example/Box"
	Super      string // "" writes a zero superclass index
	Interfaces []string
	Signature  string
	SourceFile string
	Deprecated bool
	Fields     []Member
	Methods    []Member
	Inner      []InnerClass
	// EnclosingClass, when set, emits an EnclosingMethod attribute
	// marking the class as local or anonymous.
	EnclosingClass string
	MajorVersion   uint16 // defaults to 52 (Java 8)
}

// Member describes one field or method.
type Member struct {
	Flags      classfile.AccessFlags
	Name       string
	Descriptor string
	Signature  string
	Exceptions []string
	// ParamNames are written as a MethodParameters attribute.
	ParamNames []string
	// LocalNames are written as a LocalVariableTable inside a Code
	// attribute, with slots derived from the descriptor.
	LocalNames []string
	Deprecated bool
}

// InnerClass is one entry of the InnerClasses attribute.
type InnerClass struct {
	Inner string // internal name of the nested class
	Outer string // internal name of the declaring class, "" for local classes
	Name  string // simple name, "" for anonymous classes
	Flags classfile.AccessFlags
}

// Build serializes the class description into class file bytes.
func Build(c Class) []byte {
	pool := newPool()
	thisIndex := pool.class(c.Name)
	superIndex := uint16(0)
	if c.Super != "" {
		superIndex = pool.class(c.Super)
	}
	interfaceIndexes := make([]uint16, len(c.Interfaces))
	for i, name := range c.Interfaces {
		interfaceIndexes[i] = pool.class(name)
	}

	// Members and attributes reference the pool, so they are buffered
	// first and the pool is serialized afterwards.
	var body buffer
	writeMembers(&body, pool, c.Fields)
	writeMembers(&body, pool, c.Methods)
	writeAttributes(&body, pool, classAttributes(pool, c))

	major := c.MajorVersion
	if major == 0 {
		major = 52
	}

	var out buffer
	out.u4(classfile.Magic)
	out.u2(0)
	out.u2(major)
	out.u2(uint16(len(pool.entries) + 1))
	for _, entry := range pool.entries {
		out.raw(entry)
	}
	out.u2(uint16(c.Flags))
	out.u2(thisIndex)
	out.u2(superIndex)
	out.u2(uint16(len(interfaceIndexes)))
	for _, index := range interfaceIndexes {
		out.u2(index)
	}
	out.raw(body.b)
	return out.b
}

type buffer struct {
	b []byte
}

func (w *buffer) u1(v byte)    { w.b = append(w.b, v) }
func (w *buffer) u2(v uint16)  { w.b = append(w.b, byte(v>>8), byte(v)) }
func (w *buffer) u4(v uint32)  { w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
func (w *buffer) raw(p []byte) { w.b = append(w.b, p...) }

// pool collects constant pool entries, deduplicating Utf8 and Class
// constants. Indexes are 1-based.
type pool struct {
	entries [][]byte
	utf8s   map[string]uint16
	classes map[string]uint16
}

func newPool() *pool {
	return &pool{
		utf8s:   make(map[string]uint16),
		classes: make(map[string]uint16),
	}
}

func (p *pool) add(entry []byte) uint16 {
	p.entries = append(p.entries, entry)
	return uint16(len(p.entries))
}

func (p *pool) utf8(s string) uint16 {
	if index, ok := p.utf8s[s]; ok {
		return index
	}
	var w buffer
	w.u1(1) // CONSTANT_Utf8
	w.u2(uint16(len(s)))
	w.raw([]byte(s))
	index := p.add(w.b)
	p.utf8s[s] = index
	return index
}

func (p *pool) class(name string) uint16 {
	if index, ok := p.classes[name]; ok {
		return index
	}
	nameIndex := p.utf8(name)
	var w buffer
	w.u1(7) // CONSTANT_Class
	w.u2(nameIndex)
	index := p.add(w.b)
	p.classes[name] = index
	return index
}

type attribute struct {
	name string
	body []byte
}

func writeAttributes(w *buffer, p *pool, attrs []attribute) {
	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		w.u2(p.utf8(a.name))
		w.u4(uint32(len(a.body)))
		w.raw(a.body)
	}
}

func writeMembers(w *buffer, p *pool, members []Member) {
	w.u2(uint16(len(members)))
	for _, m := range members {
		w.u2(uint16(m.Flags))
		w.u2(p.utf8(m.Name))
		w.u2(p.utf8(m.Descriptor))
		writeAttributes(w, p, memberAttributes(p, m))
	}
}

func classAttributes(p *pool, c Class) []attribute {
	var attrs []attribute
	if c.Signature != "" {
		var w buffer
		w.u2(p.utf8(c.Signature))
		attrs = append(attrs, attribute{"Signature", w.b})
	}
	if len(c.Inner) > 0 {
		var w buffer
		w.u2(uint16(len(c.Inner)))
		for _, entry := range c.Inner {
			w.u2(p.class(entry.Inner))
			if entry.Outer != "" {
				w.u2(p.class(entry.Outer))
			} else {
				w.u2(0)
			}
			if entry.Name != "" {
				w.u2(p.utf8(entry.Name))
			} else {
				w.u2(0)
			}
			w.u2(uint16(entry.Flags))
		}
		attrs = append(attrs, attribute{"InnerClasses", w.b})
	}
	if c.EnclosingClass != "" {
		var w buffer
		w.u2(p.class(c.EnclosingClass))
		w.u2(0)
		attrs = append(attrs, attribute{"EnclosingMethod", w.b})
	}
	if c.SourceFile != "" {
		var w buffer
		w.u2(p.utf8(c.SourceFile))
		attrs = append(attrs, attribute{"SourceFile", w.b})
	}
	if c.Deprecated {
		attrs = append(attrs, attribute{"Deprecated", nil})
	}
	return attrs
}

func memberAttributes(p *pool, m Member) []attribute {
	var attrs []attribute
	if m.Signature != "" {
		var w buffer
		w.u2(p.utf8(m.Signature))
		attrs = append(attrs, attribute{"Signature", w.b})
	}
	if len(m.Exceptions) > 0 {
		var w buffer
		w.u2(uint16(len(m.Exceptions)))
		for _, name := range m.Exceptions {
			w.u2(p.class(name))
		}
		attrs = append(attrs, attribute{"Exceptions", w.b})
	}
	if len(m.ParamNames) > 0 {
		var w buffer
		w.u1(byte(len(m.ParamNames)))
		for _, name := range m.ParamNames {
			w.u2(p.utf8(name))
			w.u2(0)
		}
		attrs = append(attrs, attribute{"MethodParameters", w.b})
	}
	if len(m.LocalNames) > 0 {
		attrs = append(attrs, attribute{"Code", codeAttribute(p, m)})
	}
	if m.Deprecated {
		attrs = append(attrs, attribute{"Deprecated", nil})
	}
	return attrs
}

// codeAttribute writes a minimal Code attribute whose only payload is a
// LocalVariableTable naming the parameters. Slot numbers follow the
// descriptor: slot 0 is `this` for instance methods, long and double
// parameters take two slots.
func codeAttribute(p *pool, m Member) []byte {
	var locals buffer
	entries := 0

	slot := 0
	if !m.Flags.IsStatic() {
		locals.u2(0) // start_pc
		locals.u2(1) // length
		locals.u2(p.utf8("this"))
		locals.u2(p.utf8("Ljava/lang/Object;"))
		locals.u2(0)
		entries++
		slot = 1
	}

	sizes := paramSlotSizes(m.Descriptor)
	for i, name := range m.LocalNames {
		locals.u2(0) // start_pc
		locals.u2(1) // length
		locals.u2(p.utf8(name))
		locals.u2(p.utf8("Ljava/lang/Object;"))
		locals.u2(uint16(slot))
		entries++
		if i < len(sizes) {
			slot += sizes[i]
		} else {
			slot++
		}
	}

	var table buffer
	table.u2(uint16(entries))
	table.raw(locals.b)

	var w buffer
	w.u2(1)                   // max_stack
	w.u2(uint16(slot + 1))    // max_locals
	w.u4(1)                   // code_length
	w.u1(0xB1)                // return
	w.u2(0)                   // exception_table_length
	w.u2(1)                   // attributes_count
	w.u2(p.utf8("LocalVariableTable"))
	w.u4(uint32(len(table.b)))
	w.raw(table.b)
	return w.b
}

func paramSlotSizes(descriptor string) []int {
	sig, err := classfile.ParseMethodDescriptor(descriptor)
	if err != nil {
		return nil
	}
	sizes := make([]int, len(sig.Params))
	for i, param := range sig.Params {
		sizes[i] = param.SlotSize()
	}
	return sizes
}
