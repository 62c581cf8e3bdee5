package classfile

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
	Attributes   []AttributeInfo
}

// ClassName returns the internal (slash-separated) binary name.
func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the superclass, or "" for
// java/lang/Object and module-info.
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.ClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.ConstantPool.Utf8(cf.Attributes[i].NameIndex) == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}

// Signature returns the raw generic class signature, or "".
func (cf *ClassFile) Signature() string {
	attr := cf.GetAttribute("Signature")
	if attr == nil {
		return ""
	}
	sig := attr.AsSignature()
	if sig == nil {
		return ""
	}
	return cf.ConstantPool.Utf8(sig.SignatureIndex)
}

func (cf *ClassFile) IsDeprecated() bool {
	return cf.GetAttribute("Deprecated") != nil
}

// InnerClassOf returns the InnerClasses entry describing the given
// class name, or nil. The entry for the class itself reveals its
// nested-class access flags and whether it is anonymous (empty inner
// name).
func (cf *ClassFile) InnerClassOf(internalName string) *InnerClassEntry {
	attr := cf.GetAttribute("InnerClasses")
	if attr == nil {
		return nil
	}
	ic := attr.AsInnerClasses()
	if ic == nil {
		return nil
	}
	for i := range ic.Classes {
		if cf.ConstantPool.ClassName(ic.Classes[i].InnerClassInfoIndex) == internalName {
			return &ic.Classes[i]
		}
	}
	return nil
}

// NestedClassNames returns the internal names of classes declared
// directly inside this class, in declaration order.
func (cf *ClassFile) NestedClassNames() []string {
	attr := cf.GetAttribute("InnerClasses")
	if attr == nil {
		return nil
	}
	ic := attr.AsInnerClasses()
	if ic == nil {
		return nil
	}
	this := cf.ClassName()
	var names []string
	for i := range ic.Classes {
		entry := &ic.Classes[i]
		if cf.ConstantPool.ClassName(entry.OuterClassInfoIndex) != this {
			continue
		}
		// An empty inner name marks an anonymous class.
		if cf.ConstantPool.Utf8(entry.InnerNameIndex) == "" {
			continue
		}
		if name := cf.ConstantPool.ClassName(entry.InnerClassInfoIndex); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IsLocalOrAnonymous reports whether this class is an anonymous or
// method-local class, which the stub model skips.
func (cf *ClassFile) IsLocalOrAnonymous() bool {
	if cf.GetAttribute("EnclosingMethod") != nil {
		return true
	}
	if entry := cf.InnerClassOf(cf.ClassName()); entry != nil {
		return cf.ConstantPool.Utf8(entry.InnerNameIndex) == ""
	}
	return false
}

// SourceFile returns the simple source file name ("Foo.java"), or "".
func (cf *ClassFile) SourceFile() string {
	attr := cf.GetAttribute("SourceFile")
	if attr == nil {
		return ""
	}
	sf := attr.AsSourceFile()
	if sf == nil {
		return ""
	}
	return cf.ConstantPool.Utf8(sf.SourceFileIndex)
}
