package classfile

// MemberInfo is a field_info or method_info structure; both share the
// same layout in the class file.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MemberInfo) Name(cp *ConstantPool) string {
	return cp.Utf8(m.NameIndex)
}

func (m *MemberInfo) Descriptor(cp *ConstantPool) string {
	return cp.Utf8(m.DescriptorIndex)
}

func (m *MemberInfo) GetAttribute(cp *ConstantPool, name string) *AttributeInfo {
	for i := range m.Attributes {
		if cp.Utf8(m.Attributes[i].NameIndex) == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

// Signature returns the raw generic signature string, or "" when the
// member carries no Signature attribute.
func (m *MemberInfo) Signature(cp *ConstantPool) string {
	attr := m.GetAttribute(cp, "Signature")
	if attr == nil {
		return ""
	}
	sig := attr.AsSignature()
	if sig == nil {
		return ""
	}
	return cp.Utf8(sig.SignatureIndex)
}

// ExceptionNames returns the internal names of the declared checked
// exceptions of a method.
func (m *MemberInfo) ExceptionNames(cp *ConstantPool) []string {
	attr := m.GetAttribute(cp, "Exceptions")
	if attr == nil {
		return nil
	}
	ex := attr.AsExceptions()
	if ex == nil {
		return nil
	}
	names := make([]string, 0, len(ex.ExceptionIndexTable))
	for _, idx := range ex.ExceptionIndexTable {
		if name := cp.ClassName(idx); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (m *MemberInfo) IsDeprecated(cp *ConstantPool) bool {
	return m.GetAttribute(cp, "Deprecated") != nil
}

func (m *MemberInfo) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *MemberInfo) IsProtected() bool { return m.AccessFlags.IsProtected() }
func (m *MemberInfo) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *MemberInfo) IsFinal() bool     { return m.AccessFlags.IsFinal() }
func (m *MemberInfo) IsAbstract() bool  { return m.AccessFlags.IsAbstract() }
func (m *MemberInfo) IsBridge() bool    { return m.AccessFlags.IsBridge() }
func (m *MemberInfo) IsVarargs() bool   { return m.AccessFlags.IsVarargs() }
func (m *MemberInfo) IsSynthetic() bool { return m.AccessFlags.IsSynthetic() }
func (m *MemberInfo) IsEnum() bool      { return m.AccessFlags.IsEnum() }

func (m *MemberInfo) IsConstructor(cp *ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MemberInfo) IsStaticInitializer(cp *ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

// ParameterNames returns declared parameter names, preferring the
// MethodParameters attribute and falling back to the LocalVariableTable
// inside Code. Missing names come back as "".
func (m *MemberInfo) ParameterNames(cp *ConstantPool, paramCount int, paramSlotSizes []int) []string {
	names := make([]string, paramCount)

	if attr := m.GetAttribute(cp, "MethodParameters"); attr != nil {
		if mp := attr.AsMethodParameters(); mp != nil {
			for i := 0; i < paramCount && i < len(mp.Parameters); i++ {
				names[i] = cp.Utf8(mp.Parameters[i].NameIndex)
			}
			return names
		}
	}

	attr := m.GetAttribute(cp, "Code")
	if attr == nil {
		return names
	}
	code := attr.AsCode()
	if code == nil {
		return names
	}
	// Parameter k lives in the local variable slot after the preceding
	// parameters (slot 0 is `this` for instance methods; long and double
	// parameters take two slots).
	slot := 0
	if !m.IsStatic() {
		slot = 1
	}
	for i := 0; i < paramCount; i++ {
		for _, lv := range code.LocalVariableTable {
			if int(lv.Index) == slot && lv.StartPC == 0 {
				names[i] = cp.Utf8(lv.NameIndex)
				break
			}
		}
		if i < len(paramSlotSizes) {
			slot += paramSlotSizes[i]
		} else {
			slot++
		}
	}
	return names
}
