package classfile

import "encoding/binary"

// AttributeInfo holds one attribute. Attributes the stub model consumes
// carry a decoded structure in Parsed; the rest keep raw bytes only.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    any
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

// CodeAttribute is reduced to the one thing the model reads out of
// method bodies: the local variable table carrying parameter names.
type CodeAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC   uint16
	Length    uint16
	NameIndex uint16
	Index     uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	s, _ := a.Parsed.(*SignatureAttribute)
	return s
}

func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	e, _ := a.Parsed.(*ExceptionsAttribute)
	return e
}

func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	ic, _ := a.Parsed.(*InnerClassesAttribute)
	return ic
}

func (a *AttributeInfo) AsEnclosingMethod() *EnclosingMethodAttribute {
	em, _ := a.Parsed.(*EnclosingMethodAttribute)
	return em
}

func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	mp, _ := a.Parsed.(*MethodParametersAttribute)
	return mp
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	c, _ := a.Parsed.(*CodeAttribute)
	return c
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	sf, _ := a.Parsed.(*SourceFileAttribute)
	return sf
}

func parseSignatureAttribute(info []byte) *SignatureAttribute {
	if len(info) < 2 {
		return nil
	}
	return &SignatureAttribute{
		SignatureIndex: binary.BigEndian.Uint16(info[0:2]),
	}
}

func parseExceptionsAttribute(info []byte) *ExceptionsAttribute {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*2 {
		return nil
	}

	ex := &ExceptionsAttribute{
		ExceptionIndexTable: make([]uint16, count),
	}
	offset := 2
	for i := range ex.ExceptionIndexTable {
		ex.ExceptionIndexTable[i] = binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2
	}
	return ex
}

func parseInnerClassesAttribute(info []byte) *InnerClassesAttribute {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*8 {
		return nil
	}

	ic := &InnerClassesAttribute{
		Classes: make([]InnerClassEntry, count),
	}
	offset := 2
	for i := range ic.Classes {
		ic.Classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   binary.BigEndian.Uint16(info[offset : offset+2]),
			OuterClassInfoIndex:   binary.BigEndian.Uint16(info[offset+2 : offset+4]),
			InnerNameIndex:        binary.BigEndian.Uint16(info[offset+4 : offset+6]),
			InnerClassAccessFlags: AccessFlags(binary.BigEndian.Uint16(info[offset+6 : offset+8])),
		}
		offset += 8
	}
	return ic
}

func parseEnclosingMethodAttribute(info []byte) *EnclosingMethodAttribute {
	if len(info) < 4 {
		return nil
	}
	return &EnclosingMethodAttribute{
		ClassIndex:  binary.BigEndian.Uint16(info[0:2]),
		MethodIndex: binary.BigEndian.Uint16(info[2:4]),
	}
}

func parseMethodParametersAttribute(info []byte) *MethodParametersAttribute {
	if len(info) < 1 {
		return nil
	}
	count := int(info[0])
	if len(info) < 1+count*4 {
		return nil
	}

	mp := &MethodParametersAttribute{
		Parameters: make([]MethodParameter, count),
	}
	offset := 1
	for i := range mp.Parameters {
		mp.Parameters[i] = MethodParameter{
			NameIndex:   binary.BigEndian.Uint16(info[offset : offset+2]),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(info[offset+2 : offset+4])),
		}
		offset += 4
	}
	return mp
}

// parseCodeAttribute walks the Code structure only far enough to pull
// out the LocalVariableTable entries; bytecode and frames are skipped.
func parseCodeAttribute(info []byte, cp *ConstantPool) *CodeAttribute {
	if len(info) < 8 {
		return nil
	}
	codeLength := binary.BigEndian.Uint32(info[4:8])
	offset := 8 + int(codeLength)
	if len(info) < offset+2 {
		return nil
	}

	exceptionTableLength := binary.BigEndian.Uint16(info[offset : offset+2])
	offset += 2 + int(exceptionTableLength)*8
	if len(info) < offset+2 {
		return nil
	}

	code := &CodeAttribute{}
	attributesCount := binary.BigEndian.Uint16(info[offset : offset+2])
	offset += 2
	for i := uint16(0); i < attributesCount; i++ {
		if len(info) < offset+6 {
			return nil
		}
		nameIndex := binary.BigEndian.Uint16(info[offset : offset+2])
		attrLength := binary.BigEndian.Uint32(info[offset+2 : offset+6])
		offset += 6
		if len(info) < offset+int(attrLength) {
			return nil
		}
		if cp.Utf8(nameIndex) == "LocalVariableTable" {
			code.LocalVariableTable = append(code.LocalVariableTable,
				parseLocalVariableTable(info[offset:offset+int(attrLength)])...)
		}
		offset += int(attrLength)
	}
	return code
}

func parseLocalVariableTable(info []byte) []LocalVariableEntry {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*10 {
		return nil
	}

	entries := make([]LocalVariableEntry, count)
	offset := 2
	for i := range entries {
		entries[i] = LocalVariableEntry{
			StartPC:   binary.BigEndian.Uint16(info[offset : offset+2]),
			Length:    binary.BigEndian.Uint16(info[offset+2 : offset+4]),
			NameIndex: binary.BigEndian.Uint16(info[offset+4 : offset+6]),
			Index:     binary.BigEndian.Uint16(info[offset+8 : offset+10]),
		}
		offset += 10
	}
	return entries
}

func parseSourceFileAttribute(info []byte) *SourceFileAttribute {
	if len(info) < 2 {
		return nil
	}
	return &SourceFileAttribute{
		SourceFileIndex: binary.BigEndian.Uint16(info[0:2]),
	}
}
