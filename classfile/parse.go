package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	cf.Fields, err = readMembers(r, cp, "field")
	if err != nil {
		return nil, err
	}
	cf.Methods, err = readMembers(r, cp, "method")
	if err != nil {
		return nil, err
	}

	attributesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attributes count: %w", r.err)
	}
	cf.Attributes = make([]AttributeInfo, attributesCount)
	for i := range cf.Attributes {
		attr, err := readAttributeInfo(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read class attribute %d: %w", i, err)
		}
		cf.Attributes[i] = *attr
	}

	return cf, nil
}

// readMembers reads a field or method table; the two share one layout.
func readMembers(r *reader, cp *ConstantPool, kind string) ([]MemberInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read %s count: %w", kind, r.err)
	}

	members := make([]MemberInfo, count)
	for i := range members {
		m := MemberInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		attributesCount := r.readU2()
		if r.err != nil {
			return nil, fmt.Errorf("failed to read %s %d: %w", kind, i, r.err)
		}
		m.Attributes = make([]AttributeInfo, attributesCount)
		for j := range m.Attributes {
			attr, err := readAttributeInfo(r, cp)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s %d attribute %d: %w", kind, i, j, err)
			}
			m.Attributes[j] = *attr
		}
		members[i] = m
	}
	return members, nil
}

// readAttributeInfo reads one attribute. Only the attributes the stub
// model consumes are decoded; everything else keeps its raw bytes.
func readAttributeInfo(r *reader, cp *ConstantPool) (*AttributeInfo, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	info := r.readBytes(int(length))
	if r.err != nil {
		return nil, r.err
	}

	attr := &AttributeInfo{
		NameIndex: nameIndex,
		Info:      info,
	}

	switch cp.Utf8(nameIndex) {
	case "Signature":
		attr.Parsed = parseSignatureAttribute(info)
	case "Exceptions":
		attr.Parsed = parseExceptionsAttribute(info)
	case "InnerClasses":
		attr.Parsed = parseInnerClassesAttribute(info)
	case "EnclosingMethod":
		attr.Parsed = parseEnclosingMethodAttribute(info)
	case "MethodParameters":
		attr.Parsed = parseMethodParametersAttribute(info)
	case "Code":
		attr.Parsed = parseCodeAttribute(info, cp)
	case "SourceFile":
		attr.Parsed = parseSourceFileAttribute(info)
	}

	return attr, nil
}
