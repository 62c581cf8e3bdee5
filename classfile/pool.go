package classfile

import "fmt"

// Constant pool tags from JVMS 4.4.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// ConstantPool retains only the entries class metadata resolves through:
// UTF-8 strings and class references. All other entry kinds are skipped
// by their fixed size while reading.
type ConstantPool struct {
	utf8    map[uint16]string
	classes map[uint16]uint16
}

func readConstantPool(r *reader) (*ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}

	cp := &ConstantPool{
		utf8:    make(map[uint16]string),
		classes: make(map[uint16]uint16),
	}
	for i := uint16(1); i < count; i++ {
		tag := r.readU1()
		switch tag {
		case tagUtf8:
			length := r.readU2()
			raw := r.readBytes(int(length))
			if r.err == nil {
				cp.utf8[i] = decodeModifiedUtf8(raw)
			}
		case tagClass:
			cp.classes[i] = r.readU2()
		case tagLong, tagDouble:
			r.readBytes(8)
			// Long and Double entries occupy two pool slots.
			i++
		case tagInteger, tagFloat, tagFieldref, tagMethodref,
			tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.readBytes(4)
		case tagMethodHandle:
			r.readBytes(3)
		case tagString, tagMethodType, tagModule, tagPackage:
			r.readBytes(2)
		default:
			if r.err == nil {
				return nil, fmt.Errorf("unknown constant pool tag %d at entry %d", tag, i)
			}
		}
		if r.err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, r.err)
		}
	}
	return cp, nil
}

// Utf8 returns the string behind a CONSTANT_Utf8 entry, or "" when the
// index does not hold one.
func (cp *ConstantPool) Utf8(index uint16) string {
	return cp.utf8[index]
}

// ClassName returns the internal (slash-separated) name behind a
// CONSTANT_Class entry, or "" when the index does not hold one.
func (cp *ConstantPool) ClassName(index uint16) string {
	return cp.utf8[cp.classes[index]]
}

// decodeModifiedUtf8 decodes the modified UTF-8 encoding of JVMS 4.4.7:
// NUL is two bytes, supplementary characters are surrogate pairs of
// three-byte sequences.
func decodeModifiedUtf8(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	i := 0
	for i < len(raw) {
		b := raw[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(raw) {
				return string(runes)
			}
			runes = append(runes, rune(b&0x1F)<<6|rune(raw[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(raw) {
				return string(runes)
			}
			r := rune(b&0x0F)<<12 | rune(raw[i+1]&0x3F)<<6 | rune(raw[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(raw) && raw[i+3]&0xF0 == 0xE0 {
				low := rune(raw[i+3]&0x0F)<<12 | rune(raw[i+4]&0x3F)<<6 | rune(raw[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
