package java

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/stubgen/classfile"
)

var log = commonlog.GetLogger("stubgen.java")

// Loader resolves a binary class name ("com/example/Outer$Inner") to
// its parsed class file. The classpath provider implements it.
type Loader interface {
	Load(name string) (*classfile.ClassFile, error)
}

// FromClassFile builds the reflected model for one class, resolving
// nested classes through the loader (which may be nil to skip them).
// Malformed generic signatures degrade to the erased descriptor view
// with a warning; they never fail the class.
func FromClassFile(cf *classfile.ClassFile, loader Loader) (*Class, error) {
	if cf.IsModule() {
		return nil, fmt.Errorf("module-info carries no class declaration")
	}

	name := classfile.InternalToSourceName(cf.ClassName())
	cls := &Class{
		Name:         name,
		Kind:         classKind(cf),
		Visibility:   visibilityOf(cf.AccessFlags),
		IsDeprecated: cf.IsDeprecated(),
	}

	// The class file level erases protected/private on nested classes;
	// the InnerClasses entry keeps the declared flags.
	if entry := cf.InnerClassOf(cf.ClassName()); entry != nil {
		cls.Visibility = visibilityOf(entry.InnerClassAccessFlags)
		cls.IsStatic = entry.InnerClassAccessFlags.IsStatic()
	}

	fillHierarchy(cls, cf)
	fillMembers(cls, cf)
	fillNested(cls, cf, loader)
	return cls, nil
}

func classKind(cf *classfile.ClassFile) ClassKind {
	if cf.IsAnnotation() {
		return ClassKindAnnotation
	}
	if cf.IsEnum() {
		return ClassKindEnum
	}
	if cf.IsInterface() {
		return ClassKindInterface
	}
	return ClassKindClass
}

func visibilityOf(flags classfile.AccessFlags) Visibility {
	if flags.IsPublic() {
		return VisibilityPublic
	}
	if flags.IsProtected() {
		return VisibilityProtected
	}
	if flags.IsPrivate() {
		return VisibilityPrivate
	}
	return VisibilityPackage
}

// fillHierarchy sets type parameters, superclass, and interfaces,
// preferring the generic signature over the erased class references.
func fillHierarchy(cls *Class, cf *classfile.ClassFile) {
	var parsed *classfile.ClassSig
	if raw := cf.Signature(); raw != "" {
		sig, err := classfile.ParseClassSignature(raw)
		if err != nil {
			log.Warningf("%s: %s", cls.Name, err.Error())
		} else {
			parsed = sig
		}
	}

	if parsed != nil {
		cls.TypeParams = typeParams(parsed.TypeParams)
		cls.Super = typeRef(parsed.Super)
		for _, iface := range parsed.Interfaces {
			cls.Interfaces = append(cls.Interfaces, typeRef(iface))
		}
	} else {
		if super := cf.SuperClassName(); super != "" {
			cls.Super = ClassType(classfile.InternalToSourceName(super))
		}
		for _, iface := range cf.InterfaceNames() {
			cls.Interfaces = append(cls.Interfaces, ClassType(classfile.InternalToSourceName(iface)))
		}
	}

	// Interfaces have no superclass in the reflected view; the class
	// file encodes java/lang/Object there as a format requirement.
	if cf.IsInterface() {
		cls.Super = nil
	}
}

func fillMembers(cls *Class, cf *classfile.ClassFile) {
	cp := cf.ConstantPool

	for i := range cf.Fields {
		field := &cf.Fields[i]
		if field.IsSynthetic() {
			continue
		}
		if cls.Kind == ClassKindEnum && field.IsEnum() {
			cls.EnumConstants = append(cls.EnumConstants, field.Name(cp))
			continue
		}
		if !visibilityOf(field.AccessFlags).Emitted() {
			continue
		}
		member, err := fieldMember(field, cp)
		if err != nil {
			log.Warningf("%s.%s: %s", cls.Name, field.Name(cp), err.Error())
			continue
		}
		cls.Members = append(cls.Members, member)
	}

	for i := range cf.Methods {
		method := &cf.Methods[i]
		if method.IsSynthetic() || method.IsBridge() || method.IsStaticInitializer(cp) {
			continue
		}
		if !visibilityOf(method.AccessFlags).Emitted() {
			continue
		}
		member, err := methodMember(method, cp)
		if err != nil {
			log.Warningf("%s.%s: %s", cls.Name, method.Name(cp), err.Error())
			continue
		}
		cls.Members = append(cls.Members, member)
	}
}

func fieldMember(info *classfile.MemberInfo, cp *classfile.ConstantPool) (Member, error) {
	fieldType, err := fieldTypeOf(info, cp)
	if err != nil {
		return Member{}, err
	}
	return Member{
		Kind:         MemberField,
		Name:         info.Name(cp),
		Visibility:   visibilityOf(info.AccessFlags),
		IsStatic:     info.IsStatic(),
		IsFinal:      info.IsFinal(),
		IsDeprecated: info.IsDeprecated(cp),
		Type:         fieldType,
	}, nil
}

func fieldTypeOf(info *classfile.MemberInfo, cp *classfile.ConstantPool) (*TypeRef, error) {
	if raw := info.Signature(cp); raw != "" {
		sig, err := classfile.ParseTypeSignature(raw)
		if err == nil {
			return typeRef(sig), nil
		}
		log.Warningf("field %s: %s", info.Name(cp), err.Error())
	}
	sig, err := classfile.ParseFieldDescriptor(info.Descriptor(cp))
	if err != nil {
		return nil, err
	}
	return typeRef(sig), nil
}

func methodMember(info *classfile.MemberInfo, cp *classfile.ConstantPool) (Member, error) {
	descriptor, err := classfile.ParseMethodDescriptor(info.Descriptor(cp))
	if err != nil {
		return Member{}, err
	}

	sig := descriptor
	if raw := info.Signature(cp); raw != "" {
		parsed, err := classfile.ParseMethodSignature(raw)
		switch {
		case err != nil:
			log.Warningf("method %s: %s", info.Name(cp), err.Error())
		case len(parsed.Params) != len(descriptor.Params):
			// Enum and inner class constructors carry implicit leading
			// parameters in the descriptor that the signature omits;
			// the erased view keeps types and names aligned.
			log.Debugf("method %s: signature parameter count differs from descriptor, using descriptor", info.Name(cp))
		default:
			sig = parsed
		}
	}

	member := Member{
		Kind:         MemberMethod,
		Name:         info.Name(cp),
		Visibility:   visibilityOf(info.AccessFlags),
		IsStatic:     info.IsStatic(),
		IsFinal:      info.IsFinal(),
		IsAbstract:   info.IsAbstract(),
		IsVarargs:    info.IsVarargs(),
		IsDeprecated: info.IsDeprecated(cp),
		TypeParams:   typeParams(sig.TypeParams),
		Return:       typeRef(sig.Return),
	}
	if info.IsConstructor(cp) {
		member.Kind = MemberConstructor
		member.Return = nil
	}

	slotSizes := make([]int, len(descriptor.Params))
	for i, param := range descriptor.Params {
		slotSizes[i] = param.SlotSize()
	}
	names := info.ParameterNames(cp, len(descriptor.Params), slotSizes)

	member.Params = make([]Param, len(sig.Params))
	for i := range sig.Params {
		member.Params[i] = Param{Name: names[i], Type: typeRef(sig.Params[i])}
	}

	if len(sig.Throws) > 0 {
		for _, thrown := range sig.Throws {
			member.Throws = append(member.Throws, typeRef(thrown))
		}
	} else {
		for _, thrown := range info.ExceptionNames(cp) {
			member.Throws = append(member.Throws, ClassType(classfile.InternalToSourceName(thrown)))
		}
	}

	return member, nil
}

func fillNested(cls *Class, cf *classfile.ClassFile, loader Loader) {
	if loader == nil {
		return
	}
	for _, name := range cf.NestedClassNames() {
		nested, err := nestedClass(name, loader)
		if err != nil {
			log.Warningf("%s: nested class %s: %s", cls.Name, name, err.Error())
			continue
		}
		if nested != nil {
			cls.Nested = append(cls.Nested, nested)
		}
	}
}

func nestedClass(name string, loader Loader) (*Class, error) {
	cf, err := loader.Load(name)
	if err != nil {
		return nil, err
	}
	if cf.IsLocalOrAnonymous() || cf.AccessFlags.IsSynthetic() || cf.IsModule() {
		return nil, nil
	}
	cls, err := FromClassFile(cf, loader)
	if err != nil {
		return nil, err
	}
	if !cls.Visibility.Emitted() {
		return nil, nil
	}
	return cls, nil
}

func typeParams(params []classfile.TypeParamSig) []TypeParam {
	if len(params) == 0 {
		return nil
	}
	result := make([]TypeParam, len(params))
	for i, param := range params {
		tp := TypeParam{Name: param.Name}
		for _, bound := range param.Bounds {
			tp.Bounds = append(tp.Bounds, typeRef(bound))
		}
		result[i] = tp
	}
	return result
}

// typeRef converts a parsed descriptor or signature type into the
// reflected shape.
func typeRef(sig *classfile.TypeSig) *TypeRef {
	if sig == nil {
		return nil
	}

	var ref *TypeRef
	switch {
	case sig.Primitive != "":
		ref = PrimitiveType(sig.Primitive)
	case sig.TypeVar != "":
		ref = TypeVarType(sig.TypeVar)
	case len(sig.Args) > 0:
		ref = &TypeRef{
			Kind: KindParameterized,
			Name: classfile.InternalToSourceName(sig.Name),
			Args: typeArgs(sig.Args),
		}
	default:
		ref = ClassType(classfile.InternalToSourceName(sig.Name))
	}

	for i := 0; i < sig.ArrayDims; i++ {
		ref = ArrayType(ref)
	}
	return ref
}

func typeArgs(args []classfile.TypeArg) []*TypeRef {
	refs := make([]*TypeRef, len(args))
	for i, arg := range args {
		switch arg.Wildcard {
		case '*':
			refs[i] = &TypeRef{Kind: KindWildcard}
		case '+':
			refs[i] = &TypeRef{Kind: KindWildcard, Upper: typeRef(arg.Type)}
		case '-':
			refs[i] = &TypeRef{Kind: KindWildcard, Lower: typeRef(arg.Type)}
		default:
			refs[i] = typeRef(arg.Type)
		}
	}
	return refs
}
