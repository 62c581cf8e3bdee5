package pystub

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/dhamidi/stubgen/java"
)

// moduleContext carries the rendering state of one stub module: which
// top-level classes are already emitted, which Java classes the text
// references, and the imports the text requires. References are
// discovered while emitting, so the import set is final only after
// every class of the module has been rendered.
type moduleContext struct {
	// pkg is the Java package the module covers.
	pkg string
	// selfQualify forces same-package references to other classes
	// into qualified form (per-class module granularity).
	selfQualify bool
	// done holds the local names of top-level classes already
	// emitted into this module.
	done map[string]bool
	// used holds every referenced Java class, qualified, `$` form.
	used map[string]bool
	// imports holds the Python packages the rendered text needs.
	imports map[string]bool
	// baseRefs holds the Java packages referenced from base-class
	// positions; those edges can never be deferred.
	baseRefs map[string]bool
	// deferred holds the Java packages whose references render as
	// quoted forward references instead of imports.
	deferred map[string]bool
}

func newModuleContext(pkg string, selfQualify bool, deferred map[string]bool) *moduleContext {
	return &moduleContext{
		pkg:         pkg,
		selfQualify: selfQualify,
		done:        make(map[string]bool),
		used:        make(map[string]bool),
		imports:     make(map[string]bool),
		baseRefs:    make(map[string]bool),
		deferred:    deferred,
	}
}

// annotate renders a type expression for an annotation position.
// Forward references are legal there, so same-module classes render
// by local name; a reference into a deferred module renders quoted so
// the dropped import cannot dangle.
func (mc *moduleContext) annotate(t pyType) string {
	s, deferred := mc.render(t, false, true)
	if deferred {
		return "'" + s + "'"
	}
	return s
}

// base renders a type expression for a base-class position. The base
// class itself binds eagerly: a same-module class not yet emitted
// falls back to its qualified name. Quoting is impossible anywhere in
// a base expression, so imports it needs are never deferred.
func (mc *moduleContext) base(t pyType) string {
	s, _ := mc.render(t, true, false)
	return s
}

func (mc *moduleContext) render(t pyType, eagerName, allowDefer bool) (string, bool) {
	name, deferred := mc.renderName(t.name, eagerName, allowDefer)
	if len(t.args) == 0 {
		return name, deferred
	}
	parts := make([]string, len(t.args))
	for i, arg := range t.args {
		s, d := mc.render(arg, false, allowDefer)
		parts[i] = s
		deferred = deferred || d
	}
	return name + "[" + strings.Join(parts, ", ") + "]", deferred
}

func (mc *moduleContext) renderName(name string, eagerName, allowDefer bool) (string, bool) {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		// A builtin target, a TypeVar stub name, or "None".
		return name, false
	}
	parent, local := name[:dot], name[dot+1:]
	if parent == "typing" {
		mc.imports["typing"] = true
		return name, false
	}

	mc.used[name] = true
	if parent == mc.pkg {
		top := local
		if i := strings.Index(top, "$"); i >= 0 {
			top = top[:i]
		}
		if mc.done[top] || (!eagerName && !mc.selfQualify) {
			return mangleLocal(local), false
		}
		// Qualified fallback; the top-level package import reaches
		// this module through the subpackage import chain.
		mangledPkg := pysafePath(parent)
		mc.imports[topSegment(mangledPkg)] = true
		return mangledPkg + "." + mangleLocal(local), false
	}

	mangledPkg := pysafePath(parent)
	qualified := mangledPkg + "." + mangleLocal(local)
	if mc.deferred[parent] && allowDefer {
		return qualified, true
	}
	if !allowDefer {
		mc.baseRefs[parent] = true
	}
	mc.imports[mangledPkg] = true
	return qualified, false
}

// importLines returns the module's import statements, sorted and
// deduplicated.
func (mc *moduleContext) importLines() []string {
	lines := make([]string, 0, len(mc.imports))
	for pkg := range mc.imports {
		lines = append(lines, "import "+pkg)
	}
	sort.Strings(lines)
	return lines
}

// typeVarLine renders one module-level TypeVar declaration. The
// trailing comment names the Java variable the mangled name stands
// for.
func (mc *moduleContext) typeVarLine(tv typeVar) string {
	mc.imports["typing"] = true
	if tv.bound != nil {
		return fmt.Sprintf("%s = typing.TypeVar('%s', bound=%s)  # <%s>",
			tv.stubName, tv.stubName, mc.annotate(*tv.bound), tv.javaName)
	}
	return fmt.Sprintf("%s = typing.TypeVar('%s')  # <%s>", tv.stubName, tv.stubName, tv.javaName)
}

// mangleLocal maps a package-local name to its Python attribute path:
// each `$` segment is keyword-mangled and the separator becomes a dot.
func mangleLocal(local string) string {
	segments := strings.Split(local, "$")
	for i, segment := range segments {
		if mangled, ok := pysafe(segment); ok {
			segments[i] = mangled
		}
	}
	return strings.Join(segments, ".")
}

func topSegment(path string) string {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}

// generator renders Java classes into stub text against a module
// context.
type generator struct {
	types    mapper
	withDocs bool
}

// emitClass renders one class block. Lines come back with the header
// at column zero; the caller indents nested blocks. Class-level
// TypeVar declarations append to tvOut so the enclosing top-level
// block can hoist them above its class statement.
func (g *generator) emitClass(mc *moduleContext, cls *java.Class, outer scope, tvOut *[]string) []string {
	classVars := g.types.typeVarsFor(cls.TypeParams, classScopeID(cls))
	usable := scope{vars: classVars}
	if !cls.IsStatic {
		usable = outer.extend(classVars)
	}

	resolved := resolveMembers(cls)

	var body []string
	body = append(body, g.enumConstantLines(mc, cls)...)
	for _, f := range resolved.fields {
		body = append(body, g.fieldLines(mc, f, usable)...)
	}
	if len(resolved.ctors.members) > 0 {
		body = append(body, g.overloadSetLines(mc, resolved.ctors, usable, true)...)
	}
	for _, set := range resolved.methods {
		body = append(body, g.overloadSetLines(mc, set, usable, false)...)
	}
	for _, nested := range sortedByName(cls.Nested) {
		body = append(body, g.emitClass(mc, nested, usable, tvOut)...)
	}
	body = append(body, g.missingNestedStubs(mc, cls)...)

	for _, tv := range classVars {
		*tvOut = append(*tvOut, mc.typeVarLine(tv))
	}

	header := g.classHeader(mc, cls, usable, classVars)
	doc := g.docLines(cls.Doc, cls.IsDeprecated)
	if len(body) == 0 && len(doc) == 0 {
		return []string{header + " ..."}
	}
	block := []string{header}
	block = append(block, indent(doc)...)
	if len(body) == 0 {
		block = append(block, "    ...")
		return block
	}
	block = append(block, indent(body)...)
	return block
}

func (g *generator) classHeader(mc *moduleContext, cls *java.Class, usable scope, classVars []typeVar) string {
	var bases []string
	if cls.Super != nil {
		bases = append(bases, mc.base(g.types.typeOf(cls.Super, usable)))
	}
	for _, iface := range cls.Interfaces {
		bases = append(bases, mc.base(g.types.typeOf(iface, usable)))
	}
	if len(classVars) > 0 {
		mc.imports["typing"] = true
		names := make([]string, len(classVars))
		for i, tv := range classVars {
			names[i] = tv.stubName
		}
		bases = append(bases, "typing.Generic["+strings.Join(names, ", ")+"]")
	}
	// Exception types must subclass the Python Exception to be usable
	// in except clauses and as __cause__.
	if cls.Name == "java.lang.Throwable" {
		mc.imports["builtins"] = true
		bases = append(bases, "builtins.Exception")
	}

	name := cls.SimpleName()
	if mangled, ok := pysafe(name); ok {
		name = mangled
	}
	if len(bases) == 0 {
		return "class " + name + ":"
	}
	return "class " + name + "(" + strings.Join(bases, ", ") + "):"
}

func (g *generator) enumConstantLines(mc *moduleContext, cls *java.Class) []string {
	if cls.Kind != java.ClassKindEnum || len(cls.EnumConstants) == 0 {
		return nil
	}
	mc.imports["typing"] = true
	self := mc.annotate(pyType{name: cls.Name})
	var lines []string
	for _, constant := range cls.EnumConstants {
		safe, ok := pysafe(constant)
		if !ok {
			continue
		}
		lines = append(lines, safe+": typing.ClassVar["+self+"] = ...")
	}
	return lines
}

func (g *generator) fieldLines(mc *moduleContext, f namedMember, classScope scope) []string {
	sc := classScope
	if f.m.IsStatic {
		// Class-level values cannot carry instance type variables.
		sc = scope{}
	}
	ann := mc.annotate(g.types.typeOf(f.m.Type, sc))
	if f.m.IsStatic {
		mc.imports["typing"] = true
		ann = "typing.ClassVar[" + ann + "]"
	}
	lines := []string{f.name + ": " + ann + " = ..."}
	lines = append(lines, g.docLines(f.m.Doc, f.m.IsDeprecated)...)
	return lines
}

// argSig is one rendered parameter. The name stays unmangled until
// formatting so repeat detection sees the names the class declares.
type argSig struct {
	receiver bool
	name     string
	ann      string
	varargs  bool
}

// overloadSetLines renders one overload set: the method-scoped
// TypeVar declarations first (declarations between overload stanzas
// are not allowed), then one stanza per member.
func (g *generator) overloadSetLines(mc *moduleContext, set overloadSet, classScope scope, isCtor bool) []string {
	overloaded := len(set.members) > 1

	type stanza struct {
		m    *java.Member
		vars []typeVar
		args []argSig
		ret  string
	}
	stanzas := make([]stanza, 0, len(set.members))
	for i, m := range set.members {
		scopeID := set.name
		if overloaded {
			scopeID = fmt.Sprintf("%s_%d", set.name, i)
		}
		methodVars := g.types.typeVarsFor(m.TypeParams, scopeID)
		sc := classScope.extend(methodVars)
		if m.IsStatic && !isCtor {
			// Static methods do not see the enclosing class's
			// type variables.
			sc = scope{vars: methodVars}
		}
		st := stanza{m: m, vars: methodVars}
		if !m.IsStatic || isCtor {
			st.args = append(st.args, argSig{receiver: true, name: "self"})
		}
		for pi, p := range m.Params {
			ref := p.Type
			varargs := m.IsVarargs && pi == len(m.Params)-1 && ref != nil && ref.Kind == java.KindArray
			if varargs {
				ref = ref.Elem
			}
			name := p.Name
			if name == "" {
				name = inferArgName(ref, argNames(st.args), len(st.args))
			}
			st.args = append(st.args, argSig{
				name:    name,
				ann:     mc.annotate(g.types.typeOf(ref, sc)),
				varargs: varargs,
			})
		}
		if !isCtor {
			st.ret = mc.annotate(g.types.typeOf(m.Return, sc))
		}
		stanzas = append(stanzas, st)
	}

	var lines []string
	for _, st := range stanzas {
		for _, tv := range st.vars {
			lines = append(lines, mc.typeVarLine(tv))
		}
	}
	for _, st := range stanzas {
		if overloaded {
			mc.imports["typing"] = true
			lines = append(lines, "@typing.overload")
		}
		if st.m.IsStatic && !isCtor {
			lines = append(lines, "@staticmethod")
		}
		parts := make([]string, 0, len(st.args))
		for i, a := range st.args {
			if a.receiver {
				parts = append(parts, a.name)
				continue
			}
			name, ok := pysafe(a.name)
			if !ok {
				name = fmt.Sprintf("invalidArgName%d", i)
			}
			def := name
			if a.varargs {
				def = "*" + def
			}
			parts = append(parts, def+": "+a.ann)
		}
		var head string
		if isCtor {
			head = "def __init__(" + strings.Join(parts, ", ") + "):"
		} else {
			head = "def " + set.name + "(" + strings.Join(parts, ", ") + ") -> " + st.ret + ":"
		}
		doc := g.docLines(st.m.Doc, st.m.IsDeprecated)
		if len(doc) == 0 {
			lines = append(lines, head+" ...")
			continue
		}
		lines = append(lines, head)
		lines = append(lines, indent(doc)...)
		lines = append(lines, "    ...")
	}
	return lines
}

// missingNestedStubs covers references to nested classes the model
// dropped (private, package-private, or unloadable): each gets an
// empty stub inside the enclosing class so the reference cannot
// dangle.
func (g *generator) missingNestedStubs(mc *moduleContext, cls *java.Class) []string {
	emitted := make(map[string]bool, len(cls.Nested))
	for _, nested := range cls.Nested {
		emitted[nested.SimpleName()] = true
	}
	prefix := cls.Name + "$"
	missing := make(map[string]bool)
	for used := range mc.used {
		if !strings.HasPrefix(used, prefix) {
			continue
		}
		name := used[len(prefix):]
		if i := strings.Index(name, "$"); i >= 0 {
			name = name[:i]
		}
		if !emitted[name] {
			missing[name] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	var lines []string
	for _, name := range names {
		log.Warningf("reference to inaccessible nested class %s$%s, generating an empty stub", cls.Name, name)
		stub := name
		if mangled, ok := pysafe(name); ok {
			stub = mangled
		}
		lines = append(lines, "class "+stub+": ...")
	}
	return lines
}

// docLines wraps plain documentation text into docstring lines at the
// declaration's own indent level. Deprecation gets a trailing
// directive line even when no other documentation exists.
func (g *generator) docLines(doc string, deprecated bool) []string {
	if !g.withDocs {
		return nil
	}
	if deprecated {
		if doc != "" {
			doc += "\n\n.. deprecated::"
		} else {
			doc = ".. deprecated::"
		}
	}
	if doc == "" {
		return nil
	}
	doc = strings.ReplaceAll(doc, `"""`, "'''")
	lines := []string{`"""`}
	lines = append(lines, strings.Split(doc, "\n")...)
	lines = append(lines, `"""`)
	return lines
}

func argNames(args []argSig) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.name
	}
	return names
}

// inferArgName derives a parameter name from the parameter type when
// the class file carries none: the decapitalized simple type name,
// "Array"-suffixed for arrays, numbered from the second occurrence of
// the same base. An unusable type falls back to the position.
func inferArgName(ref *java.TypeRef, prior []string, position int) string {
	base := baseArgName(ref)
	if base == "" {
		return fmt.Sprintf("arg%d", position)
	}
	repeats := 0
	for _, name := range prior {
		if strings.HasPrefix(name, base) {
			repeats++
		}
	}
	if repeats == 0 {
		return base
	}
	return base + strconv.Itoa(repeats+1)
}

func baseArgName(ref *java.TypeRef) string {
	if ref == nil {
		return ""
	}
	array := false
	for ref.Kind == java.KindArray {
		array = true
		ref = ref.Elem
		if ref == nil {
			return ""
		}
	}
	var name string
	switch ref.Kind {
	case java.KindPrimitive, java.KindTypeVar:
		name = ref.Name
	case java.KindClass, java.KindParameterized:
		name = ref.Name
		if i := strings.LastIndex(name, "$"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
	default:
		return ""
	}
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	name = string(runes)
	if array {
		name += "Array"
	}
	return name
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		out[i] = "    " + line
	}
	return out
}
