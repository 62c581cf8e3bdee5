package pystub

import (
	"sort"
	"strings"

	"github.com/dhamidi/stubgen/java"
)

// StubModule is one emitted stub file: a Java package, or a single
// top-level class in per-class granularity, rendered as Python module
// text.
type StubModule struct {
	// Package is the Java package the module covers.
	Package string
	// Class is the single class of a per-class module, "" otherwise.
	Class string
	// Subpackages are the direct child package names; parent modules
	// import them so the package tree is navigable from its root.
	Subpackages []string
	// Classes are the module's top-level classes in name order.
	Classes []*java.Class
	// Text is the rendered stub source.
	Text string
}

// classBlock is one top-level class rendered for a module: its
// hoisted TypeVar declarations and its class statement lines.
type classBlock struct {
	typeVars []string
	lines    []string
}

// assembler turns grouped classes into rendered stub modules. Modules
// render twice when import cycles force deferrals: the first pass
// discovers the reference graph, the second applies the deferral
// sets.
type assembler struct {
	gen      generator
	perClass bool
}

type renderedPackage struct {
	pkg      string
	modules  []*StubModule
	crossPkg map[string]bool
	baseRefs map[string]bool
}

// assemble renders every package and resolves inter-module cycles.
// The returned modules are ordered by package, per-class modules
// after their package's root module.
func (a *assembler) assemble(byPackage map[string][]*java.Class) []*StubModule {
	packages := make([]string, 0, len(byPackage))
	for pkg := range byPackage {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)
	subpackages := packageTree(packages)

	treeNames := make([]string, 0, len(subpackages))
	for pkg := range subpackages {
		treeNames = append(treeNames, pkg)
	}
	sort.Strings(treeNames)

	rendered := make(map[string]*renderedPackage, len(treeNames))
	for _, pkg := range treeNames {
		rendered[pkg] = a.renderPackage(pkg, byPackage[pkg], subpackages[pkg], nil)
	}

	deferrals := a.resolveCycles(packages, rendered)
	for pkg, deferred := range deferrals {
		rendered[pkg] = a.renderPackage(pkg, byPackage[pkg], subpackages[pkg], deferred)
	}

	var modules []*StubModule
	for _, pkg := range treeNames {
		modules = append(modules, rendered[pkg].modules...)
	}
	return modules
}

// packageTree closes the package set over ancestors and maps each
// package to its sorted direct children.
func packageTree(packages []string) map[string][]string {
	children := make(map[string]map[string]bool)
	ensure := func(pkg string) {
		if _, ok := children[pkg]; !ok {
			children[pkg] = make(map[string]bool)
		}
	}
	for _, pkg := range packages {
		segments := strings.Split(pkg, ".")
		for i := range segments {
			name := strings.Join(segments[:i+1], ".")
			ensure(name)
			if i > 0 {
				children[strings.Join(segments[:i], ".")][segments[i]] = true
			}
		}
	}
	tree := make(map[string][]string, len(children))
	for pkg, kids := range children {
		names := make([]string, 0, len(kids))
		for kid := range kids {
			names = append(names, kid)
		}
		sort.Strings(names)
		tree[pkg] = names
	}
	return tree
}

func (a *assembler) renderPackage(pkg string, classes []*java.Class, subpackages []string, deferred map[string]bool) *renderedPackage {
	if a.perClass {
		return a.renderPerClass(pkg, classes, subpackages, deferred)
	}
	return a.renderPerPackage(pkg, classes, subpackages, deferred)
}

// renderPerPackage renders one package as a single module. Classes
// emit in dependency waves so base classes precede their subclasses;
// when no wave makes progress the rest emit in name order and forward
// base references fall back to qualified names.
func (a *assembler) renderPerPackage(pkg string, classes []*java.Class, subpackages []string, deferred map[string]bool) *renderedPackage {
	mod := &StubModule{Package: pkg, Subpackages: subpackages, Classes: sortedByName(classes)}
	mc := newModuleContext(pkg, false, deferred)

	var blocks []classBlock
	remaining := append([]*java.Class(nil), mod.Classes...)
	for len(remaining) > 0 {
		ready := make([]*java.Class, 0, len(remaining))
		for _, cls := range remaining {
			if basesSatisfied(cls, pkg, mc.done) {
				ready = append(ready, cls)
			}
		}
		if len(ready) == 0 {
			ready = remaining
		}
		next := remaining[:0]
		for _, cls := range remaining {
			if !containsClass(ready, cls) {
				next = append(next, cls)
			}
		}
		remaining = next
		for _, cls := range ready {
			blocks = append(blocks, a.renderClass(mc, cls))
			mc.done[cls.LocalName()] = true
		}
	}
	blocks = append(blocks, emptyStubs(pkg, mc.done, missingLocalClasses(mc))...)

	importLines := append(mc.importLines(), subpackageImports(pkg, subpackages)...)
	sort.Strings(importLines)
	mod.Text = moduleText(importLines, blocks)
	return &renderedPackage{
		pkg:      pkg,
		modules:  []*StubModule{mod},
		crossPkg: crossPackages(mc),
		baseRefs: mc.baseRefs,
	}
}

// renderPerClass renders every top-level class of a package into its
// own module, plus a package root module that imports subpackages and
// re-exports the classes.
func (a *assembler) renderPerClass(pkg string, classes []*java.Class, subpackages []string, deferred map[string]bool) *renderedPackage {
	out := &renderedPackage{
		pkg:      pkg,
		crossPkg: make(map[string]bool),
		baseRefs: make(map[string]bool),
	}
	root := &StubModule{Package: pkg, Subpackages: subpackages, Classes: sortedByName(classes)}
	emitted := make(map[string]bool, len(root.Classes))
	for _, cls := range root.Classes {
		emitted[cls.LocalName()] = true
	}

	missing := make(map[string]bool)
	rootImports := subpackageImports(pkg, subpackages)
	for _, cls := range root.Classes {
		mc := newModuleContext(pkg, true, deferred)
		mc.done[cls.LocalName()] = true
		block := a.renderClass(mc, cls)
		mod := &StubModule{
			Package: pkg,
			Class:   cls.LocalName(),
			Classes: []*java.Class{cls},
			Text:    moduleText(mc.importLines(), []classBlock{block}),
		}
		out.modules = append(out.modules, mod)
		// A sibling with its own module is not missing; it reaches
		// this module's references through the package root.
		for name := range missingLocalClasses(mc) {
			if !emitted[name] {
				missing[name] = true
			}
		}
		for ref := range crossPackages(mc) {
			out.crossPkg[ref] = true
		}
		for ref := range mc.baseRefs {
			out.baseRefs[ref] = true
		}
		localName := mangleLocal(cls.LocalName())
		rootImports = append(rootImports,
			"from "+pysafePath(pkg)+"."+localName+" import "+localName+" as "+localName)
	}
	sort.Strings(rootImports)
	root.Text = moduleText(rootImports, emptyStubs(pkg, nil, missing))
	out.modules = append([]*StubModule{root}, out.modules...)
	return out
}

func (a *assembler) renderClass(mc *moduleContext, cls *java.Class) classBlock {
	var typeVars []string
	lines := a.gen.emitClass(mc, cls, scope{}, &typeVars)
	return classBlock{typeVars: typeVars, lines: lines}
}

// missingLocalClasses returns referenced same-package top-level
// classes that no module emitted: private, package-private, or
// absent from the classpath.
func missingLocalClasses(mc *moduleContext) map[string]bool {
	missing := make(map[string]bool)
	for used := range mc.used {
		dot := strings.LastIndex(used, ".")
		if dot < 0 || used[:dot] != mc.pkg {
			continue
		}
		local := used[dot+1:]
		if strings.Contains(local, "$") {
			continue
		}
		if !mc.done[local] {
			missing[local] = true
		}
	}
	return missing
}

// emptyStubs renders bodiless placeholders for inaccessible classes,
// name order. They keep local references from dangling while exposing
// no members, which matches how the originals behave at a call site.
func emptyStubs(pkg string, done map[string]bool, missing map[string]bool) []classBlock {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	blocks := make([]classBlock, 0, len(names))
	for _, name := range names {
		if done != nil {
			done[name] = true
		}
		log.Warningf("reference to inaccessible class %s.%s, generating an empty stub", pkg, name)
		safe := name
		if mangled, ok := pysafe(safe); ok {
			safe = mangled
		}
		blocks = append(blocks, classBlock{lines: []string{"class " + safe + ": ..."}})
	}
	return blocks
}

func subpackageImports(pkg string, subpackages []string) []string {
	lines := make([]string, 0, len(subpackages))
	for _, sub := range subpackages {
		lines = append(lines, "import "+pysafePath(pkg+"."+sub))
	}
	return lines
}

// moduleText joins import lines and class blocks into the final
// module source: imports, a two-line gap, then each block preceded by
// one blank line with its TypeVar declarations first.
func moduleText(importLines []string, blocks []classBlock) string {
	lines := make([]string, 0, len(importLines)+2)
	lines = append(lines, importLines...)
	lines = append(lines, "", "")
	for _, block := range blocks {
		lines = append(lines, "")
		lines = append(lines, block.typeVars...)
		lines = append(lines, block.lines...)
	}
	text := strings.Trim(strings.Join(lines, "\n"), "\n")
	return text + "\n"
}

// basesSatisfied reports whether every same-package base of the class
// and of its nested classes is already emitted. Definition order
// matters to Python where it does not to Java, so subclasses wait for
// their bases.
func basesSatisfied(cls *java.Class, pkg string, done map[string]bool) bool {
	for _, base := range classBases(cls) {
		name := base.RawName()
		dot := strings.LastIndex(name, ".")
		if dot < 0 || name[:dot] != pkg {
			continue
		}
		top := name[dot+1:]
		if i := strings.Index(top, "$"); i >= 0 {
			top = top[:i]
		}
		if top == cls.LocalName() {
			continue
		}
		if !done[top] {
			return false
		}
	}
	for _, nested := range cls.Nested {
		if !basesSatisfied(nested, pkg, done) {
			return false
		}
	}
	return true
}

func classBases(cls *java.Class) []*java.TypeRef {
	var bases []*java.TypeRef
	if cls.Super != nil {
		bases = append(bases, cls.Super)
	}
	return append(bases, cls.Interfaces...)
}

// resolveCycles finds strongly connected module groups and picks the
// deferrals that break them: within a group, the lexicographically
// later package defers its references back to the earlier one. An
// edge a base-class list requires stays eager; a cycle surviving only
// through such edges is reported and left in place.
func (a *assembler) resolveCycles(packages []string, rendered map[string]*renderedPackage) map[string]map[string]bool {
	generated := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		generated[pkg] = true
	}
	edges := make(map[string][]string, len(packages))
	for _, pkg := range packages {
		var out []string
		for ref := range rendered[pkg].crossPkg {
			if generated[ref] {
				out = append(out, ref)
			}
		}
		sort.Strings(out)
		edges[pkg] = out
	}

	deferrals := make(map[string]map[string]bool)
	for _, component := range stronglyConnected(packages, edges) {
		if len(component) < 2 {
			continue
		}
		inComponent := make(map[string]bool, len(component))
		for _, pkg := range component {
			inComponent[pkg] = true
		}
		for _, from := range component {
			for _, to := range edges[from] {
				if !inComponent[to] || from <= to {
					continue
				}
				if rendered[from].baseRefs[to] {
					log.Warningf("import cycle between %s and %s is held open by a base class list and cannot be deferred", from, to)
					continue
				}
				if deferrals[from] == nil {
					deferrals[from] = make(map[string]bool)
				}
				deferrals[from][to] = true
			}
		}
	}
	return deferrals
}

// stronglyConnected is Tarjan's algorithm over the package graph.
// Nodes and adjacency are visited in sorted order so the component
// list is stable for identical inputs.
func stronglyConnected(nodes []string, edges map[string][]string) [][]string {
	index := make(map[string]int, len(nodes))
	low := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	var components [][]string
	next := 0

	var visit func(n string)
	visit = func(n string) {
		index[n] = next
		low[n] = next
		next++
		stack = append(stack, n)
		onStack[n] = true
		for _, m := range edges[n] {
			if _, seen := index[m]; !seen {
				visit(m)
				if low[m] < low[n] {
					low[n] = low[m]
				}
			} else if onStack[m] && index[m] < low[n] {
				low[n] = index[m]
			}
		}
		if low[n] == index[n] {
			var component []string
			for {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[m] = false
				component = append(component, m)
				if m == n {
					break
				}
			}
			sort.Strings(component)
			components = append(components, component)
		}
	}
	for _, n := range nodes {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}
	return components
}

func crossPackages(mc *moduleContext) map[string]bool {
	out := make(map[string]bool)
	for used := range mc.used {
		if dot := strings.LastIndex(used, "."); dot >= 0 && used[:dot] != mc.pkg {
			out[used[:dot]] = true
		}
	}
	return out
}

func sortedByName(classes []*java.Class) []*java.Class {
	out := append([]*java.Class(nil), classes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func containsClass(classes []*java.Class, cls *java.Class) bool {
	for _, c := range classes {
		if c == cls {
			return true
		}
	}
	return false
}
