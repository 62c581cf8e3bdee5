package pystub

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/stubgen/classfile"
	"github.com/dhamidi/stubgen/java"
)

var log = commonlog.GetLogger("stubgen.pystub")

// ErrNoClasses reports a prefix that matched nothing on the
// classpath. Callers treat it as a usage error rather than a
// generation failure.
var ErrNoClasses = errors.New("no classes found")

// Provider enumerates and loads classes; the classpath implements
// it. Class names cross this boundary in internal form
// ("com/example/Outer$Inner").
type Provider interface {
	// ClassNames lists the top-level classes under a dotted package
	// prefix, sorted, deduplicated with the first entry winning.
	ClassNames(prefix string) ([]string, error)
	// Load parses the class file for an internal binary name.
	Load(name string) (*classfile.ClassFile, error)
}

// DocSource attaches plain-text documentation to a freshly built
// class model. A nil source leaves every Doc field empty.
type DocSource interface {
	Annotate(cls *java.Class)
}

// Options select the stub dialect.
type Options struct {
	// Docstrings carries documentation and deprecation notes into
	// the stubs.
	Docstrings bool
	// ConvertStrings maps java.lang.String to str.
	ConvertStrings bool
	// BuiltinSequences renders arrays as list[...] instead of
	// typing.List[...]; valid from Python 3.9 on.
	BuiltinSequences bool
	// PerClass writes one module per top-level class instead of one
	// per package.
	PerClass bool
	// NoStubsSuffix drops the -stubs suffix from the top-level
	// output directory.
	NoStubsSuffix bool
}

// Registry owns every class model built during a run, keyed by
// qualified source name, so a class reachable through several routes
// is built exactly once.
type Registry struct {
	classes map[string]*java.Class
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*java.Class)}
}

func (r *Registry) Get(name string) *java.Class {
	return r.classes[name]
}

// Names returns the registered qualified names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Traverse builds the model for every top-level class under the
// prefixes, each exactly once, in name order. Synthetic, local, and
// anonymous classes are skipped; nested classes are reached only
// through their enclosing class. A prefix that yields no classes
// fails with ErrNoClasses before anything is built.
func Traverse(prefixes []string, provider Provider, reg *Registry) error {
	seen := make(map[string]bool)
	var names []string
	for _, prefix := range prefixes {
		found, err := provider.ClassNames(prefix)
		if err != nil {
			return fmt.Errorf("failed to list classes under %q: %w", prefix, err)
		}
		if len(found) == 0 {
			return fmt.Errorf("%w under prefix %q", ErrNoClasses, prefix)
		}
		for _, name := range found {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	for _, name := range names {
		qualified := classfile.InternalToSourceName(name)
		if reg.Get(qualified) != nil {
			continue
		}
		cf, err := provider.Load(name)
		if err != nil {
			log.Warningf("skipping %s: %s", qualified, err.Error())
			continue
		}
		if cf.AccessFlags.IsSynthetic() || cf.IsLocalOrAnonymous() {
			log.Debugf("skipping %s: not declared at top level", qualified)
			continue
		}
		cls, err := java.FromClassFile(cf, provider)
		if err != nil {
			log.Warningf("skipping %s: %s", qualified, err.Error())
			continue
		}
		reg.classes[cls.Name] = cls
	}
	return nil
}

// Generate runs the whole pipeline in memory: traverse, annotate,
// assemble, lay out. Nothing touches the file system; the caller
// writes the returned files.
func Generate(prefixes []string, provider Provider, docs DocSource, opts Options) ([]OutputFile, error) {
	reg := NewRegistry()
	if err := Traverse(prefixes, provider, reg); err != nil {
		return nil, err
	}

	byPackage := make(map[string][]*java.Class)
	for _, name := range reg.Names() {
		cls := reg.Get(name)
		if cls.Visibility != java.VisibilityPublic {
			log.Debugf("skipping %s: not public", name)
			continue
		}
		pkg := cls.Package()
		if pkg == "" {
			log.Warningf("skipping %s: classes in the default package cannot be imported from Python", name)
			continue
		}
		if docs != nil && opts.Docstrings {
			docs.Annotate(cls)
		}
		byPackage[pkg] = append(byPackage[pkg], cls)
	}
	if len(byPackage) == 0 {
		return nil, fmt.Errorf("%w: no public classes under the requested prefixes", ErrNoClasses)
	}

	asm := &assembler{
		gen: generator{
			types: mapper{
				convertStrings: opts.ConvertStrings,
				builtinList:    opts.BuiltinSequences,
			},
			withDocs: opts.Docstrings,
		},
		perClass: opts.PerClass,
	}
	modules := asm.assemble(byPackage)
	log.Infof("generated %d stub modules for %d packages", len(modules), len(byPackage))
	return layoutFiles(modules, opts), nil
}
