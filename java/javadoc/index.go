package javadoc

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/stubgen/java"
)

var log = commonlog.GetLogger("stubgen.javadoc")

// MemberKey identifies a method or constructor by name and parameter
// count. Constructors use the name "<init>".
type MemberKey struct {
	Name  string
	Arity int
}

// ClassDocs holds the rendered documentation of one class, keyed the
// way stubs look it up.
type ClassDocs struct {
	Text    string
	Fields  map[string]string
	Methods map[MemberKey]string
}

func newClassDocs() *ClassDocs {
	return &ClassDocs{
		Fields:  map[string]string{},
		Methods: map[MemberKey]string{},
	}
}

// method finds a method comment by name and arity. When the exact
// arity is absent and the name is unambiguous, the single comment
// for that name serves instead; the class file can report parameters
// the source never declared.
func (d *ClassDocs) method(name string, arity int) string {
	if doc, ok := d.Methods[MemberKey{Name: name, Arity: arity}]; ok {
		return doc
	}
	var only string
	n := 0
	for key, doc := range d.Methods {
		if key.Name == name {
			only = doc
			n++
		}
	}
	if n == 1 {
		return only
	}
	return ""
}

// Index accumulates documentation comments from Java sources and
// attaches them to reflected classes. Classes are keyed by their
// qualified name with $ separating nested classes.
type Index struct {
	classes map[string]*ClassDocs
}

func NewIndex() *Index {
	return &Index{classes: map[string]*ClassDocs{}}
}

// Size returns the number of classes with indexed documentation.
func (ix *Index) Size() int {
	return len(ix.classes)
}

// AddSource indexes a .java file, a directory tree of sources, or a
// .jar/.zip source archive such as the JDK's src.zip.
func (ix *Index) AddSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ix.addDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".jar":
		return ix.addArchive(path)
	case ".java":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ix.AddFile(filepath.Base(path), data)
		return nil
	}
	return fmt.Errorf("source path %s is not a directory, archive, or .java file", path)
}

func (ix *Index) addDir(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".java") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ix.AddFile(d.Name(), data)
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("indexed sources under %s, %d classes total", root, len(ix.classes))
	return nil
}

func (ix *Index) addArchive(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening source archive %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".java") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", f.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", f.Name, path, err)
		}
		ix.AddFile(filepath.Base(f.Name), data)
	}
	log.Debugf("indexed source archive %s, %d classes total", path, len(ix.classes))
	return nil
}

// AddClassSource indexes only the source file for one class out of
// an archive. Entries may sit below a module directory, as in the
// JDK's src.zip.
func (ix *Index) AddClassSource(archive, className string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("opening source archive %s: %w", archive, err)
	}
	defer r.Close()

	topLevel := className
	if i := strings.Index(topLevel, "$"); i >= 0 {
		topLevel = topLevel[:i]
	}
	classPath := strings.ReplaceAll(topLevel, ".", "/") + ".java"

	for _, f := range r.File {
		if f.Name != classPath && !strings.HasSuffix(f.Name, "/"+classPath) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", f.Name, archive, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", f.Name, archive, err)
		}
		ix.AddFile(filepath.Base(f.Name), data)
		return nil
	}
	return fmt.Errorf("source for %s not found in %s", className, archive)
}

// AddFile indexes one source file already in memory. The name decides
// only whether the file is a module or package declaration, which
// documents no class.
func (ix *Index) AddFile(name string, data []byte) {
	if name == "module-info.java" || name == "package-info.java" {
		return
	}
	scanSource(data, ix.classes)
}

// Lookup returns the documentation indexed for a qualified class
// name ("com.example.Outer$Inner"), or nil when the class is
// unknown.
func (ix *Index) Lookup(name string) *ClassDocs {
	return ix.classes[name]
}

// Annotate copies indexed documentation onto a class model and its
// nested classes. Members without a match keep an empty Doc.
func (ix *Index) Annotate(cls *java.Class) {
	if docs := ix.classes[cls.Name]; docs != nil {
		if docs.Text != "" {
			cls.Doc = docs.Text
		}
		for i := range cls.Members {
			m := &cls.Members[i]
			switch m.Kind {
			case java.MemberField:
				if doc := docs.Fields[m.Name]; doc != "" {
					m.Doc = doc
				}
			case java.MemberMethod:
				if doc := docs.method(m.Name, len(m.Params)); doc != "" {
					m.Doc = doc
				}
			case java.MemberConstructor:
				if doc := docs.method("<init>", len(m.Params)); doc != "" {
					m.Doc = doc
				}
			}
		}
	}
	for _, nested := range cls.Nested {
		ix.Annotate(nested)
	}
}
