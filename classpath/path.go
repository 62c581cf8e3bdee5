// Package classpath opens the places compiled classes live in:
// directories of .class files, jar and zip archives, JDK jmod files,
// and Maven coordinates resolved through a local cache.
package classpath

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/stubgen/classfile"
	"github.com/dhamidi/stubgen/pom"
)

var log = commonlog.GetLogger("stubgen.classpath")

// ErrNotFound reports a class absent from every classpath entry.
var ErrNotFound = errors.New("class not found")

// entry is one opened classpath element. Class names are internal,
// slash-separated, without the .class suffix.
type entry interface {
	ClassNames(prefix string) []string
	// Load returns raw class file bytes, or ErrNotFound.
	Load(name string) ([]byte, error)
	Close() error
}

// Path is an opened classpath. It owns a file handle per archive
// entry; Close releases them.
type Path struct {
	entries []entry
	cache   map[string]*classfile.ClassFile
}

// Open prepares a classpath. An entry may be a directory, a
// .jar/.zip/.jmod file, a mvn:group:artifact:version coordinate, or
// a glob pattern expanding to files. Any unusable entry fails the
// whole open.
func Open(entries []string) (*Path, error) {
	p := &Path{cache: map[string]*classfile.ClassFile{}}
	for _, raw := range entries {
		if err := p.add(raw); err != nil {
			p.Close()
			return nil, err
		}
	}
	log.Debugf("opened classpath with %d entries", len(p.entries))
	return p, nil
}

func (p *Path) add(raw string) error {
	if strings.HasPrefix(raw, "mvn:") {
		jar, err := pom.DownloadJar(raw)
		if err != nil {
			return err
		}
		return p.addFile(jar)
	}
	if strings.ContainsAny(raw, "*?[") {
		matches, err := filepath.Glob(raw)
		if err != nil {
			return fmt.Errorf("classpath pattern %s: %w", raw, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("classpath pattern %s matched nothing", raw)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if err := p.addFile(m); err != nil {
				return err
			}
		}
		return nil
	}
	return p.addFile(raw)
}

func (p *Path) addFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("classpath entry %s: %w", path, err)
	}
	if info.IsDir() {
		p.entries = append(p.entries, &dirEntry{root: path})
		return nil
	}
	var e entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip":
		e, err = openJar(path)
	case ".jmod":
		e, err = openJmod(path)
	default:
		return fmt.Errorf("classpath entry %s is not a directory, jar, zip, or jmod", path)
	}
	if err != nil {
		return err
	}
	p.entries = append(p.entries, e)
	return nil
}

// Close releases every archive handle. The path is unusable after.
func (p *Path) Close() error {
	var first error
	for _, e := range p.entries {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.entries = nil
	return first
}

// ClassNames lists the top-level classes under a dotted package
// prefix in internal form, sorted, with duplicates resolved in favor
// of the earliest entry. The prefix may also name a single class.
func (p *Path) ClassNames(prefix string) ([]string, error) {
	slashed := strings.ReplaceAll(prefix, ".", "/")
	seen := map[string]bool{}
	var names []string
	for _, e := range p.entries {
		for _, name := range e.ClassNames(slashed) {
			if seen[name] || !topLevel(name) {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Packages lists the dotted packages under a prefix that contain at
// least one top-level class.
func (p *Path) Packages(prefix string) []string {
	slashed := strings.ReplaceAll(prefix, ".", "/")
	seen := map[string]bool{}
	var pkgs []string
	for _, e := range p.entries {
		for _, name := range e.ClassNames(slashed) {
			if !topLevel(name) {
				continue
			}
			i := strings.LastIndex(name, "/")
			if i < 0 {
				continue
			}
			dir := name[:i]
			if seen[dir] {
				continue
			}
			seen[dir] = true
			pkgs = append(pkgs, strings.ReplaceAll(dir, "/", "."))
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// Load parses the class file for an internal binary name. Parsed
// classes are cached for the lifetime of the path.
func (p *Path) Load(name string) (*classfile.ClassFile, error) {
	if cf, ok := p.cache[name]; ok {
		return cf, nil
	}
	for _, e := range p.entries {
		data, err := e.Load(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cf, err := classfile.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		p.cache[name] = cf
		return cf, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// matchesPrefix reports whether an internal class name falls under a
// slashed package prefix. An empty prefix matches everything; a
// prefix equal to the name selects that single class.
func matchesPrefix(name, prefix string) bool {
	if prefix == "" {
		return true
	}
	return name == prefix || strings.HasPrefix(name, prefix+"/")
}

// topLevel filters out nested classes and the synthetic info classes.
func topLevel(name string) bool {
	simple := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		simple = name[i+1:]
	}
	return !strings.Contains(simple, "$") &&
		simple != "module-info" && simple != "package-info"
}

type dirEntry struct {
	root string
}

func (d *dirEntry) ClassNames(prefix string) []string {
	var names []string
	filepath.WalkDir(d.root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree: contribute nothing
			return nil
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".class") {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".class")
		if matchesPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	return names
}

func (d *dirEntry) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(name)+".class"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (d *dirEntry) Close() error { return nil }

// zipEntry serves classes out of a jar, zip, or jmod. The central
// directory is indexed once at open time.
type zipEntry struct {
	path   string
	files  map[string]*zip.File
	names  []string
	closer io.Closer
}

func openJar(path string) (*zipEntry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newZipEntry(path, "", &r.Reader, r), nil
}

// openJmod opens a JDK module file: a zip archive behind a four byte
// magic header, with classes under the classes/ directory.
func openJmod(path string) (*zipEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	const magicLen = 4
	r, err := zip.NewReader(io.NewSectionReader(f, magicLen, info.Size()-magicLen), info.Size()-magicLen)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newZipEntry(path, "classes/", r, f), nil
}

func newZipEntry(path, strip string, r *zip.Reader, closer io.Closer) *zipEntry {
	e := &zipEntry{path: path, files: map[string]*zip.File{}, closer: closer}
	for _, f := range r.File {
		name := f.Name
		if strip != "" {
			if !strings.HasPrefix(name, strip) {
				continue
			}
			name = name[len(strip):]
		}
		if !strings.HasSuffix(name, ".class") {
			continue
		}
		name = strings.TrimSuffix(name, ".class")
		if _, ok := e.files[name]; !ok {
			e.files[name] = f
			e.names = append(e.names, name)
		}
	}
	sort.Strings(e.names)
	return e
}

func (e *zipEntry) ClassNames(prefix string) []string {
	var names []string
	for _, name := range e.names {
		if matchesPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

func (e *zipEntry) Load(name string) ([]byte, error) {
	f, ok := e.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", name, e.path, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (e *zipEntry) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}
