package pystub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputFile is one stub file to write, its path relative to the
// output root and "/"-separated.
type OutputFile struct {
	Path string
	Text string
}

// layoutFiles maps rendered modules to their output paths. Path
// segments are keyword-mangled and the first segment carries the
// -stubs suffix that marks a PEP 561 stub-only distribution. Two
// modules landing on the same path under a case-insensitive file
// system would silently overwrite each other, so the later module is
// skipped with an error and the rest of the tree survives.
func layoutFiles(modules []*StubModule, opts Options) []OutputFile {
	files := make([]OutputFile, 0, len(modules))
	taken := make(map[string]string, len(modules))
	for _, mod := range modules {
		path := modulePath(mod, opts)
		key := strings.ToLower(path)
		if owner, clash := taken[key]; clash {
			log.Errorf("output path %s for %s collides with %s, skipping this module", path, moduleID(mod), owner)
			continue
		}
		taken[key] = moduleID(mod)
		files = append(files, OutputFile{Path: path, Text: mod.Text})
	}
	return files
}

func modulePath(mod *StubModule, opts Options) string {
	dirs := strings.Split(pysafePath(mod.Package), ".")
	if !opts.NoStubsSuffix {
		dirs[0] += "-stubs"
	}
	if mod.Class != "" {
		return strings.Join(dirs, "/") + "/" + mangleLocal(mod.Class) + ".pyi"
	}
	return strings.Join(dirs, "/") + "/__init__.pyi"
}

func moduleID(mod *StubModule) string {
	if mod.Class != "" {
		return mod.Package + "." + mod.Class
	}
	return mod.Package
}

// Write creates the stub tree under root. Parent directories are
// created as needed; the texts are UTF-8 and already carry their
// trailing newline.
func Write(root string, files []OutputFile) error {
	for _, file := range files {
		target := filepath.Join(root, filepath.FromSlash(file.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(target, []byte(file.Text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}
