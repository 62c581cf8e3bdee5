// Package config handles stubgen.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// File mirrors a stubgen.toml file. Command line flags override the
// values loaded here.
type File struct {
	Output Output `toml:"output"`
	Java   Java   `toml:"java"`
	Stubs  Stubs  `toml:"stubs"`
}

// Output configures where and how stub files are written.
type Output struct {
	Dir           string `toml:"dir"`
	PerClass      bool   `toml:"per-class"`
	StubsSuffix   bool   `toml:"stubs-suffix"`
	PythonVersion string `toml:"python-version"`
}

// Java configures where classes and sources come from.
type Java struct {
	Classpath  []string `toml:"classpath"`
	SourcePath []string `toml:"source-path"`
	Home       string   `toml:"home"`
}

// Stubs configures the generated stub dialect.
type Stubs struct {
	Docstrings     bool `toml:"docstrings"`
	ConvertStrings bool `toml:"convert-strings"`
}

// Default returns the configuration used when stubgen.toml is absent.
func Default() *File {
	return &File{
		Output: Output{
			Dir:           ".",
			StubsSuffix:   true,
			PythonVersion: "3.8",
		},
		Java: Java{
			Classpath: []string{"."},
		},
		Stubs: Stubs{
			Docstrings: true,
		},
	}
}

// Load parses stubgen.toml from the given directory. A missing file
// yields the defaults; keys absent from the file keep their default
// values.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, "stubgen.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	f := Default()
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return f, nil
}

// Version is a minimum Python version such as "3.9".
type Version struct {
	Major int
	Minor int
}

// ParseVersion reads a major.minor version string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid Python version %q (expected major.minor)", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid Python version %q", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid Python version %q", s)
	}
	return Version{Major: major, Minor: minor}, nil
}

// AtLeast reports whether the version is major.minor or newer.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}
