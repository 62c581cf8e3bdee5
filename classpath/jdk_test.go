package classpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindJDKOverride(t *testing.T) {
	home := t.TempDir()
	got, err := FindJDK(home)
	if err != nil {
		t.Fatalf("Failed to find JDK: %v", err)
	}
	if got != home {
		t.Errorf("expected %s, got %s", home, got)
	}
}

func TestFindJDKOverrideMissing(t *testing.T) {
	if _, err := FindJDK(filepath.Join(t.TempDir(), "no-such-jdk")); err == nil {
		t.Error("expected an error for a missing override")
	}
}

func TestFindJDKFromEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("JAVA_HOME", home)
	got, err := FindJDK("")
	if err != nil {
		t.Fatalf("Failed to find JDK: %v", err)
	}
	if got != home {
		t.Errorf("expected %s, got %s", home, got)
	}
}

func TestPlatformClassesFromJmods(t *testing.T) {
	home := t.TempDir()
	if _, ok := PlatformClasses(home); ok {
		t.Error("expected no platform classes in an empty home")
	}

	dir := filepath.Join(home, "jmods")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create jmods directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "java.base.jmod"), []byte("JM\x01\x00"), 0o644); err != nil {
		t.Fatalf("Failed to write jmod: %v", err)
	}

	pattern, ok := PlatformClasses(home)
	if !ok {
		t.Fatal("expected a jmods glob")
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("Failed to expand glob: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(matches))
	}
}

func TestPlatformClassesFromRtJar(t *testing.T) {
	home := t.TempDir()
	rt := filepath.Join(home, "lib", "rt.jar")
	if err := os.MkdirAll(filepath.Dir(rt), 0o755); err != nil {
		t.Fatalf("Failed to create lib directory: %v", err)
	}
	if err := os.WriteFile(rt, []byte("PK"), 0o644); err != nil {
		t.Fatalf("Failed to write rt.jar: %v", err)
	}

	path, ok := PlatformClasses(home)
	if !ok {
		t.Fatal("expected a platform classes entry")
	}
	if path != rt {
		t.Errorf("expected %s, got %s", rt, path)
	}
}

func TestSourceArchive(t *testing.T) {
	home := t.TempDir()
	if _, ok := SourceArchive(home); ok {
		t.Error("expected no source archive in an empty home")
	}

	rootZip := filepath.Join(home, "src.zip")
	if err := os.WriteFile(rootZip, []byte("PK"), 0o644); err != nil {
		t.Fatalf("Failed to write src.zip: %v", err)
	}
	if got, ok := SourceArchive(home); !ok || got != rootZip {
		t.Errorf("expected %s, got %s", rootZip, got)
	}

	libZip := filepath.Join(home, "lib", "src.zip")
	if err := os.MkdirAll(filepath.Dir(libZip), 0o755); err != nil {
		t.Fatalf("Failed to create lib directory: %v", err)
	}
	if err := os.WriteFile(libZip, []byte("PK"), 0o644); err != nil {
		t.Fatalf("Failed to write src.zip: %v", err)
	}
	if got, ok := SourceArchive(home); !ok || got != libZip {
		t.Errorf("expected %s, got %s", libZip, got)
	}
}
