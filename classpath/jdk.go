package classpath

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var javaHomeRe = regexp.MustCompile(`java\.home\s*=\s*(.+)`)

// FindJDK locates a JDK installation. An explicit override wins,
// then the JAVA_HOME environment variable, then the java.home
// property reported by the java launcher on PATH.
func FindJDK(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("java home %s: %w", override, err)
		}
		return override, nil
	}

	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		return jh, nil
	}

	cmd := exec.Command("java", "-XshowSettings:properties", "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run java: %w", err)
	}

	matches := javaHomeRe.FindSubmatch(output)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not find java.home in output")
	}

	return strings.TrimSpace(string(matches[1])), nil
}

// PlatformClasses returns a classpath entry covering the JDK's own
// classes: a jmods glob on modular JDKs, rt.jar on older ones.
func PlatformClasses(home string) (string, bool) {
	dir := filepath.Join(home, "jmods")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return filepath.Join(dir, "*.jmod"), true
	}
	for _, rel := range []string{
		filepath.Join("lib", "rt.jar"),
		filepath.Join("jre", "lib", "rt.jar"),
	} {
		path := filepath.Join(home, rel)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// SourceArchive returns the src.zip of a JDK installation. Modern
// JDKs keep it under lib/, older ones at the installation root.
func SourceArchive(home string) (string, bool) {
	path := filepath.Join(home, "lib", "src.zip")
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	path = filepath.Join(home, "src.zip")
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}
