package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/stubgen/classpath"
	"github.com/dhamidi/stubgen/config"
	"github.com/dhamidi/stubgen/java/javadoc"
	"github.com/dhamidi/stubgen/pom"
	"github.com/dhamidi/stubgen/pystub"
)

func newGenerateCmd() *cobra.Command {
	var (
		classpathFlag  string
		outputDir      string
		javaHome       string
		sourcePath     []string
		pythonVersion  string
		noDocstrings   bool
		noStubsSuffix  bool
		convertStrings bool
		perClass       bool
	)

	cmd := &cobra.Command{
		Use:   "generate PREFIX...",
		Short: "Generate .pyi stubs for Java packages",
		Long: `Generate Python type stub files for every class under the given
package prefixes.

Classes come from the configured classpath plus the JDK's own modules.
Docstrings come from matching .java sources on the source path and, for
JDK classes, from the JDK's src.zip.

Examples:
  stubgen generate com.example --classpath 'lib/*.jar' --output-dir stubs
  stubgen generate java.util java.io
  stubgen generate com.example --classpath mvn:com.google.guava:guava:33.0.0-jre`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("%w: %s", ErrUsage, err)
			}
			flags := cmd.Flags()
			if flags.Changed("classpath") {
				cfg.Java.Classpath = splitClasspath(classpathFlag)
			}
			if flags.Changed("output-dir") {
				cfg.Output.Dir = outputDir
			}
			if flags.Changed("java-home") {
				cfg.Java.Home = javaHome
			}
			if flags.Changed("source-path") {
				cfg.Java.SourcePath = sourcePath
			}
			if flags.Changed("python-version") {
				cfg.Output.PythonVersion = pythonVersion
			}
			if noDocstrings {
				cfg.Stubs.Docstrings = false
			}
			if noStubsSuffix {
				cfg.Output.StubsSuffix = false
			}
			if convertStrings {
				cfg.Stubs.ConvertStrings = true
			}
			if perClass {
				cfg.Output.PerClass = true
			}
			return runGenerate(args, cfg)
		},
	}

	cmd.Flags().StringVar(&classpathFlag, "classpath", "", `java class path, ":"-separated; globs and mvn: coordinates allowed`)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory to write stubs to")
	cmd.Flags().StringVar(&javaHome, "java-home", "", "JDK installation to take java.* classes from")
	cmd.Flags().StringSliceVar(&sourcePath, "source-path", nil, "directories, source jars, or .java files to take docstrings from")
	cmd.Flags().StringVar(&pythonVersion, "python-version", "", "minimum Python version the stubs target")
	cmd.Flags().BoolVar(&noDocstrings, "no-docstrings", false, "do not generate docstrings from javadoc")
	cmd.Flags().BoolVar(&noStubsSuffix, "no-stubs-suffix", false, `do not add the PEP 561 "-stubs" suffix to top-level packages`)
	cmd.Flags().BoolVar(&convertStrings, "convert-strings", false, "map java.lang.String to str in stub annotations")
	cmd.Flags().BoolVar(&perClass, "per-class", false, "write one .pyi file per top-level class instead of per package")

	return cmd
}

func runGenerate(prefixes []string, cfg *config.File) error {
	if len(prefixes) == 0 {
		return fmt.Errorf("%w: at least one package prefix is required", ErrUsage)
	}
	version, err := config.ParseVersion(cfg.Output.PythonVersion)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	}

	path, home, err := openClasspath(cfg)
	if err != nil {
		return err
	}
	defer path.Close()

	var docs pystub.DocSource
	if cfg.Stubs.Docstrings {
		index := javadoc.NewIndex()
		for _, src := range cfg.Java.SourcePath {
			if err := index.AddSource(src); err != nil {
				log.Warningf("skipping source path %s: %s", src, err.Error())
			}
		}
		if home != "" && hasJDKPrefix(prefixes) {
			if src, ok := classpath.SourceArchive(home); ok {
				if err := index.AddSource(src); err != nil {
					log.Warningf("skipping JDK sources %s: %s", src, err.Error())
				}
			} else {
				log.Warningf("no src.zip under %s, JDK classes get no docstrings", home)
			}
		}
		docs = index
	}

	opts := pystub.Options{
		Docstrings:       cfg.Stubs.Docstrings,
		ConvertStrings:   cfg.Stubs.ConvertStrings,
		BuiltinSequences: version.AtLeast(3, 9),
		PerClass:         cfg.Output.PerClass,
		NoStubsSuffix:    !cfg.Output.StubsSuffix,
	}

	log.Infof("generating stubs for %s", strings.Join(prefixes, ", "))
	files, err := pystub.Generate(prefixes, path, docs, opts)
	if err != nil {
		return err
	}
	if err := pystub.Write(cfg.Output.Dir, files); err != nil {
		return err
	}
	log.Infof("wrote %d files under %s", len(files), cfg.Output.Dir)
	return nil
}

// openClasspath opens the configured entries plus the JDK's platform
// classes. The returned home is empty when no JDK could be found.
func openClasspath(cfg *config.File) (*classpath.Path, string, error) {
	entries := append([]string(nil), cfg.Java.Classpath...)

	home, err := classpath.FindJDK(cfg.Java.Home)
	switch {
	case err != nil && cfg.Java.Home != "":
		return nil, "", err
	case err != nil:
		log.Warningf("no JDK found, java.* classes unavailable: %s", err.Error())
	default:
		if entry, ok := classpath.PlatformClasses(home); ok {
			entries = append(entries, entry)
		} else {
			log.Warningf("no platform classes under %s", home)
		}
	}

	path, err := classpath.Open(entries)
	if err != nil {
		return nil, "", err
	}
	return path, home, nil
}

// splitClasspath splits a ":"-separated classpath. A Maven
// coordinate contains colons itself, so a "mvn" segment glues back
// together with the three segments that follow it, or four when they
// form a classifier coordinate.
func splitClasspath(raw string) []string {
	segments := strings.Split(raw, ":")
	var entries []string
	for i := 0; i < len(segments); i++ {
		entry := segments[i]
		if entry == "" {
			continue
		}
		if entry == "mvn" {
			end := i + 3
			if four := i + 4; four <= len(segments)-1 && classifierCoordinate(strings.Join(segments[i:four+1], ":")) {
				end = four
			} else if end > len(segments)-1 {
				end = len(segments) - 1
			}
			entry = strings.Join(segments[i:end+1], ":")
			i = end
		}
		entries = append(entries, entry)
	}
	return entries
}

// classifierCoordinate reports whether coord parses as the four-part
// mvn:group:artifact:classifier:version form, with a version that
// starts with a digit and a classifier that does not.
func classifierCoordinate(coord string) bool {
	c, err := pom.ParseCoordinate(coord)
	if err != nil {
		return false
	}
	return versionLike(c.Version) && !versionLike(c.Classifier)
}

func versionLike(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// hasJDKPrefix reports whether any prefix reaches into the JDK's own
// namespace.
func hasJDKPrefix(prefixes []string) bool {
	for _, prefix := range prefixes {
		for _, root := range []string{"java", "javax", "jdk"} {
			if prefix == root || strings.HasPrefix(prefix, root+".") {
				return true
			}
		}
	}
	return false
}
