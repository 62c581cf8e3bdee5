package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/stubgen/classpath"
	"github.com/dhamidi/stubgen/config"
	"github.com/dhamidi/stubgen/java/javadoc"
)

func newDocCmd() *cobra.Command {
	var (
		sourcePath []string
		javaHome   string
	)

	cmd := &cobra.Command{
		Use:   "doc CLASS [MEMBER]",
		Short: "Show the extracted documentation for a class or member",
		Long: `Show the plain-text documentation a generate run would put into the
stub for a class, field, or method. Nested classes use $ in the class
name.

For JDK classes, documentation comes from src.zip in the JDK
installation.

Examples:
  stubgen doc java.util.List
  stubgen doc java.util.List add
  stubgen doc java.util.Map$Entry getKey
  stubgen doc com.example.Counter --source-path src`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("%w: %s", ErrUsage, err)
			}
			if cmd.Flags().Changed("source-path") {
				cfg.Java.SourcePath = sourcePath
			}
			if cmd.Flags().Changed("java-home") {
				cfg.Java.Home = javaHome
			}
			member := ""
			if len(args) == 2 {
				member = args[1]
			}
			return runDoc(args[0], member, cfg)
		},
	}

	cmd.Flags().StringSliceVar(&sourcePath, "source-path", nil, "directories, source jars, or .java files to search")
	cmd.Flags().StringVar(&javaHome, "java-home", "", "JDK installation to take src.zip from")

	return cmd
}

func runDoc(className, memberName string, cfg *config.File) error {
	index := javadoc.NewIndex()
	for _, src := range cfg.Java.SourcePath {
		if err := index.AddSource(src); err != nil {
			log.Warningf("skipping source path %s: %s", src, err.Error())
		}
	}

	if index.Lookup(className) == nil {
		if err := addJDKSource(index, className, cfg.Java.Home); err != nil {
			log.Debugf("no JDK source for %s: %s", className, err.Error())
		}
	}

	docs := index.Lookup(className)
	if docs == nil {
		return fmt.Errorf("no documentation found for %s", className)
	}
	if memberName == "" {
		if docs.Text == "" {
			return fmt.Errorf("no documentation found for %s", className)
		}
		fmt.Println(docs.Text)
		return nil
	}
	return printMemberDoc(docs, className, memberName)
}

// addJDKSource pulls the single matching source file out of the
// JDK's src.zip.
func addJDKSource(index *javadoc.Index, className, override string) error {
	home, err := classpath.FindJDK(override)
	if err != nil {
		return err
	}
	src, ok := classpath.SourceArchive(home)
	if !ok {
		return fmt.Errorf("no src.zip under %s", home)
	}
	return index.AddClassSource(src, className)
}

func printMemberDoc(docs *javadoc.ClassDocs, className, memberName string) error {
	if doc := docs.Fields[memberName]; doc != "" {
		fmt.Println(doc)
		return nil
	}

	// Constructors are documented under the class's own name.
	lookup := memberName
	simple := className
	if i := strings.LastIndexAny(simple, ".$"); i >= 0 {
		simple = simple[i+1:]
	}
	if memberName == simple {
		lookup = "<init>"
	}

	type overload struct {
		arity int
		doc   string
	}
	var found []overload
	for key, doc := range docs.Methods {
		if key.Name == lookup && doc != "" {
			found = append(found, overload{arity: key.Arity, doc: doc})
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("no documentation found for %s.%s", className, memberName)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].arity < found[j].arity })
	for i, o := range found {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(o.doc)
	}
	return nil
}
