package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/stubgen/classfile"
	"github.com/dhamidi/stubgen/config"
	"github.com/dhamidi/stubgen/pystub"
)

func newScanCmd() *cobra.Command {
	var (
		classpathFlag string
		javaHome      string
	)

	cmd := &cobra.Command{
		Use:   "scan PREFIX...",
		Short: "List the classes visible under package prefixes",
		Long: `List every top-level class the classpath provides under the given
package prefixes, one qualified name per line. Useful for checking
what a generate run would cover.

Examples:
  stubgen scan com.example --classpath 'lib/*.jar'
  stubgen scan java.util.concurrent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("%w: %s", ErrUsage, err)
			}
			if cmd.Flags().Changed("classpath") {
				cfg.Java.Classpath = splitClasspath(classpathFlag)
			}
			if cmd.Flags().Changed("java-home") {
				cfg.Java.Home = javaHome
			}
			return runScanClasses(args, cfg)
		},
	}

	cmd.Flags().StringVar(&classpathFlag, "classpath", "", `java class path, ":"-separated; globs and mvn: coordinates allowed`)
	cmd.Flags().StringVar(&javaHome, "java-home", "", "JDK installation to take java.* classes from")

	return cmd
}

func runScanClasses(prefixes []string, cfg *config.File) error {
	if len(prefixes) == 0 {
		return fmt.Errorf("%w: at least one package prefix is required", ErrUsage)
	}

	path, _, err := openClasspath(cfg)
	if err != nil {
		return err
	}
	defer path.Close()

	for _, prefix := range prefixes {
		names, err := path.ClassNames(prefix)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("%w under prefix %q", pystub.ErrNoClasses, prefix)
		}
		for _, name := range names {
			fmt.Println(classfile.InternalToSourceName(name))
		}
	}
	return nil
}
