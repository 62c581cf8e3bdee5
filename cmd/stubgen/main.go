package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/stubgen/pystub"
)

var log = commonlog.GetLogger("stubgen.cmd")

// ErrUsage marks errors the user can fix on the command line. They
// exit with status 2 instead of 1.
var ErrUsage = errors.New("usage error")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "stubgen",
		Short: "Generate Python type stubs for Java classes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more; repeat for debug output")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	})

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newDocCmd())

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrUsage) || errors.Is(err, pystub.ErrNoClasses) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
