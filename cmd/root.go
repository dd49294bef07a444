// Command crucible finds weakly tested code by mutating it and watching
// which mutants survive: a cobra command tree wiring configuration,
// logging and the mutation pipeline together.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logPath  string
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "crucible",
		Short: "crucible finds weakly tested code by mutating it and watching which mutants survive",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml/toml/json)")
	root.PersistentFlags().StringVar(&logPath, "log-path", "", "path to the log file; defaults to stderr")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}
