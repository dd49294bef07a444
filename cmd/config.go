package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"crucible.dev/pkg/crucible/internal/adapter"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML and exit",
		RunE:  runConfig,
	}

	adapter.RegisterFlags(configCmd.Flags())

	return configCmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := adapter.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(buf))

	return nil
}
