package main

import (
	"github.com/spf13/cobra"

	"github.com/origadmin/mapgen/internal/config"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configFile, dir)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "Directory the configuration file is searched from")
	return cmd
}
