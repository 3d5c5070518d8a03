package main

import (
	"github.com/spf13/cobra"

	"github.com/origadmin/mapgen/internal/lsp"
)

func newLSPCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, flags.configFile)
			return server.RunStdio()
		},
	}
}
