package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/core"
)

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	var (
		dir    string
		pos    string
		dryRun bool
		jobs   int
		order  string
	)
	cmd := &cobra.Command{
		Use:   "generate [packages]",
		Short: "Replace marked stubs with generated mappers",
		Long: `Generate loads the given packages (default ".") and replaces every function
marked with //go:mapgen by the converters mapping its parameter to its result.
With --pos only the function at file:line[:col] is replaced, marked or not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if order != "" {
				probe := config.NewConfig()
				probe.Order = config.Order(order)
				if err := probe.Validate(); err != nil {
					return err
				}
			}
			results, err := core.NewGenerator(core.Options{
				Dir:        dir,
				Patterns:   args,
				Position:   pos,
				ConfigFile: flags.configFile,
				Order:      config.Order(order),
				DryRun:     dryRun,
				Jobs:       jobs,
			}).Run(cmd.Context())

			out := cmd.OutOrStdout()
			for _, result := range results {
				if dryRun {
					fmt.Fprintf(out, "// %s\n%s", result.Filename, result.Content)
					continue
				}
				fmt.Fprintf(out, "%s: %d stub(s), %d converter(s)\n", result.Filename, len(result.Stubs), len(result.Methods))
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				slog.Warn("No stubs were generated")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", "", "Directory to load packages from")
	cmd.Flags().StringVar(&pos, "pos", "", "Generate only the function at file:line[:col]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rewritten files instead of writing them")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Packages to process concurrently (0 means unlimited)")
	cmd.Flags().StringVar(&order, "order", "", "Emission order: accumulated or topological")
	return cmd
}
