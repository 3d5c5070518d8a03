package main

import (
	"io"
	"log/slog"
	"os"

	goversion "github.com/caarlos0/go-version"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/origadmin/mapgen/internal/config"
)

var (
	version   = "0.0.1"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	debug      bool
	logFile    string
	configFile string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}
	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:           config.Application,
		Short:         config.Description,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := setupLogging(flags, cmd.ErrOrStderr())
			logCloser = closer
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Path to a file where logs should be written. If empty, logs go to stderr.")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Configuration file. Defaults to the nearest "+config.ConfigFileName)

	rootCmd.AddCommand(newGenerateCmd(flags))
	rootCmd.AddCommand(newLSPCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// setupLogging installs the default logger. The returned closer is nil when
// logs go to stderr.
func setupLogging(flags *globalFlags, stderr io.Writer) (io.Closer, error) {
	logWriter := stderr
	var closer io.Closer
	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", flags.logFile)
		}
		logWriter, closer = f, f
	}

	logLevel := slog.LevelWarn
	if flags.debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	})))
	return closer, nil
}

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(config.Application, config.Description, config.WebSite),
		func(i *goversion.Info) {
			i.ASCIIName = config.UI
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
