package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string
}

// NewRootCommand creates the root command for the envsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "envsync",
		Short: "Synchronize dotenv files and local files with a vault",
		Long: `envsync keeps dotenv variables and whole files in sync with a remote
vault, deciding per entry whether to push, pull, or skip based on
last-modified timestamps.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging based on verbose flag
			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			slog.SetDefault(slog.New(handler))
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "envsync.yaml", "path to config file")

	// Add subcommands
	cmd.AddCommand(NewVarsCommand(opts))
	cmd.AddCommand(NewFileCommand(opts))

	return cmd
}
