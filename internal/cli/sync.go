package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/envsyncd/envsync/internal/syncer"
)

// syncOptions holds the flags shared by the vars and file commands.
type syncOptions struct {
	Mode      string
	Check     bool
	Yes       bool
	Vault     string
	Tolerance time.Duration
}

func addSyncFlags(cmd *cobra.Command, opts *syncOptions) {
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "sync", "sync mode (sync|push|pull|push-always|pull-always)")
	cmd.Flags().BoolVarP(&opts.Check, "check", "c", false, "print the plan and exit without changing anything")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&opts.Vault, "vault", "", "vault target: http(s) URL, SQLite path, or env:VAR_NAME")
	cmd.Flags().DurationVar(&opts.Tolerance, "tolerance", syncer.DefaultTolerance, "window within which timestamps count as unchanged")
}

// applyConfig fills in flag values the user left at their defaults from
// the config file.
func (o *syncOptions) applyConfig(cmd *cobra.Command, cfg Config) error {
	if !cmd.Flags().Changed("mode") && cfg.Mode != "" {
		o.Mode = cfg.Mode
	}
	if !cmd.Flags().Changed("vault") && cfg.Vault != "" {
		o.Vault = cfg.Vault
	}
	if !cmd.Flags().Changed("tolerance") {
		tolerance, err := cfg.tolerance()
		if err != nil {
			return err
		}
		if tolerance != 0 {
			o.Tolerance = tolerance
		}
	}
	return nil
}
