package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/envsyncd/envsync/internal/dotenv"
	"github.com/envsyncd/envsync/internal/syncer"
	"github.com/envsyncd/envsync/internal/vault"
)

// VarsOptions holds flags for the vars command.
type VarsOptions struct {
	*RootOptions
	syncOptions

	EnvFile      string
	TemplateFile string
	NoTemplate   bool
}

// NewVarsCommand creates the vars command.
func NewVarsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VarsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Synchronize dotenv variables with the vault",
		Long: `Synchronize the variables of a dotenv file with vault secrets.

When a template file exists its names choose what is synchronized;
otherwise every variable of the dotenv file is. The planned actions are
printed before anything changes, and a confirmation is required unless
--yes is given.

Example:
  envsync vars --vault ./vault.db
  envsync vars -e .env.production --mode pull --check
  envsync vars --vault env:VAULT_URL --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVars(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.EnvFile, "env-file", "e", ".env", "dotenv file to synchronize")
	cmd.Flags().StringVarP(&opts.TemplateFile, "template-file", "t", ".env.example", "dotenv template choosing the variables to synchronize")
	cmd.Flags().BoolVar(&opts.NoTemplate, "no-template", false, "ignore the template file")
	addSyncFlags(cmd, &opts.syncOptions)

	return cmd
}

func runVars(opts *VarsOptions, cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := opts.applyConfig(cmd, cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	if !cmd.Flags().Changed("env-file") && cfg.EnvFile != "" {
		opts.EnvFile = cfg.EnvFile
	}
	if !cmd.Flags().Changed("template-file") && cfg.TemplateFile != "" {
		opts.TemplateFile = cfg.TemplateFile
	}

	mode, err := syncer.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	local, err := dotenv.Load(opts.EnvFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dotenv file", err)
	}
	var template *dotenv.Document
	if !opts.NoTemplate {
		template, err = dotenv.Load(opts.TemplateFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load template file", err)
		}
	}
	slog.Debug("loaded inputs", "env_file", opts.EnvFile, "have_local", local != nil, "have_template", template != nil)

	store, err := openVault(opts.Vault, local)
	if err != nil {
		return err
	}
	defer store.Close()

	actions, err := syncer.PlanVars(cmd.Context(), syncer.VarsRequest{
		Mode:      mode,
		Tolerance: opts.Tolerance,
		Local:     local,
		Template:  template,
		Secrets:   store,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to plan sync", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Actions:")
	if err := syncer.WriteReport(out, actions); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if syncer.Unchanged(actions) {
		return nil
	}
	if opts.Check {
		return NewExitError(ExitFailure, "out of sync")
	}

	if !opts.Yes {
		fmt.Fprintln(out)
		if err := confirm(cmd.InOrStdin(), out); err != nil {
			return err
		}
	}

	if err := syncer.ExecuteVars(cmd.Context(), actions, store, local, opts.EnvFile); err != nil {
		return WrapExitError(ExitFailure, "sync failed", err)
	}
	return nil
}

// openVault resolves the vault target (including env:VAR_NAME lookups
// against the loaded dotenv file) and opens the matching backend.
func openVault(target string, envFile *dotenv.Document) (vault.Store, error) {
	if target == "" {
		return nil, NewExitError(ExitCommandError, "no vault configured (use --vault or envsync.yaml)")
	}
	resolved, err := resolveVaultTarget(target, envFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to resolve vault target", err)
	}
	store, err := vault.Open(resolved)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open vault", err)
	}
	return store, nil
}
