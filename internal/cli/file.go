package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/envsyncd/envsync/internal/dotenv"
	"github.com/envsyncd/envsync/internal/syncer"
)

// FileOptions holds flags for the file command.
type FileOptions struct {
	*RootOptions
	syncOptions

	EnvFile   string
	NoEnvFile bool
	BlobName  string
}

// NewFileCommand creates the file command.
func NewFileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "file <paths...>",
		Short: "Synchronize files with vault blobs",
		Long: `Synchronize local files with blobs in the vault.

Each path maps to a blob name rendered from --blob-name, where #name#,
#stem#, and #ext# stand for the file name, the name without extension,
and the extension. The planned actions are printed before anything
changes, and a confirmation is required unless --yes is given.

Example:
  envsync file --vault ./vault.db config.json
  envsync file --blob-name 'backups/#name#' --mode push *.json
  envsync file --vault env:VAULT_URL --check settings.toml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.EnvFile, "env-file", "e", ".env", "dotenv file used to resolve env: vault targets")
	cmd.Flags().BoolVar(&opts.NoEnvFile, "no-env-file", false, "do not read a dotenv file")
	cmd.Flags().StringVar(&opts.BlobName, "blob-name", "#name#", "blob name template (#name#, #stem#, #ext#)")
	addSyncFlags(cmd, &opts.syncOptions)

	return cmd
}

func runFile(opts *FileOptions, cmd *cobra.Command, paths []string) error {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := opts.applyConfig(cmd, cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	if !cmd.Flags().Changed("blob-name") && cfg.BlobName != "" {
		opts.BlobName = cfg.BlobName
	}
	if !cmd.Flags().Changed("env-file") && cfg.EnvFile != "" {
		opts.EnvFile = cfg.EnvFile
	}

	mode, err := syncer.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	// The dotenv file only feeds env: vault target resolution here; its
	// variables are not synchronized by this command.
	var envFile *dotenv.Document
	if !opts.NoEnvFile {
		envFile, err = dotenv.Load(opts.EnvFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load dotenv file", err)
		}
	}

	store, err := openVault(opts.Vault, envFile)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Debug("planning file sync", "paths", len(paths), "blob_name", opts.BlobName)

	actions, err := syncer.PlanFiles(cmd.Context(), syncer.FilesRequest{
		Mode:         mode,
		Tolerance:    opts.Tolerance,
		Paths:        paths,
		NameTemplate: opts.BlobName,
		Blobs:        store,
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

	if err := syncer.ExecuteFiles(cmd.Context(), actions, store); err != nil {
		return WrapExitError(ExitFailure, "sync failed", err)
	}
	return nil
}
