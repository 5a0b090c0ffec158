package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/buildinfo"
	"github.com/conciliar/reconcile/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Bank statement ingestion and reconciliation reports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logger.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log := logger.New(cmd.ErrOrStderr(), lvl)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default $"+logger.EnvLevel+" or info)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newIngestCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newPageCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}
