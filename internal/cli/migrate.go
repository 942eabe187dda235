package cli

import (
	"errors"
	"fmt"

	"redirector/internal/storage"

	"github.com/spf13/cobra"
)

// ErrNoDSN - a database command ran without a DSN.
var ErrNoDSN = errors.New("no database DSN configured (use --dsn or DATABASE_DSN)")

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Opens the configured database and applies the embedded migrations. Already applied migrations are skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn := opts.cfg.DBConnection
			if dsn == "" {
				return ErrNoDSN
			}

			s, err := storage.NewStorageDB(cmd.Context(), dsn)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer func() { _ = s.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", storage.DetectDialect(dsn))
			return nil
		},
	}
}
