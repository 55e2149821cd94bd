package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/database"
	"github.com/54b3r/supportrag-go/internal/logging"
)

// NewMigrateCmd constructs the `supportrag migrate` command, which applies
// the embedded pgvector schema migrations to DATABASE_URL.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres/pgvector schema migrations",
		Long: `Create or upgrade the documents table, its vector index and the
match_documents search function in the database at DATABASE_URL.

Only needed for VECTOR_STORE=postgres. Running it again is a no-op.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if cfg.Store.Backend != config.StorePostgres {
				return fmt.Errorf("migrate: VECTOR_STORE is %q, migrations only apply to %q", cfg.Store.Backend, config.StorePostgres)
			}

			res, err := database.Migrate(cfg.Store.DatabaseURL, log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			log.Info("migrations complete", slog.Uint64("version", uint64(res.Version)), slog.Bool("changed", res.Changed))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", res.Version)
			return nil
		},
	}
}
