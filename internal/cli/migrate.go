package cli

import (
	"fmt"

	"ridematch/internal/shared/config"
	"ridematch/internal/shared/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate requires STORAGE_BACKEND=%s, got %q", config.BackendPostgres, cfg.Storage.Backend)
	}

	log := newLogger(cfg)
	defer log.Sync()

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close(pool, log)

	if err := db.Migrate(ctx, pool, log); err != nil {
		return err
	}
	cmd.Println("migrations applied")
	return nil
}
