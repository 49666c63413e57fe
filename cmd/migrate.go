package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/smartexpense/db/migrations"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations for the configured driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("migrate: failed to open DB: %v\n", err)
	}
	defer db.Close()

	if migrateRollback {
		if err := migrations.Down(ctx, db.SQL, cfg.Database.Driver); err != nil {
			log.Fatalf("goose down: %v", err)
		}
		return nil
	}

	if err := migrations.Up(ctx, db.SQL, cfg.Database.Driver); err != nil {
		log.Fatalf("goose up: %v", err)
	}

	version, err := migrations.Version(ctx, db.SQL, cfg.Database.Driver)
	if err != nil {
		return err
	}
	log.Printf("schema at version %d", version)
	return nil
}
