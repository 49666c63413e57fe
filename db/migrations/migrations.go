// Package migrations embeds the goose schema for each supported database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const TableName = "schema_migrations"

// dialect maps a configured driver to its goose dialect and embedded directory.
func dialect(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

func dir(driver string) string {
	return driver
}

func prepare(driver string) error {
	d, err := dialect(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(files)
	goose.SetTableName(TableName)
	return goose.SetDialect(d)
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	if err := prepare(driver); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir(driver))
}

// Down rolls back the latest migration.
func Down(ctx context.Context, db *sql.DB, driver string) error {
	if err := prepare(driver); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, dir(driver))
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	if err := prepare(driver); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
