package cmd

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/smartexpense/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds one pool shared by the gorm repositories and the sqlx report queries.
type Database struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
	SQL  *sql.DB
}

func (d *Database) Close() error {
	return d.SQL.Close()
}

// sqlxDriverName picks the name sqlx uses to choose its bind style.
func sqlxDriverName(driver string) string {
	if driver == internal.DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func initDB(cfg internal.DatabaseConfig) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverSQLite:
		dialector = sqlite.Open(cfg.Source)
	case internal.DriverPostgres, "":
		dialector = postgres.New(postgres.Config{DSN: cfg.Source})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get db handle: %w", err)
	}

	if cfg.Driver == internal.DriverSQLite {
		// sqlite allows one writer; a single connection also keeps :memory: databases alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		Gorm: gdb,
		SQLX: sqlx.NewDb(sqlDB, sqlxDriverName(cfg.Driver)),
		SQL:  sqlDB,
	}, nil
}
