package store

import (
	"context"
	"fmt"
	"strings"

	"textattack/domain/core"
	"textattack/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know; it takes ? placeholders.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the run database and applies the schema migrations.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverPostgres, DriverSQLite:
	case "postgresql", "pq":
		driver = DriverPostgres
	case "sqlite3":
		driver = DriverSQLite
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", core.ErrInvalidConfiguration, driver)
	}
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: database url is empty", core.ErrInvalidConfiguration)
	}

	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, core.NewResourceError("database "+driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.NewResourceError("database "+driver, err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
