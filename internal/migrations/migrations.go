package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"medshop/m/internal/database"
)

//go:embed sql
var files embed.FS

// Run applies all pending migrations for the pool's dialect.
//
// SQLite migrates through the open pool so in-process databases see the schema.
// PostgreSQL migrates over its own short-lived connection built from dsn, since
// the migrate driver pins a connection until it is closed.
func Run(db *sqlx.DB, dsn string) error {
	var (
		m   *migrate.Migrate
		err error
	)
	switch db.DriverName() {
	case database.DriverSQLite:
		m, err = sqliteMigrator(db)
	case database.DriverPgx:
		m, err = postgresMigrator(dsn)
		if m != nil {
			defer m.Close()
		}
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func sqliteMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql/sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	// Closing the migrate driver would close the shared pool, so it is left open.
	drv, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func postgresMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql/postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
