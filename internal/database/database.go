package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Connect opens a database pool for the given driver and verifies it with a ping.
func Connect(driver, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	if driver != DriverSQLite && driver != DriverPgx {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	return db, nil
}

// DefaultBusyTimeout is how long a SQLite writer waits for the lock at BEGIN.
const DefaultBusyTimeout = 5 * time.Second

// PostgreSQL SQLSTATEs reported when the server cannot take more work.
const (
	pgLockNotAvailable   = "55P03"
	pgTooManyConnections = "53300"
)

// SQLiteDSN builds a modernc.org/sqlite DSN for a database file with foreign
// keys on and writer transactions taking the lock at BEGIN.
func SQLiteDSN(path string) string {
	return SQLiteDSNWithBusyTimeout(path, DefaultBusyTimeout)
}

// SQLiteDSNWithBusyTimeout is SQLiteDSN with a custom lock wait.
func SQLiteDSNWithBusyTimeout(path string, busy time.Duration) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
		path, busy.Milliseconds())
}

// IsBusy reports whether err means the database gave up waiting for a lock or
// a connection slot: SQLITE_BUSY or SQLITE_LOCKED (any extended code), or a
// PostgreSQL lock_not_available or too_many_connections error.
func IsBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgLockNotAvailable || pgErr.Code == pgTooManyConnections
	}
	return false
}

// TxOptions returns the transaction options used for stock-mutating units of work.
//
// SQLite transactions are serializable and, with _txlock=immediate, take the
// write lock at BEGIN. PostgreSQL runs at READ COMMITTED: stock is decremented
// with a single conditional UPDATE whose predicate is re-checked against the
// latest committed row once its row lock is held.
func TxOptions(db *sqlx.DB) *sql.TxOptions {
	if db.DriverName() == DriverPgx {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return &sql.TxOptions{}
}
