package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// sqlitePragmas are applied to every SQLite connection. foreign_keys enables
// the ON DELETE CASCADE from chats to messages.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// NormalizeDriver maps user supplied driver names onto the registered ones.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DriverPgx, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverForDSN guesses the driver from a DSN such as DATABASE_URL.
func DriverForDSN(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPgx
	}
	return DriverSQLite
}

// NewConn opens a go-zero SqlConn for driver and dsn.
func NewConn(driver, dsn string) (sqlx.SqlConn, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	return sqlx.NewSqlConn(driver, dsn), nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(sqlitePragmas, "&")
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, conn sqlx.SqlConn, driver string) error {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return err
	}
	stmts := sqliteSchema
	if driver == DriverPgx {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecCtx(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
