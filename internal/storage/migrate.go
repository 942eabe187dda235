package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// UpDBMigrations applies the embedded goose migrations for dialect.
func UpDBMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	dir := "migrations/sqlite"
	gooseDialect := goose.DialectSQLite3
	if dialect == DialectPostgres {
		dir = "migrations/postgres"
		gooseDialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
