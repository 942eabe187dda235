package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"redirector/internal/domain/models"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"                  // PostgreSQL driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

// Dialect is the SQL flavour behind a DSN.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
	DialectLibSQL   Dialect = "libsql"
)

// DetectDialect picks the dialect from the DSN scheme.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"),
		strings.Contains(lower, "host="):
		return DialectPostgres
	case strings.HasPrefix(lower, "libsql://"), strings.HasPrefix(lower, "wss://"):
		return DialectLibSQL
	default:
		return DialectSQLite
	}
}

// DriverName returns the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	case DialectLibSQL:
		return "libsql"
	default:
		return "sqlite"
	}
}

const (
	selectActive = `
SELECT id, redirect_url, weight, is_active, label, url_type, hit_count, created_at, updated_at
FROM redirect_targets
WHERE is_active = TRUE
ORDER BY weight DESC, created_at DESC`

	incrementHits = `UPDATE redirect_targets SET hit_count = hit_count + 1 WHERE id = ?`

	selectByURL = `SELECT id FROM redirect_targets WHERE redirect_url = ?`

	insertTarget = `
INSERT INTO redirect_targets (id, redirect_url, weight, is_active, label, url_type, hit_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`
)

var (
	_ TargetStore  = (*StorageDB)(nil)
	_ TargetWriter = (*StorageDB)(nil)
)

// StorageDB - destination table in a relational database, accessed through prepared statements.
type StorageDB struct {
	DBConn  *sql.DB
	dialect Dialect

	stmtActive    *sql.Stmt
	stmtIncrement *sql.Stmt
	stmtByURL     *sql.Stmt
	stmtInsert    *sql.Stmt
}

// NewStorageDB opens dsn, applies migrations and prepares the statements.
func NewStorageDB(ctx context.Context, dsn string) (*StorageDB, error) {
	dialect := DetectDialect(dsn)

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialect != DialectPostgres {
		// one connection: SQLite writers serialize anyway and ":memory:" is per-connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := UpDBMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	s, err := NewStorageDBFromConn(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStorageDBFromConn prepares the statements on an already migrated db.
func NewStorageDBFromConn(ctx context.Context, db *sql.DB, dialect Dialect) (*StorageDB, error) {
	s := &StorageDB{DBConn: db, dialect: dialect}

	var err error
	if s.stmtActive, err = db.PrepareContext(ctx, rebind(dialect, selectActive)); err != nil {
		return nil, fmt.Errorf("prepare active targets: %w", err)
	}
	if s.stmtIncrement, err = db.PrepareContext(ctx, rebind(dialect, incrementHits)); err != nil {
		return nil, fmt.Errorf("prepare increment hits: %w", err)
	}
	if s.stmtByURL, err = db.PrepareContext(ctx, rebind(dialect, selectByURL)); err != nil {
		return nil, fmt.Errorf("prepare select by url: %w", err)
	}
	if s.stmtInsert, err = db.PrepareContext(ctx, rebind(dialect, insertTarget)); err != nil {
		return nil, fmt.Errorf("prepare insert target: %w", err)
	}
	return s, nil
}

// ActiveTargets implements TargetStore.
func (s *StorageDB) ActiveTargets(ctx context.Context) ([]models.RedirectTarget, error) {
	rows, err := s.stmtActive.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query active targets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var targets []models.RedirectTarget
	for rows.Next() {
		var t models.RedirectTarget
		if err := rows.Scan(&t.ID, &t.URL, &t.Weight, &t.Active, &t.Label, &t.Category,
			&t.Hits, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return targets, nil
}

// IncrementHits implements TargetStore.
func (s *StorageDB) IncrementHits(ctx context.Context, id string) error {
	res, err := s.stmtIncrement.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("increment hits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment hits: %w", err)
	}
	if n == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// Ping implements TargetStore.
func (s *StorageDB) Ping(ctx context.Context) error {
	return s.DBConn.PingContext(ctx)
}

// InsertTarget implements TargetWriter.
func (s *StorageDB) InsertTarget(ctx context.Context, t models.RedirectTarget) (models.RedirectTarget, error) {
	var existing string
	err := s.stmtByURL.QueryRowContext(ctx, t.URL).Scan(&existing)
	switch {
	case err == nil:
		return models.RedirectTarget{}, ErrDuplicateURL
	case !errors.Is(err, sql.ErrNoRows):
		return models.RedirectTarget{}, fmt.Errorf("check duplicate url: %w", err)
	}

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.Hits = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Category == "" {
		t.Category = "general"
	}

	if _, err := s.stmtInsert.ExecContext(ctx, t.ID, t.URL, t.Weight, t.Active, t.Label, t.Category,
		t.CreatedAt, t.UpdatedAt); err != nil {
		return models.RedirectTarget{}, fmt.Errorf("insert target: %w", err)
	}
	return t, nil
}

// Close releases the statements and the connection pool.
func (s *StorageDB) Close() error {
	for _, stmt := range []*sql.Stmt{s.stmtActive, s.stmtIncrement, s.stmtByURL, s.stmtInsert} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.DBConn.Close()
}

// rebind turns ? placeholders into $n for PostgreSQL.
func rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
