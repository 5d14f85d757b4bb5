// Package sqlstore provides a database/sql note store for SQLite, PostgreSQL,
// and MySQL backends selected by DATABASE_URL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/louisbranch/notepad/internal/platform/storage/dburl"
	"github.com/louisbranch/notepad/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/notepad/internal/services/notes/storage"
	"github.com/louisbranch/notepad/internal/services/notes/storage/sqlstore/migrations"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const tracerName = "github.com/louisbranch/notepad/internal/services/notes/storage/sqlstore"

// ErrConstraint indicates the backend rejected a write on a schema constraint.
var ErrConstraint = errors.New("note violates storage constraint")

// Store persists notes through database/sql.
type Store struct {
	sqlDB   *sql.DB
	dialect dburl.Dialect
	tracer  trace.Tracer
}

// Open connects to the database named by databaseURL, verifies it answers,
// and applies embedded migrations before returning.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	target, err := dburl.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if err := ensureSQLiteDir(target); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", target.Dialect, err)
	}
	configurePool(sqlDB, target)

	store := New(sqlDB, target.Dialect)
	if err := store.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing handle. The caller owns migration via Migrate.
func New(sqlDB *sql.DB, dialect dburl.Dialect) *Store {
	return &Store{
		sqlDB:   sqlDB,
		dialect: dialect,
		tracer:  otel.Tracer(tracerName),
	}
}

func ensureSQLiteDir(target dburl.Target) error {
	if target.Dialect != dburl.DialectSQLite || target.InMemory {
		return nil
	}
	if dir := filepath.Dir(target.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	return nil
}

func configurePool(sqlDB *sql.DB, target dburl.Target) {
	if target.InMemory {
		// Every pooled connection would otherwise see its own empty database.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// Migrate applies the embedded schema for the store's dialect. It is safe to
// run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := sqlmigrate.ApplyMigrations(ctx, s.sqlDB, s.dialect, migrations.FS, string(s.dialect)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s db: %w", s.dialect, err)
	}
	return nil
}

// Dialect reports which SQL flavour backs the store.
func (s *Store) Dialect() dburl.Dialect {
	if s == nil {
		return ""
	}
	return s.dialect
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateNote inserts one note and returns it with its backend-assigned ID.
func (s *Store) CreateNote(ctx context.Context, content string) (note storage.Note, err error) {
	if err := ctx.Err(); err != nil {
		return storage.Note{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Note{}, fmt.Errorf("storage is not configured")
	}
	content, err = storage.NormalizeContent(content)
	if err != nil {
		return storage.Note{}, err
	}

	ctx, span := s.startSpan(ctx, "notes.create")
	defer func() { endSpan(span, err) }()

	var id int64
	if s.dialect == dburl.DialectPostgres {
		err = s.sqlDB.QueryRowContext(
			ctx,
			`INSERT INTO notes (content) VALUES ($1) RETURNING id`,
			content,
		).Scan(&id)
	} else {
		var result sql.Result
		result, err = s.sqlDB.ExecContext(ctx, `INSERT INTO notes (content) VALUES (?)`, content)
		if err == nil {
			id, err = result.LastInsertId()
		}
	}
	if err != nil {
		return storage.Note{}, createError(err)
	}

	span.SetAttributes(attribute.Int64("notepad.note.id", id))
	return storage.Note{ID: id, Content: content}, nil
}

// ListNotes returns every note ordered by ID descending.
func (s *Store) ListNotes(ctx context.Context) (notes []storage.Note, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	ctx, span := s.startSpan(ctx, "notes.list")
	defer func() { endSpan(span, err) }()

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, content
		   FROM notes
		  ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes = []storage.Note{}
	for rows.Next() {
		var note storage.Note
		if err := rows.Scan(&note.ID, &note.Content); err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	span.SetAttributes(attribute.Int("notepad.notes.count", len(notes)))
	return notes, nil
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system.name", string(s.dialect))),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func createError(err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("create note: %w: %v", ErrConstraint, err)
	}
	return fmt.Errorf("create note: %w", err)
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK, sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
			return true
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "23502", "22001":
			return true
		}
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1048, 1406, 3819:
			return true
		}
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "check constraint failed") ||
		strings.Contains(message, "not null constraint failed")
}

var _ storage.NoteStore = (*Store)(nil)
