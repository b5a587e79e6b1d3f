// Package sqlite provides an ezfs.Backend that stores file contents as rows
// in a SQLite database.
//
// The driver is the pure-Go modernc.org/sqlite, so no cgo toolchain is
// required. Each file is one row keyed by path; writes are upserts and
// renames run in a transaction. A single database can be a convenient
// portable bundle of many files.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/ezfs"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "ezfs_files"

// identPattern restricts table names to plain identifiers, since the table
// name is interpolated into statements and cannot be a placeholder.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type options struct {
	table string
}

// Option configures the backend.
type Option func(*options)

// WithTable selects the table holding file rows. The name must consist of
// letters, digits, and underscores.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

// Backend stores file contents in a SQLite table.
//
// SQLite serializes writers at the database level; concurrent writers block
// or fail with a busy error depending on the DSN's busy timeout, and the
// last committed write wins.
type Backend struct {
	db    *sql.DB
	table string
}

var _ ezfs.Backend = (*Backend)(nil)

// New opens (or creates) the SQLite database at dsn and ensures the file
// table exists. The dsn is passed to the driver verbatim, so pragmas such as
// _busy_timeout can be supplied there.
func New(dsn string, optFns ...Option) (*Backend, error) {
	opts := options{
		table: DefaultTable,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !identPattern.MatchString(opts.table) {
		return nil, fmt.Errorf("invalid table name: %q", opts.table)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}

	b := &Backend{db: db, table: opts.table}
	if err := b.init(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) init() error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		path    TEXT PRIMARY KEY,
		content BLOB NOT NULL
	)`, b.table)
	if _, err := b.db.Exec(stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", b.table, err)
	}
	return nil
}

// Close releases the database handle.
func (b *Backend) Close() error {
	return b.db.Close()
}

// ReadBytes fetches the complete content stored at path.
func (b *Backend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	var content []byte
	stmt := fmt.Sprintf("SELECT content FROM %s WHERE path = ?", b.table)
	err := b.db.QueryRowContext(ctx, stmt, path).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

// WriteBytes stores data at path, creating or overwriting the row.
func (b *Backend) WriteBytes(ctx context.Context, path string, data []byte) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (path, content) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET content = excluded.content`, b.table)
	if _, err := b.db.ExecContext(ctx, stmt, path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a row for path exists.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	var one int
	stmt := fmt.Sprintf("SELECT 1 FROM %s WHERE path = ?", b.table)
	err := b.db.QueryRowContext(ctx, stmt, path).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return true, nil
}

// Remove deletes the row at path.
func (b *Backend) Remove(ctx context.Context, path string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE path = ?", b.table)
	res, err := b.db.ExecContext(ctx, stmt, path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
	}
	return nil
}

// Rename moves the row from src to dst in one transaction, overwriting dst
// if present. A same-path rename is a no-op but still requires src to exist.
func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	if src == dst {
		exists, err := b.Exists(ctx, src)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	defer tx.Rollback()

	del := fmt.Sprintf("DELETE FROM %s WHERE path = ?", b.table)
	if _, err := tx.ExecContext(ctx, del, dst); err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}

	upd := fmt.Sprintf("UPDATE %s SET path = ? WHERE path = ?", b.table)
	res, err := tx.ExecContext(ctx, upd, dst, src)
	if err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}
	return nil
}
