// Package sqlexec runs sqlite-dialect compiler output against an
// in-memory SQLite database. It backs the check command and the
// conformance tests: an emitted query that SQLite rejects, or that
// computes the wrong value, fails here before it ever reaches a user.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Executor wraps one in-memory SQLite connection.
type Executor struct {
	db *sql.DB
}

// Open creates a fresh in-memory database. Every Executor is isolated;
// emitted queries read nothing but their own recursive CTEs, so no
// schema is applied.
func Open() (*Executor, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The in-memory database vanishes when its last connection closes,
	// so pin the pool to a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Executor{db: db}, nil
}

// Close closes the database connection.
func (e *Executor) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// QueryInt runs a reduction query and returns its single result value.
func (e *Executor) QueryInt(ctx context.Context, query string) (int64, error) {
	var v int64
	if err := e.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	return v, nil
}

// QueryBool runs an any/all query and returns its single result value.
// SQLite reports EXISTS as 0 or 1.
func (e *Executor) QueryBool(ctx context.Context, query string) (bool, error) {
	var v int64
	if err := e.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return false, fmt.Errorf("query failed: %w", err)
	}
	return v != 0, nil
}

// QueryValues runs a collection query and returns the value column in
// result order.
func (e *Executor) QueryValues(ctx context.Context, query string) ([]int64, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var values []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return values, nil
}

// Validate prepares the query without running it, catching syntax
// errors in emitted SQL.
func (e *Executor) Validate(ctx context.Context, query string) error {
	stmt, err := e.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	return stmt.Close()
}
