package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

const pgColumnsQuery = `SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`

const pgPrimaryKeyQuery = `SELECT kcu.column_name FROM information_schema.table_constraints tc JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = current_schema() AND tc.table_name = $1 ORDER BY kcu.ordinal_position`

// PostgresEngine runs on PostgreSQL through lib/pq.
type PostgresEngine struct {
	sqlEngine
}

func NewPostgresEngine(db *sql.DB) *PostgresEngine {
	return &PostgresEngine{sqlEngine{db: db, dialect: Postgres}}
}

// DescribeSchema reads information_schema for a table in the current schema.
func (e *PostgresEngine) DescribeSchema(ctx context.Context, table string) (models.SchemaDescriptor, error) {
	var desc models.SchemaDescriptor

	cols, err := queryStrings(ctx, e.db, pgColumnsQuery, table)
	if err != nil {
		return desc, fmt.Errorf("describe %s columns: %w", table, err)
	}
	if len(cols) == 0 {
		return desc, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	keys, err := queryStrings(ctx, e.db, pgPrimaryKeyQuery, table)
	if err != nil {
		return desc, fmt.Errorf("describe %s primary key: %w", table, err)
	}

	desc.Columns = cols
	desc.PrimaryKey = keys
	return desc, nil
}

// BulkInsert streams rows with COPY inside a single transaction.
func (e *PostgresEngine) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return 0, err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
