package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

const sqliteTableInfoQuery = `SELECT name, pk FROM pragma_table_info(?) ORDER BY cid`

// SQLiteEngine runs on SQLite through modernc.org/sqlite.
type SQLiteEngine struct {
	sqlEngine
}

func NewSQLiteEngine(db *sql.DB) *SQLiteEngine {
	return &SQLiteEngine{sqlEngine{db: db, dialect: SQLite}}
}

// DescribeSchema reads pragma_table_info; key columns are ordered by their
// position inside the primary key.
func (e *SQLiteEngine) DescribeSchema(ctx context.Context, table string) (models.SchemaDescriptor, error) {
	var desc models.SchemaDescriptor

	rows, err := e.db.QueryContext(ctx, sqliteTableInfoQuery, table)
	if err != nil {
		return desc, fmt.Errorf("describe %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	type keyCol struct {
		name string
		pos  int
	}
	var keys []keyCol
	for rows.Next() {
		var (
			name string
			pk   int
		)
		if err := rows.Scan(&name, &pk); err != nil {
			return desc, fmt.Errorf("describe %s: %w", table, err)
		}
		desc.Columns = append(desc.Columns, name)
		if pk > 0 {
			keys = append(keys, keyCol{name: name, pos: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return desc, fmt.Errorf("describe %s: %w", table, err)
	}
	if len(desc.Columns) == 0 {
		return desc, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].pos < keys[j].pos })
	for _, k := range keys {
		desc.PrimaryKey = append(desc.PrimaryKey, k.name)
	}
	return desc, nil
}

// BulkInsert runs one prepared INSERT per row inside a transaction.
func (e *SQLiteEngine) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e.dialect.Quote(table), e.dialect.QuoteAll(columns), marks)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}
