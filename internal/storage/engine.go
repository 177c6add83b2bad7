package storage

import (
	"context"
	"database/sql"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// Engine is the relational backend the writer talks to.
type Engine interface {
	// Dialect returns the SQL flavor statements must be rendered in.
	Dialect() Dialect
	// DescribeSchema returns the live column list and primary key of table.
	// A missing table yields an error wrapping ErrTableNotFound.
	DescribeSchema(ctx context.Context, table string) (models.SchemaDescriptor, error)
	// Exec runs the statements in one transaction.
	Exec(ctx context.Context, stmts ...string) error
	// BulkInsert loads rows into table in one transaction and returns the count.
	BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) (int, error)
	// DropTableIfExists removes table when present.
	DropTableIfExists(ctx context.Context, table string) error
}

// sqlEngine implements the statement side shared by database/sql engines.
type sqlEngine struct {
	db      *sql.DB
	dialect Dialect
}

func (e *sqlEngine) Dialect() Dialect { return e.dialect }

func (e *sqlEngine) Exec(ctx context.Context, stmts ...string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (e *sqlEngine) DropTableIfExists(ctx context.Context, table string) error {
	return e.Exec(ctx, DropTableStatement(e.dialect, table))
}
