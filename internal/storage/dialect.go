package storage

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"
)

// ColumnType is the storage-neutral type inferred for a dataset column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeTimestamp
)

// MergeStyle is the statement family a dialect reconciles with.
type MergeStyle int

const (
	// StyleMerge uses MERGE INTO ... USING ... WHEN [NOT] MATCHED.
	StyleMerge MergeStyle = iota
	// StyleOnConflict uses INSERT ... SELECT ... ON CONFLICT.
	StyleOnConflict
)

// Dialect holds everything SQL generation needs to know about an engine.
type Dialect struct {
	Name        string
	Style       MergeStyle
	Quote       func(ident string) string
	Placeholder func(n int) string
	TypeName    func(t ColumnType, width int) string
}

// QuoteAll quotes each identifier and joins them with ", ".
func (d Dialect) QuoteAll(idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return strings.Join(quoted, ", ")
}

// Postgres targets PostgreSQL 15+ (MERGE support).
var Postgres = Dialect{
	Name:        "postgres",
	Style:       StyleMerge,
	Quote:       pq.QuoteIdentifier,
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	TypeName: func(t ColumnType, width int) string {
		switch t {
		case TypeInteger:
			return "BIGINT"
		case TypeFloat:
			return "DOUBLE PRECISION"
		case TypeBoolean:
			return "BOOLEAN"
		case TypeTimestamp:
			return "TIMESTAMP"
		}
		return fmt.Sprintf("VARCHAR(%d)", width)
	},
}

// SQLite targets SQLite 3.35+ (UPSERT on INSERT ... SELECT).
var SQLite = Dialect{
	Name:        "sqlite",
	Style:       StyleOnConflict,
	Quote:       quoteSQLite,
	Placeholder: func(int) string { return "?" },
	TypeName: func(t ColumnType, width int) string {
		switch t {
		case TypeInteger:
			return "INTEGER"
		case TypeFloat:
			return "REAL"
		case TypeBoolean:
			return "BOOLEAN"
		case TypeTimestamp:
			return "TIMESTAMP"
		}
		return fmt.Sprintf("VARCHAR(%d)", width)
	},
}

func quoteSQLite(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
