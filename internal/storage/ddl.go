package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// DefaultStringWidth is the VARCHAR width used when nothing longer is seen.
const DefaultStringWidth = 255

// Dataset is a column-ordered batch of rows. nil cells are SQL NULLs.
type Dataset struct {
	Columns []string
	Rows    [][]any
	// Types, when set, declares a type per column and wins over inference.
	Types []ColumnType
}

// levelColumnTypes follows models.LevelColumns.
var levelColumnTypes = []ColumnType{
	TypeTimestamp,
	TypeString,
	TypeFloat,
	TypeFloat,
	TypeString,
	TypeString,
	TypeString,
}

// LevelDataset lays reconciled levels out in models.LevelColumns order with
// the level schema's declared types, so all-NULL columns keep their type.
func LevelDataset(rows []models.Level) Dataset {
	ds := Dataset{Columns: models.LevelColumns, Rows: make([][]any, len(rows)), Types: levelColumnTypes}
	for i, r := range rows {
		ds.Rows[i] = r.Values()
	}
	return ds
}

func (ds Dataset) hasColumn(name string) bool {
	for _, c := range ds.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column is a typed column definition.
type Column struct {
	Name  string
	Type  ColumnType
	Width int
}

// InferColumns picks a type per column: the declared type when ds.Types has
// one, otherwise the type of the values it holds.
//
// Integers, floats, booleans and timestamps map to their own types; a column
// mixing integers and floats is a float column. Strings, mixed or unknown
// values and all-NULL columns become strings of width max(minWidth, longest
// value).
func InferColumns(ds Dataset, minWidth int) []Column {
	if minWidth <= 0 {
		minWidth = DefaultStringWidth
	}

	cols := make([]Column, len(ds.Columns))
	for i, name := range ds.Columns {
		cols[i] = Column{Name: name, Type: ds.columnType(i), Width: minWidth}
		for _, row := range ds.Rows {
			if s, ok := row[i].(string); ok {
				if n := utf8.RuneCountInString(s); n > cols[i].Width {
					cols[i].Width = n
				}
			}
		}
	}
	return cols
}

func (ds Dataset) columnType(idx int) ColumnType {
	if idx < len(ds.Types) {
		return ds.Types[idx]
	}
	return inferType(ds.Rows, idx)
}

func inferType(rows [][]any, idx int) ColumnType {
	var seen ColumnType
	found := false

	for _, row := range rows {
		var t ColumnType
		switch row[idx].(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			t = TypeInteger
		case float32, float64:
			t = TypeFloat
		case bool:
			t = TypeBoolean
		case time.Time:
			t = TypeTimestamp
		default:
			return TypeString
		}

		switch {
		case !found:
			seen, found = t, true
		case seen == t:
		case isNumeric(seen) && isNumeric(t):
			seen = TypeFloat
		default:
			return TypeString
		}
	}

	if !found {
		return TypeString
	}
	return seen
}

func isNumeric(t ColumnType) bool { return t == TypeInteger || t == TypeFloat }

// CreateTableStatement renders CREATE TABLE with the given primary key.
// Key columns are NOT NULL.
func CreateTableStatement(d Dialect, table string, cols []Column, primaryKey []string) string {
	key := make(map[string]struct{}, len(primaryKey))
	for _, k := range primaryKey {
		key[k] = struct{}{}
	}

	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		def := d.Quote(c.Name) + " " + d.TypeName(c.Type, c.Width)
		if _, ok := key[c.Name]; ok {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(primaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+d.QuoteAll(primaryKey)+")")
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(table), strings.Join(defs, ", "))
}

// DropTableStatement renders DROP TABLE IF EXISTS.
func DropTableStatement(d Dialect, table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
