package storage

import (
	"fmt"
	"strings"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// BuildMergeStatement synthesizes the statement that reconciles source into
// target. Columns and keys come from the target's live schema; source is
// expected to carry the same column names.
//
// Semantics:
//   - rows match when every primary-key column is equal;
//   - ModeUpsert overwrites every non-key column of matched rows;
//   - ModeIgnore leaves matched rows alone;
//   - unmatched source rows are inserted in both modes.
//
// A schema without primary key, or any other mode, is a *SchemaError.
func BuildMergeStatement(d Dialect, source, target string, schema models.SchemaDescriptor, mode WriteMode) (string, error) {
	if mode != ModeUpsert && mode != ModeIgnore {
		return "", &SchemaError{Table: target, Reason: fmt.Sprintf("mode %q cannot be merged", mode)}
	}
	if len(schema.PrimaryKey) == 0 {
		return "", &SchemaError{Table: target, Reason: "table declares no primary key"}
	}
	if len(schema.Columns) == 0 {
		return "", &SchemaError{Table: target, Reason: "table has no columns"}
	}

	var nonKey []string
	for _, c := range schema.Columns {
		if !schema.IsKey(c) {
			nonKey = append(nonKey, c)
		}
	}
	updating := mode == ModeUpsert && len(nonKey) > 0

	switch d.Style {
	case StyleOnConflict:
		return buildOnConflict(d, source, target, schema, nonKey, updating), nil
	default:
		return buildMerge(d, source, target, schema, nonKey, updating), nil
	}
}

func buildMerge(d Dialect, source, target string, schema models.SchemaDescriptor, nonKey []string, updating bool) string {
	on := make([]string, len(schema.PrimaryKey))
	for i, k := range schema.PrimaryKey {
		on[i] = fmt.Sprintf("T.%s = S.%s", d.Quote(k), d.Quote(k))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE INTO %s AS T USING %s AS S ON %s", d.Quote(target), d.Quote(source), strings.Join(on, " AND "))

	if updating {
		set := make([]string, len(nonKey))
		for i, c := range nonKey {
			set[i] = fmt.Sprintf("%s = S.%s", d.Quote(c), d.Quote(c))
		}
		b.WriteString(" WHEN MATCHED THEN UPDATE SET " + strings.Join(set, ", "))
	}

	values := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		values[i] = "S." + d.Quote(c)
	}
	fmt.Fprintf(&b, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)", d.QuoteAll(schema.Columns), strings.Join(values, ", "))

	return b.String()
}

func buildOnConflict(d Dialect, source, target string, schema models.SchemaDescriptor, nonKey []string, updating bool) string {
	cols := d.QuoteAll(schema.Columns)

	var b strings.Builder
	// WHERE true keeps SQLite from reading ON CONFLICT as a join constraint.
	fmt.Fprintf(&b, "INSERT INTO %s (%s) SELECT %s FROM %s WHERE true ON CONFLICT (%s)",
		d.Quote(target), cols, cols, d.Quote(source), d.QuoteAll(schema.PrimaryKey))

	if !updating {
		b.WriteString(" DO NOTHING")
		return b.String()
	}

	set := make([]string, len(nonKey))
	for i, c := range nonKey {
		set[i] = fmt.Sprintf("%s = excluded.%s", d.Quote(c), d.Quote(c))
	}
	b.WriteString(" DO UPDATE SET " + strings.Join(set, ", "))
	return b.String()
}
