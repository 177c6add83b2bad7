package storage

import (
	"errors"
	"testing"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

func TestBuildMergeStatement(t *testing.T) {
	schema := models.SchemaDescriptor{
		Columns:    []string{"datetime", "ticker", "comments"},
		PrimaryKey: []string{"datetime", "ticker"},
	}
	keyOnly := models.SchemaDescriptor{
		Columns:    []string{"datetime", "ticker"},
		PrimaryKey: []string{"datetime", "ticker"},
	}

	cases := []struct {
		name    string
		dialect Dialect
		schema  models.SchemaDescriptor
		mode    WriteMode
		want    string
	}{
		{
			name:    "postgres upsert",
			dialect: Postgres,
			schema:  schema,
			mode:    ModeUpsert,
			want: `MERGE INTO "levels" AS T USING "stage_1" AS S ON T."datetime" = S."datetime" AND T."ticker" = S."ticker"` +
				` WHEN MATCHED THEN UPDATE SET "comments" = S."comments"` +
				` WHEN NOT MATCHED THEN INSERT ("datetime", "ticker", "comments") VALUES (S."datetime", S."ticker", S."comments")`,
		},
		{
			name:    "postgres ignore",
			dialect: Postgres,
			schema:  schema,
			mode:    ModeIgnore,
			want: `MERGE INTO "levels" AS T USING "stage_1" AS S ON T."datetime" = S."datetime" AND T."ticker" = S."ticker"` +
				` WHEN NOT MATCHED THEN INSERT ("datetime", "ticker", "comments") VALUES (S."datetime", S."ticker", S."comments")`,
		},
		{
			name:    "postgres upsert on key-only table",
			dialect: Postgres,
			schema:  keyOnly,
			mode:    ModeUpsert,
			want: `MERGE INTO "levels" AS T USING "stage_1" AS S ON T."datetime" = S."datetime" AND T."ticker" = S."ticker"` +
				` WHEN NOT MATCHED THEN INSERT ("datetime", "ticker") VALUES (S."datetime", S."ticker")`,
		},
		{
			name:    "sqlite upsert",
			dialect: SQLite,
			schema:  schema,
			mode:    ModeUpsert,
			want: `INSERT INTO "levels" ("datetime", "ticker", "comments") SELECT "datetime", "ticker", "comments" FROM "stage_1" WHERE true` +
				` ON CONFLICT ("datetime", "ticker") DO UPDATE SET "comments" = excluded."comments"`,
		},
		{
			name:    "sqlite ignore",
			dialect: SQLite,
			schema:  schema,
			mode:    ModeIgnore,
			want: `INSERT INTO "levels" ("datetime", "ticker", "comments") SELECT "datetime", "ticker", "comments" FROM "stage_1" WHERE true` +
				` ON CONFLICT ("datetime", "ticker") DO NOTHING`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildMergeStatement(tc.dialect, "stage_1", "levels", tc.schema, tc.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("statement mismatch\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestBuildMergeStatement_SchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		schema models.SchemaDescriptor
		mode   WriteMode
	}{
		{name: "no primary key", schema: models.SchemaDescriptor{Columns: []string{"a", "b"}}, mode: ModeUpsert},
		{name: "overwrite is not a merge", schema: models.SchemaDescriptor{Columns: []string{"a"}, PrimaryKey: []string{"a"}}, mode: ModeOverwrite},
		{name: "no columns", schema: models.SchemaDescriptor{PrimaryKey: []string{"a"}}, mode: ModeIgnore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildMergeStatement(Postgres, "s", "t", tc.schema, tc.mode)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("want *SchemaError, got %v", err)
			}
			if se.Table != "t" {
				t.Fatalf("table=%q", se.Table)
			}
		})
	}
}

func TestParseWriteMode(t *testing.T) {
	cases := map[string]WriteMode{
		"ignore":      ModeIgnore,
		"UPSERT":      ModeUpsert,
		" overwrite ": ModeOverwrite,
	}
	for in, want := range cases {
		got, err := ParseWriteMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseWriteMode(%q) = %q, %v", in, got, err)
		}
	}

	for _, bad := range []string{"", "append", "replace"} {
		_, err := ParseWriteMode(bad)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("ParseWriteMode(%q): want *SchemaError, got %v", bad, err)
		}
	}
}
