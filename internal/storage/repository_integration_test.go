//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "quantlevels",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=quantlevels sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "quantlevels")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/storage → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestPostgres_Integration_WriteModes(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	ctx := context.Background()
	eng := NewPostgresEngine(db)
	w := NewWriter(eng, "", 0)
	repo := NewLevelsRepository(db, Postgres, "quant_lvl_data_te")
	day := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)

	seed := LevelDataset([]models.Level{
		{Date: day, Instrument: "SPX", StartPrice: 6520, EndPrice: models.Float(6528), Comment: "main resistance", Zone: models.ZoneSell, SourceLink: "a"},
		{Date: day, Instrument: "SPX", StartPrice: 6433, Zone: models.ZoneBuy},
	})
	incoming := LevelDataset([]models.Level{
		{Date: day, Instrument: "SPX", StartPrice: 6520, Comment: "rewritten"},
		{Date: day, Instrument: "SPX", StartPrice: 6410, Comment: "21d EMA"},
	})

	t.Run("migrated table describes with business key", func(t *testing.T) {
		desc, err := eng.DescribeSchema(ctx, "quant_lvl_data_te")
		if err != nil {
			t.Fatalf("describe: %v", err)
		}
		if len(desc.Columns) != len(models.LevelColumns) || len(desc.PrimaryKey) != 3 {
			t.Fatalf("descriptor: %+v", desc)
		}
	})

	t.Run("ignore keeps existing row", func(t *testing.T) {
		if _, err := w.Load(ctx, seed, ModeOverwrite, "quant_lvl_data_te", levelKeys); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		if _, err := w.Load(ctx, incoming, ModeIgnore, "quant_lvl_data_te", levelKeys); err != nil {
			t.Fatalf("ignore: %v", err)
		}
		rows, err := repo.ListLevels(ctx, day, "SPX", nil)
		if err != nil || len(rows) != 3 {
			t.Fatalf("list: %v %v", rows, err)
		}
		if rows[0].Comment != "main resistance" || rows[0].EndPrice == nil {
			t.Fatalf("existing row changed: %+v", rows[0])
		}
	})

	t.Run("upsert overwrites non-key columns", func(t *testing.T) {
		if _, err := w.Load(ctx, incoming, ModeUpsert, "quant_lvl_data_te", levelKeys); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		rows, err := repo.ListLevels(ctx, day, "SPX", nil)
		if err != nil || len(rows) != 3 {
			t.Fatalf("list: %v %v", rows, err)
		}
		if rows[0].Comment != "rewritten" || rows[0].EndPrice != nil || rows[0].Zone != models.ZoneNone {
			t.Fatalf("row not updated: %+v", rows[0])
		}
	})

	t.Run("no staging tables left", func(t *testing.T) {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name LIKE 'stage\_%'`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("staging tables left: %d", n)
		}
	})

	t.Run("table without primary key is rejected", func(t *testing.T) {
		if _, err := db.Exec(`CREATE TABLE no_pk (datetime TIMESTAMP, ticker VARCHAR(255), start_lvl_price DOUBLE PRECISION)`); err != nil {
			t.Fatalf("create: %v", err)
		}
		_, err := w.Load(ctx, incoming, ModeUpsert, "no_pk", levelKeys)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("want SchemaError, got %v", err)
		}
	})

	t.Run("latest date and ingestion log", func(t *testing.T) {
		latest, err := repo.LatestRecordedDate(ctx)
		if err != nil || latest == nil || !latest.Equal(day) {
			t.Fatalf("latest: %v %v", latest, err)
		}
		if err := repo.UpsertIngestionLog(ctx, day, ModeUpsert, 3); err != nil {
			t.Fatalf("log: %v", err)
		}
		if err := repo.UpsertIngestionLog(ctx, day, ModeUpsert, 4); err != nil {
			t.Fatalf("log again: %v", err)
		}
		var cnt int
		if err := db.QueryRow(`SELECT row_count FROM ingestion_log WHERE run_date = $1`, day).Scan(&cnt); err != nil || cnt != 4 {
			t.Fatalf("row_count=%d err=%v", cnt, err)
		}
	})
}
