package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// IngestionLogTable records one row per ingested level date.
const IngestionLogTable = "ingestion_log"

// LevelsRepository defines contract for reads over the levels table and the run log.
type LevelsRepository interface {
	LatestRecordedDate(ctx context.Context) (*time.Time, error)
	LatestDate(ctx context.Context, ticker string) (*time.Time, error)
	ListLevels(ctx context.Context, date time.Time, ticker string, zone *models.Zone) ([]models.Level, error)
	UpsertIngestionLog(ctx context.Context, runDate time.Time, mode WriteMode, rowCount int) error
}

type levelsRepository struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

func NewLevelsRepository(db *sql.DB, dialect Dialect, table string) LevelsRepository {
	return &levelsRepository{db: db, dialect: dialect, table: table}
}

func (r *levelsRepository) col(name string) string { return r.dialect.Quote(name) }

// LatestRecordedDate returns the most recent level date stored, or nil when the
// table is empty. A missing table surfaces as the driver's error.
func (r *levelsRepository) LatestRecordedDate(ctx context.Context) (*time.Time, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT 1`,
		r.col(models.ColDatetime), r.dialect.Quote(r.table), r.col(models.ColDatetime))
	return r.scanLatest(ctx, query)
}

// LatestDate returns the most recent level date stored for ticker, or nil.
func (r *levelsRepository) LatestDate(ctx context.Context, ticker string) (*time.Time, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = %s ORDER BY %s DESC LIMIT 1`,
		r.col(models.ColDatetime), r.dialect.Quote(r.table),
		r.col(models.ColTicker), r.dialect.Placeholder(1),
		r.col(models.ColDatetime))
	return r.scanLatest(ctx, query, ticker)
}

func (r *levelsRepository) scanLatest(ctx context.Context, query string, args ...any) (*time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts = ts.UTC()
	return &ts, nil
}

// ListLevels returns the levels stored for one date and ticker, highest start
// price first. A nil zone means any zone; models.ZoneNone selects unclassified rows.
func (r *levelsRepository) ListLevels(ctx context.Context, date time.Time, ticker string, zone *models.Zone) ([]models.Level, error) {
	conditions := []string{
		fmt.Sprintf("%s = %s", r.col(models.ColDatetime), r.dialect.Placeholder(1)),
		fmt.Sprintf("%s = %s", r.col(models.ColTicker), r.dialect.Placeholder(2)),
	}
	args := []any{date.UTC(), ticker}

	if zone != nil {
		if *zone == models.ZoneNone {
			conditions = append(conditions, r.col(models.ColZone)+" IS NULL")
		} else {
			args = append(args, string(*zone))
			conditions = append(conditions, fmt.Sprintf("%s = %s", r.col(models.ColZone), r.dialect.Placeholder(len(args))))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC`,
		r.dialect.QuoteAll(models.LevelColumns), r.dialect.Quote(r.table),
		strings.Join(conditions, " AND "), r.col(models.ColStartPrice))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Level
	for rows.Next() {
		var (
			lvl      models.Level
			end      sql.NullFloat64
			comment  sql.NullString
			zoneCode sql.NullString
			link     sql.NullString
		)
		if err := rows.Scan(&lvl.Date, &lvl.Instrument, &lvl.StartPrice, &end, &comment, &zoneCode, &link); err != nil {
			return nil, err
		}
		if end.Valid {
			lvl.EndPrice = models.Float(end.Float64)
		}
		lvl.Date = lvl.Date.UTC()
		lvl.Comment = comment.String
		lvl.Zone = models.Zone(zoneCode.String)
		lvl.SourceLink = link.String
		out = append(out, lvl)
	}
	return out, rows.Err()
}

// UpsertIngestionLog records (or updates) the run that loaded runDate.
func (r *levelsRepository) UpsertIngestionLog(ctx context.Context, runDate time.Time, mode WriteMode, rowCount int) error {
	p := r.dialect.Placeholder
	query := fmt.Sprintf(`INSERT INTO %s (run_date, write_mode, row_count, ingested_at) VALUES (%s, %s, %s, %s) ON CONFLICT (run_date) DO UPDATE SET write_mode = EXCLUDED.write_mode, row_count = EXCLUDED.row_count, ingested_at = EXCLUDED.ingested_at`,
		r.dialect.Quote(IngestionLogTable), p(1), p(2), p(3), p(4))
	_, err := r.db.ExecContext(ctx, query, runDate.UTC(), mode.String(), rowCount, time.Now().UTC())
	return err
}
