package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/levels"
	"github.com/guttosm/quantlevels/internal/logger"
	"github.com/guttosm/quantlevels/internal/storage"
)

// ErrCutoffNotFound means an incremental run could not read the latest stored
// level date, either because the table is missing or because it is empty.
var ErrCutoffNotFound = errors.New("cutoff date not found")

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB, dialect storage.Dialect, table string) storage.LevelsRepository {
	return storage.NewLevelsRepository(db, dialect, table)
}

// PostSource yields posts newer than an optional cutoff.
type PostSource interface {
	FetchPosts(ctx context.Context, cutoff *time.Time) ([]models.Post, error)
}

// Loader writes a dataset into a table with the given write mode.
type Loader interface {
	Load(ctx context.Context, ds storage.Dataset, mode storage.WriteMode, table string, primaryKeys []string) (int, error)
}

// Options configures what a run writes and where.
type Options struct {
	Instrument    string
	Table         string
	PrimaryKeys   []string
	Mode          storage.WriteMode
	StagingPrefix string
	StringWidth   int
}

// Result summarizes one run.
type Result struct {
	Cutoff  *time.Time
	Mode    storage.WriteMode
	Posts   int
	Rows    int
	Elapsed time.Duration
}

// Runner drives fetch -> transform -> load.
type Runner struct {
	source PostSource
	loader Loader
	repo   storage.LevelsRepository
	opts   Options
}

func NewRunner(source PostSource, loader Loader, repo storage.LevelsRepository, opts Options) *Runner {
	return &Runner{source: source, loader: loader, repo: repo, opts: opts}
}

// New wires a Runner over an open database and its engine.
func New(db *sql.DB, engine storage.Engine, source PostSource, opts Options) *Runner {
	writer := storage.NewWriter(engine, opts.StagingPrefix, opts.StringWidth)
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db, engine.Dialect(), opts.Table)
	return NewRunner(source, writer, repo, opts)
}

// RunIncremental loads posts newer than the latest stored level date using the
// configured write mode.
//
// Errors:
//   - ErrCutoffNotFound: the target cannot be read or holds no rows.
//   - *levels.MalformedDateError, levels.ErrEmptyResult: transform failures.
//   - *storage.SchemaError, *storage.ReconciliationExecutionError: load failures.
func (r *Runner) RunIncremental(ctx context.Context) (Result, error) {
	cutoff, err := r.repo.LatestRecordedDate(ctx)
	if err != nil {
		logger.L().Error().Err(err).Str("table", r.opts.Table).Msg("cutoff lookup failed")
		return Result{}, fmt.Errorf("%w: %v", ErrCutoffNotFound, err)
	}
	if cutoff == nil {
		return Result{}, fmt.Errorf("%w: %s is empty", ErrCutoffNotFound, r.opts.Table)
	}

	return r.run(ctx, cutoff, r.opts.Mode)
}

// RunHistorical reloads the whole feed and overwrites the target.
func (r *Runner) RunHistorical(ctx context.Context) (Result, error) {
	return r.run(ctx, nil, storage.ModeOverwrite)
}

func (r *Runner) run(ctx context.Context, cutoff *time.Time, mode storage.WriteMode) (Result, error) {
	start := time.Now()
	res := Result{Cutoff: cutoff, Mode: mode}

	ev := logger.L().Info().Str("mode", mode.String()).Str("table", r.opts.Table)
	if cutoff != nil {
		ev = ev.Time("cutoff", *cutoff)
	}
	ev.Msg("ingestion start")

	posts, err := r.source.FetchPosts(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("fetch posts: %w", err)
	}
	res.Posts = len(posts)

	if len(posts) == 0 {
		res.Elapsed = time.Since(start)
		logger.L().Info().Dur("elapsed", res.Elapsed).Msg("no new posts")
		return res, nil
	}

	rows, err := levels.Transform(posts, r.opts.Instrument)
	if err != nil {
		logger.L().Error().Err(err).Int("posts", len(posts)).Msg("transform failed")
		return res, err
	}

	n, err := r.loader.Load(ctx, storage.LevelDataset(rows), mode, r.opts.Table, r.opts.PrimaryKeys)
	if err != nil {
		logger.L().Error().Err(err).Str("mode", mode.String()).Msg("load failed")
		return res, err
	}
	res.Rows = n

	r.recordRun(ctx, latestDate(rows), mode, n)

	res.Elapsed = time.Since(start)
	logger.L().Info().
		Int("posts", res.Posts).
		Int("rows", res.Rows).
		Str("mode", mode.String()).
		Dur("elapsed", res.Elapsed).
		Msg("ingestion done")
	return res, nil
}

// recordRun writes the run log; failures are logged and never fail the run.
func (r *Runner) recordRun(ctx context.Context, runDate time.Time, mode storage.WriteMode, rows int) {
	if err := r.repo.UpsertIngestionLog(ctx, runDate, mode, rows); err != nil {
		logger.L().Warn().Err(err).Time("run_date", runDate).Msg("update ingestion log failed")
	}
}

func latestDate(rows []models.Level) time.Time {
	var latest time.Time
	for _, r := range rows {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}
