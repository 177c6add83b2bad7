package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/logger"
)

// DefaultStagingPrefix prefixes per-operation staging table names.
const DefaultStagingPrefix = "stage_"

// Writer routes a dataset to its target table according to a WriteMode.
type Writer struct {
	engine        Engine
	stagingPrefix string
	stringWidth   int
	newID         func() string
}

// NewWriter builds a Writer. Empty prefix and non-positive width fall back to
// DefaultStagingPrefix and DefaultStringWidth.
func NewWriter(engine Engine, stagingPrefix string, stringWidth int) *Writer {
	if stagingPrefix == "" {
		stagingPrefix = DefaultStagingPrefix
	}
	if stringWidth <= 0 {
		stringWidth = DefaultStringWidth
	}
	return &Writer{
		engine:        engine,
		stagingPrefix: stagingPrefix,
		stringWidth:   stringWidth,
		newID:         func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Load writes ds into table and returns the number of rows handed to the engine.
//
// Modes:
//   - ModeOverwrite: drop table, recreate it from the dataset with primaryKeys
//     as primary key, bulk load.
//   - ModeUpsert / ModeIgnore: load into a fresh staging table through the
//     overwrite path, describe the live target, merge staging into it, drop
//     staging. Staging is dropped on every exit path.
//
// Errors:
//   - *SchemaError: unknown mode, key columns missing from the dataset, target
//     missing or without primary key.
//   - *ReconciliationExecutionError: the merge statement failed.
func (w *Writer) Load(ctx context.Context, ds Dataset, mode WriteMode, table string, primaryKeys []string) (int, error) {
	start := time.Now()

	for _, k := range primaryKeys {
		if !ds.hasColumn(k) {
			return 0, &SchemaError{Table: table, Reason: fmt.Sprintf("key column %q missing from dataset", k)}
		}
	}

	var (
		n   int
		err error
	)
	switch mode {
	case ModeOverwrite:
		n, err = w.overwrite(ctx, ds, table, primaryKeys)
	case ModeUpsert, ModeIgnore:
		n, err = w.merge(ctx, ds, mode, table, primaryKeys)
	default:
		return 0, &SchemaError{Table: table, Reason: fmt.Sprintf("invalid write mode %q", mode)}
	}
	if err != nil {
		return 0, err
	}

	logger.L().Info().
		Str("table", table).
		Str("mode", mode.String()).
		Int("rows", n).
		Dur("elapsed", time.Since(start)).
		Msg("load_done")
	return n, nil
}

func (w *Writer) overwrite(ctx context.Context, ds Dataset, table string, primaryKeys []string) (int, error) {
	d := w.engine.Dialect()
	cols := InferColumns(ds, w.stringWidth)

	if err := w.engine.Exec(ctx, DropTableStatement(d, table), CreateTableStatement(d, table, cols, primaryKeys)); err != nil {
		return 0, fmt.Errorf("recreate %s: %w", table, err)
	}

	n, err := w.engine.BulkInsert(ctx, table, ds.Columns, ds.Rows)
	if err != nil {
		return 0, fmt.Errorf("bulk insert into %s: %w", table, err)
	}
	return n, nil
}

func (w *Writer) merge(ctx context.Context, ds Dataset, mode WriteMode, table string, primaryKeys []string) (int, error) {
	staging := w.stagingPrefix + w.newID()

	if err := w.engine.DropTableIfExists(ctx, staging); err != nil {
		return 0, fmt.Errorf("clear staging %s: %w", staging, err)
	}
	defer w.dropStaging(ctx, staging)

	n, err := w.overwrite(ctx, ds, staging, primaryKeys)
	if err != nil {
		return 0, fmt.Errorf("stage batch: %w", err)
	}

	target, err := w.engine.DescribeSchema(ctx, table)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return 0, &SchemaError{Table: table, Reason: "target table does not exist", Err: err}
		}
		return 0, fmt.Errorf("describe %s: %w", table, err)
	}

	shared, err := sharedSchema(target, ds, table)
	if err != nil {
		return 0, err
	}

	stmt, err := BuildMergeStatement(w.engine.Dialect(), staging, table, shared, mode)
	if err != nil {
		return 0, err
	}
	logger.L().Debug().Str("table", table).Str("staging", staging).Str("statement", stmt).Msg("merge_statement")

	if err := w.engine.Exec(ctx, stmt); err != nil {
		logger.L().Error().Err(err).Str("table", table).Str("mode", mode.String()).Msg("reconciliation_failed")
		return 0, &ReconciliationExecutionError{Target: table, Mode: mode, Err: err}
	}
	return n, nil
}

// sharedSchema narrows the target schema to the columns the batch carries.
// Every target key column must be present in the batch.
func sharedSchema(target models.SchemaDescriptor, ds Dataset, table string) (models.SchemaDescriptor, error) {
	if len(target.PrimaryKey) == 0 {
		return target, &SchemaError{Table: table, Reason: "table declares no primary key"}
	}

	var out models.SchemaDescriptor
	for _, c := range target.Columns {
		if ds.hasColumn(c) {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, k := range target.PrimaryKey {
		if !ds.hasColumn(k) {
			return out, &SchemaError{Table: table, Reason: fmt.Sprintf("key column %q missing from batch", k)}
		}
		out.PrimaryKey = append(out.PrimaryKey, k)
	}
	return out, nil
}

func (w *Writer) dropStaging(ctx context.Context, staging string) {
	if err := w.engine.DropTableIfExists(context.WithoutCancel(ctx), staging); err != nil {
		logger.L().Warn().Err(err).Str("staging", staging).Msg("staging_drop_failed")
	}
}
