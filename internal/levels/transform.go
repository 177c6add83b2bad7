package levels

import (
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/logger"
)

// Transform runs the full text-to-table pipeline over a batch of posts:
// expand -> collapse days -> reconcile keys -> normalize dates.
//
// Returns:
//   - []models.Level: one row per business key, Date at midnight UTC.
//   - error: *MalformedDateError when a post cannot be dated, ErrEmptyResult
//     when no line in any post parsed as a level.
//
// Duplicate business keys surviving reconciliation are logged at warn level
// (duplicate_business_keys); they indicate a bug, not bad input.
func Transform(posts []models.Post, instrument string) ([]models.Level, error) {
	start := time.Now()

	raw, err := ExpandPosts(posts, instrument)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		logger.L().Error().Int("posts", len(posts)).Msg("no_rows_parsed")
		return nil, ErrEmptyResult
	}

	collapsed := CollapseDays(raw)
	reconciled := Reconcile(collapsed)

	out := make([]models.Level, len(reconciled))
	for i, r := range reconciled {
		r.Date = calendarDay(r.Date)
		out[i] = r
	}

	CheckIntegrity(out)

	logger.L().Info().
		Int("posts", len(posts)).
		Int("raw_rows", len(raw)).
		Int("collapsed_rows", len(collapsed)).
		Int("rows", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("transform_done")

	return out, nil
}

// CheckIntegrity logs rows that break the business-key invariants and reports
// whether the set is clean.
func CheckIntegrity(rows []models.Level) bool {
	ok := true

	if dups := DuplicateKeys(rows); len(dups) > 0 {
		ok = false
		logger.L().Warn().
			Int("count", len(dups)).
			Time("first_date", dups[0].Date).
			Str("first_instrument", dups[0].Instrument).
			Float64("first_start_price", dups[0].StartPrice).
			Msg("duplicate_business_keys")
	}

	for _, r := range rows {
		if r.Date.IsZero() || r.Instrument == "" {
			ok = false
			logger.L().Error().Time("date", r.Date).Str("instrument", r.Instrument).Float64("start_price", r.StartPrice).Msg("empty_business_key_column")
			break
		}
	}

	return ok
}
