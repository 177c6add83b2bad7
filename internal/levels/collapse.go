package levels

import (
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// calendarDay returns the UTC calendar date of t at midnight.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CollapseDays keeps, for every calendar day, only the rows that came from the
// most recent post of that day. Later posts supersede earlier ones wholesale;
// nothing is merged across posts here. Input order is preserved and rows are
// never modified.
//
// The day is the UTC calendar date, not the date in the post's own offset.
func CollapseDays(rows []models.Level) []models.Level {
	latest := make(map[time.Time]time.Time)
	for _, r := range rows {
		day := calendarDay(r.Date)
		if cur, ok := latest[day]; !ok || r.Date.After(cur) {
			latest[day] = r.Date
		}
	}

	out := make([]models.Level, 0, len(rows))
	for _, r := range rows {
		if r.Date.Equal(latest[calendarDay(r.Date)]) {
			out = append(out, r)
		}
	}
	return out
}
