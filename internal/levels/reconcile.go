package levels

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/logger"
)

// stringJoiner separates distinct values merged into one string column.
const stringJoiner = " | "

// groupKey is the comparable form of a business key. The price is a canonical
// decimal string so 6500 and 6500.00 land in the same group.
type groupKey struct {
	unix       int64
	instrument string
	price      string
}

// RoundPrice rounds a price to 2 decimal places.
func RoundPrice(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}

func priceKey(p float64) string {
	return decimal.NewFromFloat(p).Round(2).String()
}

// normalize brings the key columns to their canonical shape: timestamp floored
// to whole seconds in UTC, start price rounded to 2dp, instrument trimmed.
func normalize(r models.Level) models.Level {
	r.Date = r.Date.UTC().Truncate(time.Second)
	r.StartPrice = RoundPrice(r.StartPrice)
	r.Instrument = strings.TrimSpace(r.Instrument)
	return r
}

func keyOf(r models.Level) groupKey {
	return groupKey{unix: r.Date.Unix(), instrument: r.Instrument, price: priceKey(r.StartPrice)}
}

// Reconcile collapses rows sharing a business key into one row.
//
// Resolution per column inside a group (group iteration follows input order):
//   - EndPrice: first non-nil value.
//   - Zone: first non-empty value; disagreeing zones are logged as zone_conflict.
//   - Comment, SourceLink: trimmed non-empty values, de-duplicated, sorted and
//     joined with " | "; empty when nothing remains.
//
// Output groups appear in the order their first row appeared. Running
// Reconcile on its own output returns the same rows.
func Reconcile(rows []models.Level) []models.Level {
	type group struct {
		row      models.Level
		comments []string
		links    []string
	}

	var order []groupKey
	groups := make(map[groupKey]*group)

	for _, raw := range rows {
		r := normalize(raw)
		k := keyOf(r)

		g, ok := groups[k]
		if !ok {
			g = &group{row: r}
			g.row.EndPrice = nil
			g.row.Zone = models.ZoneNone
			groups[k] = g
			order = append(order, k)
		}

		if g.row.EndPrice == nil && r.EndPrice != nil {
			end := *r.EndPrice
			g.row.EndPrice = &end
		}

		if r.Zone != models.ZoneNone {
			switch {
			case g.row.Zone == models.ZoneNone:
				g.row.Zone = r.Zone
			case g.row.Zone != r.Zone:
				logger.L().Warn().
					Time("date", r.Date).
					Str("instrument", r.Instrument).
					Float64("start_price", r.StartPrice).
					Str("kept", string(g.row.Zone)).
					Str("dropped", string(r.Zone)).
					Msg("zone_conflict")
			}
		}

		g.comments = append(g.comments, r.Comment)
		g.links = append(g.links, r.SourceLink)
	}

	out := make([]models.Level, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.row.Comment = joinDistinct(g.comments)
		g.row.SourceLink = joinDistinct(g.links)
		out = append(out, g.row)
	}
	return out
}

// joinDistinct trims values, drops empties, and joins the sorted distinct rest.
func joinDistinct(values []string) string {
	seen := make(map[string]struct{}, len(values))
	var distinct []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	return strings.Join(distinct, stringJoiner)
}

// DuplicateKeys returns every business key that occurs more than once.
func DuplicateKeys(rows []models.Level) []models.BusinessKey {
	counts := make(map[groupKey]int, len(rows))
	var dups []models.BusinessKey
	for _, r := range rows {
		k := keyOf(normalize(r))
		counts[k]++
		if counts[k] == 2 {
			dups = append(dups, r.Key())
		}
	}
	return dups
}
