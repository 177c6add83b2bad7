package models

import (
	"fmt"
	"strings"
	"time"
)

// Zone tags the block of a post a level was written in.
type Zone string

const (
	ZoneNone Zone = ""
	ZoneBuy  Zone = "BUY"
	ZoneSell Zone = "SELL"
)

// ParseZone maps user input (case-insensitive "BUY", "SELL", "NONE" or empty) to a Zone.
func ParseZone(s string) (Zone, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return ZoneNone, nil
	case "BUY":
		return ZoneBuy, nil
	case "SELL":
		return ZoneSell, nil
	}
	return ZoneNone, fmt.Errorf("invalid zone %q", s)
}

// Column names of the levels table, in storage order.
const (
	ColDatetime   = "datetime"
	ColTicker     = "ticker"
	ColStartPrice = "start_lvl_price"
	ColEndPrice   = "end_lvl_price"
	ColComments   = "comments"
	ColZone       = "buy_sell_ind"
	ColWebLink    = "web_link"
)

// LevelColumns is the column set every Level row is written with.
var LevelColumns = []string{
	ColDatetime,
	ColTicker,
	ColStartPrice,
	ColEndPrice,
	ColComments,
	ColZone,
	ColWebLink,
}

// Level is one price level observation.
//
// Raw rows carry the full post timestamp in Date; reconciled rows carry the
// calendar date at midnight UTC. Empty Comment/SourceLink and a nil EndPrice
// stand for missing values.
type Level struct {
	Date       time.Time
	Instrument string
	StartPrice float64
	EndPrice   *float64
	Comment    string
	Zone       Zone
	SourceLink string
}

// BusinessKey is the natural identity of a level record.
type BusinessKey struct {
	Date       time.Time
	Instrument string
	StartPrice float64
}

// Key returns the business key of the row.
func (l Level) Key() BusinessKey {
	return BusinessKey{Date: l.Date, Instrument: l.Instrument, StartPrice: l.StartPrice}
}

// Values returns the row in LevelColumns order, mapping missing values to nil.
func (l Level) Values() []any {
	return []any{
		l.Date,
		l.Instrument,
		l.StartPrice,
		floatOrNil(l.EndPrice),
		stringOrNil(l.Comment),
		stringOrNil(string(l.Zone)),
		stringOrNil(l.SourceLink),
	}
}

// Float returns a pointer to v; handy for optional prices.
func Float(v float64) *float64 {
	return &v
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
