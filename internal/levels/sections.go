package levels

import (
	"iter"
	"regexp"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

// sectionSeparator matches a line break followed by a run of 3+ dashes,
// tolerating surrounding whitespace and an optional trailing newline.
var sectionSeparator = regexp.MustCompile(`\n\s*-{3,}\s*\n?`)

// zoneBySection is the positional convention authors follow: a neutral level
// list first, then a buy-zone block, then a sell-zone block. Indices missing
// from this table (3 and beyond) fall back to ZoneNone.
var zoneBySection = map[int]models.Zone{
	0: models.ZoneNone,
	1: models.ZoneBuy,
	2: models.ZoneSell,
}

// ZoneForSection returns the zone tag for a 0-based section index.
func ZoneForSection(index int) models.Zone {
	if z, ok := zoneBySection[index]; ok {
		return z
	}
	return models.ZoneNone
}

// Sections lazily splits a post's text on separator lines, yielding
// (index, text) pairs. Index 0 is the text before the first separator.
// A separator never reaches the consumer as section content.
func Sections(text string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		rest := text
		for i := 0; ; i++ {
			loc := sectionSeparator.FindStringIndex(rest)
			if loc == nil {
				yield(i, rest)
				return
			}
			if !yield(i, rest[:loc[0]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}
