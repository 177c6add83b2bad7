package levels

import (
	"regexp"
	"strings"
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/logger"
)

// separatorLine recognizes a bare dash run; such lines are boundaries, never prices.
var separatorLine = regexp.MustCompile(`^\s*-{3,}`)

// postDateLayouts are the ISO-8601 shapes the feed has been seen to emit.
// Layouts without an offset are read as UTC.
var postDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParsePostDate parses the feed's creation timestamp.
func ParsePostDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range postDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ExpandPosts turns every recognized level line of every post into one raw row.
//
// Behavior:
//   - Posts without extracted text are skipped before their date is looked at.
//   - Each remaining post must carry a parsable date; otherwise the whole call
//     fails with *MalformedDateError.
//   - Text is split into sections; each section's zone comes from ZoneForSection.
//   - Blank lines, separator lines and lines that are not price levels are dropped.
//   - Non-breaking spaces in comments become plain spaces.
//
// Rows keep the full post timestamp in Date so CollapseDays can pick the latest
// post of each calendar day.
func ExpandPosts(posts []models.Post, instrument string) ([]models.Level, error) {
	var rows []models.Level

	for _, post := range posts {
		if !post.HasText() {
			continue
		}

		posted, err := ParsePostDate(post.DatePosted)
		if err != nil {
			return nil, &MalformedDateError{Link: post.Link, Value: post.DatePosted, Err: err}
		}

		logger.L().Debug().Str("title", post.Title).Time("posted", posted).Msg("parsing_post")

		text := strings.ReplaceAll(post.RawText, "\r\n", "\n")
		for idx, section := range Sections(text) {
			zone := ZoneForSection(idx)

			for _, line := range strings.Split(strings.TrimSpace(section), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || separatorLine.MatchString(line) {
					continue
				}

				parsed, ok := ParseLevelLine(line)
				if !ok {
					continue
				}

				rows = append(rows, models.Level{
					Date:       posted,
					Instrument: instrument,
					StartPrice: parsed.Start,
					EndPrice:   parsed.End,
					Comment:    strings.ReplaceAll(parsed.Comment, "\u00a0", " "),
					Zone:       zone,
					SourceLink: post.Link,
				})
			}
		}
	}

	return rows, nil
}
