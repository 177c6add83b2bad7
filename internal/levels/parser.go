package levels

import (
	"regexp"
	"strconv"
	"strings"
)

// linePattern captures a leading price (3+ digits, optional decimals), an
// optional dash-separated range end, and the free-text remainder.
var linePattern = regexp.MustCompile(`^\s*(\d{3,}(?:\.\d+)?)(?:\s*-\s*(\d{3,}(?:\.\d+)?))?\s*(.*)$`)

// commentLead strips separator artifacts such as ": " or "- " in front of a comment.
var commentLead = regexp.MustCompile(`^[:\-\s]+`)

// ParsedLine is the result of parsing one level line.
type ParsedLine struct {
	Start   float64
	End     *float64
	Comment string
}

// ParseLevelLine parses a single trimmed line of commentary.
//
// It returns ok=false when the line does not start with a price of at least
// three digits. Otherwise it returns the level, the optional range end, and the
// optional comment (empty when nothing but punctuation follows the prices).
//
// Examples:
//
//	"6500"                       -> 6500, nil, ""
//	"6400 - 6450 pivot"          -> 6400, 6450, "pivot"
//	"6497-6500: high likelihood" -> 6497, 6500, "high likelihood"
func ParseLevelLine(line string) (ParsedLine, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return ParsedLine{}, false
	}

	start, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ParsedLine{}, false
	}
	out := ParsedLine{Start: start}

	if m[2] != "" {
		end, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return ParsedLine{}, false
		}
		out.End = &end
	}

	if c := strings.TrimSpace(m[3]); c != "" {
		out.Comment = strings.TrimSpace(commentLead.ReplaceAllString(c, ""))
	}

	return out, true
}
