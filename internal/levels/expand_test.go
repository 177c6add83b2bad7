package levels

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

func TestExpandPosts_Scenario(t *testing.T) {
	posts := []models.Post{{
		Title:      "Quant levels",
		DatePosted: "2025-01-01T13:05:00Z",
		Link:       "https://example.test/posts/1",
		RawText:    "6500\n6400 - 6450 pivot\n---\n6100 buy zone",
	}}

	rows, err := ExpandPosts(posts, "SPX")
	require.NoError(t, err)

	posted := time.Date(2025, 1, 1, 13, 5, 0, 0, time.UTC)
	want := []models.Level{
		{Date: posted, Instrument: "SPX", StartPrice: 6500, SourceLink: "https://example.test/posts/1"},
		{Date: posted, Instrument: "SPX", StartPrice: 6400, EndPrice: models.Float(6450), Comment: "pivot", SourceLink: "https://example.test/posts/1"},
		{Date: posted, Instrument: "SPX", StartPrice: 6100, Comment: "buy zone", Zone: models.ZoneBuy, SourceLink: "https://example.test/posts/1"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPosts_ZonesBySection(t *testing.T) {
	posts := []models.Post{{
		DatePosted: "2025-08-28T12:00:00Z",
		RawText:    "6548\n---\n6433-6449\n---\n6520-6528 main resistance\n---\n6300 extra block",
	}}

	rows, err := ExpandPosts(posts, "SPX")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, models.ZoneNone, rows[0].Zone)
	assert.Equal(t, models.ZoneBuy, rows[1].Zone)
	assert.Equal(t, models.ZoneSell, rows[2].Zone)
	assert.Equal(t, models.ZoneNone, rows[3].Zone, "sections past the sell block stay unclassified")
}

func TestExpandPosts_SkipsNoiseAndTextlessPosts(t *testing.T) {
	posts := []models.Post{
		{DatePosted: "not a date", RawText: ""},
		{
			DatePosted: "2025-06-20T15:00:00+02:00",
			Link:       "l",
			RawText:    "Levels\r\n\r\n6062\r\nBuy zones:\r\n   6050  gamma flip\r\n",
		},
	}

	rows, err := ExpandPosts(posts, "SPX")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "gamma flip", rows[1].Comment)
	assert.True(t, rows[0].Date.Equal(time.Date(2025, 6, 20, 13, 0, 0, 0, time.UTC)))
}

func TestExpandPosts_SeparatorNeverParsedAsPrice(t *testing.T) {
	posts := []models.Post{{DatePosted: "2025-01-01", RawText: "---- 6500\n6400"}}

	rows, err := ExpandPosts(posts, "SPX")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6400.0, rows[0].StartPrice)
}

func TestExpandPosts_MalformedDate(t *testing.T) {
	posts := []models.Post{{DatePosted: "yesterday", Link: "https://example.test/p", RawText: "6500"}}

	_, err := ExpandPosts(posts, "SPX")
	require.Error(t, err)

	var mde *MalformedDateError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "yesterday", mde.Value)
	assert.Equal(t, "https://example.test/p", mde.Link)
}

func TestParsePostDate_Layouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-08-18T14:31:07.123Z", time.Date(2025, 8, 18, 14, 31, 7, 123000000, time.UTC)},
		{"2025-08-18T14:31:07-04:00", time.Date(2025, 8, 18, 18, 31, 7, 0, time.UTC)},
		{"2025-08-18T14:31:07+0000", time.Date(2025, 8, 18, 14, 31, 7, 0, time.UTC)},
		{"2025-08-18 14:31:07", time.Date(2025, 8, 18, 14, 31, 7, 0, time.UTC)},
		{"2025-08-18", time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParsePostDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s: got %v want %v", tc.in, got, tc.want)
	}

	_, err := ParsePostDate("18/08/2025")
	assert.Error(t, err)
}
