package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quantlevels/internal/domain/models"
)

func collectSections(text string) []string {
	var out []string
	for _, s := range Sections(text) {
		out = append(out, s)
	}
	return out
}

func TestSections_Split(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{name: "no separator", text: "6500\n6400", want: []string{"6500\n6400"}},
		{name: "three blocks", text: "6500\n---\n6400\n------\n6600", want: []string{"6500", "6400", "6600"}},
		{name: "spaces around dashes", text: "6500\n  ----  \n6400", want: []string{"6500", "6400"}},
		{name: "trailing separator", text: "6500\n---", want: []string{"6500", ""}},
		{name: "two dashes is not a separator", text: "6500\n--\n6400", want: []string{"6500\n--\n6400"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, collectSections(tc.text))
		})
	}
}

func TestSections_IndicesAndEarlyStop(t *testing.T) {
	var idx []int
	for i := range Sections("a\n---\nb\n---\nc\n---\nd") {
		idx = append(idx, i)
		if i == 1 {
			break
		}
	}
	require.Equal(t, []int{0, 1}, idx)
}

func TestZoneForSection(t *testing.T) {
	cases := map[int]models.Zone{
		0: models.ZoneNone,
		1: models.ZoneBuy,
		2: models.ZoneSell,
		3: models.ZoneNone,
		7: models.ZoneNone,
	}
	for idx, want := range cases {
		assert.Equal(t, want, ZoneForSection(idx), "section %d", idx)
	}
}
