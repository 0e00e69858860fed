package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chipanalyzer/internal/models"
)

func TestParseDeflator(t *testing.T) {
	t.Run("averages per year and rebases to 2017", func(t *testing.T) {
		data := `DATE,USAGDPDEFAISMEI
2016-01-01,98
2016-07-01,100
2017-01-01,100
2017-07-01,102
2018-01-01,104
`
		points, err := ParseDeflator(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, points, 3)

		// 2017 average is 101; after rebasing 2017 = 100.
		assert.Equal(t, 2016, points[0].Year)
		assert.InDelta(t, 99.0/101.0*100, points[0].Value, 1e-9)
		assert.Equal(t, 2017, points[1].Year)
		assert.InDelta(t, 100.0, points[1].Value, 1e-9)
		assert.Equal(t, 2018, points[2].Year)
		assert.InDelta(t, 104.0/101.0*100, points[2].Value, 1e-9)
	})

	t.Run("ignores unparsable rows", func(t *testing.T) {
		data := `DATE,VALUE
2017-01-01,100
bad-date,100
2018-01-01,.
`
		points, err := ParseDeflator(strings.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("fails with no usable rows", func(t *testing.T) {
		data := `DATE,VALUE
bad,row
`
		_, err := ParseDeflator(strings.NewReader(data))
		assert.Error(t, err)
	})
}

func TestRebaseDeflator(t *testing.T) {
	t.Run("missing base year leaves series unchanged", func(t *testing.T) {
		points := []models.DeflatorPoint{{Year: 2000, Value: 80}, {Year: 2001, Value: 82}}
		rebased := RebaseDeflator(points, 2017)
		assert.Equal(t, points, rebased)
	})

	t.Run("rebases to the requested year", func(t *testing.T) {
		points := []models.DeflatorPoint{{Year: 2000, Value: 50}, {Year: 2010, Value: 80}}
		rebased := RebaseDeflator(points, 2010)
		assert.InDelta(t, 62.5, rebased[0].Value, 1e-9)
		assert.InDelta(t, 100.0, rebased[1].Value, 1e-9)
	})
}
