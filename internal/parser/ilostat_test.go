package parser

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestILOSTATParser(t *testing.T) {
	t.Run("keeps sex totals only", func(t *testing.T) {
		data := `ref_area,sex,classif1,time,obs_value
USA,SEX_T,OCU_ISCO08_1,2010,1234.5
USA,SEX_M,OCU_ISCO08_1,2010,700
USA,SEX_F,OCU_ISCO08_1,2010,534.5
`
		p := NewILOSTATParser(false, testLogger())
		values, err := p.Parse(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "USA", values[0].ISOCode)
		assert.Equal(t, 2010, values[0].Year)
		assert.Equal(t, "OCU_ISCO08_1", values[0].ISCOCode)
		assert.Equal(t, 1234.5, values[0].Value)
	})

	t.Run("filters to USD series when required", func(t *testing.T) {
		data := `ref_area,sex,classif1,classif2,time,obs_value
USA,SEX_T,OCU_ISCO08_1,CUR_TYPE_USD,2010,25.3
USA,SEX_T,OCU_ISCO08_1,CUR_TYPE_LCU,2010,25300
USA,SEX_T,OCU_ISCO08_1,CUR_TYPE_PPP,2010,27.1
`
		p := NewILOSTATParser(true, testLogger())
		values, err := p.Parse(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, 25.3, values[0].Value)
	})

	t.Run("skips malformed rows", func(t *testing.T) {
		data := `ref_area,sex,classif1,time,obs_value
USA,SEX_T,OCU_ISCO08_1,2010,10
USA,SEX_T,OCU_ISCO08_2,not-a-year,10
USA,SEX_T,OCU_ISCO08_3,2010,
USA,SEX_T,OCU_ISCO08_4,2010,-
USA,SEX_T,OCU_ISCO08_5,2010,20
`
		p := NewILOSTATParser(false, testLogger())
		values, err := p.Parse(strings.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, values, 2)
	})

	t.Run("missing required column fails", func(t *testing.T) {
		data := `ref_area,sex,time,obs_value
USA,SEX_T,2010,10
`
		p := NewILOSTATParser(false, testLogger())
		_, err := p.Parse(strings.NewReader(data))
		assert.Error(t, err)
	})

	t.Run("case-insensitive header", func(t *testing.T) {
		data := `Ref_Area,Sex,Classif1,Time,Obs_Value
USA,SEX_T,OCU_ISCO08_1,2010,10
`
		p := NewILOSTATParser(false, testLogger())
		values, err := p.Parse(strings.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, values, 1)
	})
}
