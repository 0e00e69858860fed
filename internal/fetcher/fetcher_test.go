package fetcher

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestILOSTAT(t *testing.T) {
	t.Run("serves from cache", func(t *testing.T) {
		c := cache.New(t.TempDir())
		require.NoError(t, c.Put(DatasetEmployment, []byte("cached"), cache.Metadata{Source: "ILOSTAT API"}))

		f := New(c, "", testLogger())
		data, err := f.ILOSTAT(context.Background(), DatasetEmployment)
		require.NoError(t, err)
		assert.Equal(t, []byte("cached"), data)
	})

	t.Run("unknown dataset fails", func(t *testing.T) {
		f := New(cache.New(t.TempDir()), "", testLogger())
		_, err := f.ILOSTAT(context.Background(), "population")
		assert.Error(t, err)
	})
}

func TestPWTCaching(t *testing.T) {
	c := cache.New(t.TempDir())
	require.NoError(t, c.Put(PWTCacheKey("10.0"), []byte("pwt data"), cache.Metadata{Source: "rug.nl/ggdc", Version: "10.0"}))

	f := New(c, "", testLogger())
	data, err := f.PWT(context.Background(), "10.0")
	require.NoError(t, err)
	assert.Equal(t, []byte("pwt data"), data)
}

func TestDeflatorCaching(t *testing.T) {
	c := cache.New(t.TempDir())
	require.NoError(t, c.Put(DatasetDeflator, []byte("deflator"), cache.Metadata{Source: "FRED"}))

	f := New(c, "", testLogger())
	data, err := f.Deflator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("deflator"), data)
}

func TestFredJSONToCSV(t *testing.T) {
	t.Run("reshapes observations into date,value rows", func(t *testing.T) {
		payload := []byte(`{
			"units": "lin",
			"observations": [
				{"date": "2017-01-01", "value": "98.5"},
				{"date": "2017-04-01", "value": "."},
				{"date": "2018-01-01", "value": "101.2"}
			]
		}`)

		data, err := fredJSONToCSV(payload)
		require.NoError(t, err)
		assert.Equal(t, "date,value\n2017-01-01,98.5\n2017-04-01,.\n2018-01-01,101.2\n", string(data))

		points, err := parser.ParseDeflator(bytes.NewReader(data))
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 2017, points[0].Year)
	})

	t.Run("rejects a payload without observations", func(t *testing.T) {
		_, err := fredJSONToCSV([]byte(`{"observations": []}`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := fredJSONToCSV([]byte("date,value\n2017-01-01,98.5\n"))
		assert.Error(t, err)
	})
}

func TestCPICaching(t *testing.T) {
	c := cache.New(t.TempDir())
	require.NoError(t, c.Put(DatasetCPI, []byte("cpi"), cache.Metadata{Source: "FRED"}))

	f := New(c, "", testLogger())
	data, err := f.CPI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("cpi"), data)
}

func TestFetchOnce(t *testing.T) {
	t.Run("reads the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("payload"))
		}))
		defer srv.Close()

		f := New(cache.New(t.TempDir()), "", testLogger())
		data, err := f.fetchOnce(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusBadGateway)
		}))
		defer srv.Close()

		f := New(cache.New(t.TempDir()), "", testLogger())
		_, err := f.fetchOnce(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := New(cache.New(t.TempDir()), "", testLogger())
		_, err := f.fetchOnce(ctx, srv.URL)
		assert.Error(t, err)
	})
}

func TestPWTVersionInfo(t *testing.T) {
	t.Run("known versions", func(t *testing.T) {
		info, err := PWTVersionInfo("10.0")
		require.NoError(t, err)
		assert.Contains(t, info.URL, "pwt100")

		info, err = PWTVersionInfo("11.0")
		require.NoError(t, err)
		assert.NotEmpty(t, info.URL)
	})

	t.Run("empty version uses the default", func(t *testing.T) {
		info, err := PWTVersionInfo("")
		require.NoError(t, err)
		want, err := PWTVersionInfo(DefaultPWTVersion)
		require.NoError(t, err)
		assert.Equal(t, want, info)
	})

	t.Run("unknown version fails", func(t *testing.T) {
		_, err := PWTVersionInfo("9.1")
		assert.Error(t, err)
	})
}

func TestPWTCacheKey(t *testing.T) {
	assert.Equal(t, "pwt_10_0", PWTCacheKey("10.0"))
	assert.Equal(t, "pwt_11_0", PWTCacheKey(""))
}
