package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"chipanalyzer/internal/cache"
)

// ILOSTAT indicator IDs. Wages must be the HOURLY series (4HRL), not
// monthly earnings: the distortion factor is defined on hourly wages.
const (
	DatasetEmployment = "employment"
	DatasetWages      = "wages"
	DatasetHours      = "hours"
	DatasetDeflator   = "deflator"
	DatasetCPI        = "cpi"

	ilostatBaseURL = "https://rplumber.ilo.org/data/indicator/"

	employmentIndicator = "EMP_TEMP_SEX_OCU_NB_A"
	wagesIndicator      = "EAR_4HRL_SEX_OCU_CUR_NB_A"
	hoursIndicator      = "HOW_TEMP_SEX_OCU_NB_A"

	fredDeflatorSeriesID = "USAGDPDEFAISMEI"
	fredCPISeriesID      = "CPIAUCSL"

	maxRetries     = 3
	retryDelay     = 5 * time.Second
	requestTimeout = 180 * time.Second
)

var ilostatIndicators = map[string]string{
	DatasetEmployment: employmentIndicator,
	DatasetWages:      wagesIndicator,
	DatasetHours:      hoursIndicator,
}

// Fetcher retrieves the source datasets over HTTP, caching each payload
// with its vintage. Fetch once, read from cache until invalidated.
type Fetcher struct {
	cache      *cache.Cache
	client     *http.Client
	logger     *slog.Logger
	fredAPIKey string
}

func New(c *cache.Cache, fredAPIKey string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		cache:      c,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger,
		fredAPIKey: fredAPIKey,
	}
}

// ILOSTAT fetches one ILOSTAT dataset (employment, wages or hours),
// serving from the cache when present.
func (f *Fetcher) ILOSTAT(ctx context.Context, dataset string) ([]byte, error) {
	indicator, ok := ilostatIndicators[dataset]
	if !ok {
		return nil, fmt.Errorf("unknown ILOSTAT dataset: %s", dataset)
	}

	if f.cache.Has(dataset) {
		f.logger.Debug("Loading from cache", "dataset", dataset)
		return f.cache.Get(dataset)
	}

	url := fmt.Sprintf("%s?id=%s&format=csv", ilostatBaseURL, indicator)
	data, err := f.fetchWithRetry(ctx, dataset, url)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Put(dataset, data, cache.Metadata{
		Source:    "ILOSTAT API",
		DatasetID: indicator,
	}); err != nil {
		return nil, err
	}
	return data, nil
}

// PWT fetches a Penn World Table version. Versions cache independently so
// a study pinned to an older vintage never sees the newer one.
func (f *Fetcher) PWT(ctx context.Context, version string) ([]byte, error) {
	info, err := PWTVersionInfo(version)
	if err != nil {
		return nil, err
	}

	key := PWTCacheKey(version)
	if f.cache.Has(key) {
		f.logger.Debug("Loading from cache", "dataset", key)
		return f.cache.Get(key)
	}

	f.logger.Info("Fetching Penn World Tables", "version", version, "years", info.Years)
	data, err := f.fetchWithRetry(ctx, key, info.URL)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Put(key, data, cache.Metadata{
		Source:  "rug.nl/ggdc",
		Version: version,
	}); err != nil {
		return nil, err
	}
	return data, nil
}

// Deflator fetches the US GDP deflator from FRED.
func (f *Fetcher) Deflator(ctx context.Context) ([]byte, error) {
	return f.fredSeries(ctx, DatasetDeflator, fredDeflatorSeriesID)
}

// CPI fetches the US consumer price index (CPI-U, all items) from FRED.
// Extrapolation carries a finished estimate forward with it.
func (f *Fetcher) CPI(ctx context.Context) ([]byte, error) {
	return f.fredSeries(ctx, DatasetCPI, fredCPISeriesID)
}

// fredSeries fetches one FRED series. With an API key the official JSON
// endpoint is used and the payload converted to the date,value CSV shape;
// without one, the public CSV endpoint serves that shape directly. The
// observations API only speaks xml/json/txt/xls, so the keyed branch must
// ask for JSON and reshape it itself.
func (f *Fetcher) fredSeries(ctx context.Context, dataset, seriesID string) ([]byte, error) {
	if f.cache.Has(dataset) {
		f.logger.Debug("Loading from cache", "dataset", dataset)
		return f.cache.Get(dataset)
	}

	url := fmt.Sprintf("https://fred.stlouisfed.org/graph/fredgraph.csv?id=%s", seriesID)
	keyed := f.fredAPIKey != ""
	if keyed {
		url = fmt.Sprintf(
			"https://api.stlouisfed.org/fred/series/observations?series_id=%s&api_key=%s&file_type=json",
			seriesID, f.fredAPIKey)
	}

	data, err := f.fetchWithRetry(ctx, dataset, url)
	if err != nil {
		return nil, err
	}
	if keyed {
		data, err = fredJSONToCSV(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert FRED %s response: %w", seriesID, err)
		}
	}

	if err := f.cache.Put(dataset, data, cache.Metadata{
		Source:    "FRED",
		DatasetID: seriesID,
	}); err != nil {
		return nil, err
	}
	return data, nil
}

// fredJSONToCSV reshapes a FRED observations JSON payload into the
// date,value CSV the public endpoint serves, so the cache and the parser
// only ever see one format. Missing observations come through as "." and
// are left for the parser to skip.
func fredJSONToCSV(data []byte) ([]byte, error) {
	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(payload.Observations) == 0 {
		return nil, fmt.Errorf("response carries no observations")
	}

	var buf bytes.Buffer
	buf.WriteString("date,value\n")
	for _, obs := range payload.Observations {
		fmt.Fprintf(&buf, "%s,%s\n", obs.Date, obs.Value)
	}
	return buf.Bytes(), nil
}

// Raw holds the fetched payloads of every dataset an estimation needs.
type Raw struct {
	Employment []byte
	Wages      []byte
	Hours      []byte
	PWT        []byte
	Deflator   []byte
}

// FetchAll retrieves the five datasets concurrently.
func (f *Fetcher) FetchAll(ctx context.Context, pwtVersion string) (*Raw, error) {
	var raw Raw
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		raw.Employment, err = f.ILOSTAT(ctx, DatasetEmployment)
		return err
	})
	g.Go(func() (err error) {
		raw.Wages, err = f.ILOSTAT(ctx, DatasetWages)
		return err
	})
	g.Go(func() (err error) {
		raw.Hours, err = f.ILOSTAT(ctx, DatasetHours)
		return err
	})
	g.Go(func() (err error) {
		raw.PWT, err = f.PWT(ctx, pwtVersion)
		return err
	})
	g.Go(func() (err error) {
		raw.Deflator, err = f.Deflator(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &raw, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, dataset, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		f.logger.Info("Fetching dataset",
			"dataset", dataset,
			"attempt", attempt,
			"max_attempts", maxRetries)

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			f.logger.Info("Received dataset", "dataset", dataset, "bytes", len(data))
			return data, nil
		}
		lastErr = err
		f.logger.Warn("Fetch attempt failed", "dataset", dataset, "attempt", attempt, "error", err)

		if attempt < maxRetries {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetch of %s failed after %d attempts: %w", dataset, maxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
