package visualization

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"chipanalyzer/internal/database"
	"chipanalyzer/internal/models"
)

// PlotCountryCHIP renders a bar chart of the top-N country CHIP values.
func PlotCountryCHIP(countries []models.CountryResult, outputDir string, topN int) (string, error) {
	if len(countries) == 0 {
		return "", fmt.Errorf("no country results to plot")
	}
	if topN > len(countries) {
		topN = len(countries)
	}
	top := topByCHIP(countries, topN)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("CHIP Value by Country (Top %d)", topN)
	p.Y.Label.Text = "CHIP ($/hour)"
	p.X.Tick.Marker = countryTicks(top)
	p.X.Tick.Label.Rotation = -1.0

	values := make(plotter.Values, len(top))
	for i, c := range top {
		values[i] = c.CHIP
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("chip_by_country_%d.png", time.Now().Unix()))
	if err := p.Save(12*vg.Inch, 6*vg.Inch, filename); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}
	return filename, nil
}

// PlotGlobalSeries renders the global CHIP value across estimate runs.
func PlotGlobalSeries(points []database.GlobalPoint, outputDir string) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("no runs to plot")
	}

	p := plot.New()
	p.Title.Text = "Global CHIP Value by Run"
	p.X.Label.Text = "Run"
	p.Y.Label.Text = "CHIP ($/hour)"
	p.X.Tick.Marker = runTicks(points)

	pts := make(plotter.XYs, len(points))
	for i, point := range points {
		pts[i].X = float64(i)
		pts[i].Y = point.CHIPValue
	}

	if err := plotutil.AddLinePoints(p, "global", pts); err != nil {
		return "", fmt.Errorf("failed to build series chart: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("chip_global_series_%d.png", time.Now().Unix()))
	if err := p.Save(10*vg.Inch, 6*vg.Inch, filename); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}
	return filename, nil
}

func topByCHIP(countries []models.CountryResult, n int) []models.CountryResult {
	sorted := append([]models.CountryResult(nil), countries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CHIP > sorted[j].CHIP })
	return sorted[:n]
}

type countryTicks []models.CountryResult

func (t countryTicks) Ticks(min, max float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(t))
	for i, c := range t {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: c.ISOCode})
	}
	return ticks
}

type runTicks []database.GlobalPoint

func (t runTicks) Ticks(min, max float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(t))
	for i, p := range t {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: p.CreatedAt})
	}
	return ticks
}
