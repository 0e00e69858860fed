package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/uuid"

	"chipanalyzer/internal/database"
	"chipanalyzer/internal/models"
)

func (controller *Controller) ChartHandler(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = "light"
	}

	bgColor := "#ffffff"
	textColor := "#000000"
	if theme == "dark" {
		bgColor = "#1a1a1a"
		textColor = "#ffffff"
	}

	page := components.NewPage()
	page.PageTitle = "CHIP Analyzer"

	switch kind {
	case "countries":
		runParam := r.URL.Query().Get("run")
		results, run, err := controller.countryResultsForChart(runParam)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(results) == 0 {
			http.Error(w, "No country results for run", http.StatusNotFound)
			return
		}
		page.AddCharts(createCountryBarChart(results, run))
	case "global":
		points, err := controller.repo.GetGlobalSeries()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(points) == 0 {
			http.Error(w, "No runs recorded", http.StatusNotFound)
			return
		}
		page.AddCharts(createGlobalLineChart(points))
	default:
		http.Error(w, "Unknown chart kind", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html")

	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            margin: 0;
            padding: 20px;
            background-color: %s;
            color: %s;
            font-family: Arial, sans-serif;
        }
        .chart-container {
            background-color: %s;
            border-radius: 8px;
            padding: 20px;
        }
    </style>
</head>
<body>
    <div class="chart-container">`, bgColor, textColor, bgColor)

	page.Render(w)

	fmt.Fprintf(w, `</div></body></html>`)
}

// countryResultsForChart resolves the run to chart: the one requested,
// or the most recent when no run is given.
func (controller *Controller) countryResultsForChart(runParam string) ([]models.CountryResult, models.EstimateRun, error) {
	var run models.EstimateRun

	if runParam != "" {
		id, err := uuid.Parse(runParam)
		if err != nil {
			return nil, run, fmt.Errorf("invalid run id: %w", err)
		}
		run, err = controller.repo.GetRun(id)
		if err != nil {
			return nil, run, err
		}
	} else {
		runs, err := controller.repo.ListRuns()
		if err != nil {
			return nil, run, err
		}
		if len(runs) == 0 {
			return nil, run, fmt.Errorf("no runs recorded")
		}
		run = runs[0]
	}

	results, err := controller.repo.GetCountryResults(run.ID)
	if err != nil {
		return nil, run, err
	}
	return results, run, nil
}

func createCountryBarChart(results []models.CountryResult, run models.EstimateRun) *charts.Bar {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("CHIP by Country — %s", run.Study),
			Subtitle: fmt.Sprintf("Global value $%.2f/hour (%s)", run.CHIPValue, run.Weighting),
			Left:     "center",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeInfographic,
			Width:  "1200px",
			Height: "600px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Country",
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
				Margin: 10,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "CHIP ($/hour)",
			NameLocation: "center",
			NameGap:      50,
			Type:         "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "slider",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	countries := make([]string, len(results))
	values := make([]opts.BarData, len(results))
	for i, result := range results {
		countries[i] = result.ISOCode
		values[i] = opts.BarData{Value: result.CHIP}
	}

	bar.SetXAxis(countries)
	bar.AddSeries("CHIP", values,
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)

	return bar
}

func createGlobalLineChart(points []database.GlobalPoint) *charts.Line {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Global CHIP Value Over Runs",
			Subtitle: "One point per estimate run",
			Left:     "center",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeInfographic,
			Width:  "1200px",
			Height: "600px",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Bottom: "0",
			Orient: "horizontal",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Run",
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 30,
				Margin: 10,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "CHIP ($/hour)",
			NameLocation: "center",
			NameGap:      50,
			Type:         "value",
		}),
	)

	labels := make([]string, len(points))
	series := make(map[string][]opts.LineData)
	for i, point := range points {
		labels[i] = point.CreatedAt
		series[point.Study] = append(series[point.Study], opts.LineData{
			Value:      point.CHIPValue,
			Symbol:     "circle",
			SymbolSize: 8,
		})
	}

	line.SetXAxis(labels)
	for study, values := range series {
		line.AddSeries(study, values,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:       opts.Bool(true),
				ShowSymbol:   opts.Bool(true),
				Symbol:       "circle",
				SymbolSize:   8,
				ConnectNulls: opts.Bool(true),
			}),
		)
	}

	return line
}
