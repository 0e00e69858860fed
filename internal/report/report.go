package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/models"
)

// topCountries is how many countries the breakdown table shows.
const topCountries = 20

// Report bundles everything the markdown findings document presents.
type Report struct {
	Run        models.EstimateRun
	Countries  []models.CountryResult
	Validation *ValidationResult
	Vintages   map[string]cache.Metadata
}

// Markdown renders the findings report: headline value, parameters,
// validation outcome, per-country ranking and data vintages.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# CHIP Estimate — %s\n\n", r.Run.Study)
	fmt.Fprintf(&b, "Generated: %s\n\n---\n\n", r.Run.CreatedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Result\n\n**$%.2f/hour** (%s, %d countries)\n\n",
		r.Run.CHIPValue, r.Run.Weighting, r.Run.NCountries)

	b.WriteString("## Parameters\n\n")
	b.WriteString("| Parameter | Value |\n|-----------|-------|\n")
	fmt.Fprintf(&b, "| Years | %d-%d |\n", r.Run.YearStart, r.Run.YearEnd)
	if r.Run.PWTVersion != "" {
		fmt.Fprintf(&b, "| PWT version | %s |\n", r.Run.PWTVersion)
	}
	fmt.Fprintf(&b, "| Weighting | %s |\n", r.Run.Weighting)
	fmt.Fprintf(&b, "| Deflated | %t |\n", r.Run.Deflated)
	fmt.Fprintf(&b, "| Mean alpha | %.4f |\n", r.Run.MeanAlpha)
	b.WriteString("\n")

	if r.Validation != nil {
		status := "FAILED"
		if r.Validation.Passed {
			status = "PASSED"
		}
		b.WriteString("## Validation\n\n")
		b.WriteString("| Metric | Value |\n|--------|-------|\n")
		fmt.Fprintf(&b, "| Computed | $%.2f/hour |\n", r.Validation.Value)
		fmt.Fprintf(&b, "| Target | $%.2f/hour |\n", r.Validation.Target)
		fmt.Fprintf(&b, "| Deviation | %.2f%% |\n", r.Validation.DeviationPct)
		fmt.Fprintf(&b, "| Tolerance | %.2f%% |\n", r.Validation.TolerancePct)
		fmt.Fprintf(&b, "| Status | %s |\n\n", status)
	}

	if len(r.Countries) > 0 {
		b.WriteString("## Country Breakdown\n\n")
		b.WriteString("| Country | CHIP ($/h) | Elementary wage | Theta | Alpha | Years |\n")
		b.WriteString("|---------|-----------|-----------------|-------|-------|-------|\n")
		shown := r.Countries
		if len(shown) > topCountries {
			shown = shown[:topCountries]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.3f | %.3f | %d-%d (%d) |\n",
				c.ISOCode, c.CHIP, c.ElementaryWage, c.Theta, c.Alpha,
				c.YearMin, c.YearMax, c.NYears)
		}
		if len(r.Countries) > topCountries {
			fmt.Fprintf(&b, "\n*Showing top %d of %d countries*\n", topCountries, len(r.Countries))
		}
		b.WriteString("\n")
	}

	if len(r.Vintages) > 0 {
		b.WriteString("## Data Vintages\n\n")
		b.WriteString("| Dataset | Source | Fetched |\n|---------|--------|--------|\n")
		for _, dataset := range sortedKeys(r.Vintages) {
			meta := r.Vintages[dataset]
			source := meta.Source
			if meta.Version != "" {
				source += " " + meta.Version
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				dataset, source, meta.LastUpdated.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Save writes the markdown report under dir with a timestamped name and
// returns the path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	name := fmt.Sprintf("report_%s_%s.md", r.Run.Study, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(r.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func sortedKeys(m map[string]cache.Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
