package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Study holds the estimation parameters for one study run. Values are
// layered: built-in defaults, then the base config file, then an optional
// per-study override file.
type Study struct {
	Name string `yaml:"name"`

	Data struct {
		YearStart  int    `yaml:"year_start"`
		YearEnd    int    `yaml:"year_end"`
		PWTVersion string `yaml:"pwt_version"`
		UseCache   bool   `yaml:"use_cache"`
	} `yaml:"data"`

	Cleaning struct {
		IncludeCountries []string `yaml:"include_countries"`
		ExcludeCountries []string `yaml:"exclude_countries"`
	} `yaml:"cleaning"`

	Model struct {
		DefaultAlpha     float64 `yaml:"default_alpha"`
		EnableImputation bool    `yaml:"enable_imputation"`
		WageAveraging    string  `yaml:"wage_averaging"` // simple or weighted
		Deflate          bool    `yaml:"deflate"`
	} `yaml:"model"`

	Aggregation struct {
		Weighting string `yaml:"weighting"` // gdp_weighted, labor_weighted, hdi_weighted, unweighted
		HDIFile   string `yaml:"hdi_file"`  // YAML map of ISO code to HDI score
	} `yaml:"aggregation"`

	Validation struct {
		TargetValue  float64 `yaml:"target_value"`
		TolerancePct float64 `yaml:"tolerance_pct"`
	} `yaml:"validation"`

	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"` // md or json
	} `yaml:"output"`
}

func DefaultStudy() *Study {
	s := &Study{Name: "baseline"}
	s.Data.YearStart = 2000
	s.Data.YearEnd = 2022
	s.Data.UseCache = true
	s.Model.DefaultAlpha = 0.33
	s.Model.EnableImputation = true
	s.Model.WageAveraging = "simple"
	s.Aggregation.Weighting = "gdp_weighted"
	s.Validation.TolerancePct = 1.0
	s.Output.Dir = "output"
	s.Output.Format = "md"
	return s
}

// LoadStudy layers YAML files over the defaults. Missing files are not an
// error; a broken file is.
func LoadStudy(paths ...string) (*Study, error) {
	study := DefaultStudy()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read study config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, study); err != nil {
			return nil, fmt.Errorf("failed to parse study config %s: %w", path, err)
		}
	}

	if err := study.validate(); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *Study) validate() error {
	if s.Data.YearStart > s.Data.YearEnd {
		return fmt.Errorf("invalid year range: %d-%d", s.Data.YearStart, s.Data.YearEnd)
	}
	switch s.Model.WageAveraging {
	case "simple", "weighted":
	default:
		return fmt.Errorf("unknown wage averaging method: %s", s.Model.WageAveraging)
	}
	switch s.Aggregation.Weighting {
	case "gdp_weighted", "labor_weighted", "unweighted":
	case "hdi_weighted":
		if s.Aggregation.HDIFile == "" {
			return fmt.Errorf("hdi_weighted requires aggregation.hdi_file")
		}
	default:
		return fmt.Errorf("unknown weighting scheme: %s", s.Aggregation.Weighting)
	}
	return nil
}
