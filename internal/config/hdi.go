package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadHDI reads a YAML map of ISO country codes to Human Development
// Index scores, the input for hdi_weighted aggregation.
func LoadHDI(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HDI file %s: %w", path, err)
	}

	hdi := make(map[string]float64)
	if err := yaml.Unmarshal(data, &hdi); err != nil {
		return nil, fmt.Errorf("failed to parse HDI file %s: %w", path, err)
	}
	if len(hdi) == 0 {
		return nil, fmt.Errorf("HDI file %s holds no countries", path)
	}

	for iso, score := range hdi {
		if score <= 0 || score > 1 {
			return nil, fmt.Errorf("HDI score for %s out of range: %v", iso, score)
		}
	}
	return hdi, nil
}
