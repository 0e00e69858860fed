package fetcher

import (
	"fmt"
	"sort"
	"strings"
)

// PWTVersion describes one Penn World Table release. New releases get an
// entry here; existing studies stay pinned to the version they name.
type PWTVersion struct {
	URL   string
	Years string
}

// DefaultPWTVersion is used by studies that don't pin a version.
const DefaultPWTVersion = "11.0"

var pwtVersions = map[string]PWTVersion{
	"10.0": {
		URL:   "https://www.rug.nl/ggdc/docs/pwt100.csv",
		Years: "1950-2019",
	},
	"11.0": {
		URL:   "https://dataverse.nl/api/access/datafile/554105?format=csv",
		Years: "1950-2023",
	},
}

func PWTVersionInfo(version string) (PWTVersion, error) {
	if version == "" {
		version = DefaultPWTVersion
	}
	info, ok := pwtVersions[version]
	if !ok {
		available := make([]string, 0, len(pwtVersions))
		for v := range pwtVersions {
			available = append(available, v)
		}
		sort.Strings(available)
		return PWTVersion{}, fmt.Errorf("unknown PWT version %q, available: %s",
			version, strings.Join(available, ", "))
	}
	return info, nil
}

// PWTCacheKey names the cache entry for a version, so versions coexist.
func PWTCacheKey(version string) string {
	if version == "" {
		version = DefaultPWTVersion
	}
	return "pwt_" + strings.ReplaceAll(version, ".", "_")
}
