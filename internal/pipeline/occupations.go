package pipeline

import "chipanalyzer/internal/models"

// The study maps ISCO-08 and ISCO-88 major groups to nine standardized
// occupation categories. Managers anchor the wage ratios; Elementary is
// the unskilled wage the distortion factor is applied to.
const (
	OccupationManagers      = "Managers"
	OccupationProfessionals = "Professionals"
	OccupationTechnicians   = "Technicians"
	OccupationClerks        = "Clerks"
	OccupationSalesmen      = "Salesmen"
	OccupationAgforestry    = "Agforestry"
	OccupationCraftsmen     = "Craftsmen"
	OccupationOperators     = "Operators"
	OccupationElementary    = "Elementary"
)

// Occupations lists the nine categories in ISCO major-group order.
var Occupations = []string{
	OccupationManagers,
	OccupationProfessionals,
	OccupationTechnicians,
	OccupationClerks,
	OccupationSalesmen,
	OccupationAgforestry,
	OccupationCraftsmen,
	OccupationOperators,
	OccupationElementary,
}

var iscoToOccupation = map[string]string{
	"OCU_ISCO08_1": OccupationManagers,
	"OCU_ISCO08_2": OccupationProfessionals,
	"OCU_ISCO08_3": OccupationTechnicians,
	"OCU_ISCO08_4": OccupationClerks,
	"OCU_ISCO08_5": OccupationSalesmen,
	"OCU_ISCO08_6": OccupationAgforestry,
	"OCU_ISCO08_7": OccupationCraftsmen,
	"OCU_ISCO08_8": OccupationOperators,
	"OCU_ISCO08_9": OccupationElementary,
	"OCU_ISCO88_1": OccupationManagers,
	"OCU_ISCO88_2": OccupationProfessionals,
	"OCU_ISCO88_3": OccupationTechnicians,
	"OCU_ISCO88_4": OccupationClerks,
	"OCU_ISCO88_5": OccupationSalesmen,
	"OCU_ISCO88_6": OccupationAgforestry,
	"OCU_ISCO88_7": OccupationCraftsmen,
	"OCU_ISCO88_8": OccupationOperators,
	"OCU_ISCO88_9": OccupationElementary,
}

// Totals, armed forces, unclassified and skill-level rollups carry no
// occupation-level information and are dropped before mapping.
var excludedISCOCodes = map[string]bool{
	"OCU_SKILL_TOTAL":  true,
	"OCU_ISCO08_TOTAL": true,
	"OCU_ISCO88_TOTAL": true,
	"OCU_ISCO08_0":     true,
	"OCU_ISCO88_0":     true,
	"OCU_ISCO08_X":     true,
	"OCU_ISCO88_X":     true,
	"OCU_SKILL_X":      true,
	"OCU_SKILL_L1":     true,
	"OCU_SKILL_L2":     true,
	"OCU_SKILL_L3-4":   true,
}

// MapOccupation resolves an ISCO code to its occupation category.
func MapOccupation(iscoCode string) (string, bool) {
	if excludedISCOCodes[iscoCode] {
		return "", false
	}
	occupation, ok := iscoToOccupation[iscoCode]
	return occupation, ok
}

// MapOccupations drops unmappable rows and keys the rest by occupation.
func MapOccupations(points []models.ILOValue) []mappedValue {
	var mapped []mappedValue
	for _, p := range points {
		occupation, ok := MapOccupation(p.ISCOCode)
		if !ok {
			continue
		}
		mapped = append(mapped, mappedValue{
			ISOCode:    p.ISOCode,
			Year:       p.Year,
			Occupation: occupation,
			Value:      p.Value,
		})
	}
	return mapped
}

type mappedValue struct {
	ISOCode    string
	Year       int
	Occupation string
	Value      float64
}
