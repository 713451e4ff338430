package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Assessment is one locality's raw measurements as entered by the user.
// Field order here is cosmetic; column order is defined by NumericFields.
type Assessment struct {
	Year               float64   `json:"year" yaml:"year"`
	ContaminantLevel   float64   `json:"contaminant_level" yaml:"contaminant_level"`
	PHLevel            float64   `json:"ph_level" yaml:"ph_level"`
	Turbidity          float64   `json:"turbidity" yaml:"turbidity"`
	DissolvedOxygen    float64   `json:"dissolved_oxygen" yaml:"dissolved_oxygen"`
	NitrateLevel       float64   `json:"nitrate_level" yaml:"nitrate_level"`
	LeadConcentration  float64   `json:"lead_concentration" yaml:"lead_concentration"`
	BacteriaCount      float64   `json:"bacteria_count" yaml:"bacteria_count"`
	CleanWaterAccess   float64   `json:"clean_water_access" yaml:"clean_water_access"`
	DiarrhealCases     float64   `json:"diarrheal_cases" yaml:"diarrheal_cases"`
	CholeraCases       float64   `json:"cholera_cases" yaml:"cholera_cases"`
	InfantMortality    float64   `json:"infant_mortality" yaml:"infant_mortality"`
	GDPPerCapita       float64   `json:"gdp_per_capita" yaml:"gdp_per_capita"`
	HealthcareAccess   float64   `json:"healthcare_access" yaml:"healthcare_access"`
	UrbanizationRate   float64   `json:"urbanization_rate" yaml:"urbanization_rate"`
	SanitationCoverage float64   `json:"sanitation_coverage" yaml:"sanitation_coverage"`
	Rainfall           float64   `json:"rainfall" yaml:"rainfall"`
	Temperature        float64   `json:"temperature" yaml:"temperature"`
	PopulationDensity  float64   `json:"population_density" yaml:"population_density"`
	Treatment          Treatment `json:"treatment" yaml:"treatment"`
}

// DefaultAssessment returns every field at its declared default with the
// reference treatment. Decoders start from it so omitted fields keep defaults.
func DefaultAssessment() Assessment {
	var a Assessment
	for _, f := range NumericFields {
		f.Set(&a, f.Default)
	}
	a.Treatment = ReferenceTreatment
	return a
}

// Validate checks every field against its declared range and returns a
// *ValidationError naming all offending fields, or nil.
func (a Assessment) Validate() error {
	verr := &ValidationError{}
	for _, f := range NumericFields {
		v := f.Value(a)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			verr.Add(f.Key, "must be a finite number")
		case !f.InRange(v):
			verr.Add(f.Key, fmt.Sprintf("must be between %s and %s", formatBound(f.Min), formatBound(f.Max)))
		case f.Integer && v != math.Trunc(v):
			verr.Add(f.Key, "must be a whole number")
		}
	}
	if !a.Treatment.Valid() {
		verr.Add("treatment", "must be one of Boiling, Chlorination, Filtration, Unknown")
	}
	return verr.OrNil()
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
