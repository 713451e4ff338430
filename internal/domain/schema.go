package domain

// SchemaVersion identifies the column layout the classifier was trained on.
// Bump it whenever NumericFields or the treatment indicators change.
const SchemaVersion = "typhoid-rf/v1"

const (
	// NumericFieldCount is the number of raw numeric columns.
	NumericFieldCount = 19
	// IndicatorCount is the number of one-hot treatment columns.
	IndicatorCount = 3
	// FeatureCount is the width of every FeatureVector.
	FeatureCount = NumericFieldCount + IndicatorCount
)

// FieldSpec describes one numeric column: its key, how it is presented and
// the range the input widgets enforce.
type FieldSpec struct {
	Key     string  `json:"key" yaml:"key"`
	Label   string  `json:"label" yaml:"label"`
	Unit    string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
	Step    float64 `json:"step" yaml:"step"`
	Integer bool    `json:"integer,omitempty" yaml:"integer,omitempty"`

	get func(*Assessment) *float64
}

// Value returns the field's value in a.
func (f FieldSpec) Value(a Assessment) float64 {
	return *f.get(&a)
}

// Set stores v into the field of a.
func (f FieldSpec) Set(a *Assessment, v float64) {
	*f.get(a) = v
}

// InRange reports whether v lies within [Min, Max].
func (f FieldSpec) InRange(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// NumericFields lists the numeric columns in feature-vector order.
var NumericFields = [NumericFieldCount]FieldSpec{
	{Key: "year", Label: "Year", Min: 1900, Max: 2100, Default: 2024, Step: 1, Integer: true,
		get: func(a *Assessment) *float64 { return &a.Year }},
	{Key: "contaminant_level", Label: "Contaminant Level", Unit: "ppm", Min: 0, Max: 500, Default: 7.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.ContaminantLevel }},
	{Key: "ph_level", Label: "pH Level", Min: 0, Max: 14, Default: 7.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.PHLevel }},
	{Key: "turbidity", Label: "Turbidity", Unit: "NTU", Min: 0, Max: 100, Default: 2.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.Turbidity }},
	{Key: "dissolved_oxygen", Label: "Dissolved Oxygen", Unit: "mg/L", Min: 0, Max: 20, Default: 7.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.DissolvedOxygen }},
	{Key: "nitrate_level", Label: "Nitrate Level", Unit: "mg/L", Min: 0, Max: 100, Default: 10.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.NitrateLevel }},
	{Key: "lead_concentration", Label: "Lead Concentration", Unit: "µg/L", Min: 0, Max: 100, Default: 5.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.LeadConcentration }},
	{Key: "bacteria_count", Label: "Bacteria Count", Unit: "CFU/mL", Min: 0, Max: 5000, Default: 100.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.BacteriaCount }},
	{Key: "clean_water_access", Label: "Clean Water Access", Unit: "%", Min: 0, Max: 100, Default: 70.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.CleanWaterAccess }},
	{Key: "diarrheal_cases", Label: "Diarrheal Cases per 100k", Min: 0, Max: 1000, Default: 100.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.DiarrhealCases }},
	{Key: "cholera_cases", Label: "Cholera Cases per 100k", Min: 0, Max: 500, Default: 20.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.CholeraCases }},
	{Key: "infant_mortality", Label: "Infant Mortality Rate", Min: 0, Max: 200, Default: 10.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.InfantMortality }},
	{Key: "gdp_per_capita", Label: "GDP per Capita", Unit: "USD", Min: 0, Max: 100000, Default: 5000.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.GDPPerCapita }},
	{Key: "healthcare_access", Label: "Healthcare Access Index", Min: 0, Max: 100, Default: 50.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.HealthcareAccess }},
	{Key: "urbanization_rate", Label: "Urbanization Rate", Unit: "%", Min: 0, Max: 100, Default: 40.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.UrbanizationRate }},
	{Key: "sanitation_coverage", Label: "Sanitation Coverage", Unit: "%", Min: 0, Max: 100, Default: 60.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.SanitationCoverage }},
	{Key: "rainfall", Label: "Rainfall", Unit: "mm/year", Min: 0, Max: 5000, Default: 1000.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.Rainfall }},
	{Key: "temperature", Label: "Temperature", Unit: "°C", Min: 0, Max: 50, Default: 25.0, Step: 0.1,
		get: func(a *Assessment) *float64 { return &a.Temperature }},
	{Key: "population_density", Label: "Population Density", Min: 0, Max: 10000, Default: 500.0, Step: 1,
		get: func(a *Assessment) *float64 { return &a.PopulationDensity }},
}

// indicatorTreatments are the non-reference treatments, in column order.
var indicatorTreatments = [IndicatorCount]Treatment{
	TreatmentChlorination,
	TreatmentFiltration,
	TreatmentUnknown,
}

// FieldByKey looks up a numeric column by its key.
func FieldByKey(key string) (FieldSpec, bool) {
	for _, f := range NumericFields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FeatureNames returns the 22 column names in the order the classifier expects.
func FeatureNames() []string {
	names := make([]string, 0, FeatureCount)
	for _, f := range NumericFields {
		names = append(names, f.Key)
	}
	for _, t := range indicatorTreatments {
		names = append(names, t.columnName())
	}
	return names
}
