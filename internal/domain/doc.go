// Package domain models a typhoid outbreak risk assessment and the feature
// vector the risk classifier consumes.
//
// # Data Source
//
// An assessment is entered by a field officer through the web form, the JSON
// API, the riskctl command, or published as JSON to the assessment topic. It
// describes one locality: water quality readings, disease burden and a few
// socio-economic indicators, plus the water treatment method in use.
//
// # Feature Schema
//
// The classifier is a random forest trained on a table with exactly 22
// columns. The column order is load-bearing: the model has no notion of
// column names at inference time, so a swapped pair of columns produces a
// plausible but wrong label rather than an error.
//
//	 0 year                      7 bacteria_count          14 urbanization_rate
//	 1 contaminant_level         8 clean_water_access      15 sanitation_coverage
//	 2 ph_level                  9 diarrheal_cases         16 rainfall
//	 3 turbidity                10 cholera_cases           17 temperature
//	 4 dissolved_oxygen         11 infant_mortality        18 population_density
//	 5 nitrate_level            12 gdp_per_capita          19 water_treatment_chlorination
//	 6 lead_concentration       13 healthcare_access       20 water_treatment_filtration
//	                                                       21 water_treatment_unknown
//
// The numeric columns come from [NumericFields], which is the single source
// of truth for order, ranges and defaults. The form, the CLI flags and the
// encoder all iterate that table.
//
// Treatment is one-hot encoded against the reference category Boiling:
//
//	Boiling       (0, 0, 0)
//	Chlorination  (1, 0, 0)
//	Filtration    (0, 1, 0)
//	Unknown       (0, 0, 1)
//
// [FeatureVector] is a fixed-size array, so a width change is a compile
// error. Artifacts that declare their column names are checked against
// [FeatureNames] when loaded; see [SchemaVersion].
//
// # Validation
//
// [Encode] is total and never validates. Range checks happen where input
// enters the system via [Assessment.Validate], which reports every offending
// field at once.
package domain
