package domain

import (
	"fmt"
	"strings"
)

// Treatment is the water treatment method used in the assessed locality.
type Treatment string

const (
	TreatmentBoiling      Treatment = "Boiling"
	TreatmentChlorination Treatment = "Chlorination"
	TreatmentFiltration   Treatment = "Filtration"
	TreatmentUnknown      Treatment = "Unknown"
)

// ReferenceTreatment is encoded as all indicator columns zero.
const ReferenceTreatment = TreatmentBoiling

// Treatments lists every accepted treatment in presentation order.
func Treatments() []Treatment {
	return []Treatment{TreatmentBoiling, TreatmentChlorination, TreatmentFiltration, TreatmentUnknown}
}

// ParseTreatment matches s case-insensitively against the known treatments.
func ParseTreatment(s string) (Treatment, error) {
	s = strings.TrimSpace(s)
	for _, t := range Treatments() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: treatment %q is not one of Boiling, Chlorination, Filtration, Unknown", ErrOutOfRange, s)
}

// Valid reports whether t is exactly one of the four canonical treatments.
func (t Treatment) Valid() bool {
	for _, known := range Treatments() {
		if t == known {
			return true
		}
	}
	return false
}

func (t Treatment) String() string { return string(t) }

// UnmarshalText accepts any casing of a known treatment name.
func (t *Treatment) UnmarshalText(text []byte) error {
	parsed, err := ParseTreatment(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Treatment) columnName() string {
	return "water_treatment_" + strings.ToLower(string(t))
}
