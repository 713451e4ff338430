package domain

import (
	"fmt"
	"time"
)

// Label is the classifier output: LabelLowRisk or LabelHighRisk.
type Label int

const (
	LabelLowRisk  Label = 0
	LabelHighRisk Label = 1
)

// ParseLabel converts a raw classifier output into a Label. Anything other
// than 0 or 1 means the classifier does not honour the binary contract.
func ParseLabel(raw int) (Label, error) {
	switch Label(raw) {
	case LabelLowRisk, LabelHighRisk:
		return Label(raw), nil
	default:
		return 0, fmt.Errorf("%w: classifier returned label %d, want 0 or 1", ErrSchemaMismatch, raw)
	}
}

// Risk returns "high" or "low".
func (l Label) Risk() string {
	if l == LabelHighRisk {
		return "high"
	}
	return "low"
}

// Headline is the primary outcome message shown to the user.
func (l Label) Headline() string {
	if l == LabelHighRisk {
		return "HIGH RISK: Typhoid outbreak likely"
	}
	return "LOW RISK: Typhoid outbreak unlikely"
}

// Advisory is the follow-up action for the outcome, empty for low risk.
func (l Label) Advisory() string {
	if l == LabelHighRisk {
		return "Immediate preventive action recommended!"
	}
	return ""
}

// Prediction is the result of one inference call.
type Prediction struct {
	Label         Label     `json:"label" yaml:"label"`
	Risk          string    `json:"risk" yaml:"risk"`
	Headline      string    `json:"headline" yaml:"headline"`
	Advisory      string    `json:"advisory,omitempty" yaml:"advisory,omitempty"`
	SchemaVersion string    `json:"schema_version" yaml:"schema_version"`
	PredictedAt   time.Time `json:"predicted_at" yaml:"predicted_at"`
}

// NewPrediction fills in the presentational fields for label.
func NewPrediction(label Label) Prediction {
	return Prediction{
		Label:         label,
		Risk:          label.Risk(),
		Headline:      label.Headline(),
		Advisory:      label.Advisory(),
		SchemaVersion: SchemaVersion,
		PredictedAt:   clock.Now().UTC(),
	}
}
