package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/spf13/cobra"
)

// assessmentFlags binds one flag per numeric column plus --treatment and
// --input. Flags override values read from --input.
type assessmentFlags struct {
	input     string
	treatment string
	values    [domain.NumericFieldCount]float64
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func (f *assessmentFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	for i, spec := range domain.NumericFields {
		usage := fmt.Sprintf("%s (%g to %g)", spec.Label, spec.Min, spec.Max)
		if spec.Unit != "" {
			usage = fmt.Sprintf("%s [%s] (%g to %g)", spec.Label, spec.Unit, spec.Min, spec.Max)
		}
		flags.Float64Var(&f.values[i], flagName(spec.Key), spec.Default, usage)
	}

	names := make([]string, 0, len(domain.Treatments()))
	for _, t := range domain.Treatments() {
		names = append(names, string(t))
	}
	flags.StringVar(&f.treatment, "treatment", string(domain.ReferenceTreatment),
		"Water treatment method ("+strings.Join(names, ", ")+")")
	flags.StringVarP(&f.input, "input", "i", "", "Read the assessment as JSON from a file, or - for stdin")
}

// assessment builds the assessment from --input and any explicitly set flags,
// then validates it.
func (f *assessmentFlags) assessment(cmd *cobra.Command) (domain.Assessment, error) {
	a := domain.DefaultAssessment()
	if f.input != "" {
		data, err := f.readInput(cmd.InOrStdin())
		if err != nil {
			return domain.Assessment{}, err
		}
		a, err = domain.ParseAssessment(data)
		if err != nil {
			return domain.Assessment{}, err
		}
	}

	flags := cmd.Flags()
	for i, spec := range domain.NumericFields {
		if flags.Changed(flagName(spec.Key)) {
			spec.Set(&a, f.values[i])
		}
	}
	if flags.Changed("treatment") {
		t, err := domain.ParseTreatment(f.treatment)
		if err != nil {
			return domain.Assessment{}, err
		}
		a.Treatment = t
	}

	if err := a.Validate(); err != nil {
		return domain.Assessment{}, err
	}
	return a, nil
}

func (f *assessmentFlags) readInput(stdin io.Reader) ([]byte, error) {
	if f.input == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(f.input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
