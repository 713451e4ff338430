package main

import (
	"fmt"
	"io"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type schemaView struct {
	SchemaVersion string             `json:"schema_version" yaml:"schema_version"`
	Fields        []domain.FieldSpec `json:"fields" yaml:"fields"`
	Treatments    []domain.Treatment `json:"treatments" yaml:"treatments"`
	FeatureNames  []string           `json:"feature_names" yaml:"feature_names"`
}

func newSchemaCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the assessment fields and feature columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := schemaView{
				SchemaVersion: domain.SchemaVersion,
				Fields:        domain.NumericFields[:],
				Treatments:    domain.Treatments(),
				FeatureNames:  domain.FeatureNames(),
			}
			return render(cmd.OutOrStdout(), output, view, func(w io.Writer) {
				displaySchema(w, view)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}

func displaySchema(w io.Writer, view schemaView) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Schema %s\n\n", view.SchemaVersion) //nolint:errcheck // terminal output

	fmt.Fprintf(w, "%-22s %-26s %-8s %10s %10s %10s\n", "FIELD", "LABEL", "UNIT", "MIN", "MAX", "DEFAULT")
	for _, f := range view.Fields {
		fmt.Fprintf(w, "%-22s %-26s %-8s %10g %10g %10g\n", f.Key, f.Label, f.Unit, f.Min, f.Max, f.Default)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "treatment: %v (reference %s)\n", view.Treatments, domain.ReferenceTreatment)
}
