package main

import (
	"fmt"
	"io"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		fields assessmentFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the feature vector for an assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := fields.assessment(cmd)
			if err != nil {
				return err
			}
			v := domain.Encode(a)
			named := v.Named()
			return render(cmd.OutOrStdout(), output, named, func(w io.Writer) {
				for i, f := range named {
					fmt.Fprintf(w, "%2d  %-30s %g\n", i, f.Name, f.Value)
				}
				fmt.Fprintf(w, "\nid: %s\n", domain.VectorID(v))
			})
		},
	}
	fields.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}
