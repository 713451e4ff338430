package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/briandowns/spinner"
	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/inference"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/couchcryptid/swasthya-alert/internal/observability"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type predictOptions struct {
	assessment assessmentFlags
	modelPath  string
	format     string
	runtimeLib string
	output     string
	verbose    bool
}

// predictResult is what predict prints in json and yaml modes.
type predictResult struct {
	Assessment domain.Assessment `json:"assessment" yaml:"assessment"`
	Prediction domain.Prediction `json:"prediction" yaml:"prediction"`
}

func newPredictCmd() *cobra.Command {
	opts := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict typhoid outbreak risk for one assessment",
		Long: `Validate an assessment, encode it and run it through the classifier.

Examples:
  # Score the default assessment with a few readings changed
  riskctl predict --bacteria-count 4200 --clean-water-access 20 --treatment Unknown

  # Score an assessment stored as JSON
  riskctl predict -i district7.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, opts)
		},
	}

	opts.assessment.register(cmd)
	cmd.Flags().StringVarP(&opts.modelPath, "model", "m", "typhoid_rf_model.json", "Path to the classifier artifact")
	cmd.Flags().StringVar(&opts.format, "format", "", "Artifact format (forest, onnx); inferred from the extension when empty")
	cmd.Flags().StringVar(&opts.runtimeLib, "onnx-runtime", "", "Path to the ONNX Runtime shared library")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log classifier loading to stderr")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	a, err := opts.assessment.assessment(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	}

	service := inference.New(inference.ArtifactLoader{
		Options: model.Options{Path: opts.modelPath, Format: opts.format, RuntimeLib: opts.runtimeLib},
		Logger:  logger,
	}, logger, observability.NewUnregisteredMetrics())
	defer service.Close() //nolint:errcheck // process is exiting

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Loading classifier..."
	s.Start()
	err = service.Load(cmd.Context())
	s.Stop()
	if err != nil {
		return err
	}

	p, err := service.Assess(cmd.Context(), a)
	if err != nil {
		return err
	}

	result := predictResult{Assessment: a, Prediction: p}
	return render(cmd.OutOrStdout(), opts.output, result, func(w io.Writer) {
		displayPrediction(w, p)
	})
}

func displayPrediction(w io.Writer, p domain.Prediction) {
	headline := color.New(color.FgGreen, color.Bold)
	if p.Label == domain.LabelHighRisk {
		headline = color.New(color.FgRed, color.Bold)
	}

	fmt.Fprintln(w)
	headline.Fprintln(w, p.Headline) //nolint:errcheck // terminal output
	if p.Advisory != "" {
		color.New(color.FgYellow).Fprintf(w, "   %s\n", p.Advisory) //nolint:errcheck // terminal output
	}
	fmt.Fprintf(w, "   Schema: %s\n\n", p.SchemaVersion)
}
