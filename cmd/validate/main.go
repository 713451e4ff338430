// Command validate checks a classifier artifact against the feature encoder
// before it is deployed: it must load, agree on the 22-column layout, emit
// only binary labels and score the reference scenarios as expected. A
// fixture produced by cmd/genmock can be replayed to detect drift between
// artifact versions.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -model typhoid_rf_model.json \
//	  -fixture data/mock/assessments.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/fatih/color"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fixtureRecord mirrors the records written by cmd/genmock.
type fixtureRecord struct {
	ID         string            `json:"id"`
	Assessment domain.Assessment `json:"assessment"`
	Risk       string            `json:"risk"`
}

func main() {
	modelPath := flag.String("model", "", "path to the classifier artifact")
	format := flag.String("format", "", "artifact format (forest, onnx); inferred when empty")
	runtimeLib := flag.String("onnx-runtime", "", "path to the ONNX Runtime shared library")
	fixture := flag.String("fixture", "", "optional genmock fixture to replay")
	flag.Parse()

	if *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := model.Options{Path: *modelPath, Format: *format, RuntimeLib: *runtimeLib}
	if code := run(os.Stdout, opts, *fixture); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, opts model.Options, fixturePath string) int {
	fmt.Fprintln(w, "=== Classifier Artifact Validation ===")
	fmt.Fprintln(w)

	ctx := context.Background()

	// ── Load ──
	load := &phase{name: "Artifact loads"}
	c, err := model.Open(opts)
	if err != nil {
		load.errorf("%v", err)
		report(w, []*phase{load})
		return 1
	}
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close() //nolint:errcheck // process is exiting
	}

	var fixture []fixtureRecord
	if fixturePath != "" {
		fixture, err = loadFixture(fixturePath)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load fixture: %v\n", err)
			return 1
		}
	}

	// ── Run validation phases ──
	phases := []*phase{
		load,
		validateSchema(c),
		validateEncoder(),
		validateLabels(ctx, c),
		validateScenarios(ctx, c),
	}
	if fixture != nil {
		phases = append(phases, validateFixture(ctx, c, fixture))
	}

	if !report(w, phases) {
		fmt.Fprintln(w, "\nValidation FAILED.")
		return 1
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return 0
}

// report prints the phase table and any detailed errors.
func report(w io.Writer, phases []*phase) bool {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintfFunc()

	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

func loadFixture(path string) ([]fixtureRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []fixtureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ── Phases ──

func validateSchema(c model.Classifier) *phase {
	p := &phase{name: "Feature schema"}
	if got := c.NumFeatures(); got != domain.FeatureCount {
		p.errorf("classifier expects %d features, encoder produces %d", got, domain.FeatureCount)
	}

	forest, ok := c.(*model.Forest)
	if !ok || len(forest.FeatureNames) == 0 {
		return p
	}
	if forest.SchemaVersion != "" && forest.SchemaVersion != domain.SchemaVersion {
		p.errorf("artifact schema %q, encoder schema %q", forest.SchemaVersion, domain.SchemaVersion)
	}
	want := domain.FeatureNames()
	for i := range min(len(want), len(forest.FeatureNames)) {
		if forest.FeatureNames[i] != want[i] {
			p.errorf("column %d: artifact %q, encoder %q", i, forest.FeatureNames[i], want[i])
		}
	}
	return p
}

// validateEncoder encodes the range extremes for every treatment and checks
// the vectors are finite with a well-formed one-hot block.
func validateEncoder() *phase {
	p := &phase{name: "Encoder output"}

	var lo, hi domain.Assessment
	for _, f := range domain.NumericFields {
		f.Set(&lo, f.Min)
		f.Set(&hi, f.Max)
	}

	for _, base := range []domain.Assessment{lo, hi, domain.DefaultAssessment()} {
		for _, t := range domain.Treatments() {
			a := base
			a.Treatment = t
			v := domain.Encode(a)

			for i, x := range v {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					p.errorf("%s: column %d is not finite", t, i)
				}
			}
			hot := 0.0
			for _, x := range v[domain.NumericFieldCount:] {
				hot += x
			}
			want := 1.0
			if t == domain.ReferenceTreatment {
				want = 0
			}
			if hot != want {
				p.errorf("%s: one-hot block sums to %g, want %g", t, hot, want)
			}
		}
	}
	return p
}

func validateLabels(ctx context.Context, c model.Classifier) *phase {
	p := &phase{name: "Binary labels"}

	if forest, ok := c.(*model.Forest); ok {
		labels := forest.Labels()
		slices.Sort(labels)
		if !slices.Equal(labels, []int{0, 1}) {
			p.errorf("artifact declares classes %v, want [0 1]", labels)
		}
	}

	for _, s := range scenarios() {
		label, err := c.Predict(ctx, domain.Encode(s.assessment).Slice())
		if err != nil {
			p.errorf("%s: %v", s.name, err)
			continue
		}
		if _, err := domain.ParseLabel(label); err != nil {
			p.errorf("%s: %v", s.name, err)
		}
	}
	return p
}

func validateScenarios(ctx context.Context, c model.Classifier) *phase {
	p := &phase{name: "Reference scenarios"}
	for _, s := range scenarios() {
		label, err := c.Predict(ctx, domain.Encode(s.assessment).Slice())
		if err != nil {
			p.errorf("%s: %v", s.name, err)
			continue
		}
		if domain.Label(label) != s.want {
			p.errorf("%s: got %s, want %s", s.name, domain.Label(label).Risk(), s.want.Risk())
		}
	}
	return p
}

func validateFixture(ctx context.Context, c model.Classifier, records []fixtureRecord) *phase {
	p := &phase{name: fmt.Sprintf("Fixture replay (%d records)", len(records))}
	for _, r := range records {
		if err := r.Assessment.Validate(); err != nil {
			p.errorf("%s: %v", r.ID, err)
			continue
		}
		v := domain.Encode(r.Assessment)
		if id := domain.VectorID(v); id != r.ID {
			p.errorf("%s: vector id is now %s", r.ID, id)
		}
		if r.Risk == "" {
			continue
		}
		label, err := c.Predict(ctx, v.Slice())
		if err != nil {
			p.errorf("%s: %v", r.ID, err)
			continue
		}
		if got := domain.Label(label).Risk(); got != r.Risk {
			p.errorf("%s: risk %s, fixture recorded %s", r.ID, got, r.Risk)
		}
	}
	return p
}

type scenario struct {
	name       string
	assessment domain.Assessment
	want       domain.Label
}

// scenarios are the two assessments every deployable artifact must separate.
func scenarios() []scenario {
	contaminated := domain.DefaultAssessment()
	contaminated.BacteriaCount = 4200
	contaminated.CleanWaterAccess = 20
	contaminated.DiarrhealCases = 800
	contaminated.SanitationCoverage = 15
	contaminated.Treatment = domain.TreatmentUnknown

	return []scenario{
		{name: "contaminated supply", assessment: contaminated, want: domain.LabelHighRisk},
		{name: "default readings", assessment: domain.DefaultAssessment(), want: domain.LabelLowRisk},
	}
}

