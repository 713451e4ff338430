// Command genmock generates a deterministic fixture of mock risk assessments.
// When a classifier artifact is given, each record also carries the risk the
// artifact assigns, so the fixture can later be checked with cmd/validate.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -n 200 -seed 42 \
//	  -model internal/model/testdata/forest.json \
//	  -out data/mock/assessments.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/inference"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/couchcryptid/swasthya-alert/internal/observability"
	"github.com/jonboulle/clockwork"
)

// mockRecord is one fixture entry. Risk is empty when no artifact was given.
type mockRecord struct {
	ID         string            `json:"id"`
	Profile    string            `json:"profile"`
	Assessment domain.Assessment `json:"assessment"`
	Risk       string            `json:"risk,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 100, "number of assessments to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	modelPath := flag.String("model", "", "optional classifier artifact used to label each record")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n > 0")
	}

	// Set a fixed clock so scored fixtures are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records := generate(*n, *seed)
	log.Printf("generated %d assessments", len(records))

	if *modelPath != "" {
		if err := label(context.Background(), records, *modelPath); err != nil {
			return fmt.Errorf("labelling with %s: %w", *modelPath, err)
		}
		printStats(records)
	}

	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)
	return nil
}

// generate alternates between a baseline profile near the declared defaults
// and a contaminated profile with poor water and a high disease burden.
func generate(n int, seed uint64) []mockRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	treatments := domain.Treatments()

	records := make([]mockRecord, 0, n)
	for i := range n {
		a := domain.DefaultAssessment()
		for _, f := range domain.NumericFields {
			f.Set(&a, jitter(rng, f, f.Default, 0.05))
		}

		profile := "baseline"
		if i%2 == 1 {
			profile = "contaminated"
			contaminate(rng, &a)
		}
		a.Treatment = treatments[rng.IntN(len(treatments))]

		records = append(records, mockRecord{
			ID:         domain.VectorID(domain.Encode(a)),
			Profile:    profile,
			Assessment: a,
		})
	}
	return records
}

func contaminate(rng *rand.Rand, a *domain.Assessment) {
	set := func(key string, lo, hi float64) {
		f, ok := domain.FieldByKey(key)
		if !ok {
			return
		}
		f.Set(a, round(f, lo+rng.Float64()*(hi-lo)))
	}
	set("bacteria_count", 1500, 5000)
	set("clean_water_access", 5, 30)
	set("diarrheal_cases", 450, 1000)
	set("sanitation_coverage", 5, 40)
	set("turbidity", 10, 60)
}

// jitter perturbs center by up to spread of the field's range, clamped and
// rounded to the field's step.
func jitter(rng *rand.Rand, f domain.FieldSpec, center, spread float64) float64 {
	v := center + (rng.Float64()*2-1)*spread*(f.Max-f.Min)
	return round(f, math.Min(f.Max, math.Max(f.Min, v)))
}

func round(f domain.FieldSpec, v float64) float64 {
	if f.Step <= 0 {
		return v
	}
	return math.Round(v/f.Step) * f.Step
}

func label(ctx context.Context, records []mockRecord, path string) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := inference.New(inference.ArtifactLoader{
		Options: model.Options{Path: path},
		Logger:  logger,
	}, logger, observability.NewUnregisteredMetrics())
	defer svc.Close() //nolint:errcheck // process is exiting

	for i := range records {
		p, err := svc.Assess(ctx, records[i].Assessment)
		if err != nil {
			return fmt.Errorf("record %s: %w", records[i].ID, err)
		}
		records[i].Risk = p.Risk
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func printStats(records []mockRecord) {
	counts := map[string]map[string]int{}
	for _, r := range records {
		if counts[r.Profile] == nil {
			counts[r.Profile] = map[string]int{}
		}
		counts[r.Profile][r.Risk]++
	}
	for _, profile := range []string{"baseline", "contaminated"} {
		log.Printf("%-12s high=%d low=%d", profile, counts[profile]["high"], counts[profile]["low"])
	}
}
