package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultVector = FeatureVector{
	2024, 7.0, 7.0, 2.0, 7.0, 10.0, 5.0, 100.0, 70.0, 100.0,
	20.0, 10.0, 5000.0, 50.0, 40.0, 60.0, 1000.0, 25.0, 500.0,
	0, 0, 0,
}

func TestEncode_DefaultsBoiling(t *testing.T) {
	got := Encode(DefaultAssessment())
	if diff := cmp.Diff(defaultVector, got); diff != "" {
		t.Fatalf("encoded defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_DefaultsFiltration(t *testing.T) {
	a := DefaultAssessment()
	a.Treatment = TreatmentFiltration

	want := defaultVector
	want[19], want[20], want[21] = 0, 1, 0

	if diff := cmp.Diff(want, Encode(a)); diff != "" {
		t.Fatalf("encoded filtration mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_TreatmentIndicators(t *testing.T) {
	cases := []struct {
		treatment Treatment
		want      [IndicatorCount]float64
	}{
		{TreatmentBoiling, [IndicatorCount]float64{0, 0, 0}},
		{TreatmentChlorination, [IndicatorCount]float64{1, 0, 0}},
		{TreatmentFiltration, [IndicatorCount]float64{0, 1, 0}},
		{TreatmentUnknown, [IndicatorCount]float64{0, 0, 1}},
	}

	for _, tc := range cases {
		t.Run(string(tc.treatment), func(t *testing.T) {
			a := DefaultAssessment()
			a.Treatment = tc.treatment
			v := Encode(a)

			var got [IndicatorCount]float64
			copy(got[:], v[NumericFieldCount:])
			assert.Equal(t, tc.want, got)

			hot := 0
			for _, x := range got {
				if x == 1 {
					hot++
				}
			}
			assert.LessOrEqual(t, hot, 1)
		})
	}
}

func TestEncode_Width(t *testing.T) {
	v := Encode(DefaultAssessment())
	assert.Len(t, v, 22)
	assert.Len(t, v.Slice(), 22)
	assert.Len(t, v.Named(), 22)
}

func TestEncode_Deterministic(t *testing.T) {
	a := DefaultAssessment()
	a.Rainfall = 3210.5
	a.Treatment = TreatmentChlorination

	first := Encode(a)
	for range 10 {
		assert.Equal(t, first, Encode(a))
	}
}

// Each numeric field must land in exactly its own column.
func TestEncode_FieldPositions(t *testing.T) {
	for i, f := range NumericFields {
		t.Run(f.Key, func(t *testing.T) {
			var a Assessment
			a.Treatment = TreatmentBoiling
			f.Set(&a, 42)

			v := Encode(a)
			for j := range v {
				if j == i {
					assert.Equal(t, 42.0, v[j])
				} else {
					assert.Zero(t, v[j], "column %d", j)
				}
			}
		})
	}
}

func TestEncode_UnvalidatedInputPassesThrough(t *testing.T) {
	a := DefaultAssessment()
	a.Rainfall = -5

	v := Encode(a)
	assert.Equal(t, -5.0, v[16])
}

func TestFeatureVector_Named(t *testing.T) {
	named := Encode(DefaultAssessment()).Named()
	require.Len(t, named, FeatureCount)
	assert.Equal(t, NamedFeature{Name: "year", Value: 2024}, named[0])
	assert.Equal(t, NamedFeature{Name: "water_treatment_unknown", Value: 0}, named[21])
}
